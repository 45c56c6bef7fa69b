package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/fb-post-manager/internal/domain"
	sessionrepo "github.com/orgball2608/fb-post-manager/internal/repositories/session"
	"github.com/orgball2608/fb-post-manager/pkg/config"
	pkgerrors "github.com/orgball2608/fb-post-manager/pkg/errors"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"go.uber.org/fx"
)

type ctxKey struct{}

type Opts struct {
	fx.In

	Repo   sessionrepo.Repository
	Config *config.Config
	Logger logger.Logger
}

// Manager ties the session cookie to the session store.
type Manager struct {
	repo       sessionrepo.Repository
	logger     logger.Logger
	cookieName string
	ttl        time.Duration
	secure     bool
	seedToken  string
	now        func() time.Time
	newID      func() string
}

func New(opts Opts) *Manager {
	return &Manager{
		repo:       opts.Repo,
		logger:     opts.Logger.WithComponent("SessionManager"),
		cookieName: opts.Config.Session.CookieName,
		ttl:        opts.Config.Session.TTL,
		secure:     opts.Config.Session.SecureCookie || opts.Config.IsProduction(),
		seedToken:  opts.Config.Session.UserToken,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session loaded by Middleware.
func FromContext(ctx context.Context) (*domain.Session, error) {
	s, ok := ctx.Value(ctxKey{}).(*domain.Session)
	if !ok || s == nil {
		return nil, pkgerrors.ErrNoSession
	}
	return s, nil
}

// Middleware loads the session named by the cookie, or starts a new one, and puts it in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, fresh, err := m.load(r)
		if err != nil {
			m.logger.Error("Failed to load session", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if fresh {
			m.setCookie(w, s)
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// load reports fresh when a new session had to be started.
func (m *Manager) load(r *http.Request) (*domain.Session, bool, error) {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		s, err := m.repo.Get(r.Context(), c.Value)
		switch {
		case err == nil && !s.Expired(m.now()):
			return s, false, nil
		case err == nil:
			m.logger.Debug("Session expired", "session", s.ID)
		case !errors.Is(err, sessionrepo.ErrNotFound):
			return nil, false, err
		}
	}
	return m.start(), true, nil
}

func (m *Manager) start() *domain.Session {
	now := m.now()
	return &domain.Session{
		ID:              m.newID(),
		UserAccessToken: m.seedToken,
		CreatedAt:       now,
		ExpiresAt:       now.Add(m.ttl),
	}
}

// Save persists s and extends its lifetime.
func (m *Manager) Save(ctx context.Context, s *domain.Session) error {
	s.ExpiresAt = m.now().Add(m.ttl)
	if err := m.repo.Save(ctx, s); err != nil {
		return pkgerrors.Wrap(err, "save session")
	}
	return nil
}

// Destroy deletes the session of the request and clears the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	s, err := FromContext(r.Context())
	if err != nil {
		return err
	}
	if err := m.repo.Delete(r.Context(), s.ID); err != nil {
		return pkgerrors.Wrap(err, "delete session")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, s *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireUser hands requests whose session carries no Facebook user token to fail with errors.ErrUnauthorized.
func RequireUser(fail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := FromContext(r.Context())
			if err != nil || s.UserAccessToken == "" {
				fail(w, r, pkgerrors.Wrap(pkgerrors.ErrUnauthorized, "Sign in with Facebook to manage your pages."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
