package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/internal/form"
	"github.com/orgball2608/fb-post-manager/internal/session"
	"github.com/orgball2608/fb-post-manager/pkg/errors"
)

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

// fail answers err: missing session state sends the user home, everything else gets an error page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.IsMissingSession(err) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", status, "code", errors.GetCode(err), "error", err)
	} else {
		s.logger.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	msg := http.StatusText(status)
	switch status {
	case http.StatusBadGateway:
		msg = "Facebook could not complete the request. Please try again later."
	case http.StatusUnauthorized, http.StatusTooManyRequests:
		msg = errors.GetMessage(err)
	}
	s.render(w, status, "error.html", view{Title: http.StatusText(status), Status: status, Message: msg})
}

// refreshAccounts fetches the managed pages into the session and persists it.
func (s *Server) refreshAccounts(r *http.Request, sess *domain.Session) error {
	if _, err := s.posts.ListAccounts(r.Context(), sess); err != nil {
		return err
	}
	return s.sessions.Save(r.Context(), sess)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if sess.UserAccessToken != "" {
		if err := s.refreshAccounts(r, sess); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	s.render(w, http.StatusOK, "home.html", view{Title: "Your pages", Session: sess, Accounts: sess.Accounts})
}

func (s *Server) settings(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if sess.UserAccessToken != "" {
		if err := s.refreshAccounts(r, sess); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	s.render(w, http.StatusOK, "settings.html", view{Title: "Settings", Session: sess, Accounts: sess.Accounts})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.sessions.Destroy(w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	s.limiter.Forget(sess.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) manage(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		page, err := sess.ActivePage()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.render(w, http.StatusOK, "manage.html", view{Title: page.Name, Session: sess, Page: page})
		return
	}

	if len(sess.Accounts) == 0 {
		if _, err := s.posts.ListAccounts(r.Context(), sess); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	page, err := sess.SelectPage(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info("Page selected", "session", sess.ID, "page", page.ID)
	s.render(w, http.StatusOK, "manage.html", view{Title: page.Name, Session: sess, Page: page})
}

func (s *Server) listPosts(published bool) http.HandlerFunc {
	title := "Unpublished posts"
	if published {
		title = "Published posts"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.FromContext(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}

		page := 0
		if raw := chi.URLParam(r, "page"); raw != "" {
			page, err = strconv.Atoi(raw)
			if err != nil {
				s.fail(w, r, errors.Wrap(errors.ErrNotFound, "page index out of range"))
				return
			}
		}

		list, err := s.posts.ListPosts(r.Context(), sess, published, page)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		active, _ := sess.ActivePage()
		s.render(w, http.StatusOK, "posts.html", view{
			Title:     title,
			Session:   sess,
			Page:      active,
			List:      list,
			Published: published,
		})
	}
}

func (s *Server) showForm(kind domain.PostKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.FromContext(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		page, err := sess.ActivePage()
		if err != nil {
			s.fail(w, r, err)
			return
		}

		schema, err := form.SchemaFor(kind)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		s.render(w, http.StatusOK, "form.html", view{
			Title:   "New " + kind.Title() + " post",
			Session: sess,
			Page:    page,
			Form:    newFormView(schema, nil, nil),
		})
	}
}

func (s *Server) submitForm(kind domain.PostKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.FromContext(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		page, err := sess.ActivePage()
		if err != nil {
			s.fail(w, r, err)
			return
		}

		if err := r.ParseForm(); err != nil {
			s.fail(w, r, errors.Wrap(errors.ErrInvalidInput, "malformed form body"))
			return
		}

		sub, errs, err := form.Decode(kind, r.PostForm)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if len(errs) > 0 {
			schema, _ := form.SchemaFor(kind)
			s.render(w, http.StatusOK, "form.html", view{
				Title:   "New " + kind.Title() + " post",
				Session: sess,
				Page:    page,
				Form:    newFormView(schema, r.PostForm, errs),
			})
			return
		}

		res, err := s.posts.Publish(r.Context(), sess, sub)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		http.Redirect(w, r, ListingPath(res.Published), http.StatusFound)
	}
}
