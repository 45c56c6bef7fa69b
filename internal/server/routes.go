package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/internal/ratelimit"
	"github.com/orgball2608/fb-post-manager/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Listing routes.
const (
	PublishedPostsPath   = "/manage/published_posts"
	UnpublishedPostsPath = "/manage/unpublished_posts"
)

// ListingPath is where a successful create redirects to.
func ListingPath(published bool) string {
	if published {
		return PublishedPostsPath
	}
	return UnpublishedPostsPath
}

func CreatePath(kind domain.PostKind) string {
	return "/manage/create_" + string(kind) + "_post"
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)

		r.Get("/", s.home)
		r.Get("/settings", s.settings)
		r.Get("/logout", s.logout)

		r.Route("/manage", func(r chi.Router) {
			r.Use(session.RequireUser(s.fail))
			r.Use(ratelimit.Middleware(s.limiter, s.fail))

			r.Get("/", s.manage)
			r.Get("/published_posts", s.listPosts(true))
			r.Get("/published_posts/{page:[0-9]+}", s.listPosts(true))
			r.Get("/unpublished_posts", s.listPosts(false))
			r.Get("/unpublished_posts/{page:[0-9]+}", s.listPosts(false))

			for _, kind := range domain.PostKinds {
				path := "/create_" + string(kind) + "_post"
				r.Get(path, s.showForm(kind))
				r.Post(path, s.submitForm(kind))
			}
		})
	})

	return r
}
