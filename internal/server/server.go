package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/orgball2608/fb-post-manager/internal/posts"
	"github.com/orgball2608/fb-post-manager/internal/ratelimit"
	"github.com/orgball2608/fb-post-manager/internal/session"
	"github.com/orgball2608/fb-post-manager/pkg/config"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config   *config.Config
	Logger   logger.Logger
	Posts    posts.Service
	Sessions *session.Manager
	Limiter  ratelimit.Limiter
}

type Server struct {
	cfg       *config.Config
	logger    logger.Logger
	posts     posts.Service
	sessions  *session.Manager
	limiter   ratelimit.Limiter
	templates *templates
}

func New(opts Opts) (*Server, error) {
	tpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{
		cfg:       opts.Config,
		logger:    opts.Logger.WithComponent("HTTP"),
		posts:     opts.Posts,
		sessions:  opts.Sessions,
		limiter:   opts.Limiter,
		templates: tpl,
	}, nil
}

// Run serves the router for the lifetime of the fx app.
func Run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.App.Port),
		Handler:           otelhttp.NewHandler(s.Routes(), "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			s.logger.Info("Starting server", "addr", srv.Addr)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.logger.Error("Server stopped unexpectedly", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, s.cfg.App.ShutdownTimeout)
			defer cancel()
			s.logger.Info("Shutting down server")
			return srv.Shutdown(ctx)
		},
	})
}
