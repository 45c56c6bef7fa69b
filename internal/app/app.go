package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/fb-post-manager/internal/graph"
	"github.com/orgball2608/fb-post-manager/internal/graph/graphimpl"
	"github.com/orgball2608/fb-post-manager/internal/migrations"
	"github.com/orgball2608/fb-post-manager/internal/posts"
	"github.com/orgball2608/fb-post-manager/internal/posts/postsimpl"
	"github.com/orgball2608/fb-post-manager/internal/ratelimit"
	sessionrepo "github.com/orgball2608/fb-post-manager/internal/repositories/session"
	"github.com/orgball2608/fb-post-manager/internal/server"
	"github.com/orgball2608/fb-post-manager/internal/session"
	"github.com/orgball2608/fb-post-manager/internal/telemetry"
	"github.com/orgball2608/fb-post-manager/pkg/config"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"github.com/orgball2608/fb-post-manager/pkg/pgx"
	"github.com/orgball2608/fb-post-manager/pkg/redis"
	"go.uber.org/fx"
)

// New assembles the application. The session backend is fixed at build time from cfg.
func New(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			logger.FxOption,
		),
		fx.Provide(
			fx.Annotate(
				graphimpl.New,
				fx.As(new(graph.Client)),
			),
			fx.Annotate(
				postsimpl.New,
				fx.As(new(posts.Service)),
			),
			fx.Annotate(
				ratelimit.New,
				fx.As(new(ratelimit.Limiter)),
			),
			session.New,
			session.NewCleaner,
			server.New,
		),
		storage(cfg.Session.Backend),
		sessionrepo.Module(cfg.Session.Backend),
		fx.Invoke(telemetry.Register),
		fx.Invoke(func(*session.Cleaner) {}),
		fx.Invoke(server.Run),
	)
}

// storage provides the connection the chosen session backend needs.
func storage(backend string) fx.Option {
	if backend == sessionrepo.BackendRedis {
		return fx.Provide(redis.New)
	}

	return fx.Options(
		fx.Provide(pgx.New),
		fx.Invoke(migrate),
	)
}

// migrate applies pending migrations once the pool has connected.
func migrate(lc fx.Lifecycle, _ *pgxpool.Pool, cfg *config.Config, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := migrations.Up(ctx, cfg.GetDSN()); err != nil {
				return err
			}
			log.Info("Database migrations applied")
			return nil
		},
	})
}
