package session

import (
	"go.uber.org/fx"
)

// Module provides the Repository of the configured backend.
// The postgres backend also needs a *pgxpool.Pool, the redis backend a *redis.Client.
func Module(backend string) fx.Option {
	if backend == BackendRedis {
		return fx.Module("session_repository",
			fx.Provide(
				fx.Annotate(
					NewRedisRepository,
					fx.As(new(Repository)),
				),
			),
		)
	}

	return fx.Module("session_repository",
		fx.Provide(
			fx.Annotate(
				NewPgxRepository,
				fx.As(new(Repository)),
			),
		),
	)
}
