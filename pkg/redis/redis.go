package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/orgball2608/fb-post-manager/pkg/config"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"github.com/orgball2608/fb-post-manager/pkg/retry"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
}

// New creates a redis client whose connection is checked on start and closed on stop.
func New(opts Opts) *goredis.Client {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         opts.Config.Redis.Addr,
		Password:     opts.Config.Redis.Password,
		DB:           opts.Config.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	opts.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
			if err := retry.Do(ctx, opts.Logger, "RedisPing", ping, retry.DefaultConfig()); err != nil {
				return fmt.Errorf("failed to ping redis: %w", err)
			}
			opts.Logger.Info("Connected to redis", "addr", opts.Config.Redis.Addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return rdb.Close()
		},
	})

	return rdb
}
