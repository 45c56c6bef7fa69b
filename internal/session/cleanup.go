package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/fb-post-manager/internal/metrics"
	sessionrepo "github.com/orgball2608/fb-post-manager/internal/repositories/session"
	"github.com/orgball2608/fb-post-manager/pkg/config"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"go.uber.org/fx"
)

type CleanerOpts struct {
	fx.In

	LC     fx.Lifecycle
	Repo   sessionrepo.Repository
	Config *config.Config
	Logger logger.Logger
}

// Cleaner periodically removes expired sessions from the store.
type Cleaner struct {
	repo      sessionrepo.Repository
	logger    logger.Logger
	schedule  string
	scheduler gocron.Scheduler
	now       func() time.Time
}

func NewCleaner(opts CleanerOpts) (*Cleaner, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create cleanup scheduler: %w", err)
	}

	c := &Cleaner{
		repo:      opts.Repo,
		logger:    opts.Logger.WithComponent("SessionCleaner"),
		schedule:  opts.Config.Session.CleanupCron,
		scheduler: scheduler,
		now:       time.Now,
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return c.Start()
		},
		OnStop: func(context.Context) error {
			c.logger.Info("Stopping session cleanup scheduler")
			return c.scheduler.Shutdown()
		},
	})

	return c, nil
}

// Start registers the cleanup job and starts the scheduler.
func (c *Cleaner) Start() error {
	_, err := c.scheduler.NewJob(
		gocron.CronJob(c.schedule, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			_, _ = c.Run(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule session cleanup: %w", err)
	}

	c.scheduler.Start()
	c.logger.Info("Session cleanup scheduled", "cron", c.schedule)
	return nil
}

// Run deletes the sessions that are expired now.
func (c *Cleaner) Run(ctx context.Context) (int64, error) {
	c.logger.Info("Starting session cleanup")

	deleted, err := c.repo.DeleteExpired(ctx, c.now())
	if err != nil {
		c.logger.Error("Failed to clean up expired sessions", "error", err)
		return 0, err
	}

	metrics.SessionsCleaned.Add(float64(deleted))
	c.logger.Info("Session cleanup completed", "rows_deleted", deleted)
	return deleted, nil
}
