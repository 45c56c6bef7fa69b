package session

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/fb-post-manager/internal/domain"
)

var ErrNotFound = errors.New("session not found")

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=mocks/mock.go
type Repository interface {
	// Get returns the session with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Save creates or replaces the session.
	Save(ctx context.Context, s *domain.Session) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every session that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
