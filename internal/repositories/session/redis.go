package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

type RedisRepository struct {
	rdb    *redis.Client
	logger logger.Logger
	now    func() time.Time
}

func NewRedisRepository(rdb *redis.Client, logger logger.Logger) *RedisRepository {
	return &RedisRepository{
		rdb:    rdb,
		logger: logger.WithComponent("SessionRepo"),
		now:    time.Now,
	}
}

var _ Repository = (*RedisRepository)(nil)

type redisRecord struct {
	UserAccessToken string        `json:"user_access_token"`
	Accounts        []domain.Page `json:"accounts"`
	PageID          string        `json:"page_id"`
	PageName        string        `json:"page_name"`
	PageAccessToken string        `json:"page_access_token"`
	CreatedAt       time.Time     `json:"created_at"`
	ExpiresAt       time.Time     `json:"expires_at"`
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &domain.Session{
		ID:              id,
		UserAccessToken: rec.UserAccessToken,
		Accounts:        rec.Accounts,
		PageID:          rec.PageID,
		PageName:        rec.PageName,
		PageAccessToken: rec.PageAccessToken,
		CreatedAt:       rec.CreatedAt,
		ExpiresAt:       rec.ExpiresAt,
	}, nil
}

// Save stores the session with a TTL matching its expiry, so expired keys vanish on their own.
func (r *RedisRepository) Save(ctx context.Context, s *domain.Session) error {
	raw, err := json.Marshal(redisRecord{
		UserAccessToken: s.UserAccessToken,
		Accounts:        s.Accounts,
		PageID:          s.PageID,
		PageName:        s.PageName,
		PageAccessToken: s.PageAccessToken,
		CreatedAt:       s.CreatedAt,
		ExpiresAt:       s.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		ttl = s.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return r.Delete(ctx, s.ID)
		}
	}

	if err := r.rdb.Set(ctx, redisKeyPrefix+s.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: redis expires session keys through their TTL.
func (r *RedisRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
