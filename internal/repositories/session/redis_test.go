package session

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryHook answers GET/SET/DEL from a map instead of a server.
type memoryHook struct {
	data map[string]string
	sets [][]any
}

func (h *memoryHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *memoryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *memoryHook) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		args := cmd.Args()
		key, _ := args[1].(string)
		switch c := cmd.(type) {
		case *redis.StringCmd:
			v, ok := h.data[key]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(v)
		case *redis.StatusCmd:
			h.sets = append(h.sets, args)
			switch v := args[2].(type) {
			case []byte:
				h.data[key] = string(v)
			case string:
				h.data[key] = v
			}
			c.SetVal("OK")
		case *redis.IntCmd:
			_, ok := h.data[key]
			delete(h.data, key)
			if ok {
				c.SetVal(1)
			}
		}
		return nil
	}
}

var redisNow = time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

func newTestRedisRepository(t *testing.T) (*RedisRepository, *memoryHook) {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = rdb.Close() })

	hook := &memoryHook{data: map[string]string{}}
	rdb.AddHook(hook)

	repo := NewRedisRepository(rdb, logger.New(logger.Opts{Env: "test", Writer: &bytes.Buffer{}}))
	repo.now = func() time.Time { return redisNow }
	return repo, hook
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	repo, hook := newTestRedisRepository(t)
	ctx := context.Background()

	s := &domain.Session{
		ID:              "sid",
		UserAccessToken: "user-token",
		Accounts:        []domain.Page{{ID: "123", Name: "Bakery", AccessToken: "page-token"}},
		PageID:          "123",
		PageName:        "Bakery",
		PageAccessToken: "page-token",
		CreatedAt:       redisNow,
		ExpiresAt:       redisNow.Add(time.Hour),
	}
	require.NoError(t, repo.Save(ctx, s))

	require.Len(t, hook.sets, 1)
	assert.Equal(t, "session:sid", hook.sets[0][1])
	assert.Equal(t, []any{"ex", int64(3600)}, hook.sets[0][3:])

	got, err := repo.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	require.NoError(t, repo.Delete(ctx, "sid"))
	_, err = repo.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisRepositorySaveExpiredDeletes(t *testing.T) {
	repo, hook := newTestRedisRepository(t)
	ctx := context.Background()
	hook.data["session:old"] = "{}"

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "old", ExpiresAt: redisNow.Add(-time.Minute)}))
	assert.Empty(t, hook.sets)
	assert.NotContains(t, hook.data, "session:old")
}

func TestRedisRepositoryCorruptRecord(t *testing.T) {
	repo, hook := newTestRedisRepository(t)
	hook.data["session:bad"] = "not json"

	_, err := repo.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
