package retry

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/fb-post-manager/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      1.5,
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	log := logger.New(logger.Opts{Env: "test", Writer: &bytes.Buffer{}})
	calls := 0

	err := Do(context.Background(), log, "ping", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, testConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUp(t *testing.T) {
	log := logger.New(logger.Opts{Env: "test", Writer: &bytes.Buffer{}})
	calls := 0

	err := Do(context.Background(), log, "ping", func(context.Context) error {
		calls++
		return errors.New("down")
	}, testConfig())

	require.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestDoPermanent(t *testing.T) {
	log := logger.New(logger.Opts{Env: "test", Writer: &bytes.Buffer{}})
	calls := 0
	bad := errors.New("bad credentials")

	err := Do(context.Background(), log, "ping", func(context.Context) error {
		calls++
		return Permanent(bad)
	}, testConfig())

	assert.ErrorIs(t, err, bad)
	assert.Equal(t, 1, calls)
}
