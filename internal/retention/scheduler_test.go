package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	cutoff time.Time
	calls  int
	err    error
}

func (f *fakePruner) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return 5, f.err
}

func TestRunOnce(t *testing.T) {
	t.Run("prunes past the retention window", func(t *testing.T) {
		pruner := &fakePruner{}
		s := NewScheduler(pruner, "0 0 3 * * *", 90)

		before := time.Now().UTC().AddDate(0, 0, -90)
		s.RunOnce(context.Background())
		after := time.Now().UTC().AddDate(0, 0, -90)

		require.Equal(t, 1, pruner.calls)
		assert.False(t, pruner.cutoff.Before(before))
		assert.False(t, pruner.cutoff.After(after))
	})

	t.Run("zero days disables pruning", func(t *testing.T) {
		pruner := &fakePruner{}
		s := NewScheduler(pruner, "0 0 3 * * *", 0)

		s.RunOnce(context.Background())
		assert.Zero(t, pruner.calls)
	})

	t.Run("prune errors are not fatal", func(t *testing.T) {
		pruner := &fakePruner{err: errors.New("db down")}
		s := NewScheduler(pruner, "0 0 3 * * *", 30)

		s.RunOnce(context.Background())
		assert.Equal(t, 1, pruner.calls)
	})
}

func TestStart(t *testing.T) {
	t.Run("rejects a bad schedule", func(t *testing.T) {
		s := NewScheduler(&fakePruner{}, "not a schedule", 30)
		assert.Error(t, s.Start())
	})

	t.Run("starts and stops", func(t *testing.T) {
		s := NewScheduler(&fakePruner{}, "0 0 3 * * *", 30)
		require.NoError(t, s.Start())
		s.Stop()
	})
}
