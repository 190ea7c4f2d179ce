package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tbc-warlock-sim/internal/engine"
	"tbc-warlock-sim/internal/spells"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleAggregate() *engine.AggregateResult {
	res := &engine.AggregateResult{
		Iterations: 2,
		FightTime:  360 * time.Second,
		Damage:     400000,
		DPSSum:     2200,
		DPSSq:      1000*1000 + 1200*1200,
		MinDPS:     1000,
		MaxDPS:     1200,
	}
	res.Actions[spells.ShadowBolt] = engine.ActionStats{Casts: 100, Hits: 95, Crits: 20, Misses: 5, Damage: 300000}
	res.Actions[spells.Corruption] = engine.ActionStats{Casts: 10, Hits: 10, Ticks: 60, Damage: 100000}
	return res
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.sqlite")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestNewRunSummarizesAggregate(t *testing.T) {
	run := NewRun("default", 7, sampleAggregate())

	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, 2, run.Iterations)
	assert.InDelta(t, 1100, run.MeanDPS, 1e-9)
	assert.Equal(t, 180*time.Second, run.MeanFight)
	require.Len(t, run.Actions, 2)
}

func TestSaveAndGetRun(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	run := NewRun("default", 1<<63+5, sampleAggregate())

	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "default", got.Label)
	assert.Equal(t, run.Seed, got.Seed)
	assert.Equal(t, 2, got.Iterations)
	assert.InDelta(t, run.StdDevDPS, got.StdDevDPS, 1e-9)
	assert.Equal(t, 180*time.Second, got.MeanFight)
	assert.Equal(t, run.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	require.Len(t, got.Actions, 2)
	assert.Equal(t, spells.ShadowBolt.String(), got.Actions[0].Action)
	assert.Equal(t, int64(20), got.Actions[0].Crits)
	assert.Equal(t, int64(60), got.Actions[1].Ticks)
}

func TestGetRunNotFound(t *testing.T) {
	store := openTempStore(t)
	_, err := store.GetRun(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRunRejectsDuplicateID(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	run := NewRun("default", 1, sampleAggregate())
	require.NoError(t, store.SaveRun(ctx, run))
	require.Error(t, store.SaveRun(ctx, run))
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, label := range []string{"a", "b", "c"} {
		run := NewRun(label, uint64(i), sampleAggregate())
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.SaveRun(ctx, run))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].Label)
	assert.Equal(t, "b", runs[1].Label)
	assert.Empty(t, runs[0].Actions)

	_, err = store.ListRuns(ctx, 0)
	require.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, store.SaveRun(ctx, NewRun("x", 0, sampleAggregate())), context.Canceled)
}

func TestExtractUp(t *testing.T) {
	got := extractUp("-- +migrate Up\nCREATE TABLE t (id INT);\n-- +migrate Down\nDROP TABLE t;\n")
	assert.Equal(t, "\nCREATE TABLE t (id INT);\n", got)
	assert.Equal(t, "SELECT 1;", extractUp("SELECT 1;"))
}
