package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileOnce(t *testing.T) {
	f := newStatisticsFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	record := func(id string, age time.Duration, winner int, rest ...int) {
		_, err := f.results.Record(ctx, &worldcup.TournamentResult{
			TournamentID: id,
			WinnerID:     winner,
			FinalRanking: ranking(append([]int{winner}, rest...)...),
			CreatedAt:    now.Add(-age),
		})
		require.NoError(t, err)
	}
	record("old-1", time.Hour, 1, 2, 3)
	record("old-2", 30*time.Minute, 1, 4)
	record("fresh", 10*time.Second, 1, 5)
	record("done", 2*time.Hour, 6, 7)

	applied, err := f.stats.ApplyRecordedOutcome(ctx, "done")
	require.NoError(t, err)
	require.True(t, applied)

	reconciler := NewOutcomeReconciler(store.NewResultStore(f.db), f.stats, nil, DefaultReconcileGrace)
	reconciler.now = func() time.Time { return now }

	n, err := reconciler.ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := f.stats.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalWins)

	// Nothing left inside the grace window.
	n, err = reconciler.ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	reconciler.now = func() time.Time { return now.Add(time.Minute) }
	n, err = reconciler.ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stats, err = f.stats.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalWins)
}

func TestReconcilerStartStop(t *testing.T) {
	f := newStatisticsFixture(t)
	reconciler := NewOutcomeReconciler(store.NewResultStore(f.db), f.stats, nil, DefaultReconcileGrace)

	require.NoError(t, reconciler.Start(time.Hour))
	assert.NoError(t, reconciler.Stop())
	assert.NoError(t, NewOutcomeReconciler(nil, nil, nil, 0).Stop())
}
