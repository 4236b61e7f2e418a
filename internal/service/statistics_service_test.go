package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statisticsFixture struct {
	db      *sqlx.DB
	catalog *store.CatalogStore
	results *ResultService
	stats   *StatisticsService
}

func newStatisticsFixture(t *testing.T) *statisticsFixture {
	t.Helper()
	db := setupTestDB(t)
	resultStore := store.NewResultStore(db)
	return &statisticsFixture{
		db:      db,
		catalog: store.NewCatalogStore(db),
		results: NewResultService(db, resultStore, nil),
		stats:   NewStatisticsService(db, store.NewStatisticsStore(db), resultStore, nil),
	}
}

func TestApplyTournamentOutcome(t *testing.T) {
	f := newStatisticsFixture(t)
	ctx := context.Background()

	require.NoError(t, f.stats.ApplyTournamentOutcome(ctx, 25, ranking(25, 4, 1, 7)))

	tests := []struct {
		itemID                          int
		participations, wins, top3, avg int
	}{
		{25, 1, 1, 1, 1},
		{4, 1, 0, 1, 2},
		{1, 1, 0, 1, 3},
	}
	for _, tt := range tests {
		stats, err := f.stats.Get(ctx, tt.itemID)
		require.NoError(t, err)
		assert.Equal(t, tt.participations, stats.TotalParticipations, "item %d", tt.itemID)
		assert.Equal(t, tt.wins, stats.TotalWins, "item %d", tt.itemID)
		assert.Equal(t, tt.top3, stats.TotalTop3, "item %d", tt.itemID)
		assert.Equal(t, tt.avg, stats.AverageRank, "item %d", tt.itemID)
	}

	// Fourth place is outside the update set.
	_, err := f.stats.Get(ctx, 7)
	assert.ErrorIs(t, err, worldcup.ErrNotFound)

	require.NoError(t, f.stats.ApplyTournamentOutcome(ctx, 4, ranking(4, 25)))
	stats, err := f.stats.Get(ctx, 25)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalParticipations)
	assert.Equal(t, 1, stats.TotalWins)
	assert.Equal(t, 2, stats.TotalTop3)
	assert.Equal(t, 1, stats.AverageRank)
	assert.Equal(t, 2, stats.Version)
}

func TestApplyTournamentOutcomeRejectsBadRanking(t *testing.T) {
	f := newStatisticsFixture(t)

	err := f.stats.ApplyTournamentOutcome(context.Background(), 2, ranking(1, 2))
	assert.ErrorIs(t, err, worldcup.ErrInvalidRanking)
}

func TestApplyTournamentOutcomeConcurrent(t *testing.T) {
	f := newStatisticsFixture(t)
	ctx := context.Background()
	const writers = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Every tournament shares the winner; runners-up differ.
			errs <- f.stats.ApplyTournamentOutcome(ctx, 25, ranking(25, 100+i, 200+i))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stats, err := f.stats.Get(ctx, 25)
	require.NoError(t, err)
	assert.Equal(t, writers, stats.TotalParticipations)
	assert.Equal(t, writers, stats.TotalWins)
	assert.Equal(t, writers, stats.TotalTop3)
	assert.Equal(t, 1, stats.AverageRank)
	assert.Equal(t, writers, stats.Version)
}

func TestApplyRecordedOutcomeOnce(t *testing.T) {
	f := newStatisticsFixture(t)
	ctx := context.Background()

	result, err := f.results.Record(ctx, &worldcup.TournamentResult{
		Title:        "once",
		WinnerID:     9,
		FinalRanking: ranking(9, 8, 7, 6),
	})
	require.NoError(t, err)

	applied, err := f.stats.ApplyRecordedOutcome(ctx, result.TournamentID)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = f.stats.ApplyRecordedOutcome(ctx, result.TournamentID)
	require.NoError(t, err)
	assert.False(t, applied)

	stats, err := f.stats.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalParticipations)
	assert.Equal(t, 1, stats.TotalWins)

	stored, err := f.results.Get(ctx, result.TournamentID)
	require.NoError(t, err)
	assert.True(t, stored.OutcomeApplied)

	_, err = f.stats.ApplyRecordedOutcome(ctx, "missing")
	assert.ErrorIs(t, err, worldcup.ErrNotFound)
}

func TestApplyRecordedOutcomeConcurrent(t *testing.T) {
	f := newStatisticsFixture(t)
	ctx := context.Background()

	result, err := f.results.Record(ctx, &worldcup.TournamentResult{WinnerID: 3, FinalRanking: ranking(3, 2, 1)})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := f.stats.ApplyRecordedOutcome(ctx, result.TournamentID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	stats, err := f.stats.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalParticipations)
}

func TestLeaderboard(t *testing.T) {
	f := newStatisticsFixture(t)
	ctx := context.Background()
	f.stats.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	// Even ids are fire, odd ids water.
	seedCatalog(t, f.catalog, 2, 3, 4, 152, 153)
	require.NoError(t, f.stats.ApplyTournamentOutcome(ctx, 2, ranking(2, 3, 4)))
	require.NoError(t, f.stats.ApplyTournamentOutcome(ctx, 2, ranking(2, 152, 153)))
	require.NoError(t, f.stats.ApplyTournamentOutcome(ctx, 152, ranking(152, 3)))

	tests := []struct {
		name  string
		query worldcup.StatisticsQuery
		want  []int
	}{
		{"default", worldcup.StatisticsQuery{}, []int{2, 152, 3, 4, 153}},
		{"wins", worldcup.StatisticsQuery{SortBy: worldcup.SortByTotalWins}, []int{2, 152, 3, 4, 153}},
		{"generation", worldcup.StatisticsQuery{Generation: "2"}, []int{152, 153}},
		{"localized type", worldcup.StatisticsQuery{Type: "물"}, []int{3, 153}},
		{"generation and type", worldcup.StatisticsQuery{Generation: "1", Type: "Fire"}, []int{2, 4}},
		{"limit", worldcup.StatisticsQuery{Limit: 1}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := f.stats.Leaderboard(ctx, tt.query)
			require.NoError(t, err)

			ids := []int{}
			for _, e := range entries {
				ids = append(ids, e.ItemID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	_, err := f.stats.Leaderboard(ctx, worldcup.StatisticsQuery{SortBy: "popularity"})
	assert.ErrorIs(t, err, worldcup.ErrInvalidFilter)
	_, err = f.stats.Leaderboard(ctx, worldcup.StatisticsQuery{Generation: "two"})
	assert.ErrorIs(t, err, worldcup.ErrInvalidFilter)
}
