package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/metrics"
	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/jmoiron/sqlx"
)

const maxStatisticsAttempts = 5

type StatisticsService struct {
	db      *sqlx.DB
	stats   *store.StatisticsStore
	results *store.ResultStore
	filter  catalogFilter
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewStatisticsService(db *sqlx.DB, stats *store.StatisticsStore, results *store.ResultStore, m *metrics.Metrics) *StatisticsService {
	return &StatisticsService{
		db:      db,
		stats:   stats,
		results: results,
		filter:  defaultCatalogFilter(),
		metrics: m,
		now:     time.Now,
	}
}

// ApplyTournamentOutcome folds one finished tournament into the per-item
// statistics. Each item is updated in its own transaction, in ascending id
// order, retrying when a concurrent writer bumped the row version first.
// It is not idempotent; callers holding a recorded result should use
// ApplyRecordedOutcome.
func (s *StatisticsService) ApplyTournamentOutcome(ctx context.Context, winnerID int, ranking []worldcup.RankingEntry) error {
	if err := worldcup.ValidateRanking(winnerID, ranking); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	now := s.now().UTC()
	for _, u := range worldcup.OutcomeUpdates(winnerID, ranking) {
		if err := s.applyWithRetry(ctx, u, now); err != nil {
			return err
		}
	}

	s.metrics.OutcomeApplied("direct")
	return nil
}

// ApplyRecordedOutcome applies a stored tournament's outcome at most once.
// It reports false when the outcome had already been applied.
func (s *StatisticsService) ApplyRecordedOutcome(ctx context.Context, tournamentID string) (bool, error) {
	result, err := s.results.Get(ctx, tournamentID)
	if err != nil {
		return false, err
	}
	if result.OutcomeApplied {
		return false, nil
	}

	ctx = context.WithoutCancel(ctx)
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	claimed, err := s.results.ClaimOutcome(ctx, tx, tournamentID)
	if err != nil {
		return false, fmt.Errorf("failed to claim outcome of %s: %w", tournamentID, err)
	}
	if !claimed {
		return false, nil
	}

	// The immediate transaction holds the write lock, so a lost version
	// race here means the row changed under us and retrying cannot help.
	now := s.now().UTC()
	for _, u := range worldcup.OutcomeUpdates(result.WinnerID, result.FinalRanking) {
		ok, err := s.applyRank(ctx, tx, u, now)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("item %d: %w", u.ItemID, worldcup.ErrStatisticsContention)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	slog.Info("tournament outcome applied", "tournament_id", tournamentID, "winner_id", result.WinnerID)
	s.metrics.OutcomeApplied("recorded")
	return true, nil
}

func (s *StatisticsService) applyWithRetry(ctx context.Context, u worldcup.RankUpdate, now time.Time) error {
	for attempt := 1; attempt <= maxStatisticsAttempts; attempt++ {
		ok, err := s.applyOnce(ctx, u, now)
		if err != nil {
			return fmt.Errorf("failed to update statistics for item %d: %w", u.ItemID, err)
		}
		if ok {
			return nil
		}
		slog.Warn("statistics version conflict, retrying", "item_id", u.ItemID, "attempt", attempt)
		s.metrics.StatisticsRetry()
	}
	return fmt.Errorf("item %d after %d attempts: %w", u.ItemID, maxStatisticsAttempts, worldcup.ErrStatisticsContention)
}

func (s *StatisticsService) applyOnce(ctx context.Context, u worldcup.RankUpdate, now time.Time) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	ok, err := s.applyRank(ctx, tx, u, now)
	if err != nil || !ok {
		return false, err
	}
	return true, tx.Commit()
}

func (s *StatisticsService) applyRank(ctx context.Context, tx *sqlx.Tx, u worldcup.RankUpdate, now time.Time) (bool, error) {
	if err := s.stats.Ensure(ctx, tx, u.ItemID, now); err != nil {
		return false, err
	}
	stats, err := s.stats.GetTx(ctx, tx, u.ItemID)
	if err != nil {
		return false, err
	}
	stats.Record(u.Rank, now)
	return s.stats.Update(ctx, tx, stats)
}

func (s *StatisticsService) Get(ctx context.Context, itemID int) (*worldcup.ItemStatistics, error) {
	return s.stats.Get(ctx, itemID)
}

// Leaderboard lists statistics rows matching the query. Limit <= 0 uses the
// default list limit.
func (s *StatisticsService) Leaderboard(ctx context.Context, q worldcup.StatisticsQuery) ([]worldcup.StatisticsEntry, error) {
	sortBy, ok := worldcup.ParseSortKey(string(q.SortBy))
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort key %q", worldcup.ErrInvalidFilter, q.SortBy)
	}

	filter, err := s.filter.resolve(q.Generation, q.Type)
	if err != nil {
		return nil, err
	}

	return s.stats.Query(ctx, store.StatisticsFilter{
		Range:  filter.Range,
		Type:   filter.Type,
		SortBy: sortBy,
		Limit:  normalizeLimit(q.Limit),
	})
}
