package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/metrics"
	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	DefaultRecentLimit = 10
	MaxListLimit       = 100
)

type ResultService struct {
	db      *sqlx.DB
	store   *store.ResultStore
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewResultService(db *sqlx.DB, store *store.ResultStore, m *metrics.Metrics) *ResultService {
	return &ResultService{db: db, store: store, metrics: m, now: time.Now}
}

// Record stores an immutable snapshot of a completed tournament. Statistics
// are not touched; see StatisticsService.ApplyRecordedOutcome.
func (s *ResultService) Record(ctx context.Context, input *worldcup.TournamentResult) (*worldcup.TournamentResult, error) {
	result := *input
	if result.TournamentID == "" {
		result.TournamentID = uuid.NewString()
	}
	if result.TournamentType == "" {
		result.TournamentType = worldcup.DefaultTournamentType
	}
	now := s.now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	if result.CompletedAt.IsZero() {
		result.CompletedAt = now
	}
	result.OutcomeApplied = false

	if result.WinnerID <= 0 {
		return nil, fmt.Errorf("%w: winner is required", worldcup.ErrInvalidRanking)
	}
	if err := worldcup.ValidateRanking(result.WinnerID, result.FinalRanking); err != nil {
		return nil, err
	}

	// Once issued the insert runs to completion even if the caller goes away.
	writeCtx := context.WithoutCancel(ctx)
	tx, err := s.db.BeginTxx(writeCtx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.Create(writeCtx, tx, &result); err != nil {
		return nil, fmt.Errorf("failed to record tournament: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("tournament recorded", "tournament_id", result.TournamentID, "winner_id", result.WinnerID)
	s.metrics.ResultRecorded()
	return s.store.Get(writeCtx, result.TournamentID)
}

func (s *ResultService) Get(ctx context.Context, tournamentID string) (*worldcup.TournamentResult, error) {
	return s.store.Get(ctx, tournamentID)
}

// ListRecent returns the newest results first. limit <= 0 means the default.
func (s *ResultService) ListRecent(ctx context.Context, limit int) ([]worldcup.TournamentResult, error) {
	return s.store.ListRecent(ctx, normalizeLimit(limit))
}

func (s *ResultService) ListByWinner(ctx context.Context, itemID, limit int) ([]worldcup.TournamentResult, error) {
	return s.store.ListByWinner(ctx, itemID, normalizeLimit(limit))
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return min(limit, MaxListLimit)
}
