package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type ResultStore struct {
	db *sqlx.DB
}

const (
	getResultQuery          = "SELECT * FROM tournament_results WHERE tournament_id = ?"
	resultExistsQuery       = "SELECT EXISTS (SELECT 1 FROM tournament_results WHERE tournament_id = ?)"
	listRecentResultsQuery  = "SELECT * FROM tournament_results ORDER BY created_at DESC, tournament_id DESC LIMIT ?"
	listResultsByWinner     = "SELECT * FROM tournament_results WHERE winner_id = ? ORDER BY created_at DESC, tournament_id DESC LIMIT ?"
	listPendingResultsQuery = `
		SELECT * FROM tournament_results
		WHERE outcome_applied = 0 AND created_at < ?
		ORDER BY created_at ASC
		LIMIT ?
	`
	createResultQuery = `
		INSERT INTO tournament_results (tournament_id, title, tournament_type, conditions, participants, final_ranking, winner_id, outcome_applied, created_at, completed_at)
		VALUES (:tournament_id, :title, :tournament_type, :conditions, :participants, :final_ranking, :winner_id, :outcome_applied, :created_at, :completed_at)
	`
	claimOutcomeQuery = "UPDATE tournament_results SET outcome_applied = 1 WHERE tournament_id = ? AND outcome_applied = 0"
)

// resultRow is the stored form of a tournament result. The nested
// structures are kept as JSON text.
type resultRow struct {
	TournamentID   string    `db:"tournament_id"`
	Title          string    `db:"title"`
	TournamentType string    `db:"tournament_type"`
	Conditions     string    `db:"conditions"`
	Participants   string    `db:"participants"`
	FinalRanking   string    `db:"final_ranking"`
	WinnerID       int       `db:"winner_id"`
	OutcomeApplied bool      `db:"outcome_applied"`
	CreatedAt      time.Time `db:"created_at"`
	CompletedAt    time.Time `db:"completed_at"`
}

func NewResultStore(db *sqlx.DB) *ResultStore {
	return &ResultStore{db: db}
}

// Create inserts result inside tx. An existing id yields worldcup.ErrConflict.
func (s *ResultStore) Create(ctx context.Context, tx *sqlx.Tx, result *worldcup.TournamentResult) error {
	row, err := encodeResult(result)
	if err != nil {
		return err
	}

	var exists bool
	if err := tx.GetContext(ctx, &exists, resultExistsQuery, row.TournamentID); err != nil {
		return fmt.Errorf("failed to check tournament %s: %w", row.TournamentID, err)
	}
	if exists {
		return fmt.Errorf("tournament %s already recorded: %w", row.TournamentID, worldcup.ErrConflict)
	}

	if _, err := tx.NamedExecContext(ctx, createResultQuery, row); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tournament %s already recorded: %w", row.TournamentID, worldcup.ErrConflict)
		}
		return err
	}
	return nil
}

func (s *ResultStore) Get(ctx context.Context, tournamentID string) (*worldcup.TournamentResult, error) {
	var row resultRow
	err := s.db.GetContext(ctx, &row, getResultQuery, tournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tournament %s: %w", tournamentID, worldcup.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeResult(row)
}

func (s *ResultStore) ListRecent(ctx context.Context, limit int) ([]worldcup.TournamentResult, error) {
	return s.list(ctx, listRecentResultsQuery, limit)
}

func (s *ResultStore) ListByWinner(ctx context.Context, itemID, limit int) ([]worldcup.TournamentResult, error) {
	return s.list(ctx, listResultsByWinner, itemID, limit)
}

// ListPending returns results created before cutoff whose outcome has not
// been applied to the statistics yet, oldest first.
func (s *ResultStore) ListPending(ctx context.Context, cutoff time.Time, limit int) ([]worldcup.TournamentResult, error) {
	return s.list(ctx, listPendingResultsQuery, cutoff.UTC(), limit)
}

// ClaimOutcome flips outcome_applied from false to true. It reports false
// when the flag was already set or the tournament does not exist.
func (s *ResultStore) ClaimOutcome(ctx context.Context, tx *sqlx.Tx, tournamentID string) (bool, error) {
	res, err := tx.ExecContext(ctx, claimOutcomeQuery, tournamentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *ResultStore) list(ctx context.Context, query string, args ...any) ([]worldcup.TournamentResult, error) {
	var rows []resultRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	results := make([]worldcup.TournamentResult, 0, len(rows))
	for _, row := range rows {
		result, err := decodeResult(row)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// encodeResult stores nil participant and ranking lists as empty JSON
// arrays; they are read back as empty, non-nil slices.
func encodeResult(result *worldcup.TournamentResult) (*resultRow, error) {
	conditions, err := json.Marshal(result.Conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode conditions: %w", err)
	}
	participants, err := json.Marshal(nonNil(result.Participants))
	if err != nil {
		return nil, fmt.Errorf("failed to encode participants: %w", err)
	}
	ranking, err := json.Marshal(nonNil(result.FinalRanking))
	if err != nil {
		return nil, fmt.Errorf("failed to encode final ranking: %w", err)
	}

	return &resultRow{
		TournamentID:   result.TournamentID,
		Title:          result.Title,
		TournamentType: result.TournamentType,
		Conditions:     string(conditions),
		Participants:   string(participants),
		FinalRanking:   string(ranking),
		WinnerID:       result.WinnerID,
		OutcomeApplied: result.OutcomeApplied,
		CreatedAt:      result.CreatedAt.UTC(),
		CompletedAt:    result.CompletedAt.UTC(),
	}, nil
}

// decodeResult never returns a partially decoded result: any malformed
// column or a ranking that breaks its own rules is reported as corruption.
func decodeResult(row resultRow) (*worldcup.TournamentResult, error) {
	result := &worldcup.TournamentResult{
		TournamentID:   row.TournamentID,
		Title:          row.Title,
		TournamentType: row.TournamentType,
		WinnerID:       row.WinnerID,
		OutcomeApplied: row.OutcomeApplied,
		CreatedAt:      row.CreatedAt.UTC(),
		CompletedAt:    row.CompletedAt.UTC(),
	}

	columns := []struct {
		name string
		raw  string
		dst  any
	}{
		{"conditions", row.Conditions, &result.Conditions},
		{"participants", row.Participants, &result.Participants},
		{"final_ranking", row.FinalRanking, &result.FinalRanking},
	}
	for _, c := range columns {
		if err := json.Unmarshal([]byte(c.raw), c.dst); err != nil {
			return nil, fmt.Errorf("tournament %s %s: %v: %w", row.TournamentID, c.name, err, worldcup.ErrCorruption)
		}
	}

	if err := worldcup.ValidateRanking(result.WinnerID, result.FinalRanking); err != nil {
		return nil, fmt.Errorf("tournament %s: %v: %w", row.TournamentID, err, worldcup.ErrCorruption)
	}
	return result, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
