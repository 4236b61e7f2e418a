package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/jmoiron/sqlx"
)

type StatisticsStore struct {
	db *sqlx.DB
}

const (
	getStatisticsQuery    = "SELECT * FROM item_statistics WHERE item_id = ?"
	ensureStatisticsQuery = `
		INSERT INTO item_statistics (item_id, total_participations, total_wins, total_top3, average_rank, version, last_updated)
		VALUES (?, 0, 0, 0, 0, 0, ?)
		ON CONFLICT (item_id) DO NOTHING
	`
	updateStatisticsQuery = `
		UPDATE item_statistics SET
			total_participations = :total_participations,
			total_wins = :total_wins,
			total_top3 = :total_top3,
			average_rank = :average_rank,
			last_updated = :last_updated,
			version = version + 1
		WHERE item_id = :item_id AND version = :version
	`
	queryStatisticsBase = `
		SELECT s.*,
			COALESCE(c.name, '') AS name,
			COALESCE(c.localized_name, '') AS localized_name,
			COALESCE(c.image_url, '') AS image_url,
			COALESCE(c.types, '[]') AS types,
			COALESCE(c.generation, 0) AS generation
		FROM item_statistics s
		LEFT JOIN catalog_items c ON c.id = s.item_id
		WHERE s.total_participations > 0
	`
	statisticsTieBreak = "s.average_rank ASC, s.total_wins DESC, s.item_id ASC"
)

var statisticsOrder = map[worldcup.SortKey]string{
	worldcup.SortByAverageRank:         "s.average_rank ASC",
	worldcup.SortByTotalWins:           "s.total_wins DESC",
	worldcup.SortByTotalTop3:           "s.total_top3 DESC",
	worldcup.SortByTotalParticipations: "s.total_participations DESC",
}

// StatisticsFilter is a resolved statistics query. A nil Range or empty
// Type places no restriction; Limit <= 0 returns every row.
type StatisticsFilter struct {
	Range  *catalog.IDRange
	Type   string
	SortBy worldcup.SortKey
	Limit  int
}

type statisticsRow struct {
	worldcup.ItemStatistics
	Name          string           `db:"name"`
	LocalizedName string           `db:"localized_name"`
	ImageURL      string           `db:"image_url"`
	Types         catalog.TypeTags `db:"types"`
	Generation    int              `db:"generation"`
}

func NewStatisticsStore(db *sqlx.DB) *StatisticsStore {
	return &StatisticsStore{db: db}
}

func (s *StatisticsStore) Get(ctx context.Context, itemID int) (*worldcup.ItemStatistics, error) {
	return getStatistics(ctx, s.db, itemID)
}

// GetTx reads a row inside tx so the version it returns is the one a
// following Update in the same transaction compares against.
func (s *StatisticsStore) GetTx(ctx context.Context, tx *sqlx.Tx, itemID int) (*worldcup.ItemStatistics, error) {
	return getStatistics(ctx, tx, itemID)
}

// Ensure creates a zeroed row for itemID unless one exists.
func (s *StatisticsStore) Ensure(ctx context.Context, tx *sqlx.Tx, itemID int, now time.Time) error {
	_, err := tx.ExecContext(ctx, ensureStatisticsQuery, itemID, now.UTC())
	return err
}

// Update writes stats if the stored version still equals stats.Version and
// bumps the version. It reports false when another writer got there first.
func (s *StatisticsStore) Update(ctx context.Context, tx *sqlx.Tx, stats *worldcup.ItemStatistics) (bool, error) {
	res, err := tx.NamedExecContext(ctx, updateStatisticsQuery, stats)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		stats.Version++
	}
	return n == 1, nil
}

func (s *StatisticsStore) Query(ctx context.Context, filter StatisticsFilter) ([]worldcup.StatisticsEntry, error) {
	order, ok := statisticsOrder[filter.SortBy]
	if !ok {
		if filter.SortBy != "" {
			return nil, fmt.Errorf("unknown sort key %q: %w", filter.SortBy, worldcup.ErrInvalidFilter)
		}
		order = statisticsOrder[worldcup.SortByAverageRank]
	}

	var b strings.Builder
	b.WriteString(queryStatisticsBase)
	var args []any
	if filter.Range != nil {
		b.WriteString(" AND s.item_id BETWEEN ? AND ?")
		args = append(args, filter.Range.First, filter.Range.Last)
	}
	if filter.Type != "" {
		b.WriteString(" AND EXISTS (SELECT 1 FROM json_each(c.types) WHERE LOWER(json_each.value) = LOWER(?))")
		args = append(args, filter.Type)
	}
	b.WriteString(" ORDER BY " + order + ", " + statisticsTieBreak)
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	var rows []statisticsRow
	if err := s.db.SelectContext(ctx, &rows, b.String(), args...); err != nil {
		return nil, err
	}

	entries := make([]worldcup.StatisticsEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, worldcup.StatisticsEntry{
			ItemStatistics: row.ItemStatistics,
			Name:           row.Name,
			LocalizedName:  row.LocalizedName,
			ImageURL:       row.ImageURL,
			Types:          []string(row.Types),
			Generation:     row.Generation,
			WinRate:        row.WinRate(),
			Top3Rate:       row.Top3Rate(),
		})
	}
	return entries, nil
}

func getStatistics(ctx context.Context, q sqlx.QueryerContext, itemID int) (*worldcup.ItemStatistics, error) {
	var stats worldcup.ItemStatistics
	err := sqlx.GetContext(ctx, q, &stats, getStatisticsQuery, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("statistics for item %d: %w", itemID, worldcup.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
