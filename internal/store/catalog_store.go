package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/jmoiron/sqlx"
)

type CatalogStore struct {
	db *sqlx.DB
}

const (
	getCatalogItemQuery    = "SELECT * FROM catalog_items WHERE id = ?"
	countCatalogItemsQuery = "SELECT COUNT(*) FROM catalog_items"
	upsertCatalogItemQuery = `
		INSERT INTO catalog_items (id, name, localized_name, generation, types, image_url, description, updated_at)
		VALUES (:id, :name, :localized_name, :generation, :types, :image_url, :description, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			localized_name = excluded.localized_name,
			generation = excluded.generation,
			types = excluded.types,
			image_url = excluded.image_url,
			description = excluded.description,
			updated_at = excluded.updated_at
	`
	// Tags are canonical lower case; the LOWER keeps older rows matching.
	hasTypeCondition = "EXISTS (SELECT 1 FROM json_each(catalog_items.types) WHERE LOWER(json_each.value) = LOWER(?))"
)

// ItemFilter narrows a catalog listing. A nil Range or empty Type places
// no restriction.
type ItemFilter struct {
	Range *catalog.IDRange
	Type  string
}

func NewCatalogStore(db *sqlx.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) Get(ctx context.Context, id int) (*catalog.Item, error) {
	var item catalog.Item
	err := s.db.GetContext(ctx, &item, getCatalogItemQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog item %d: %w", id, worldcup.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CatalogStore) UpsertItem(ctx context.Context, item *catalog.Item) error {
	_, err := s.db.NamedExecContext(ctx, upsertCatalogItemQuery, item)
	return err
}

func (s *CatalogStore) ListItems(ctx context.Context, filter ItemFilter) ([]catalog.Item, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Range != nil {
		conditions = append(conditions, "id BETWEEN ? AND ?")
		args = append(args, filter.Range.First, filter.Range.Last)
	}
	if filter.Type != "" {
		conditions = append(conditions, hasTypeCondition)
		args = append(args, filter.Type)
	}

	query := "SELECT * FROM catalog_items"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id ASC"

	items := []catalog.Item{}
	err := s.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

func (s *CatalogStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, countCatalogItemsQuery)
	return n, err
}
