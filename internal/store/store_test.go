package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/db"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a file-backed SQLite database in a temp dir and applies
// migrations. Each connection to file::memory: would see its own empty database.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to open test DB")
	t.Cleanup(func() { database.Close() })

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func fakeItem(id int, types ...string) *catalog.Item {
	return &catalog.Item{
		ID:            id,
		Name:          gofakeit.Word(),
		LocalizedName: gofakeit.Name(),
		Generation:    catalog.Generations().GenerationOf(id),
		Types:         types,
		ImageURL:      gofakeit.URL(),
		Description:   gofakeit.Word(),
		UpdatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

func seedItems(t *testing.T, s *CatalogStore, items ...*catalog.Item) {
	t.Helper()
	for _, item := range items {
		require.NoError(t, s.UpsertItem(context.Background(), item))
	}
}
