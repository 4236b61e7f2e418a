package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/db"
	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to open test DB")
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "file://../../migrations"), "Failed to apply migrations")
	return database
}

// seedCatalog stores one item per id. Even ids are fire type, odd ids water.
func seedCatalog(t *testing.T, s *store.CatalogStore, ids ...int) {
	t.Helper()
	for _, id := range ids {
		tag := "water"
		if id%2 == 0 {
			tag = "fire"
		}
		item := &catalog.Item{
			ID:            id,
			Name:          gofakeit.Word(),
			LocalizedName: gofakeit.Name(),
			Generation:    catalog.Generations().GenerationOf(id),
			Types:         catalog.TypeTags{tag},
			ImageURL:      gofakeit.URL(),
			UpdatedAt:     time.Now().UTC(),
		}
		require.NoError(t, s.UpsertItem(context.Background(), item))
	}
}

func idRange(first, last int) []int {
	ids := make([]int, 0, last-first+1)
	for id := first; id <= last; id++ {
		ids = append(ids, id)
	}
	return ids
}

// ranking places ids in the given order, first id winning.
func ranking(ids ...int) []worldcup.RankingEntry {
	out := make([]worldcup.RankingEntry, len(ids))
	for i, id := range ids {
		out[i] = worldcup.RankingEntry{ItemID: id, Rank: i + 1}
	}
	return out
}

func participantIDs(ps []worldcup.Participant) []int {
	ids := make([]int, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}
