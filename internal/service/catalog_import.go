package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"golang.org/x/sync/errgroup"
)

type ImportSummary struct {
	Imported int
	Missing  []int
	Failed   []int
}

// ImportCatalog copies every id in r from upstream into the catalog store.
// Ids upstream does not know are reported as missing; other per-id failures
// are logged and reported without stopping the import.
func ImportCatalog(ctx context.Context, upstream catalog.Provider, dst *store.CatalogStore, r catalog.IDRange, concurrency int) (*ImportSummary, error) {
	if r.First <= 0 || r.Last < r.First {
		return nil, fmt.Errorf("%w: bad id range %d..%d", worldcup.ErrInvalidFilter, r.First, r.Last)
	}

	var (
		mu      sync.Mutex
		summary ImportSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, concurrency))

	for id := r.First; id <= r.Last; id++ {
		g.Go(func() error {
			item, err := upstream.Get(gctx, id)
			if err == nil {
				err = dst.UpsertItem(gctx, item)
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				summary.Imported++
			case errors.Is(err, worldcup.ErrNotFound):
				summary.Missing = append(summary.Missing, id)
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				slog.Error("failed to import catalog item", "id", id, "error", err)
				summary.Failed = append(summary.Failed, id)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.Sort(summary.Missing)
	slices.Sort(summary.Failed)
	slog.Info("catalog import finished",
		"from", r.First, "to", r.Last,
		"imported", summary.Imported, "missing", len(summary.Missing), "failed", len(summary.Failed))
	return &summary, nil
}
