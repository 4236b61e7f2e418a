package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
)

// Provider resolves a catalog id to its item. Implementations return an
// error wrapping worldcup.ErrNotFound for unknown ids.
type Provider interface {
	Get(ctx context.Context, id int) (*Item, error)
}

// Store is the persistent side of the read-through cache.
type Store interface {
	Provider
	UpsertItem(ctx context.Context, item *Item) error
}

// CachedProvider reads from the store first and falls back to the upstream
// catalog, saving whatever it fetched.
type CachedProvider struct {
	store    Store
	upstream Provider
}

func NewCachedProvider(store Store, upstream Provider) *CachedProvider {
	return &CachedProvider{store: store, upstream: upstream}
}

func (p *CachedProvider) Get(ctx context.Context, id int) (*Item, error) {
	item, err := p.store.Get(ctx, id)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, worldcup.ErrNotFound) || p.upstream == nil {
		return nil, err
	}

	slog.Info("catalog item not cached, fetching upstream", "id", id)
	item, err = p.upstream.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog item %d: %w", id, err)
	}

	if err := p.store.UpsertItem(context.WithoutCancel(ctx), item); err != nil {
		// The item is still usable for this request.
		slog.Warn("failed to cache catalog item", "id", id, "error", err)
	}
	return item, nil
}
