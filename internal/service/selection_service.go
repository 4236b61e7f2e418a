package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/metrics"
	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
)

type SelectionService struct {
	store   *store.CatalogStore
	filter  catalogFilter
	metrics *metrics.Metrics
	shuffle func([]catalog.Item)
}

func NewSelectionService(store *store.CatalogStore, m *metrics.Metrics) *SelectionService {
	return &SelectionService{
		store:   store,
		filter:  defaultCatalogFilter(),
		metrics: m,
		shuffle: shuffleItems,
	}
}

// SelectParticipants draws up to req.ParticipantCount distinct catalog items
// matching the filters, in random order. A pool smaller than the request is
// returned whole with Shortfall set.
func (s *SelectionService) SelectParticipants(ctx context.Context, req worldcup.TournamentRequest) (*worldcup.Selection, error) {
	if req.ParticipantCount <= 0 {
		return nil, fmt.Errorf("%w: participant count must be positive, got %d", worldcup.ErrInvalidFilter, req.ParticipantCount)
	}

	filter, err := s.filter.resolve(req.Generation, req.Type)
	if err != nil {
		return nil, err
	}

	pool, err := s.store.ListItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}

	s.shuffle(pool)
	picked := pool[:min(req.ParticipantCount, len(pool))]

	selection := &worldcup.Selection{
		Participants: make([]worldcup.Participant, 0, len(picked)),
		Requested:    req.ParticipantCount,
		Available:    len(pool),
		Shortfall:    len(pool) < req.ParticipantCount,
	}
	for _, item := range picked {
		selection.Participants = append(selection.Participants, item.Participant())
	}

	if selection.Shortfall {
		slog.Info("participant pool smaller than requested",
			"generation", req.Generation, "type", req.Type,
			"requested", req.ParticipantCount, "available", len(pool))
	}
	s.metrics.Selection(selection.Shortfall)
	return selection, nil
}

// shuffleItems is a Fisher-Yates shuffle.
func shuffleItems(items []catalog.Item) {
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
