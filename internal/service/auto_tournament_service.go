package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/metrics"
	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/AdamBeresnev/creature-cup/internal/utils"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"golang.org/x/sync/errgroup"
)

const seedLookupConcurrency = 4

type AutoTournamentService struct {
	stats    *store.StatisticsStore
	catalog  *store.CatalogStore
	provider catalog.Provider
	filter   catalogFilter
	metrics  *metrics.Metrics
	shuffle  func([]catalog.Item)
}

func NewAutoTournamentService(stats *store.StatisticsStore, catalogStore *store.CatalogStore, provider catalog.Provider, m *metrics.Metrics) *AutoTournamentService {
	return &AutoTournamentService{
		stats:    stats,
		catalog:  catalogStore,
		provider: provider,
		filter:   defaultCatalogFilter(),
		metrics:  m,
		shuffle:  shuffleItems,
	}
}

// Generate assembles a tournament from the best performers under the
// criteria's filters, then tops it up with a random draw from the same
// filtered catalog.
func (s *AutoTournamentService) Generate(ctx context.Context, criteria worldcup.AutoSelectionCriteria) (*worldcup.AutoSelection, error) {
	c := criteria.WithDefaults()
	topCount, randomCount, includeRandom := utils.OrZero(c.TopCount), utils.OrZero(c.RandomCount), utils.OrZero(c.IncludeRandom)
	if topCount < 0 || randomCount < 0 {
		return nil, fmt.Errorf("%w: top and random counts must not be negative", worldcup.ErrInvalidFilter)
	}
	sortBy, ok := worldcup.ParseSortKey(string(c.SortBy))
	if !ok || sortBy == worldcup.SortByTotalParticipations {
		return nil, fmt.Errorf("%w: unknown sort key %q", worldcup.ErrInvalidFilter, c.SortBy)
	}

	filter, err := s.filter.resolve(c.Generation, c.Type)
	if err != nil {
		return nil, err
	}

	seedTarget := min(topCount, c.ParticipantCount)
	seeded, err := s.seeded(ctx, filter, sortBy, seedTarget)
	if err != nil {
		return nil, err
	}

	var random []worldcup.Participant
	if includeRandom {
		random, err = s.randomFill(ctx, filter, seeded, min(c.ParticipantCount-len(seeded), randomCount))
		if err != nil {
			return nil, err
		}
	}

	requested := seedTarget
	if includeRandom {
		requested += min(c.ParticipantCount-seedTarget, randomCount)
	}

	selection := &worldcup.AutoSelection{
		Participants: append(seeded, random...),
		Seeded:       len(seeded),
		Random:       len(random),
		Requested:    requested,
	}
	selection.Shortfall = len(selection.Participants) < requested

	slog.Info("auto tournament generated",
		"title", c.Title, "sort_by", sortBy,
		"seeded", selection.Seeded, "random", selection.Random, "shortfall", selection.Shortfall)
	s.metrics.AutoTournament()
	return selection, nil
}

// seeded resolves the top n statistics rows to catalog participants. Any id
// the catalog cannot resolve fails the whole generation.
func (s *AutoTournamentService) seeded(ctx context.Context, filter store.ItemFilter, sortBy worldcup.SortKey, n int) ([]worldcup.Participant, error) {
	if n <= 0 {
		return []worldcup.Participant{}, nil
	}

	entries, err := s.stats.Query(ctx, store.StatisticsFilter{
		Range:  filter.Range,
		Type:   filter.Type,
		SortBy: sortBy,
		Limit:  n,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}

	participants := make([]worldcup.Participant, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seedLookupConcurrency)
	for i, entry := range entries {
		g.Go(func() error {
			item, err := s.provider.Get(gctx, entry.ItemID)
			if err != nil {
				return fmt.Errorf("failed to resolve seeded item %d: %w", entry.ItemID, err)
			}
			participants[i] = item.Participant()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (s *AutoTournamentService) randomFill(ctx context.Context, filter store.ItemFilter, seeded []worldcup.Participant, n int) ([]worldcup.Participant, error) {
	if n <= 0 {
		return []worldcup.Participant{}, nil
	}

	pool, err := s.catalog.ListItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}

	taken := make(map[int]bool, len(seeded))
	for _, p := range seeded {
		taken[p.ID] = true
	}
	candidates := pool[:0]
	for _, item := range pool {
		if !taken[item.ID] {
			candidates = append(candidates, item)
		}
	}

	s.shuffle(candidates)
	picked := candidates[:min(n, len(candidates))]

	out := make([]worldcup.Participant, 0, len(picked))
	for _, item := range picked {
		out = append(out, item.Participant())
	}
	return out, nil
}
