package service

import (
	"context"
	"slices"
	"testing"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectParticipants(t *testing.T) {
	db := setupTestDB(t)
	catalogStore := store.NewCatalogStore(db)
	seedCatalog(t, catalogStore, append(idRange(1, 10), idRange(152, 171)...)...)
	service := NewSelectionService(catalogStore, nil)
	ctx := context.Background()

	tests := []struct {
		name          string
		req           worldcup.TournamentRequest
		wantCount     int
		wantAvailable int
		wantShortfall bool
		check         func(t *testing.T, p worldcup.Participant)
	}{
		{
			name:          "generation shortfall",
			req:           worldcup.TournamentRequest{Generation: "1", Type: "all", ParticipantCount: 16},
			wantCount:     10,
			wantAvailable: 10,
			wantShortfall: true,
			check: func(t *testing.T, p worldcup.Participant) {
				assert.True(t, p.ID >= 1 && p.ID <= 151, "id %d outside generation 1", p.ID)
			},
		},
		{
			name:          "truncates to the request",
			req:           worldcup.TournamentRequest{Generation: "all", ParticipantCount: 8},
			wantCount:     8,
			wantAvailable: 30,
		},
		{
			name:          "localized type",
			req:           worldcup.TournamentRequest{Generation: "2", Type: "불꽃", ParticipantCount: 4},
			wantCount:     4,
			wantAvailable: 10,
			check: func(t *testing.T, p worldcup.Participant) {
				assert.Equal(t, []string{"fire"}, p.Types)
				assert.Equal(t, 2, p.Generation)
			},
		},
		{
			name:          "type ignores case",
			req:           worldcup.TournamentRequest{Type: "WATER", ParticipantCount: 64},
			wantCount:     15,
			wantAvailable: 15,
			wantShortfall: true,
		},
		{
			name:          "unknown generation number is unrestricted",
			req:           worldcup.TournamentRequest{Generation: "42", ParticipantCount: 30},
			wantCount:     30,
			wantAvailable: 30,
		},
		{
			name:          "empty pool",
			req:           worldcup.TournamentRequest{Generation: "3", ParticipantCount: 4},
			wantCount:     0,
			wantAvailable: 0,
			wantShortfall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selection, err := service.SelectParticipants(ctx, tt.req)
			require.NoError(t, err)

			assert.Len(t, selection.Participants, tt.wantCount)
			assert.Equal(t, tt.req.ParticipantCount, selection.Requested)
			assert.Equal(t, tt.wantAvailable, selection.Available)
			assert.Equal(t, tt.wantShortfall, selection.Shortfall)

			seen := map[int]bool{}
			for _, p := range selection.Participants {
				assert.False(t, seen[p.ID], "duplicate participant %d", p.ID)
				seen[p.ID] = true
				if tt.check != nil {
					tt.check(t, p)
				}
			}
		})
	}
}

func TestSelectParticipantsInvalidFilters(t *testing.T) {
	db := setupTestDB(t)
	service := NewSelectionService(store.NewCatalogStore(db), nil)
	ctx := context.Background()

	_, err := service.SelectParticipants(ctx, worldcup.TournamentRequest{ParticipantCount: 0})
	assert.ErrorIs(t, err, worldcup.ErrInvalidFilter)

	_, err = service.SelectParticipants(ctx, worldcup.TournamentRequest{Generation: "first", ParticipantCount: 4})
	assert.ErrorIs(t, err, worldcup.ErrInvalidFilter)
}

func TestSelectParticipantsUsesShuffleOrder(t *testing.T) {
	db := setupTestDB(t)
	catalogStore := store.NewCatalogStore(db)
	seedCatalog(t, catalogStore, idRange(1, 6)...)

	service := NewSelectionService(catalogStore, nil)
	service.shuffle = func(items []catalog.Item) { slices.Reverse(items) }

	selection, err := service.SelectParticipants(context.Background(), worldcup.TournamentRequest{ParticipantCount: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{6, 5, 4}, participantIDs(selection.Participants))
}
