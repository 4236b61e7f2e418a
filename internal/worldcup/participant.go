package worldcup

import "fmt"

// Participant is a catalog item as it looked when it was picked for a tournament.
type Participant struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	LocalizedName string   `json:"localizedName"`
	Types         []string `json:"types"`
	ImageURL      string   `json:"spriteUrl"`
	Description   string   `json:"description,omitempty"`
	Generation    int      `json:"generation"`
}

// RankingEntry is one line of a finished tournament's final standings.
type RankingEntry struct {
	ItemID        int      `json:"pokemonId"`
	Rank          int      `json:"rank"`
	Name          string   `json:"pokemonName,omitempty"`
	LocalizedName string   `json:"pokemonKoreanName,omitempty"`
	ImageURL      string   `json:"spriteUrl,omitempty"`
	Types         []string `json:"types,omitempty"`
	Generation    int      `json:"generation,omitempty"`
	Wins          int      `json:"wins"`
	TotalMatches  int      `json:"totalMatches"`
	WinRate       int      `json:"winRate"`
}

// ValidateRanking checks that ranks run 1..N without gaps or ties and that
// the rank 1 entry, if present, is the winner.
func ValidateRanking(winnerID int, ranking []RankingEntry) error {
	seen := make(map[int]bool, len(ranking))
	items := make(map[int]bool, len(ranking))
	for _, entry := range ranking {
		if items[entry.ItemID] {
			return fmt.Errorf("%w: item %d ranked twice", ErrInvalidRanking, entry.ItemID)
		}
		items[entry.ItemID] = true

		if entry.Rank < 1 || entry.Rank > len(ranking) {
			return fmt.Errorf("%w: rank %d out of range 1..%d", ErrInvalidRanking, entry.Rank, len(ranking))
		}
		if seen[entry.Rank] {
			return fmt.Errorf("%w: rank %d assigned twice", ErrInvalidRanking, entry.Rank)
		}
		seen[entry.Rank] = true

		if entry.Rank == 1 && entry.ItemID != winnerID {
			return fmt.Errorf("%w: rank 1 is %d but winner is %d", ErrInvalidRanking, entry.ItemID, winnerID)
		}
	}
	return nil
}
