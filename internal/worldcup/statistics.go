package worldcup

import (
	"sort"
	"time"
)

type ItemStatistics struct {
	ItemID              int       `db:"item_id" json:"pokemonId"`
	TotalParticipations int       `db:"total_participations" json:"totalParticipations"`
	TotalWins           int       `db:"total_wins" json:"totalWins"`
	TotalTop3           int       `db:"total_top3" json:"totalTop3"`
	AverageRank         int       `db:"average_rank" json:"averageRank"`
	Version             int       `db:"version" json:"-"`
	LastUpdated         time.Time `db:"last_updated" json:"lastUpdated"`
}

// Record folds one finishing rank into the running counters. The average is
// kept as a truncated running mean so no rank history is needed.
func (s *ItemStatistics) Record(rank int, at time.Time) {
	s.TotalParticipations++
	if rank == 1 {
		s.TotalWins++
	}
	if rank <= 3 {
		s.TotalTop3++
	}

	n := s.TotalParticipations
	s.AverageRank = (s.AverageRank*(n-1) + rank) / n
	s.LastUpdated = at
}

// WinRate is the share of participations that ended in a win, 0-100.
func (s ItemStatistics) WinRate() int {
	if s.TotalParticipations == 0 {
		return 0
	}
	return s.TotalWins * 100 / s.TotalParticipations
}

func (s ItemStatistics) Top3Rate() int {
	if s.TotalParticipations == 0 {
		return 0
	}
	return s.TotalTop3 * 100 / s.TotalParticipations
}

// OutcomeUpdates returns the per-item ranks an outcome contributes: the winner
// at rank 1 and every ranking entry placed in the top three, each item once,
// ordered by item id.
func OutcomeUpdates(winnerID int, ranking []RankingEntry) []RankUpdate {
	ranks := map[int]int{winnerID: 1}
	for _, entry := range ranking {
		if entry.Rank > 3 || entry.ItemID == winnerID {
			continue
		}
		ranks[entry.ItemID] = entry.Rank
	}

	updates := make([]RankUpdate, 0, len(ranks))
	for id, rank := range ranks {
		updates = append(updates, RankUpdate{ItemID: id, Rank: rank})
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].ItemID < updates[j].ItemID })
	return updates
}

type RankUpdate struct {
	ItemID int
	Rank   int
}

// StatisticsEntry is a statistics row joined with the catalog item it belongs to.
type StatisticsEntry struct {
	ItemStatistics
	Name          string   `json:"pokemonName"`
	LocalizedName string   `json:"pokemonKoreanName"`
	ImageURL      string   `json:"spriteUrl"`
	Types         []string `json:"types"`
	Generation    int      `json:"generation"`
	WinRate       int      `json:"winRate"`
	Top3Rate      int      `json:"top3Rate"`
}

type StatisticsQuery struct {
	Generation string
	Type       string
	SortBy     SortKey
	Limit      int
}
