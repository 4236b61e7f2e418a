package worldcup

import "strings"

// AllFilter is the wildcard value accepted by the generation and type filters.
const AllFilter = "all"

// IsWildcard reports whether a filter value places no restriction.
func IsWildcard(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AllFilter)
}

type TournamentRequest struct {
	Generation       string `json:"generation"`
	Type             string `json:"type"`
	ParticipantCount int    `json:"participantCount"`
}

// Selection is the outcome of a participant draw. Shortfall is set when the
// filtered pool held fewer items than were requested.
type Selection struct {
	Participants []Participant `json:"participants"`
	Requested    int           `json:"requested"`
	Available    int           `json:"available"`
	Shortfall    bool          `json:"shortfall"`
}

type SortKey string

const (
	SortByAverageRank         SortKey = "averageRank"
	SortByTotalWins           SortKey = "totalWins"
	SortByTotalTop3           SortKey = "totalTop3"
	SortByTotalParticipations SortKey = "totalParticipations"
)

// ParseSortKey accepts the known keys case-insensitively; empty means averageRank.
func ParseSortKey(s string) (SortKey, bool) {
	if strings.TrimSpace(s) == "" {
		return SortByAverageRank, true
	}
	for _, k := range []SortKey{SortByAverageRank, SortByTotalWins, SortByTotalTop3, SortByTotalParticipations} {
		if strings.EqualFold(s, string(k)) {
			return k, true
		}
	}
	return "", false
}

const (
	DefaultAutoParticipantCount = 16
	DefaultAutoTopCount         = 3
	DefaultAutoRandomCount      = 13
)

// AutoSelectionCriteria drives statistics-seeded tournament generation.
// Pointer fields distinguish "not sent" from an explicit zero or false.
type AutoSelectionCriteria struct {
	Title            string  `json:"title"`
	Generation       string  `json:"generation"`
	Type             string  `json:"type"`
	ParticipantCount int     `json:"participantCount"`
	TopCount         *int    `json:"topCount"`
	SortBy           SortKey `json:"sortBy"`
	IncludeRandom    *bool   `json:"includeRandom"`
	RandomCount      *int    `json:"randomCount"`
}

// WithDefaults fills unset fields with the documented defaults.
func (c AutoSelectionCriteria) WithDefaults() AutoSelectionCriteria {
	if c.ParticipantCount <= 0 {
		c.ParticipantCount = DefaultAutoParticipantCount
	}
	if c.TopCount == nil {
		n := DefaultAutoTopCount
		c.TopCount = &n
	}
	if c.SortBy == "" {
		c.SortBy = SortByAverageRank
	}
	if c.IncludeRandom == nil {
		b := true
		c.IncludeRandom = &b
	}
	if c.RandomCount == nil {
		n := DefaultAutoRandomCount
		c.RandomCount = &n
	}
	return c
}

// AutoSelection lists seeded participants first, then the random fill.
type AutoSelection struct {
	Participants []Participant `json:"participants"`
	Seeded       int           `json:"seeded"`
	Random       int           `json:"random"`
	Requested    int           `json:"requested"`
	Shortfall    bool          `json:"shortfall"`
}
