package worldcup

import "time"

const DefaultTournamentType = "vote"

// Conditions are the selection criteria a tournament was started with.
type Conditions struct {
	Generation       string   `json:"generation,omitempty"`
	Type             string   `json:"type,omitempty"`
	Types            []string `json:"types,omitempty"`
	ParticipantCount int      `json:"participantCount"`
	SelectionMethod  string   `json:"selectionMethod,omitempty"`
	SortBy           SortKey  `json:"sortBy,omitempty"`
}

// TournamentResult is the immutable snapshot of a completed tournament.
type TournamentResult struct {
	TournamentID   string         `json:"tournamentId"`
	Title          string         `json:"title"`
	TournamentType string         `json:"tournamentType"`
	Conditions     Conditions     `json:"conditions"`
	Participants   []Participant  `json:"participants"`
	FinalRanking   []RankingEntry `json:"finalRanking"`
	WinnerID       int            `json:"winnerId"`
	OutcomeApplied bool           `json:"outcomeApplied"`
	CreatedAt      time.Time      `json:"createdAt"`
	CompletedAt    time.Time      `json:"completedAt"`
}
