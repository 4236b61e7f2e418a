package worldcup

import "errors"

var (
	// ErrInvalidFilter is returned for malformed selection criteria.
	ErrInvalidFilter = errors.New("invalid selection filter")

	// ErrConflict is returned when a tournament id has already been recorded.
	ErrConflict = errors.New("tournament result already exists")

	// ErrNotFound covers missing tournaments and catalog items referenced by statistics.
	ErrNotFound = errors.New("requested resource not found")

	// ErrCorruption means a stored snapshot does not decode into its own invariants.
	ErrCorruption = errors.New("stored tournament result is corrupt")

	ErrInvalidRanking       = errors.New("invalid final ranking")
	ErrStatisticsContention = errors.New("statistics row is being updated concurrently")
)
