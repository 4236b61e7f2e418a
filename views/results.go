package views

import (
	"context"
	"io"

	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/a-h/templ"
)

const displayLocale = "ko"

func RecentResultsPage(results []worldcup.TournamentResult) templ.Component {
	return Layout("최근 월드컵 결과", RecentResults(results))
}

func RecentResults(results []worldcup.TournamentResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<h1>최근 월드컵 결과</h1>`)
		if len(results) == 0 {
			ew.printf(`<p class="empty">아직 기록된 월드컵이 없습니다.</p>`)
			return ew.err
		}

		ew.printf(`<ul class="results">`)
		for _, result := range results {
			ew.printf(`<li><a href="/api/worldcup/results/%s">%s</a>`,
				templ.EscapeString(result.TournamentID), templ.EscapeString(result.Title))
			ew.printf(` <span class="meta">%d명 · %s</span>`,
				len(result.Participants), result.CompletedAt.Format("2006-01-02 15:04"))
			if winner, ok := winnerEntry(result); ok {
				ew.printf(` <span class="winner">우승: %s</span>`,
					templ.EscapeString(displayName(winner.Name, winner.LocalizedName)))
			}
			ew.printf(`</li>`)
		}
		ew.printf(`</ul>`)
		return ew.err
	})
}

func winnerEntry(result worldcup.TournamentResult) (worldcup.RankingEntry, bool) {
	for _, entry := range result.FinalRanking {
		if entry.Rank == 1 {
			return entry, true
		}
	}
	return worldcup.RankingEntry{}, false
}
