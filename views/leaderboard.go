package views

import (
	"context"
	"io"

	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/a-h/templ"
)

func LeaderboardPage(entries []worldcup.StatisticsEntry) templ.Component {
	return Layout("통계", Leaderboard(entries))
}

func Leaderboard(entries []worldcup.StatisticsEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<h1>통계</h1><table class="leaderboard"><thead><tr>`)
		ew.printf(`<th>#</th><th>이름</th><th>타입</th><th>참가</th><th>우승</th><th>TOP 3</th><th>평균 순위</th><th>승률</th>`)
		ew.printf(`</tr></thead><tbody>`)
		for i, e := range entries {
			ew.printf(`<tr><td>%d</td>`, i+1)
			if e.ImageURL != "" {
				ew.printf(`<td><img src="%s" alt="" width="32" height="32"> %s</td>`,
					templ.EscapeString(e.ImageURL), templ.EscapeString(displayName(e.Name, e.LocalizedName)))
			} else {
				ew.printf(`<td>%s</td>`, templ.EscapeString(displayName(e.Name, e.LocalizedName)))
			}
			ew.printf(`<td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d%%</td></tr>`,
				typeLabels(e.Types, displayLocale), e.TotalParticipations, e.TotalWins, e.TotalTop3, e.AverageRank, e.WinRate)
		}
		ew.printf(`</tbody></table>`)
		return ew.err
	})
}
