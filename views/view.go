package views

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// Layout wraps body in the shared page chrome.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<!DOCTYPE html><html lang="ko"><head><meta charset="utf-8"><title>%s</title>`, templ.EscapeString(title))
		ew.printf(`<link rel="stylesheet" href="/static/style.css"></head><body>`)
		ew.printf(`<nav><a href="/">최근 결과</a> <a href="/leaderboard">통계</a></nav><main>`)
		if ew.err != nil {
			return ew.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		ew.printf(`</main></body></html>`)
		return ew.err
	})
}
