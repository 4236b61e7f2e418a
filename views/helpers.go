package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/a-h/templ"
)

// errWriter keeps the first write error so markup can be emitted without
// checking every call.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func displayName(name, localized string) string {
	if localized != "" {
		return localized
	}
	return name
}

func typeLabels(types []string, locale string) string {
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = catalog.Types().Localize(t, locale)
	}
	return templ.EscapeString(strings.Join(labels, " / "))
}
