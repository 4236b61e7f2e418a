package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/AdamBeresnev/creature-cup/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPokeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 1, "name": "bulbasaur", "types": [{"slot": 1, "type": {"name": "grass"}}, {"slot": 2, "type": {"name": "poison"}}]}`))
	})
	mux.HandleFunc("/pokemon-species/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"names": [{"name": "이상해씨", "language": {"name": "ko"}}]}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runCLI(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp(cfg)
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"catalog", "--db", cfg.DatabasePath}, args...))
	return out.String(), err
}

func TestCatalogCommands(t *testing.T) {
	server := newTestPokeAPI(t)
	cfg := &config.Config{
		DatabasePath:   filepath.Join(t.TempDir(), "catalog.db"),
		MigrationsPath: "file://../../migrations",
		PokeAPIBaseURL: server.URL,
		CatalogLocale:  "ko",
	}

	out, err := runCLI(t, cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations applied.")

	out, err = runCLI(t, cfg, "fetch", "--from", "1", "--to", "2", "--concurrency", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 items, 1 missing, 0 failed")
	assert.Contains(t, out, "Catalog now holds 1 items")

	out, err = runCLI(t, cfg, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "bulbasaur"`)
	assert.Contains(t, out, `"localizedName": "이상해씨"`)

	_, err = runCLI(t, cfg, "show", "2")
	assert.Error(t, err)

	_, err = runCLI(t, cfg, "show", "abc")
	assert.Error(t, err)
}
