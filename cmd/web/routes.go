package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/httputil"
	"github.com/AdamBeresnev/creature-cup/internal/metrics"
	"github.com/AdamBeresnev/creature-cup/internal/service"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
	"github.com/AdamBeresnev/creature-cup/views"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type application struct {
	selection  *service.SelectionService
	results    *service.ResultService
	statistics *service.StatisticsService
	auto       *service.AutoTournamentService
	catalog    catalog.Provider
	metrics    *metrics.Metrics
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	r.Handle("/metrics", app.metrics.Handler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		results, err := app.results.ListRecent(r.Context(), service.DefaultRecentLimit)
		if err != nil {
			httputil.InternalServerError(w, "Failed to list recent results", err)
			return
		}
		views.Render(w, r, views.RecentResultsPage(results))
	})

	r.Get("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		entries, err := app.statistics.Leaderboard(r.Context(), worldcup.StatisticsQuery{
			SortBy: worldcup.SortKey(r.URL.Query().Get("sort")),
			Limit:  service.MaxListLimit,
		})
		if err != nil {
			httputil.Error(w, "Failed to load leaderboard", err)
			return
		}
		views.Render(w, r, views.LeaderboardPage(entries))
	})

	r.Route("/api/worldcup", func(r chi.Router) {
		r.Post("/participants", func(w http.ResponseWriter, r *http.Request) {
			var req worldcup.TournamentRequest
			if err := httputil.DecodeJSON(r, &req); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}

			selection, err := app.selection.SelectParticipants(r.Context(), req)
			if err != nil {
				httputil.Error(w, "Failed to select participants", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, selection)
		})

		r.Post("/results", func(w http.ResponseWriter, r *http.Request) {
			var input worldcup.TournamentResult
			if err := httputil.DecodeJSON(r, &input); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}

			result, err := app.results.Record(r.Context(), &input)
			if err != nil {
				httputil.Error(w, "Failed to record tournament", err)
				return
			}

			// The snapshot is stored either way; the reconciler picks up
			// outcomes that could not be applied here.
			if applied, err := app.statistics.ApplyRecordedOutcome(r.Context(), result.TournamentID); err != nil {
				slog.Error("failed to apply tournament outcome", "tournament_id", result.TournamentID, "error", err)
			} else {
				result.OutcomeApplied = applied
			}
			httputil.WriteJSON(w, http.StatusCreated, result)
		})

		r.Get("/results/recent", func(w http.ResponseWriter, r *http.Request) {
			limit, err := queryInt(r, "limit")
			if err != nil {
				httputil.BadRequest(w, "Invalid limit", err)
				return
			}

			results, err := app.results.ListRecent(r.Context(), limit)
			if err != nil {
				httputil.Error(w, "Failed to list recent results", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, results)
		})

		r.Get("/results/winner/{itemId}", func(w http.ResponseWriter, r *http.Request) {
			itemID, err := strconv.Atoi(chi.URLParam(r, "itemId"))
			if err != nil {
				httputil.BadRequest(w, "Invalid item ID", err)
				return
			}
			limit, err := queryInt(r, "limit")
			if err != nil {
				httputil.BadRequest(w, "Invalid limit", err)
				return
			}

			results, err := app.results.ListByWinner(r.Context(), itemID, limit)
			if err != nil {
				httputil.Error(w, "Failed to list results", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, results)
		})

		r.Get("/results/{tournamentId}", func(w http.ResponseWriter, r *http.Request) {
			result, err := app.results.Get(r.Context(), chi.URLParam(r, "tournamentId"))
			if err != nil {
				httputil.Error(w, "Failed to get tournament result", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, result)
		})

		r.Post("/results/{tournamentId}/apply", func(w http.ResponseWriter, r *http.Request) {
			applied, err := app.statistics.ApplyRecordedOutcome(r.Context(), chi.URLParam(r, "tournamentId"))
			if err != nil {
				httputil.Error(w, "Failed to apply tournament outcome", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, map[string]bool{"applied": applied})
		})

		statistics := func(w http.ResponseWriter, r *http.Request) {
			limit, err := queryInt(r, "limit")
			if err != nil {
				httputil.BadRequest(w, "Invalid limit", err)
				return
			}

			entries, err := app.statistics.Leaderboard(r.Context(), worldcup.StatisticsQuery{
				Generation: chi.URLParam(r, "generation"),
				Type:       chi.URLParam(r, "type"),
				SortBy:     worldcup.SortKey(r.URL.Query().Get("sort")),
				Limit:      limit,
			})
			if err != nil {
				httputil.Error(w, "Failed to load statistics", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, entries)
		}
		r.Get("/statistics", statistics)
		r.Get("/statistics/generation/{generation}", statistics)
		r.Get("/statistics/type/{type}", statistics)
		r.Get("/statistics/generation/{generation}/type/{type}", statistics)

		r.Post("/auto", func(w http.ResponseWriter, r *http.Request) {
			var criteria worldcup.AutoSelectionCriteria
			if err := httputil.DecodeJSON(r, &criteria); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}

			selection, err := app.auto.Generate(r.Context(), criteria)
			if err != nil {
				httputil.Error(w, "Failed to generate tournament", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, selection)
		})

		r.Get("/catalog/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.Atoi(chi.URLParam(r, "id"))
			if err != nil || id <= 0 {
				httputil.BadRequest(w, "Invalid catalog ID", err)
				return
			}

			item, err := app.catalog.Get(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get catalog item", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, item)
		})
	})

	return r
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
