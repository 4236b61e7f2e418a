package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/catalog/pokeapi"
	"github.com/AdamBeresnev/creature-cup/internal/config"
	"github.com/AdamBeresnev/creature-cup/internal/db"
	"github.com/AdamBeresnev/creature-cup/internal/metrics"
	"github.com/AdamBeresnev/creature-cup/internal/service"
	"github.com/AdamBeresnev/creature-cup/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database := db.InitDB(cfg.DatabasePath)
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	var names *catalog.NameTable
	if cfg.CatalogNamesFile != "" {
		names, err = catalog.LoadNameTable(cfg.CatalogNamesFile)
		if err != nil {
			log.Fatal("Failed to load catalog names:", err)
		}
	}

	m := metrics.New()
	catalogStore := store.NewCatalogStore(database)
	resultStore := store.NewResultStore(database)
	statisticsStore := store.NewStatisticsStore(database)

	upstream := pokeapi.NewClient(cfg.PokeAPIBaseURL,
		pokeapi.WithRateLimit(cfg.PokeAPIRatePerSecond),
		pokeapi.WithNameTable(names),
		pokeapi.WithLocale(cfg.CatalogLocale),
	)
	provider := catalog.NewCachedProvider(catalogStore, upstream)
	statistics := service.NewStatisticsService(database, statisticsStore, resultStore, m)

	app := &application{
		selection:  service.NewSelectionService(catalogStore, m),
		results:    service.NewResultService(database, resultStore, m),
		statistics: statistics,
		auto:       service.NewAutoTournamentService(statisticsStore, catalogStore, provider, m),
		catalog:    provider,
		metrics:    m,
	}

	reconciler := service.NewOutcomeReconciler(resultStore, statistics, m, service.DefaultReconcileGrace)
	if err := reconciler.Start(cfg.ReconcileInterval); err != nil {
		log.Fatal("Failed to start reconciler:", err)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := reconciler.Stop(); err != nil {
		slog.Error("reconciler shutdown failed", "error", err)
	}
}
