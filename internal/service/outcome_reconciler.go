package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/creature-cup/internal/metrics"
	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/go-co-op/gocron/v2"
)

const (
	DefaultReconcileGrace = time.Minute
	reconcileBatchSize    = 50
)

// OutcomeReconciler applies the statistics of recorded tournaments whose
// outcome was never applied, e.g. because the process stopped between
// recording and applying.
type OutcomeReconciler struct {
	results   *store.ResultStore
	stats     *StatisticsService
	metrics   *metrics.Metrics
	grace     time.Duration
	now       func() time.Time
	scheduler gocron.Scheduler
}

func NewOutcomeReconciler(results *store.ResultStore, stats *StatisticsService, m *metrics.Metrics, grace time.Duration) *OutcomeReconciler {
	return &OutcomeReconciler{
		results: results,
		stats:   stats,
		metrics: m,
		grace:   grace,
		now:     time.Now,
	}
}

// ReconcileOnce applies every pending outcome older than the grace period and
// returns how many it applied. Per-tournament failures are logged and left
// for the next run.
func (r *OutcomeReconciler) ReconcileOnce(ctx context.Context) (int, error) {
	pending, err := r.results.ListPending(ctx, r.now().Add(-r.grace), reconcileBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending outcomes: %w", err)
	}

	applied := 0
	for _, result := range pending {
		ok, err := r.stats.ApplyRecordedOutcome(ctx, result.TournamentID)
		if err != nil {
			slog.Error("failed to apply pending outcome", "tournament_id", result.TournamentID, "error", err)
			continue
		}
		if ok {
			applied++
		}
	}

	if applied > 0 {
		slog.Info("reconciled pending outcomes", "applied", applied, "pending", len(pending))
	}
	r.metrics.Reconciled(applied)
	return applied, nil
}

// Start runs ReconcileOnce every interval until Stop is called.
func (r *OutcomeReconciler) Start(interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := r.ReconcileOnce(context.Background()); err != nil {
				slog.Error("outcome reconciliation failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule reconciler: %w", err)
	}

	sched.Start()
	r.scheduler = sched
	slog.Info("outcome reconciler started", "interval", interval, "grace", r.grace)
	return nil
}

func (r *OutcomeReconciler) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	return r.scheduler.Shutdown()
}
