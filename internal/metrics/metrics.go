package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "creature_cup"

// Metrics holds the service collectors. A nil *Metrics is valid and records
// nothing, which keeps tests free of registry setup.
type Metrics struct {
	registry *prometheus.Registry

	selections         *prometheus.CounterVec
	resultsRecorded    prometheus.Counter
	outcomesApplied    *prometheus.CounterVec
	statisticsRetries  prometheus.Counter
	autoTournaments    prometheus.Counter
	reconciledOutcomes prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Participant draws, labelled by whether the pool fell short.",
		}, []string{"shortfall"}),
		resultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_recorded_total",
			Help:      "Tournament results stored.",
		}),
		outcomesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_applied_total",
			Help:      "Tournament outcomes folded into item statistics.",
		}, []string{"source"}),
		statisticsRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statistics_update_retries_total",
			Help:      "Statistics row updates retried after losing a version race.",
		}),
		autoTournaments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_tournaments_total",
			Help:      "Statistics-seeded tournaments generated.",
		}),
		reconciledOutcomes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciled_outcomes_total",
			Help:      "Pending outcomes applied by the reconciler.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.selections,
		m.resultsRecorded,
		m.outcomesApplied,
		m.statisticsRetries,
		m.autoTournaments,
		m.reconciledOutcomes,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Selection(shortfall bool) {
	if m == nil {
		return
	}
	label := "false"
	if shortfall {
		label = "true"
	}
	m.selections.WithLabelValues(label).Inc()
}

func (m *Metrics) ResultRecorded() {
	if m != nil {
		m.resultsRecorded.Inc()
	}
}

// OutcomeApplied counts an outcome by source: "direct" or "recorded".
func (m *Metrics) OutcomeApplied(source string) {
	if m != nil {
		m.outcomesApplied.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) StatisticsRetry() {
	if m != nil {
		m.statisticsRetries.Inc()
	}
}

func (m *Metrics) AutoTournament() {
	if m != nil {
		m.autoTournaments.Inc()
	}
}

func (m *Metrics) Reconciled(n int) {
	if m != nil {
		m.reconciledOutcomes.Add(float64(n))
	}
}
