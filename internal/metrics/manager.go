package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterHandleRequestPanic prometheus.Counter
	CounterRateLimited        prometheus.Counter
	CounterExercisesChecked   prometheus.Counter
	CounterDaysCompleted      prometheus.Counter
	CounterSharesIssued       prometheus.Counter
	CounterSharesAccepted     prometheus.Counter
	CounterPlanExports        prometheus.Counter
	CounterNameCacheLookups   *prometheus.CounterVec

	// historgrams
	HistRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("grind", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("grind", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "route", "status"}),
		CounterHandleRequestPanic: counter("handle_request_panic", "The total number of serve request panics"),
		CounterRateLimited:        counter("rate_limited", "Requests rejected by the rate limiter"),
		CounterExercisesChecked:   counter("exercises_checked", "Exercises marked complete"),
		CounterDaysCompleted:      counter("days_completed", "Plan days finalized"),
		CounterSharesIssued:       counter("shares_issued", "Share tokens issued"),
		CounterSharesAccepted:     counter("shares_accepted", "Share tokens accepted and forked"),
		CounterPlanExports:        counter("plan_exports", "Plans exported to object storage"),
		CounterNameCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "name_cache_lookups",
			Help:      "Library name cache lookups by result",
		}, []string{"result"}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		}, []string{"route"}),
	}
}
