// Package metric exposes prometheus collectors for the analysis pipeline
package metric

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/raykavin/stocklens/pkg/core"
)

const namespace = "stocklens"

const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

var (
	analyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Analyses run, by outcome.",
	}, []string{"outcome"})

	fetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Time spent retrieving daily history.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	sessions = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "history_sessions",
		Help:      "Sessions retrieved per successful fetch.",
		Buckets:   []float64{25, 75, 150, 250, 500, 1000},
	})
)

// Outcome classifies the result of an analysis
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, core.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, core.ErrEmptyTicker):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// ObserveAnalysis counts one analysis by its outcome
func ObserveAnalysis(err error) {
	analyses.WithLabelValues(Outcome(err)).Inc()
}

// ObserveFetch records the latency of a history fetch and, on success, its size
func ObserveFetch(started time.Time, history core.History, err error) {
	fetchLatency.Observe(time.Since(started).Seconds())
	if err == nil {
		sessions.Observe(float64(len(history.Bars)))
	}
}
