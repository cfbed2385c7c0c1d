package metrics

import (
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type RunMetrics struct {
	RunsTotal       metrics.Counter
	BudgetUsed      metrics.Histogram
	DurationSeconds metrics.Histogram
}

// Observe records one finished run of a module of `codeType`.
func (r *RunMetrics) Observe(codeType string, used uint64, started time.Time, err error) {
	status := RunSucceeded
	if err != nil {
		status = RunFailed
	}

	r.RunsTotal.With("type", codeType, "status", status).Add(1)
	r.DurationSeconds.With("type", codeType, "status", status).Observe(time.Since(started).Seconds())
	if err == nil {
		r.BudgetUsed.With("type", codeType).Observe(float64(used))
	}
}

func PromRunMetrics() *RunMetrics {
	return &RunMetrics{
		RunsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RunSubsystem,
			Name:      "runs_total",
			Help:      "Total number of runs.",
		}, []string{"type", "status"}),
		BudgetUsed: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: RunSubsystem,
			Name:      "budget_used",
			Help:      "Operation budget used by successful runs.",
		}, []string{"type"}),
		DurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: RunSubsystem,
			Name:      "duration_seconds",
		}, []string{"type", "status"}),
	}
}

func NopRunMetrics() *RunMetrics {
	return &RunMetrics{
		RunsTotal:       discard.NewCounter(),
		BudgetUsed:      discard.NewHistogram(),
		DurationSeconds: discard.NewHistogram(),
	}
}
