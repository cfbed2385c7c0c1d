package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type LedgerMetrics struct {
	Accounts      metrics.Gauge
	SnapshotBytes metrics.Gauge
}

func (l *LedgerMetrics) SetAccounts(num int) {
	l.Accounts.Set(float64(num))
}

func (l *LedgerMetrics) SetSnapshotBytes(size int) {
	l.SnapshotBytes.Set(float64(size))
}

func PromLedgerMetrics() *LedgerMetrics {
	return &LedgerMetrics{
		Accounts: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "accounts",
			Help:      "Number of accounts in the saved ledger.",
		}, []string{}),
		SnapshotBytes: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "snapshot_bytes",
			Help:      "Size of the saved ledger snapshot.",
		}, []string{}),
	}
}

func NopLedgerMetrics() *LedgerMetrics {
	return &LedgerMetrics{
		Accounts:      discard.NewGauge(),
		SnapshotBytes: discard.NewGauge(),
	}
}
