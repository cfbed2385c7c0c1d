package metrics

import (
	"sync"

	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var initOnce sync.Once

// InitPrometheusMetrics replaces the nop metrics with ones registered in the
// default prometheus registry. Only the first call has effect.
func InitPrometheusMetrics() {
	initOnce.Do(func() {
		Version = PromVersion()
		Run = PromRunMetrics()
		Ledger = PromLedgerMetrics()
	})
}

func WriteToTextfile(path string) error {
	return stdprometheus.WriteToTextfile(path, stdprometheus.DefaultGatherer)
}
