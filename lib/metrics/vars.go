package metrics

var (
	Run    = NopRunMetrics()
	Ledger = NopLedgerMetrics()
)
