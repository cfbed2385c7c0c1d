package metrics

const (
	Namespace       = "sctester"
	RunSubsystem    = "run"
	LedgerSubsystem = "ledger"
)

const (
	RunSucceeded = "success"
	RunFailed    = "failure"
)
