package errors

var (
	UnknownAddress        = NewError(100, "address has no ledger entry")
	InsufficientFunds     = NewError(101, "insufficient funds")
	StoreCorrupt          = NewError(102, "ledger snapshot can not be parsed")
	NoModule              = NewError(103, "no module to execute")
	InvalidInvocation     = NewError(104, "invalid invocation")
	ExecutionFailed       = NewError(105, "execution failed")
	OutOfBudget           = NewError(106, "operation budget exhausted")
	NoCallContext         = NewError(107, "call stack is empty")
	AccountAlreadyExists  = NewError(108, "account already exists")
	MaximumBalanceReached = NewError(109, "maximum balance reached")
	CallDepthExceeded     = NewError(110, "maximum call depth exceeded")
	DataNotFound          = NewError(111, "datastore entry not found")

	StorageCoreError           = NewError(200, "storage error")
	StorageRecordDoesNotExist  = NewError(201, "record does not exist in storage")
	StorageRecordAlreadyExists = NewError(202, "record already exists in storage")
)
