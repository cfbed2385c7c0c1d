package runner

import (
	"context"
	"io/ioutil"
	"os"
	"time"

	logging "github.com/inconshreveable/log15"
	pkgerrors "github.com/pkg/errors"

	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/contract"
	"boscoin.io/sctester/lib/contract/api"
	"boscoin.io/sctester/lib/errors"
	"boscoin.io/sctester/lib/ledger"
	"boscoin.io/sctester/lib/metrics"
)

type ExecutorFactory func(ctx context.Context, codeType contract.CodeType) (contract.Executor, error)

type Result struct {
	RunID     string
	CodeType  contract.CodeType
	Remaining uint64
	Events    []api.Event
}

func (r *Result) Used(budget uint64) uint64 {
	return budget - r.Remaining
}

// Runner drives one invocation: it loads the ledger, resolves the module,
// hands the host interface to an executor and saves the ledger when the run
// succeeds.
type Runner struct {
	config      common.Config
	newExecutor ExecutorFactory
	log         logging.Logger
}

func NewRunner(config common.Config) *Runner {
	r := &Runner{
		config: config,
		log:    log,
	}
	r.newExecutor = func(ctx context.Context, codeType contract.CodeType) (contract.Executor, error) {
		return contract.NewExecutor(ctx, codeType, contract.NewConfig())
	}

	return r
}

func (r *Runner) SetExecutorFactory(f ExecutorFactory) {
	r.newExecutor = f
}

func (r *Runner) Config() common.Config {
	return r.config
}

func (r *Runner) readModule(path string) ([]byte, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidInvocation.Wrap(pkgerrors.Wrapf(err, "failed to read module file %q", path))
	}

	return b, nil
}

func (r *Runner) Run(ctx context.Context, req Request) (result *Result, err error) {
	if err = req.Validate(); err != nil {
		return
	}

	var module []byte
	if len(req.File()) > 0 {
		if module, err = r.readModule(req.File()); err != nil {
			return
		}
	}

	store, err := ledger.Load(r.config.Ledger)
	if err != nil {
		return
	}
	defer store.Close()

	runID := common.GenerateUUID()
	host := api.NewAPI(store, runID)
	rlog := r.log.New(logging.Ctx{"run": runID})

	if len(req.Address()) > 0 {
		if module, err = host.GetBytecode(req.Address()); err != nil {
			return
		}
	}

	host.ResetAddresses()
	if caller, found := req.Caller(); found {
		host.PushCall(caller)
	}

	codeType := contract.DetectCodeType(module)
	rlog.Debug(
		"starting run",
		"file", req.File(),
		"address", req.Address(),
		"type", codeType,
		"budget", r.config.Budget,
	)

	ex, err := r.newExecutor(ctx, codeType)
	if err != nil {
		return
	}
	defer ex.Close(context.Background())

	started := time.Now()

	var remaining uint64
	if function, param, found := req.Function(); found {
		remaining, err = ex.RunFunction(ctx, module, r.config.Budget, function, param, host)
	} else {
		remaining, err = ex.RunMain(ctx, module, r.config.Budget, host)
	}
	metrics.Run.Observe(codeType.String(), r.config.Budget-remaining, started, err)

	if err != nil {
		rlog.Error("run failed; ledger is not saved", "error", err)
		return
	}

	// an interrupted run is not saved even when the executor finished
	if err = ctx.Err(); err != nil {
		return
	}

	if err = host.Save(); err != nil {
		return
	}

	if accounts, aerr := store.Accounts(); aerr == nil {
		metrics.Ledger.SetAccounts(len(accounts))
	}
	if fi, serr := os.Stat(store.Path()); serr == nil {
		metrics.Ledger.SetSnapshotBytes(int(fi.Size()))
	}

	rlog.Debug("run done", "remaining", remaining)

	result = &Result{
		RunID:     runID,
		CodeType:  codeType,
		Remaining: remaining,
		Events:    host.Events(),
	}

	return
}
