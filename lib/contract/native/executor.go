package native

import (
	"context"

	"boscoin.io/sctester/lib/contract/api"
	"boscoin.io/sctester/lib/errors"
)

// CallCost is charged for every native function call.
const CallCost uint64 = 100

type ExecFunc func(ex *NativeExecutor, host api.Interface, param string) error

// NativeExecutor runs contracts written in Go and registered with
// `AddContract`.
type NativeExecutor struct {
	execFuncs map[string]ExecFunc
}

func NewNativeExecutor() *NativeExecutor {
	return &NativeExecutor{}
}

func (ex *NativeExecutor) RegisterFunc(name string, f ExecFunc) {
	ex.execFuncs[name] = f
}

func (ex *NativeExecutor) loadFuncs(name string) {
	ex.execFuncs = map[string]ExecFunc{}
	if r, ok := contracts[name]; ok {
		r(ex)
	}
}

func (ex *NativeExecutor) RunMain(ctx context.Context, module []byte, budget uint64, host api.Interface) (uint64, error) {
	return ex.RunFunction(ctx, module, budget, "main", "", host)
}

func (ex *NativeExecutor) RunFunction(ctx context.Context, module []byte, budget uint64, function, param string, host api.Interface) (uint64, error) {
	name, ok := ContractName(module)
	if !ok || !HasContract(name) {
		return 0, errors.NoModule.Clone().SetData("contract", name)
	}

	if err := ctx.Err(); err != nil {
		return 0, errors.ExecutionFailed.Wrap(err)
	}
	if budget < CallCost {
		return 0, errors.OutOfBudget.Clone().SetData("budget", budget)
	}

	ex.loadFuncs(name)
	f, found := ex.execFuncs[function]
	if !found {
		return 0, errors.ExecutionFailed.Clone().SetData("contract", name).SetData("function", function)
	}

	if err := f(ex, host, param); err != nil {
		return 0, errors.ExecutionFailed.Wrap(err).SetData("contract", name).SetData("function", function)
	}

	return budget - CallCost, nil
}

func (ex *NativeExecutor) Close(context.Context) error {
	return nil
}
