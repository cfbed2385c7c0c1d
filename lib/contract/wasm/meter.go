package wasm

import (
	"context"

	wazeroapi "github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"

	"boscoin.io/sctester/lib/contract/api"
	"boscoin.io/sctester/lib/errors"
)

// meter is the operation budget of one run, shared by nested calls.
type meter struct {
	budget    uint64
	remaining uint64
}

func newMeter(budget uint64) *meter {
	return &meter{budget: budget, remaining: budget}
}

// charge panics with `OutOfBudget` once the budget is exhausted; wazero turns
// the panic into the error of the running call.
func (m *meter) charge(cost uint64) {
	if m.remaining < cost {
		m.remaining = 0
		panic(errors.OutOfBudget.Clone().SetData("budget", m.budget))
	}

	m.remaining -= cost
}

func (m *meter) used() uint64 {
	return m.budget - m.remaining
}

// runState travels in the call context, so the compiled modules and the host
// module can be shared between runs.
type runState struct {
	ex    *Executor
	host  api.Interface
	meter *meter
	depth int
}

type runStateKey struct{}

func withRunState(ctx context.Context, state *runState) context.Context {
	return context.WithValue(ctx, runStateKey{}, state)
}

func getRunState(ctx context.Context) *runState {
	state, _ := ctx.Value(runStateKey{}).(*runState)
	return state
}

// meterListener charges one unit for every guest function entry.
type meterListener struct{}

func (meterListener) Before(ctx context.Context, _ wazeroapi.Module, _ wazeroapi.FunctionDefinition, _ []uint64, _ experimental.StackIterator) {
	if state := getRunState(ctx); state != nil {
		state.meter.charge(1)
	}
}

func (meterListener) After(context.Context, wazeroapi.Module, wazeroapi.FunctionDefinition, []uint64) {}

func (meterListener) Abort(context.Context, wazeroapi.Module, wazeroapi.FunctionDefinition, error) {}

var meterListenerFactory = experimental.FunctionListenerFactoryFunc(
	func(wazeroapi.FunctionDefinition) experimental.FunctionListener {
		return meterListener{}
	},
)
