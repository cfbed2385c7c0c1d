package wasm

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	wazeroapi "github.com/tetratelabs/wazero/api"

	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/contract/callstack"
	"boscoin.io/sctester/lib/errors"
)

var hostFunctions = map[string]interface{}{
	"print":                hostPrint,
	"generate_event":       hostGenerateEvent,
	"get_data":             hostGetData,
	"set_data":             hostSetData,
	"has_data":             hostHasData,
	"delete_data":          hostDeleteData,
	"get_data_for":         hostGetDataFor,
	"set_data_for":         hostSetDataFor,
	"has_data_for":         hostHasDataFor,
	"get_balance":          hostGetBalance,
	"get_balance_for":      hostGetBalanceFor,
	"transfer_coins":       hostTransferCoins,
	"get_call_coins":       hostGetCallCoins,
	"get_caller":           hostGetCaller,
	"get_call_stack_depth": hostGetCallStackDepth,
	"set_bytecode":         hostSetBytecode,
	"create_module":        hostCreateModule,
	"call":                 hostCall,
}

func instantiateHostModule(ctx context.Context, runtime wazero.Runtime) error {
	builder := runtime.NewHostModuleBuilder(HostModuleName)
	for name, fn := range hostFunctions {
		builder.NewFunctionBuilder().WithFunc(fn).Export(name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return err
	}

	// modules built with AssemblyScript import `env.abort`
	_, err := runtime.NewHostModuleBuilder("env").
		NewFunctionBuilder().WithFunc(envAbort).Export("abort").
		Instantiate(ctx)

	return err
}

// Host functions report failures by panicking with the error; wazero returns
// it from the guest call.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

func hostState(ctx context.Context) *runState {
	state := getRunState(ctx)
	if state == nil {
		panic(errors.ExecutionFailed.Clone().SetData("host", "called outside of a run"))
	}
	state.meter.charge(state.ex.config.HostCallCost)

	return state
}

func mustRead(mod wazeroapi.Module, ptr, size uint32) []byte {
	b, err := readBytes(mod, ptr, size)
	must(err)

	return b
}

func mustWrite(ctx context.Context, mod wazeroapi.Module, b []byte) uint64 {
	ptr, err := writeBytes(ctx, mod, b)
	must(err)

	return packBytes(ptr, len(b))
}

func boolToI32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func hostPrint(ctx context.Context, mod wazeroapi.Module, ptr, size uint32) {
	s := hostState(ctx)
	s.host.Print(string(mustRead(mod, ptr, size)))
}

func hostGenerateEvent(ctx context.Context, mod wazeroapi.Module, ptr, size uint32) {
	s := hostState(ctx)
	s.host.GenerateEvent(string(mustRead(mod, ptr, size)))
}

func hostGetData(ctx context.Context, mod wazeroapi.Module, keyPtr, keySize uint32) uint64 {
	s := hostState(ctx)
	value, err := s.host.GetData(mustRead(mod, keyPtr, keySize))
	must(err)

	return mustWrite(ctx, mod, value)
}

func hostSetData(ctx context.Context, mod wazeroapi.Module, keyPtr, keySize, valuePtr, valueSize uint32) {
	s := hostState(ctx)
	must(s.host.SetData(mustRead(mod, keyPtr, keySize), mustRead(mod, valuePtr, valueSize)))
}

func hostHasData(ctx context.Context, mod wazeroapi.Module, keyPtr, keySize uint32) uint32 {
	s := hostState(ctx)
	has, err := s.host.HasData(mustRead(mod, keyPtr, keySize))
	must(err)

	return boolToI32(has)
}

func hostDeleteData(ctx context.Context, mod wazeroapi.Module, keyPtr, keySize uint32) {
	s := hostState(ctx)
	must(s.host.DeleteData(mustRead(mod, keyPtr, keySize)))
}

func hostGetDataFor(ctx context.Context, mod wazeroapi.Module, addressPtr, addressSize, keyPtr, keySize uint32) uint64 {
	s := hostState(ctx)
	value, err := s.host.GetDataFor(
		string(mustRead(mod, addressPtr, addressSize)),
		mustRead(mod, keyPtr, keySize),
	)
	must(err)

	return mustWrite(ctx, mod, value)
}

func hostSetDataFor(ctx context.Context, mod wazeroapi.Module, addressPtr, addressSize, keyPtr, keySize, valuePtr, valueSize uint32) {
	s := hostState(ctx)
	must(s.host.SetDataFor(
		string(mustRead(mod, addressPtr, addressSize)),
		mustRead(mod, keyPtr, keySize),
		mustRead(mod, valuePtr, valueSize),
	))
}

func hostHasDataFor(ctx context.Context, mod wazeroapi.Module, addressPtr, addressSize, keyPtr, keySize uint32) uint32 {
	s := hostState(ctx)
	has, err := s.host.HasDataFor(
		string(mustRead(mod, addressPtr, addressSize)),
		mustRead(mod, keyPtr, keySize),
	)
	must(err)

	return boolToI32(has)
}

func hostGetBalance(ctx context.Context) uint64 {
	s := hostState(ctx)
	balance, err := s.host.GetBalance()
	must(err)

	return uint64(balance)
}

func hostGetBalanceFor(ctx context.Context, mod wazeroapi.Module, addressPtr, addressSize uint32) uint64 {
	s := hostState(ctx)
	balance, err := s.host.GetBalanceFor(string(mustRead(mod, addressPtr, addressSize)))
	must(err)

	return uint64(balance)
}

func hostTransferCoins(ctx context.Context, mod wazeroapi.Module, addressPtr, addressSize uint32, amount uint64) {
	s := hostState(ctx)
	must(s.host.TransferCoins(string(mustRead(mod, addressPtr, addressSize)), common.Amount(amount)))
}

func hostGetCallCoins(ctx context.Context) uint64 {
	s := hostState(ctx)
	return uint64(s.host.CallCoins())
}

// hostGetCaller returns the address of the frame below the current one, or
// nothing at the top level.
func hostGetCaller(ctx context.Context, mod wazeroapi.Module) uint64 {
	s := hostState(ctx)
	caller, found := s.host.Caller()
	if !found {
		return 0
	}

	return mustWrite(ctx, mod, []byte(caller.Address))
}

func hostGetCallStackDepth(ctx context.Context) uint32 {
	s := hostState(ctx)
	return uint32(len(s.host.CallStack()))
}

func hostSetBytecode(ctx context.Context, mod wazeroapi.Module, ptr, size uint32) {
	s := hostState(ctx)
	must(s.host.SetBytecode(mustRead(mod, ptr, size)))
}

func hostCreateModule(ctx context.Context, mod wazeroapi.Module, ptr, size uint32) uint64 {
	s := hostState(ctx)
	address, err := s.host.CreateModule(mustRead(mod, ptr, size))
	must(err)

	return mustWrite(ctx, mod, []byte(address))
}

// hostCall moves `coins` to the callee, then runs `function` of the callee
// module in a new frame.
func hostCall(ctx context.Context, mod wazeroapi.Module, addressPtr, addressSize, functionPtr, functionSize, paramPtr, paramSize uint32, coins uint64) {
	s := hostState(ctx)

	address := string(mustRead(mod, addressPtr, addressSize))
	function := string(mustRead(mod, functionPtr, functionSize))
	param := mustRead(mod, paramPtr, paramSize)

	if s.depth >= s.ex.config.MaxCallDepth {
		panic(errors.CallDepthExceeded.Clone().SetData("depth", s.depth).SetData("address", address))
	}

	amount := common.Amount(coins)
	if coins > 0 {
		must(s.host.TransferCoins(address, amount))
	}

	bytecode, err := s.host.GetBytecode(address)
	must(err)

	err = s.host.Call(callstack.CallItem{Address: address, Coins: amount}, func() error {
		s.depth++
		defer func() { s.depth-- }()

		return s.ex.invoke(ctx, bytecode, function, param)
	})
	must(err)
}

func envAbort(ctx context.Context, message, file, line, column uint32) {
	panic(errors.ExecutionFailed.Clone().SetData("abort", fmt.Sprintf("line %d, column %d", line, column)))
}
