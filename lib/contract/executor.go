package contract

import (
	"bytes"
	"context"

	"boscoin.io/sctester/lib/contract/api"
	"boscoin.io/sctester/lib/contract/native"
	"boscoin.io/sctester/lib/contract/wasm"
	"boscoin.io/sctester/lib/errors"

	// registers the bundled native contracts
	_ "boscoin.io/sctester/lib/contract/native/execfunc"
)

type CodeType int

const (
	UnknownCode CodeType = iota
	WASMCode
	NativeCode
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

func (c CodeType) String() string {
	switch c {
	case WASMCode:
		return "wasm"
	case NativeCode:
		return "native"
	default:
		return "unknown"
	}
}

// Executor runs a module against the host interface and returns the budget
// left after the run.
type Executor interface {
	RunMain(ctx context.Context, module []byte, budget uint64, host api.Interface) (uint64, error)
	RunFunction(ctx context.Context, module []byte, budget uint64, function, param string, host api.Interface) (uint64, error)
	Close(ctx context.Context) error
}

type Config struct {
	WASM wasm.Config
}

func NewConfig() Config {
	return Config{WASM: wasm.NewConfig()}
}

func DetectCodeType(module []byte) CodeType {
	switch {
	case bytes.HasPrefix(module, wasmMagic):
		return WASMCode
	case native.IsNative(module):
		return NativeCode
	default:
		return UnknownCode
	}
}

func NewExecutor(ctx context.Context, codeType CodeType, config Config) (Executor, error) {
	var ex Executor

	switch codeType {
	case WASMCode:
		wex, err := wasm.NewExecutor(ctx, config.WASM)
		if err != nil {
			return nil, errors.ExecutionFailed.Wrap(err)
		}
		ex = wex
	case NativeCode:
		ex = native.NewNativeExecutor()
	default:
		return nil, errors.NoModule.Clone().SetData("type", codeType.String())
	}

	log.Debug("executor created", "type", codeType)

	return ex, nil
}
