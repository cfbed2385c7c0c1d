package wasm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/tetratelabs/wazero"
	wazeroapi "github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"

	"boscoin.io/sctester/lib/contract/api"
	"boscoin.io/sctester/lib/errors"
)

const MainFunction = "main"

// Executor runs WASM modules on a wazero interpreter. The host module is
// instantiated once; every run and every nested call instantiates its module
// anonymously, so one compiled module may be running several times at once.
type Executor struct {
	sync.Mutex

	config  Config
	runtime wazero.Runtime
	cache   *lru.Cache
}

func NewExecutor(ctx context.Context, config Config) (*Executor, error) {
	if config.CacheSize < 1 {
		config.CacheSize = DefaultCacheSize
	}
	if config.MaxCallDepth < 1 {
		config.MaxCallDepth = DefaultMaxCallDepth
	}

	runtime := wazero.NewRuntimeWithConfig(
		ctx,
		wazero.NewRuntimeConfigInterpreter().WithCloseOnContextDone(true),
	)

	if err := instantiateHostModule(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return nil, err
	}

	cache, err := lru.NewWithEvict(config.CacheSize, func(key, value interface{}) {
		value.(wazero.CompiledModule).Close(context.Background())
	})
	if err != nil {
		runtime.Close(ctx)
		return nil, err
	}

	return &Executor{config: config, runtime: runtime, cache: cache}, nil
}

func (ex *Executor) Config() Config {
	return ex.config
}

func (ex *Executor) Close(ctx context.Context) error {
	ex.cache.Purge()
	return ex.runtime.Close(ctx)
}

func (ex *Executor) compile(ctx context.Context, module []byte) (wazero.CompiledModule, error) {
	ex.Lock()
	defer ex.Unlock()

	sum := sha256.Sum256(module)
	key := hex.EncodeToString(sum[:])
	if cached, found := ex.cache.Get(key); found {
		log.Debug("compiled module found in cache", "module", key)
		return cached.(wazero.CompiledModule), nil
	}

	compiled, err := ex.runtime.CompileModule(
		experimental.WithFunctionListenerFactory(ctx, meterListenerFactory),
		module,
	)
	if err != nil {
		return nil, err
	}
	ex.cache.Add(key, compiled)

	log.Debug("module compiled", "module", key, "size", len(module))

	return compiled, nil
}

func (ex *Executor) RunMain(ctx context.Context, module []byte, budget uint64, host api.Interface) (uint64, error) {
	return ex.run(ctx, module, budget, MainFunction, nil, host)
}

func (ex *Executor) RunFunction(ctx context.Context, module []byte, budget uint64, function, param string, host api.Interface) (uint64, error) {
	return ex.run(ctx, module, budget, function, []byte(param), host)
}

func (ex *Executor) run(ctx context.Context, module []byte, budget uint64, function string, param []byte, host api.Interface) (uint64, error) {
	state := &runState{ex: ex, host: host, meter: newMeter(budget)}

	err := ex.invoke(withRunState(ctx, state), module, function, param)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		log.Debug("execution failed", "function", function, "used", state.meter.used(), "error", err)
		return 0, errors.ExecutionFailed.Wrap(err).SetData("function", function)
	}

	log.Debug("execution done", "function", function, "used", state.meter.used())

	return state.meter.remaining, nil
}

// invoke instantiates `module` and calls `function`. A function taking two
// i32 gets `param` as (ptr, len) in guest memory, one taking a single i32 gets
// it as an AssemblyScript string and one taking none is called without
// argument.
func (ex *Executor) invoke(ctx context.Context, module []byte, function string, param []byte) error {
	compiled, err := ex.compile(ctx, module)
	if err != nil {
		return err
	}

	mod, err := ex.runtime.InstantiateModule(
		ctx,
		compiled,
		wazero.NewModuleConfig().WithName("").WithStartFunctions(),
	)
	if err != nil {
		return err
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(function)
	if fn == nil {
		return errors.NoModule.Clone().SetData("function", function)
	}

	var params []uint64
	switch types := fn.Definition().ParamTypes(); {
	case len(types) == 0:
	case len(types) == 1 && types[0] == wazeroapi.ValueTypeI32:
		ptr, err := writeString(ctx, mod, param)
		if err != nil {
			return err
		}
		params = []uint64{uint64(ptr)}
	case len(types) == 2 && types[0] == wazeroapi.ValueTypeI32 && types[1] == wazeroapi.ValueTypeI32:
		ptr, err := writeBytes(ctx, mod, param)
		if err != nil {
			return err
		}
		params = []uint64{uint64(ptr), uint64(len(param))}
	default:
		return errors.InvalidInvocation.Clone().
			SetData("function", function).
			SetData("params", len(types))
	}

	_, err = fn.Call(ctx, params...)

	return err
}
