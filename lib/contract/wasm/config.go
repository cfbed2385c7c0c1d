package wasm

const (
	HostModuleName = "massa"

	// DefaultHostCallCost is charged for every call into the host module.
	DefaultHostCallCost uint64 = 100
	// DefaultMaxCallDepth bounds nested contract calls.
	DefaultMaxCallDepth int = 256
	// DefaultCacheSize is the number of compiled modules kept around.
	DefaultCacheSize int = 64
)

type Config struct {
	HostCallCost uint64
	MaxCallDepth int
	CacheSize    int
}

func NewConfig() Config {
	return Config{
		HostCallCost: DefaultHostCallCost,
		MaxCallDepth: DefaultMaxCallDepth,
		CacheSize:    DefaultCacheSize,
	}
}
