package common

import (
	"io/ioutil"
	"strconv"

	logging "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	sctestererrors "boscoin.io/sctester/lib/errors"
)

const (
	DefaultLedgerPath string = "ledger.json"
	// Operation budget handed to the executor when none is given
	DefaultBudget uint64 = 1000000000000

	EnvPrefix string = "SCTESTER_"
)

// CoinsPolicy decides what happens to a malformed `coins=` value.
type CoinsPolicy string

const (
	// CoinsPolicyStrict rejects the invocation.
	CoinsPolicyStrict CoinsPolicy = "strict"
	// CoinsPolicyLenient attaches zero coins to the call.
	CoinsPolicyLenient CoinsPolicy = "lenient"
)

func (p CoinsPolicy) IsValid() bool {
	return p == CoinsPolicyStrict || p == CoinsPolicyLenient
}

//
// Config holds the settings of one `sctester` process. It is built once, from
// the defaults, then an optional YAML file, then `SCTESTER_*` environment
// variables; command line flags are applied last by the caller.
//
type Config struct {
	Ledger      string      `yaml:"ledger"`
	Budget      uint64      `yaml:"budget"`
	LogLevel    string      `yaml:"log-level"`
	LogOutput   string      `yaml:"log-output"`
	CoinsPolicy CoinsPolicy `yaml:"coins-policy"`
	MetricsFile string      `yaml:"metrics-file"`
}

func NewConfig() Config {
	return Config{
		Ledger:      DefaultLedgerPath,
		Budget:      DefaultBudget,
		LogLevel:    DefaultLogLevel.String(),
		CoinsPolicy: CoinsPolicyStrict,
	}
}

// LoadConfigFile overlays the keys found in the YAML file at `path`.
func (c Config) LoadConfigFile(path string) (Config, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return c, errors.Wrapf(err, "failed to read config file %q", path)
	}

	if err = yaml.Unmarshal(b, &c); err != nil {
		return c, errors.Wrapf(err, "failed to parse config file %q", path)
	}

	return c, c.Validate()
}

// LoadEnv overlays the `SCTESTER_*` environment variables.
func (c Config) LoadEnv() (Config, error) {
	c.Ledger = GetENVValue(EnvPrefix+"LEDGER", c.Ledger)
	c.LogLevel = GetENVValue(EnvPrefix+"LOG_LEVEL", c.LogLevel)
	c.LogOutput = GetENVValue(EnvPrefix+"LOG_OUTPUT", c.LogOutput)
	c.CoinsPolicy = CoinsPolicy(GetENVValue(EnvPrefix+"COINS_POLICY", string(c.CoinsPolicy)))
	c.MetricsFile = GetENVValue(EnvPrefix+"METRICS_FILE", c.MetricsFile)

	if v := GetENVValue(EnvPrefix+"BUDGET", ""); len(v) > 0 {
		budget, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c, sctestererrors.InvalidInvocation.Clone().SetData("budget", v)
		}
		c.Budget = budget
	}

	return c, c.Validate()
}

func (c Config) Validate() error {
	if len(c.Ledger) < 1 {
		return sctestererrors.InvalidInvocation.Clone().SetData("ledger", "empty ledger path")
	}
	if !c.CoinsPolicy.IsValid() {
		return sctestererrors.InvalidInvocation.Clone().SetData("coins-policy", string(c.CoinsPolicy))
	}
	if _, err := logging.LvlFromString(c.LogLevel); err != nil {
		return sctestererrors.InvalidInvocation.Clone().SetData("log-level", c.LogLevel)
	}

	return nil
}

func (c Config) Level() logging.Lvl {
	lvl, err := logging.LvlFromString(c.LogLevel)
	if err != nil {
		return DefaultLogLevel
	}

	return lvl
}
