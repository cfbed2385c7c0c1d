package cmd

import (
	"os"

	logging "github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cmdcommon "boscoin.io/sctester/cmd/sctester/common"
	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/contract"
	"boscoin.io/sctester/lib/contract/api"
	"boscoin.io/sctester/lib/contract/wasm"
	"boscoin.io/sctester/lib/ledger"
	"boscoin.io/sctester/lib/runner"
)

const (
	flagConfig    = "config"
	flagLedger    = "ledger"
	flagLogLevel  = "log-level"
	flagLogOutput = "log-output"
)

var log logging.Logger = logging.New("module", "main")

func init() {
	log.SetHandler(logging.LvlFilterHandler(common.DefaultLogLevel, common.DefaultLogHandler))
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sctester",
		Short:         "Run smart contract modules against a local ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(c *cobra.Command, args []string) {
			if len(args) < 1 {
				c.Usage()
			}
		},
	}

	config := common.NewConfig()
	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, common.GetENVValue(common.EnvPrefix+"CONFIG", ""), "YAML config file")
	flags.String(flagLedger, config.Ledger, "ledger snapshot file; '.msgpack' or '.mp' are msgpack, anything else JSON")
	flags.String(flagLogLevel, config.LogLevel, "log level, {crit, error, warn, info, debug}")
	flags.String(flagLogOutput, config.LogOutput, "set log output file")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newLedgerCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		cmdcommon.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cobra.Command) (config common.Config, err error) {
	if config, err = configFromFlags(c.Flags()); err != nil {
		return
	}

	err = setLogging(config)

	return
}

// configFromFlags builds the config from the defaults, the config file, the
// `SCTESTER_*` environment and the flags set on the command line, in this
// order.
func configFromFlags(flags *pflag.FlagSet) (config common.Config, err error) {
	config = common.NewConfig()

	if path, _ := flags.GetString(flagConfig); len(path) > 0 {
		if config, err = config.LoadConfigFile(path); err != nil {
			return
		}
	}
	if config, err = config.LoadEnv(); err != nil {
		return
	}

	if flags.Changed(flagLedger) {
		config.Ledger, _ = flags.GetString(flagLedger)
	}
	if flags.Changed(flagLogLevel) {
		config.LogLevel, _ = flags.GetString(flagLogLevel)
	}
	if flags.Changed(flagLogOutput) {
		config.LogOutput, _ = flags.GetString(flagLogOutput)
	}
	if flags.Changed(flagBudget) {
		config.Budget, _ = flags.GetUint64(flagBudget)
	}
	if flags.Changed(flagCoinsPolicy) {
		policy, _ := flags.GetString(flagCoinsPolicy)
		config.CoinsPolicy = common.CoinsPolicy(policy)
	}
	if flags.Changed(flagMetricsFile) {
		config.MetricsFile, _ = flags.GetString(flagMetricsFile)
	}

	err = config.Validate()

	return
}

func setLogging(config common.Config) error {
	handler, err := common.NewLogHandler(config.LogOutput)
	if err != nil {
		return err
	}
	level := config.Level()

	common.SetLogging(log, level, handler)
	ledger.SetLogging(level, handler)
	api.SetLogging(level, handler)
	contract.SetLogging(level, handler)
	wasm.SetLogging(level, handler)
	runner.SetLogging(level, handler)

	log.Debug("config loaded", "config", config)

	return nil
}
