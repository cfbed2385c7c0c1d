package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/oklog/run"
	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/sctester/cmd/sctester/common"
	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/metrics"
	"boscoin.io/sctester/lib/runner"
)

const (
	flagBudget      = "budget"
	flagCoinsPolicy = "coins-policy"
	flagMetricsFile = "metrics-file"
	flagEvents      = "events"
)

func newRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [<file.wasm>] [addr=<address>] [function=<name>] [param=<string>] [sender=<address>] [coins=<amount>]",
		Short: "Run a module file or the module deployed at an address",
		RunE: func(c *cobra.Command, args []string) error {
			config, err := loadConfig(c)
			if err != nil {
				return err
			}

			req, err := runner.ParseRequest(args, config.CoinsPolicy)
			if err != nil {
				return err
			}

			events, _ := c.Flags().GetString(flagEvents)
			return runModule(c.OutOrStdout(), runner.NewRunner(config), req, events)
		},
	}

	config := common.NewConfig()
	flags := runCmd.Flags()
	flags.Uint64(flagBudget, config.Budget, "operation budget of the run")
	flags.String(flagCoinsPolicy, string(config.CoinsPolicy), "what to do with a malformed 'coins=', {strict, lenient}")
	flags.String(flagMetricsFile, config.MetricsFile, "write run metrics to this file in the prometheus text format")
	flags.String(flagEvents, "", "print the generated events, {json, prettyjson, yaml}")

	return runCmd
}

func runModule(w io.Writer, r *runner.Runner, req runner.Request, events string) (err error) {
	var encode cmdcommon.Encode
	if len(events) > 0 {
		if encode, err = cmdcommon.GetEncode(events); err != nil {
			return
		}
	}

	config := r.Config()
	if len(config.MetricsFile) > 0 {
		metrics.InitPrometheusMetrics()
		metrics.SetVersion()

		defer func() {
			if merr := metrics.WriteToTextfile(config.MetricsFile); merr != nil {
				log.Error("failed to write metrics", "file", config.MetricsFile, "error", merr)
			}
		}()
	}

	if file := req.File(); len(file) > 0 {
		fmt.Fprintf(w, "run file %s\n", file)
	}
	if address := req.Address(); len(address) > 0 {
		fmt.Fprintf(w, "run addr %s\n", address)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var result *runner.Result
	var g run.Group
	{
		g.Add(func() (err error) {
			result, err = r.Run(ctx, req)
			return
		}, func(error) {
			cancel()
		})
	}
	{
		cancelInterrupt := make(chan struct{})
		g.Add(func() error {
			return cmdcommon.Interrupt(cancelInterrupt)
		}, func(error) {
			close(cancelInterrupt)
		})
	}

	if err = g.Run(); err != nil {
		return
	}

	fmt.Fprintf(w, "remaining points: %d\n", result.Remaining)

	if encode != nil {
		err = encode(result.Events, w)
	}

	return
}
