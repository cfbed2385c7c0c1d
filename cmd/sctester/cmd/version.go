package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/sctester/cmd/sctester/common"
	"boscoin.io/sctester/lib/version"
)

func newVersionCommand() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(c *cobra.Command, args []string) error {
			format, _ := c.Flags().GetString(flagFormat)
			if len(format) < 1 {
				fmt.Fprintf(c.OutOrStdout(), "%s\n", version.ToDetailVersion())
				return nil
			}

			encode, err := cmdcommon.GetEncode(format)
			if err != nil {
				return err
			}

			return encode(version.ToMap(), c.OutOrStdout())
		},
	}
	versionCmd.Flags().String(flagFormat, "", "output format, {json, prettyjson, yaml}")

	return versionCmd
}
