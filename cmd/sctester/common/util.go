package common

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/errors"
)

// ErrorString renders `err` for the command line; typed errors show their
// message and data.
func ErrorString(err error) string {
	e, ok := errors.Find(err)
	if !ok {
		return err.Error()
	}

	if len(e.Data) < 1 {
		return e.Message
	}

	var data []string
	for k, v := range e.Data {
		data = append(data, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(data)

	return fmt.Sprintf("%s; %s", e.Message, strings.Join(data, " "))
}

func PrintFlagsError(w io.Writer, cmd *cobra.Command, flagName string, err error) {
	if err != nil {
		fmt.Fprintf(w, "error: invalid '%s'; %s\n\n", flagName, ErrorString(err))
	}

	cmd.Usage()
}

func PrintError(w io.Writer, err error) {
	if err != nil {
		fmt.Fprintf(w, "error: %s\n", ErrorString(err))
	}
}

// Parse an input string as a coin amount
//
// Commas (','), dots ('.') and underscores ('_') are treated as digit
// separators and skipped.
func ParseAmountFromString(input string) (common.Amount, error) {
	amountStr := strings.Replace(input, ",", "", -1)
	amountStr = strings.Replace(amountStr, ".", "", -1)
	amountStr = strings.Replace(amountStr, "_", "", -1)
	return common.AmountFromString(amountStr)
}
