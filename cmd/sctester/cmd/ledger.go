package cmd

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"unicode/utf8"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/sctester/cmd/sctester/common"
	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/contract/native"
	"boscoin.io/sctester/lib/errors"
	"boscoin.io/sctester/lib/ledger"
	"boscoin.io/sctester/lib/runner"

	// registers the bundled native contracts
	_ "boscoin.io/sctester/lib/contract/native/execfunc"
)

const (
	flagFormat  = "format"
	flagBalance = "balance"
	flagNative  = "native"
)

type accountView struct {
	Address      string            `json:"address" yaml:"address"`
	Balance      common.Amount     `json:"balance" yaml:"balance"`
	HasBytecode  bool              `json:"has_bytecode" yaml:"has_bytecode"`
	BytecodeSize int               `json:"bytecode_size" yaml:"bytecode_size"`
	Native       string            `json:"native,omitempty" yaml:"native,omitempty"`
	Datastore    map[string]string `json:"datastore" yaml:"datastore"`
}

// printable keeps valid utf-8 as is and shows anything else as hex.
func printable(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	return "0x" + hex.EncodeToString(b)
}

func newAccountView(account *ledger.Account) accountView {
	v := accountView{
		Address:      account.Address,
		Balance:      account.Balance,
		HasBytecode:  account.HasBytecode(),
		BytecodeSize: len(account.Bytecode),
		Datastore:    map[string]string{},
	}
	if name, ok := native.ContractName(account.Bytecode); ok {
		v.Native = name
	}
	for k, value := range account.Datastore {
		v.Datastore[printable([]byte(k))] = printable(value)
	}

	return v
}

// withStore loads the ledger, runs `f` and saves the ledger when `save` is
// set and `f` succeeded.
func withStore(c *cobra.Command, save bool, f func(*ledger.Store) error) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := ledger.Load(config.Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err = f(store); err != nil {
		return err
	}
	if !save {
		return nil
	}

	return store.Save()
}

func parseAmountArg(name, s string) (common.Amount, error) {
	amount, err := cmdcommon.ParseAmountFromString(s)
	if err != nil {
		return 0, errors.InvalidInvocation.Clone().SetData(name, s)
	}

	return amount, nil
}

func newLedgerCommand() *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and prepare the ledger snapshot",
		Run: func(c *cobra.Command, args []string) {
			if len(args) < 1 {
				c.Usage()
			}
		},
	}

	ledgerCmd.AddCommand(newLedgerShowCommand())
	ledgerCmd.AddCommand(newLedgerCreateCommand())
	ledgerCmd.AddCommand(newLedgerDeployCommand())
	ledgerCmd.AddCommand(newLedgerBalanceCommand("credit", "Add coins to an account", (*ledger.Store).Credit))
	ledgerCmd.AddCommand(newLedgerBalanceCommand("debit", "Remove coins from an account", (*ledger.Store).Debit))

	return ledgerCmd
}

func newLedgerShowCommand() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show [<address>]",
		Short: "Print the accounts of the ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			format, _ := c.Flags().GetString(flagFormat)
			encode, err := cmdcommon.GetEncode(format)
			if err != nil {
				return err
			}

			return withStore(c, false, func(store *ledger.Store) error {
				if len(args) > 0 {
					account, err := store.GetEntry(args[0])
					if err != nil {
						return err
					} else if account == nil {
						return errors.UnknownAddress.Clone().SetData("address", args[0])
					}

					return encode(newAccountView(account), c.OutOrStdout())
				}

				accounts, err := store.Accounts()
				if err != nil {
					return err
				}

				views := []accountView{}
				for _, account := range accounts {
					views = append(views, newAccountView(account))
				}

				return encode(views, c.OutOrStdout())
			})
		},
	}
	showCmd.Flags().String(flagFormat, "prettyjson", "output format, {json, prettyjson, yaml}")

	return showCmd
}

func newLedgerCreateCommand() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create <address>",
		Short: "Create a wallet account",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			s, _ := c.Flags().GetString(flagBalance)
			balance, err := parseAmountArg("balance", s)
			if err != nil {
				return err
			}

			return withStore(c, true, func(store *ledger.Store) error {
				if err := store.CreateAccount(args[0], balance); err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "account created: %s\n", args[0])

				return nil
			})
		},
	}
	createCmd.Flags().String(flagBalance, "0", "initial balance")

	return createCmd
}

func newLedgerDeployCommand() *cobra.Command {
	deployCmd := &cobra.Command{
		Use:   "deploy <address> <file.wasm>",
		Short: "Store a module at an address, creating the account when needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			address, source := args[0], args[1]

			var bytecode []byte
			if isNative, _ := c.Flags().GetBool(flagNative); isNative {
				if !native.HasContract(source) {
					return errors.NoModule.Clone().SetData("contract", source)
				}
				bytecode = native.Bytecode(source)
			} else {
				if filepath.Ext(source) != runner.ModuleFileExtension {
					return errors.InvalidInvocation.Clone().
						SetData("reason", "module file should be "+runner.ModuleFileExtension).
						SetData("file", source)
				}

				b, err := ioutil.ReadFile(source)
				if err != nil {
					return errors.InvalidInvocation.Wrap(pkgerrors.Wrapf(err, "failed to read module file %q", source))
				}
				bytecode = b
			}

			return withStore(c, true, func(store *ledger.Store) error {
				if err := store.SetBytecode(address, bytecode); err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "module deployed: %s (%d bytes)\n", address, len(bytecode))

				return nil
			})
		},
	}
	deployCmd.Flags().Bool(flagNative, false, "the second argument names a bundled native contract instead of a file")

	return deployCmd
}

func newLedgerBalanceCommand(use, short string, apply func(*ledger.Store, string, common.Amount) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <address> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			amount, err := parseAmountArg("amount", args[1])
			if err != nil {
				return err
			}

			return withStore(c, true, func(store *ledger.Store) error {
				if err := apply(store, args[0], amount); err != nil {
					return err
				}

				balance, err := store.Balance(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "balance of %s: %s\n", args[0], balance)

				return nil
			})
		},
	}
}
