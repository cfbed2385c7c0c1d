package runner

import (
	"path/filepath"
	"strings"

	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/contract/callstack"
	"boscoin.io/sctester/lib/errors"
)

const ModuleFileExtension = ".wasm"

const (
	OptionAddress  = "addr"
	OptionFunction = "function"
	OptionParam    = "param"
	OptionSender   = "sender"
	OptionCoins    = "coins"
)

var Options = []string{OptionAddress, OptionFunction, OptionParam, OptionSender, OptionCoins}

// Request is one invocation. It is built once by `ParseRequest` and never
// modified.
type Request struct {
	file     string
	address  string
	function string
	param    string
	caller   *callstack.CallItem
}

func NewFileRequest(file string) Request {
	return Request{file: file}
}

func NewAddressRequest(address string) Request {
	return Request{address: address}
}

func (r Request) WithFunction(function, param string) Request {
	r.function = function
	r.param = param
	return r
}

func (r Request) WithCaller(address string, coins common.Amount) Request {
	r.caller = &callstack.CallItem{Address: address, Coins: coins}
	return r
}

func (r Request) File() string {
	return r.file
}

func (r Request) Address() string {
	return r.address
}

// Function returns the entry point to run; false means `main`.
func (r Request) Function() (string, string, bool) {
	return r.function, r.param, len(r.function) > 0
}

func (r Request) Caller() (callstack.CallItem, bool) {
	if r.caller == nil {
		return callstack.CallItem{}, false
	}

	return *r.caller, true
}

// Validate checks the request without touching the disk.
func (r Request) Validate() error {
	switch {
	case len(r.file) > 0 && len(r.address) > 0:
		return errors.InvalidInvocation.Clone().
			SetData("reason", "choose between calling an address in the ledger or a file")
	case len(r.file) < 1 && len(r.address) < 1:
		return errors.InvalidInvocation.Clone().
			SetData("reason", "an address or a module file is required")
	case len(r.file) > 0 && filepath.Ext(r.file) != ModuleFileExtension:
		return errors.InvalidInvocation.Clone().
			SetData("reason", "module file should be "+ModuleFileExtension).
			SetData("file", r.file)
	case len(r.function) < 1 && len(r.param) > 0:
		return errors.InvalidInvocation.Clone().SetData("reason", "param requires function")
	case r.caller != nil && len(r.caller.Address) < 1:
		return errors.InvalidInvocation.Clone().SetData("reason", "empty sender")
	}

	return nil
}

// ParseRequest builds a request from command line arguments: at most one
// module file and `key=value` options.
func ParseRequest(args []string, policy common.CoinsPolicy) (Request, error) {
	var r Request
	options := map[string]string{}

	for _, arg := range args {
		i := strings.Index(arg, "=")
		if i < 0 {
			if len(r.file) > 0 {
				return Request{}, errors.InvalidInvocation.Clone().
					SetData("reason", "only one module file is allowed").
					SetData("argument", arg)
			}
			r.file = arg
			continue
		}

		key, value := arg[:i], arg[i+1:]
		if _, found := common.InStringArray(Options, key); !found {
			return Request{}, errors.InvalidInvocation.Clone().
				SetData("reason", "unknown option").
				SetData("option", key)
		}
		if _, found := options[key]; found {
			return Request{}, errors.InvalidInvocation.Clone().
				SetData("reason", "duplicated option").
				SetData("option", key)
		}
		options[key] = value
	}

	r.address = options[OptionAddress]
	if function, found := options[OptionFunction]; found {
		if len(function) < 1 {
			return Request{}, errors.InvalidInvocation.Clone().SetData("reason", "empty function")
		}
		r.function = function
	}
	if param, found := options[OptionParam]; found {
		if len(r.function) < 1 {
			return Request{}, errors.InvalidInvocation.Clone().SetData("reason", "param requires function")
		}
		r.param = param
	}

	coins, hasCoins := options[OptionCoins]
	sender, hasSender := options[OptionSender]
	if hasCoins && !hasSender {
		return Request{}, errors.InvalidInvocation.Clone().SetData("reason", "coins requires sender")
	}
	if hasSender {
		var amount common.Amount
		if hasCoins {
			var err error
			if amount, err = common.AmountFromString(coins); err != nil {
				if policy != common.CoinsPolicyLenient {
					return Request{}, errors.InvalidInvocation.Clone().
						SetData("reason", "malformed coins").
						SetData("coins", coins)
				}
				log.Warn("malformed coins, no coins given to the call", "coins", coins)
				amount = 0
			}
		}
		r = r.WithCaller(sender, amount)
	}

	return r, r.Validate()
}
