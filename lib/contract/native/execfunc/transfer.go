package execfunc

import (
	"boscoin.io/sctester/lib/contract/api"
	"boscoin.io/sctester/lib/contract/native"
)

var Transfer = "transfer"

func init() {
	native.AddContract(Transfer, RegisterTransfer)
}

func RegisterTransfer(ex *native.NativeExecutor) {
	ex.RegisterFunc("transfer", transfer)
}

// transfer forwards the coins of the current call to the address in `param`.
func transfer(ex *native.NativeExecutor, host api.Interface, param string) error {
	return host.TransferCoins(param, host.CallCoins())
}
