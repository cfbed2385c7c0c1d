package native

import (
	"bytes"
)

// Magic starts the bytecode of a native contract; the contract name follows.
var Magic = []byte{0x00, 0x73, 0x63, 0x74}

var (
	contracts = make(map[string]Register)
)

type (
	Register func(executor *NativeExecutor)
)

func AddContract(name string, r Register) {
	contracts[name] = r
}

func HasContract(name string) bool {
	if _, ok := contracts[name]; ok {
		return true
	}

	return false
}

// Bytecode returns what a ledger account stores to run contract `name`.
func Bytecode(name string) []byte {
	b := make([]byte, 0, len(Magic)+len(name))
	b = append(b, Magic...)
	return append(b, name...)
}

func IsNative(module []byte) bool {
	return bytes.HasPrefix(module, Magic)
}

func ContractName(module []byte) (string, bool) {
	if !IsNative(module) {
		return "", false
	}

	return string(module[len(Magic):]), true
}
