package api

import (
	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/contract/callstack"
)

// Interface is what an executor may ask of the ledger while a contract runs.
// The implicit variants work on the current address, the top of the call
// stack, and fail with `NoCallContext` when the stack is empty. Failures are
// `*errors.Error` values.
type Interface interface {
	GetBytecode(address string) ([]byte, error)

	GetData(key []byte) ([]byte, error)
	SetData(key, value []byte) error
	HasData(key []byte) (bool, error)
	DeleteData(key []byte) error
	GetDataFor(address string, key []byte) ([]byte, error)
	SetDataFor(address string, key, value []byte) error
	HasDataFor(address string, key []byte) (bool, error)

	Current() (callstack.CallItem, bool)
	Caller() (callstack.CallItem, bool)
	CallCoins() common.Amount
	CallStack() []callstack.CallItem
	PushCall(callstack.CallItem)
	PopCall() (callstack.CallItem, bool)
	Call(callstack.CallItem, func() error) error

	TransferCoins(to string, amount common.Amount) error
	TransferCoinsFor(from, to string, amount common.Amount) error
	GetBalance() (common.Amount, error)
	GetBalanceFor(address string) (common.Amount, error)

	SetBytecode(bytecode []byte) error
	SetBytecodeFor(address string, bytecode []byte) error
	CreateModule(bytecode []byte) (string, error)

	Print(message string)
	GenerateEvent(data string)
}
