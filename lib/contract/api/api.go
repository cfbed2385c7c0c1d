package api

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/btcsuite/btcutil/base58"
	logging "github.com/inconshreveable/log15"

	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/common/observer"
	"boscoin.io/sctester/lib/contract/callstack"
	"boscoin.io/sctester/lib/errors"
	"boscoin.io/sctester/lib/ledger"
)

const ModuleAddressPrefix = "A"

type Event struct {
	Address string `json:"address"`
	Data    string `json:"data"`
}

var _ Interface = (*API)(nil)

// API is the `Interface` handed to executors. It owns the call stack and the
// ledger store of one run.
type API struct {
	store  *ledger.Store
	stack  *callstack.CallStack
	events []Event
	nonce  uint64
	log    logging.Logger
}

func NewAPI(store *ledger.Store, runID string) *API {
	return &API{
		store: store,
		stack: callstack.New(),
		log:   log.New("run", runID),
	}
}

func (a *API) Store() *ledger.Store {
	return a.store
}

// ResetAddresses empties the call stack; runs start with it.
func (a *API) ResetAddresses() {
	a.stack.Reset()
	a.events = nil
}

func (a *API) Save() error {
	return a.store.Save()
}

func (a *API) Events() []Event {
	events := make([]Event, len(a.events))
	copy(events, a.events)

	return events
}

func (a *API) currentAddress() (string, error) {
	current, found := a.stack.Current()
	if !found {
		return "", errors.NoCallContext.Clone()
	}

	return current.Address, nil
}

func (a *API) GetBytecode(address string) ([]byte, error) {
	account, err := a.store.GetEntry(address)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.HasBytecode() {
		return nil, errors.NoModule.Clone().SetData("address", address)
	}

	return account.Bytecode, nil
}

func (a *API) GetData(key []byte) ([]byte, error) {
	address, err := a.currentAddress()
	if err != nil {
		return nil, err
	}

	return a.GetDataFor(address, key)
}

func (a *API) SetData(key, value []byte) error {
	address, err := a.currentAddress()
	if err != nil {
		return err
	}

	return a.SetDataFor(address, key, value)
}

func (a *API) HasData(key []byte) (bool, error) {
	address, err := a.currentAddress()
	if err != nil {
		return false, err
	}

	return a.HasDataFor(address, key)
}

func (a *API) DeleteData(key []byte) error {
	address, err := a.currentAddress()
	if err != nil {
		return err
	}

	return a.store.DatastoreDelete(address, key)
}

func (a *API) GetDataFor(address string, key []byte) ([]byte, error) {
	value, found, err := a.store.DatastoreGet(address, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.DataNotFound.Clone().SetData("address", address).SetData("key", string(key))
	}

	return value, nil
}

func (a *API) SetDataFor(address string, key, value []byte) error {
	return a.store.DatastoreSet(address, key, value)
}

func (a *API) HasDataFor(address string, key []byte) (bool, error) {
	return a.store.DatastoreHas(address, key)
}

func (a *API) Current() (callstack.CallItem, bool) {
	return a.stack.Current()
}

func (a *API) Caller() (callstack.CallItem, bool) {
	return a.stack.Caller()
}

// CallCoins is zero outside of any frame.
func (a *API) CallCoins() common.Amount {
	current, _ := a.stack.Current()
	return current.Coins
}

func (a *API) CallStack() []callstack.CallItem {
	return a.stack.Items()
}

func (a *API) PushCall(item callstack.CallItem) {
	a.log.Debug("push call", "address", item.Address, "coins", item.Coins, "depth", a.stack.Depth()+1)
	a.stack.Push(item)
}

func (a *API) PopCall() (callstack.CallItem, bool) {
	item, found := a.stack.Pop()
	if found {
		a.log.Debug("pop call", "address", item.Address, "depth", a.stack.Depth())
	}

	return item, found
}

// Call runs `fn` inside a new frame; the frame is popped however `fn` exits.
func (a *API) Call(item callstack.CallItem, fn func() error) error {
	a.PushCall(item)
	defer a.PopCall()

	return fn()
}

func (a *API) TransferCoins(to string, amount common.Amount) error {
	from, err := a.currentAddress()
	if err != nil {
		return err
	}

	return a.TransferCoinsFor(from, to, amount)
}

func (a *API) TransferCoinsFor(from, to string, amount common.Amount) error {
	if amount > common.MaximumBalance {
		return errors.InsufficientFunds.Clone().SetData("address", from).SetData("amount", uint64(amount))
	}

	return a.store.Transfer(from, to, amount)
}

func (a *API) GetBalance() (common.Amount, error) {
	address, err := a.currentAddress()
	if err != nil {
		return 0, err
	}

	return a.GetBalanceFor(address)
}

func (a *API) GetBalanceFor(address string) (common.Amount, error) {
	return a.store.Balance(address)
}

func (a *API) SetBytecode(bytecode []byte) error {
	address, err := a.currentAddress()
	if err != nil {
		return err
	}

	return a.SetBytecodeFor(address, bytecode)
}

func (a *API) SetBytecodeFor(address string, bytecode []byte) error {
	return a.store.SetBytecode(address, bytecode)
}

// CreateModule stores `bytecode` under a new address derived from the
// creator, a per-run nonce and the bytecode.
func (a *API) CreateModule(bytecode []byte) (string, error) {
	creator, _ := a.stack.Current()

	for {
		a.nonce++
		address := NewModuleAddress(creator.Address, a.nonce, bytecode)

		exists, err := a.store.Exists(address)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}

		if err = a.store.SetBytecode(address, bytecode); err != nil {
			return "", err
		}
		a.log.Debug("module created", "creator", creator.Address, "address", address, "size", len(bytecode))

		return address, nil
	}
}

func NewModuleAddress(creator string, nonce uint64, bytecode []byte) string {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)

	h := sha256.New()
	h.Write([]byte(creator))
	h.Write(n[:])
	h.Write(bytecode)

	return ModuleAddressPrefix + base58.Encode(h.Sum(nil))
}

func (a *API) Print(message string) {
	current, _ := a.stack.Current()
	a.log.Info("print", "address", current.Address, "message", message)
}

func (a *API) GenerateEvent(data string) {
	current, _ := a.stack.Current()
	event := Event{Address: current.Address, Data: data}
	a.events = append(a.events, event)

	a.log.Debug("event generated", "address", event.Address, "data", data)

	observer.ContractEventObserver.Trigger(
		observer.Names(
			observer.NewEvent(observer.ResourceEvent, observer.ConditionAll, ""),
			observer.NewEvent(observer.ResourceEvent, observer.ConditionAddress, event.Address),
		),
		event,
	)
}
