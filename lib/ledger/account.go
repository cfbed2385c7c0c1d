package ledger

import (
	"encoding/hex"
	"sort"

	"boscoin.io/sctester/lib/common"
)

const (
	AccountPrefix   string = "ac-"
	DatastorePrefix string = "ds-"
)

// Account is one ledger entry. A nil `Bytecode` means the account holds no
// module; an empty, non-nil one is a module of zero bytes.
type Account struct {
	Address   string
	Balance   common.Amount
	Bytecode  []byte
	Datastore map[string][]byte
}

func NewAccount(address string, balance common.Amount) *Account {
	return &Account{
		Address:   address,
		Balance:   balance,
		Datastore: map[string][]byte{},
	}
}

func (a *Account) HasBytecode() bool {
	return a.Bytecode != nil
}

// DatastoreKeys returns the datastore keys in byte order.
func (a *Account) DatastoreKeys() []string {
	keys := make([]string, 0, len(a.Datastore))
	for k := range a.Datastore {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// accountRecord is what the working set keeps under `ac-<address>`; the
// datastore entries live under their own keys.
type accountRecord struct {
	Address  string        `json:"address"`
	Balance  common.Amount `json:"balance"`
	Bytecode []byte        `json:"bytecode"`
}

func GetAccountKey(address string) string {
	return AccountPrefix + address
}

// GetDatastorePrefix hex-encodes the address so that no address is a prefix
// of another one's entries.
func GetDatastorePrefix(address string) string {
	return DatastorePrefix + hex.EncodeToString([]byte(address)) + "-"
}

func GetDatastoreKey(address string, key []byte) string {
	return GetDatastorePrefix(address) + string(key)
}
