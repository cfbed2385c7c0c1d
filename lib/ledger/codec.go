package ledger

import (
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack"

	"boscoin.io/sctester/lib/common"
)

type snapshotEntry struct {
	Key   []byte `json:"key" msgpack:"key"`
	Value []byte `json:"value" msgpack:"value"`
}

type snapshotAccount struct {
	Address   string          `json:"address" msgpack:"address"`
	Balance   common.Amount   `json:"balance" msgpack:"balance"`
	Bytecode  []byte          `json:"bytecode" msgpack:"bytecode"`
	Datastore []snapshotEntry `json:"datastore" msgpack:"datastore"`
}

type snapshot struct {
	Accounts []snapshotAccount `json:"accounts" msgpack:"accounts"`
}

func newSnapshot(accounts []*Account) snapshot {
	s := snapshot{Accounts: make([]snapshotAccount, 0, len(accounts))}
	for _, a := range accounts {
		sa := snapshotAccount{
			Address:   a.Address,
			Balance:   a.Balance,
			Bytecode:  a.Bytecode,
			Datastore: make([]snapshotEntry, 0, len(a.Datastore)),
		}
		for _, k := range a.DatastoreKeys() {
			sa.Datastore = append(sa.Datastore, snapshotEntry{Key: []byte(k), Value: a.Datastore[k]})
		}
		s.Accounts = append(s.Accounts, sa)
	}

	return s
}

// Codec encodes the account table of a snapshot file.
type Codec interface {
	Name() string
	Marshal(interface{}) ([]byte, error)
	Unmarshal([]byte, interface{}) error
}

type JSONCodec struct{}

func (JSONCodec) Name() string {
	return "json"
}

func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	b, err := common.JSONMarshalIndent(v)
	if err != nil {
		return nil, err
	}

	return append(b, '\n'), nil
}

func (JSONCodec) Unmarshal(b []byte, v interface{}) error {
	return common.DecodeJSONValue(b, v)
}

type MsgpackCodec struct{}

func (MsgpackCodec) Name() string {
	return "msgpack"
}

func (MsgpackCodec) Marshal(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackCodec) Unmarshal(b []byte, v interface{}) error {
	return msgpack.Unmarshal(b, v)
}

// CodecFromPath picks msgpack for `.msgpack` and `.mp` files and JSON for
// everything else.
func CodecFromPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return MsgpackCodec{}
	default:
		return JSONCodec{}
	}
}
