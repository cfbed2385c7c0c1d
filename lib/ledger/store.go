package ledger

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	pkgerrors "github.com/pkg/errors"

	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/errors"
	"boscoin.io/sctester/lib/storage"
)

//
// Store is the account table of one run. The table is read from the snapshot
// file by `Load`, kept in a memory leveldb while the run mutates it and written
// back only by `Save`.
//
type Store struct {
	path  string
	codec Codec
	st    *storage.LevelDBBackend
}

// NewStore returns an empty store which saves to `path`.
func NewStore(path string) (*Store, error) {
	config, err := storage.NewConfigFromString("memory://")
	if err != nil {
		return nil, err
	}

	st, err := storage.NewLevelDBBackend(config)
	if err != nil {
		return nil, err
	}

	return &Store{path: path, codec: CodecFromPath(path), st: st}, nil
}

// Load reads the snapshot at `path`. A missing file gives an empty store.
func Load(path string) (*Store, error) {
	s, err := NewStore(path)
	if err != nil {
		return nil, err
	}

	if common.IsNotExists(path) {
		log.Debug("snapshot not found; starting with empty ledger", "path", path)
		return s, nil
	}

	b, err := ioutil.ReadFile(path)
	if err != nil {
		s.Close()
		return nil, errors.StoreCorrupt.Wrap(pkgerrors.Wrap(err, "failed to read snapshot")).SetData("path", path)
	}

	if err = s.importSnapshot(b); err != nil {
		s.Close()
		return nil, err
	}

	log.Debug("snapshot loaded", "path", path, "codec", s.codec.Name())

	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) importSnapshot(b []byte) error {
	var snap snapshot
	if err := s.codec.Unmarshal(b, &snap); err != nil {
		return errors.StoreCorrupt.Wrap(err).SetData("path", s.path)
	}

	var items []storage.Item
	seen := map[string]bool{}
	for _, sa := range snap.Accounts {
		if len(sa.Address) < 1 || seen[sa.Address] || sa.Balance > common.MaximumBalance {
			return errors.StoreCorrupt.Clone().SetData("path", s.path).SetData("address", sa.Address)
		}
		seen[sa.Address] = true

		items = append(items, storage.Item{
			Key:   GetAccountKey(sa.Address),
			Value: accountRecord{Address: sa.Address, Balance: sa.Balance, Bytecode: sa.Bytecode},
		})
		keys := map[string]bool{}
		for _, e := range sa.Datastore {
			if keys[string(e.Key)] {
				return errors.StoreCorrupt.Clone().
					SetData("path", s.path).
					SetData("address", sa.Address).
					SetData("key", string(e.Key))
			}
			keys[string(e.Key)] = true

			value := e.Value
			if value == nil {
				value = []byte{}
			}
			items = append(items, storage.Item{Key: GetDatastoreKey(sa.Address, e.Key), Value: value})
		}
	}

	if len(items) < 1 {
		return nil
	}

	if err := s.st.News(items...); err != nil {
		return errors.StoreCorrupt.Wrap(err).SetData("path", s.path)
	}

	return nil
}

func (s *Store) getRecord(st *storage.LevelDBBackend, address string) (*accountRecord, error) {
	var record accountRecord
	if err := st.Get(GetAccountKey(address), &record); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

func (s *Store) mustGetRecord(st *storage.LevelDBBackend, address string) (*accountRecord, error) {
	record, err := s.getRecord(st, address)
	if err != nil {
		return nil, err
	} else if record == nil {
		return nil, errors.UnknownAddress.Clone().SetData("address", address)
	}

	return record, nil
}

func (s *Store) putRecord(st *storage.LevelDBBackend, record *accountRecord) error {
	key := GetAccountKey(record.Address)

	exists, err := st.Has(key)
	if err != nil {
		return err
	}
	if exists {
		return st.Set(key, record)
	}

	return st.New(key, record)
}

// GetEntry returns the account at `address` with its datastore, or nil when
// there is none.
func (s *Store) GetEntry(address string) (*Account, error) {
	record, err := s.getRecord(s.st, address)
	if err != nil || record == nil {
		return nil, err
	}

	account := &Account{
		Address:   record.Address,
		Balance:   record.Balance,
		Bytecode:  record.Bytecode,
		Datastore: map[string][]byte{},
	}

	prefix := GetDatastorePrefix(address)
	err = s.st.Walk(prefix, func(k, v []byte) (bool, error) {
		var value []byte
		if err := common.DecodeJSONValue(v, &value); err != nil {
			return false, err
		}
		if value == nil {
			value = []byte{}
		}
		account.Datastore[string(k[len(prefix):])] = value
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (s *Store) Exists(address string) (bool, error) {
	return s.st.Has(GetAccountKey(address))
}

// SetBytecode creates the account when it is missing.
func (s *Store) SetBytecode(address string, bytecode []byte) error {
	record, err := s.getRecord(s.st, address)
	if err != nil {
		return err
	}
	if record == nil {
		record = &accountRecord{Address: address}
	}

	if bytecode == nil {
		bytecode = []byte{}
	}
	record.Bytecode = bytecode

	return s.putRecord(s.st, record)
}

func (s *Store) CreateAccount(address string, balance common.Amount) error {
	if len(address) < 1 {
		return errors.InvalidInvocation.Clone().SetData("address", address)
	}
	if balance > common.MaximumBalance {
		return errors.MaximumBalanceReached.Clone().SetData("address", address).SetData("balance", uint64(balance))
	}

	err := s.st.New(GetAccountKey(address), accountRecord{Address: address, Balance: balance})
	if err == errors.StorageRecordAlreadyExists {
		return errors.AccountAlreadyExists.Clone().SetData("address", address)
	}

	return err
}

func (s *Store) DatastoreGet(address string, key []byte) ([]byte, bool, error) {
	if _, err := s.mustGetRecord(s.st, address); err != nil {
		return nil, false, err
	}

	var value []byte
	if err := s.st.Get(GetDatastoreKey(address, key), &value); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			return nil, false, nil
		}
		return nil, false, err
	}
	if value == nil {
		value = []byte{}
	}

	return value, true, nil
}

func (s *Store) DatastoreSet(address string, key, value []byte) error {
	if _, err := s.mustGetRecord(s.st, address); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	k := GetDatastoreKey(address, key)
	exists, err := s.st.Has(k)
	if err != nil {
		return err
	}
	if exists {
		return s.st.Set(k, value)
	}

	return s.st.New(k, value)
}

func (s *Store) DatastoreHas(address string, key []byte) (bool, error) {
	if _, err := s.mustGetRecord(s.st, address); err != nil {
		return false, err
	}

	return s.st.Has(GetDatastoreKey(address, key))
}

// DatastoreDelete removes `key`; removing a missing key is not an error.
func (s *Store) DatastoreDelete(address string, key []byte) error {
	if _, err := s.mustGetRecord(s.st, address); err != nil {
		return err
	}

	err := s.st.Remove(GetDatastoreKey(address, key))
	if err == errors.StorageRecordDoesNotExist {
		return nil
	}

	return err
}

func (s *Store) DatastoreKeys(address string) ([][]byte, error) {
	if _, err := s.mustGetRecord(s.st, address); err != nil {
		return nil, err
	}

	var keys [][]byte
	prefix := GetDatastorePrefix(address)
	err := s.st.Walk(prefix, func(k, v []byte) (bool, error) {
		key := make([]byte, len(k)-len(prefix))
		copy(key, k[len(prefix):])
		keys = append(keys, key)
		return true, nil
	})

	return keys, err
}

func (s *Store) Balance(address string) (common.Amount, error) {
	record, err := s.mustGetRecord(s.st, address)
	if err != nil {
		return 0, err
	}

	return record.Balance, nil
}

func (s *Store) credit(st *storage.LevelDBBackend, address string, amount common.Amount, create bool) error {
	record, err := s.getRecord(st, address)
	if err != nil {
		return err
	}
	if record == nil {
		if !create {
			return errors.UnknownAddress.Clone().SetData("address", address)
		}
		record = &accountRecord{Address: address}
	}

	if amount > common.MaximumBalance-record.Balance {
		return errors.MaximumBalanceReached.Clone().SetData("address", address).SetData("amount", uint64(amount))
	}
	balance, err := record.Balance.Add(amount)
	if err != nil {
		return errors.MaximumBalanceReached.Clone().SetData("address", address).SetData("amount", uint64(amount))
	}
	record.Balance = balance

	return s.putRecord(st, record)
}

func (s *Store) debit(st *storage.LevelDBBackend, address string, amount common.Amount) error {
	record, err := s.mustGetRecord(st, address)
	if err != nil {
		return err
	}

	if amount > record.Balance {
		return errors.InsufficientFunds.Clone().
			SetData("address", address).
			SetData("balance", record.Balance).
			SetData("amount", uint64(amount))
	}
	balance, err := record.Balance.Sub(amount)
	if err != nil {
		return err
	}
	record.Balance = balance

	return s.putRecord(st, record)
}

func (s *Store) Credit(address string, amount common.Amount) error {
	return s.credit(s.st, address, amount, false)
}

// Debit leaves the balance untouched when it fails.
func (s *Store) Debit(address string, amount common.Amount) error {
	return s.debit(s.st, address, amount)
}

// Transfer moves `amount` from `from` to `to` in one leveldb transaction. The
// recipient account is created when it does not exist yet.
func (s *Store) Transfer(from, to string, amount common.Amount) (err error) {
	var ts *storage.LevelDBBackend
	if ts, err = s.st.OpenTransaction(); err != nil {
		return
	}

	defer func() {
		if err != nil {
			ts.Discard()
			return
		}
		err = ts.Commit()
	}()

	if err = s.debit(ts, from, amount); err != nil {
		return
	}
	if err = s.credit(ts, to, amount, true); err != nil {
		return
	}

	log.Debug("coins transferred", "from", from, "to", to, "amount", amount)

	return
}

// Accounts returns every account sorted by address.
func (s *Store) Accounts() ([]*Account, error) {
	var addresses []string
	err := s.st.Walk(AccountPrefix, func(k, v []byte) (bool, error) {
		var record accountRecord
		if err := common.DecodeJSONValue(v, &record); err != nil {
			return false, err
		}
		addresses = append(addresses, record.Address)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(addresses)

	accounts := make([]*Account, 0, len(addresses))
	for _, address := range addresses {
		account, err := s.GetEntry(address)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// Encode returns the snapshot bytes of the current table.
func (s *Store) Encode() ([]byte, error) {
	accounts, err := s.Accounts()
	if err != nil {
		return nil, err
	}

	return s.codec.Marshal(newSnapshot(accounts))
}

// Save writes the snapshot to a temporary file next to the target and renames
// it over the target, so a crash leaves the previous snapshot intact.
func (s *Store) Save() error {
	b, err := s.Encode()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	f, err := ioutil.TempFile(dir, "."+filepath.Base(s.path)+".")
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create temporary snapshot")
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(b); err != nil {
		f.Close()
		return pkgerrors.Wrap(err, "failed to write snapshot")
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return pkgerrors.Wrap(err, "failed to sync snapshot")
	}
	if err = f.Close(); err != nil {
		return pkgerrors.Wrap(err, "failed to close snapshot")
	}
	if err = os.Chmod(tmp, 0644); err != nil {
		return pkgerrors.Wrap(err, "failed to set snapshot mode")
	}
	if err = os.Rename(tmp, s.path); err != nil {
		return pkgerrors.Wrap(err, "failed to replace snapshot")
	}

	log.Debug("snapshot saved", "path", s.path, "codec", s.codec.Name(), "size", len(b))

	return nil
}

func (s *Store) Close() error {
	return s.st.Close()
}
