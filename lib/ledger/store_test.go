package ledger

import (
	stderrors "errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/errors"
)

func newTestStore(t *testing.T, name string) *Store {
	s, err := Load(filepath.Join(t.TempDir(), name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func fillTestStore(t *testing.T, s *Store) {
	require.NoError(t, s.CreateAccount("addr1", 100))
	require.NoError(t, s.SetBytecode("addr1", []byte{0x00, 0x61, 0x73, 0x6d}))
	require.NoError(t, s.DatastoreSet("addr1", []byte("k1"), []byte("v1")))
	require.NoError(t, s.DatastoreSet("addr1", []byte{0xff, 0x00}, []byte{}))

	// wallet only
	require.NoError(t, s.CreateAccount("addr2", 7))

	// empty, but present module
	require.NoError(t, s.SetBytecode("addr3", []byte{}))
}

func TestStoreLoadMissingFile(t *testing.T) {
	s := newTestStore(t, "ledger.json")

	accounts, err := s.Accounts()
	require.NoError(t, err)
	require.Empty(t, accounts)

	require.True(t, common.IsNotExists(s.Path()))
}

func TestStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, ioutil.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	require.True(t, stderrors.Is(err, errors.StoreCorrupt))

	// duplicated address
	require.NoError(t, ioutil.WriteFile(path, []byte(`{"accounts":[
		{"address":"a","balance":"1","bytecode":null,"datastore":[]},
		{"address":"a","balance":"2","bytecode":null,"datastore":[]}
	]}`), 0644))

	_, err = Load(path)
	require.True(t, stderrors.Is(err, errors.StoreCorrupt))

	// duplicated datastore key
	require.NoError(t, ioutil.WriteFile(path, []byte(`{"accounts":[
		{"address":"a","balance":"1","bytecode":null,"datastore":[
			{"key":"aw==","value":"dg=="},
			{"key":"aw==","value":"dw=="}
		]}
	]}`), 0644))

	_, err = Load(path)
	require.True(t, stderrors.Is(err, errors.StoreCorrupt))

	msgpackPath := filepath.Join(t.TempDir(), "ledger.msgpack")
	require.NoError(t, ioutil.WriteFile(msgpackPath, []byte{0xc1}, 0644))

	_, err = Load(msgpackPath)
	require.True(t, stderrors.Is(err, errors.StoreCorrupt))
}

func TestStoreGetEntry(t *testing.T) {
	s := newTestStore(t, "ledger.json")
	fillTestStore(t, s)

	account, err := s.GetEntry("addr1")
	require.NoError(t, err)
	require.Equal(t, "addr1", account.Address)
	require.Equal(t, common.Amount(100), account.Balance)
	require.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d}, account.Bytecode)
	require.Equal(t, map[string][]byte{"k1": []byte("v1"), string([]byte{0xff, 0x00}): {}}, account.Datastore)

	wallet, err := s.GetEntry("addr2")
	require.NoError(t, err)
	require.False(t, wallet.HasBytecode())
	require.Empty(t, wallet.Datastore)

	empty, err := s.GetEntry("addr3")
	require.NoError(t, err)
	require.True(t, empty.HasBytecode())
	require.Empty(t, empty.Bytecode)

	absent, err := s.GetEntry("addr4")
	require.NoError(t, err)
	require.Nil(t, absent)

	exists, err := s.Exists("addr4")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestStoreUnknownAddress(t *testing.T) {
	s := newTestStore(t, "ledger.json")
	fillTestStore(t, s)

	// "addr" shares a prefix with every other address
	checks := []error{
		s.DatastoreSet("addr", []byte("k"), []byte("v")),
		s.DatastoreDelete("addr", []byte("k")),
		s.Credit("addr", 1),
		s.Debit("addr", 1),
		s.Transfer("addr", "addr1", 1),
	}
	_, _, err := s.DatastoreGet("addr", []byte("k"))
	checks = append(checks, err)
	_, err = s.DatastoreHas("addr", []byte("k"))
	checks = append(checks, err)
	_, err = s.DatastoreKeys("addr")
	checks = append(checks, err)
	_, err = s.Balance("addr")
	checks = append(checks, err)

	for _, err := range checks {
		require.True(t, stderrors.Is(err, errors.UnknownAddress), "%v", err)
	}

	absent, err := s.GetEntry("addr")
	require.NoError(t, err)
	require.Nil(t, absent)
}

func TestStoreDatastore(t *testing.T) {
	s := newTestStore(t, "ledger.json")
	fillTestStore(t, s)

	value, found, err := s.DatastoreGet("addr1", []byte("k1"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v1"), value)

	value, found, err = s.DatastoreGet("addr1", []byte{0xff, 0x00})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte{}, value)

	_, found, err = s.DatastoreGet("addr2", []byte("k1"))
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.DatastoreSet("addr1", []byte("k1"), []byte("v2")))
	value, _, _ = s.DatastoreGet("addr1", []byte("k1"))
	require.Equal(t, []byte("v2"), value)

	keys, err := s.DatastoreKeys("addr1")
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("k1"), {0xff, 0x00}}, keys)

	require.NoError(t, s.DatastoreDelete("addr1", []byte("k1")))
	require.NoError(t, s.DatastoreDelete("addr1", []byte("k1")))

	has, err := s.DatastoreHas("addr1", []byte("k1"))
	require.NoError(t, err)
	require.False(t, has)
}

func TestStoreCreateAccount(t *testing.T) {
	s := newTestStore(t, "ledger.json")

	require.NoError(t, s.CreateAccount("addr1", 10))

	err := s.CreateAccount("addr1", 10)
	require.True(t, stderrors.Is(err, errors.AccountAlreadyExists))

	err = s.CreateAccount("", 10)
	require.True(t, stderrors.Is(err, errors.InvalidInvocation))
}

func TestStoreSetBytecodeKeepsBalance(t *testing.T) {
	s := newTestStore(t, "ledger.json")
	fillTestStore(t, s)

	require.NoError(t, s.SetBytecode("addr2", []byte{0x01}))

	account, err := s.GetEntry("addr2")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, account.Bytecode)
	require.Equal(t, common.Amount(7), account.Balance)
}

func TestStoreDebitInsufficientFunds(t *testing.T) {
	s := newTestStore(t, "ledger.json")
	fillTestStore(t, s)

	for i := 0; i < 2; i++ {
		err := s.Debit("addr1", 101)
		require.True(t, stderrors.Is(err, errors.InsufficientFunds))

		balance, err := s.Balance("addr1")
		require.NoError(t, err)
		require.Equal(t, common.Amount(100), balance)
	}

	require.NoError(t, s.Debit("addr1", 100))
	balance, _ := s.Balance("addr1")
	require.Equal(t, common.Amount(0), balance)
}

func TestStoreCreditOverflow(t *testing.T) {
	s := newTestStore(t, "ledger.json")
	require.NoError(t, s.CreateAccount("addr1", common.MaximumBalance))

	err := s.Credit("addr1", 1)
	require.True(t, stderrors.Is(err, errors.MaximumBalanceReached))

	balance, _ := s.Balance("addr1")
	require.Equal(t, common.MaximumBalance, balance)
}

func TestStoreAmountOutOfRange(t *testing.T) {
	s := newTestStore(t, "ledger.json")
	fillTestStore(t, s)

	huge := common.Amount(^uint64(0))

	err := s.Debit("addr1", huge)
	require.True(t, stderrors.Is(err, errors.InsufficientFunds))

	err = s.Debit("addr1", common.MaximumBalance+1)
	require.True(t, stderrors.Is(err, errors.InsufficientFunds))

	err = s.Credit("addr1", huge)
	require.True(t, stderrors.Is(err, errors.MaximumBalanceReached))

	err = s.Transfer("addr1", "addr2", huge)
	require.True(t, stderrors.Is(err, errors.InsufficientFunds))

	err = s.CreateAccount("addr9", huge)
	require.True(t, stderrors.Is(err, errors.MaximumBalanceReached))

	exists, err := s.Exists("addr9")
	require.NoError(t, err)
	require.False(t, exists)

	b1, _ := s.Balance("addr1")
	b2, _ := s.Balance("addr2")
	require.Equal(t, common.Amount(100), b1)
	require.Equal(t, common.Amount(7), b2)
}

func TestStoreTransfer(t *testing.T) {
	s := newTestStore(t, "ledger.json")
	fillTestStore(t, s)

	require.NoError(t, s.Transfer("addr1", "addr2", 40))

	b1, _ := s.Balance("addr1")
	b2, _ := s.Balance("addr2")
	require.Equal(t, common.Amount(60), b1)
	require.Equal(t, common.Amount(47), b2)

	// the recipient is created
	require.NoError(t, s.Transfer("addr1", "addr9", 10))
	b9, err := s.Balance("addr9")
	require.NoError(t, err)
	require.Equal(t, common.Amount(10), b9)
}

func TestStoreTransferAtomic(t *testing.T) {
	s := newTestStore(t, "ledger.json")
	fillTestStore(t, s)

	err := s.Transfer("addr2", "addr1", 8)
	require.True(t, stderrors.Is(err, errors.InsufficientFunds))

	require.NoError(t, s.Credit("addr2", common.MaximumBalance-7))

	// debit succeeds, credit overflows; neither is applied
	err = s.Transfer("addr2", "addr1", common.MaximumBalance)
	require.True(t, stderrors.Is(err, errors.MaximumBalanceReached))

	b1, _ := s.Balance("addr1")
	b2, _ := s.Balance("addr2")
	require.Equal(t, common.Amount(100), b1)
	require.Equal(t, common.MaximumBalance, b2)

	// the store is usable after a discarded transaction
	require.NoError(t, s.Transfer("addr1", "addr2", 0))
}

func TestStoreSaveAndLoad(t *testing.T) {
	for _, name := range []string{"ledger.json", "ledger.msgpack"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			s, err := Load(path)
			require.NoError(t, err)
			fillTestStore(t, s)
			require.NoError(t, s.Save())

			expected, err := s.Accounts()
			require.NoError(t, err)
			require.NoError(t, s.Close())

			loaded, err := Load(path)
			require.NoError(t, err)
			defer loaded.Close()

			accounts, err := loaded.Accounts()
			require.NoError(t, err)
			require.Equal(t, expected, accounts)

			require.Nil(t, accounts[1].Bytecode)
			require.NotNil(t, accounts[2].Bytecode)
			require.Empty(t, accounts[2].Bytecode)

			// saving an unchanged table writes the same bytes
			before, err := ioutil.ReadFile(path)
			require.NoError(t, err)
			require.NoError(t, loaded.Save())
			after, err := ioutil.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, before, after)

			matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*"))
			require.Empty(t, matches)
		})
	}
}

func TestStoreSnapshotFormat(t *testing.T) {
	s := newTestStore(t, "ledger.json")
	require.NoError(t, s.CreateAccount("addr2", 7))
	require.NoError(t, s.SetBytecode("addr1", []byte("B")))
	require.NoError(t, s.DatastoreSet("addr1", []byte("k"), []byte("v")))

	b, err := s.Encode()
	require.NoError(t, err)
	require.JSONEq(t, `{"accounts":[
		{"address":"addr1","balance":"0","bytecode":"Qg==","datastore":[{"key":"aw==","value":"dg=="}]},
		{"address":"addr2","balance":"7","bytecode":null,"datastore":[]}
	]}`, string(b))
}
