package storage

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/sctester/lib/errors"
)

func TestNewConfigFromString(t *testing.T) {
	config, err := NewConfigFromString("memory://")
	require.NoError(t, err)
	require.Equal(t, "memory", config.Scheme)

	_, err = NewConfigFromString("redis://localhost")
	require.True(t, stderrors.Is(err, errors.StorageCoreError))

	_, err = NewConfigFromString("file:///tmp/ledger-db")
	require.True(t, stderrors.Is(err, errors.StorageCoreError))
}

func TestLevelDBBackendNew(t *testing.T) {
	st, _ := NewTestMemoryLevelDBBackend()
	defer st.Close()

	key := "showme"
	input := map[string]string{
		"90": "99",
		"91": "91",
	}
	require.NoError(t, st.New(key, input))

	fetched := map[string]string{}
	require.NoError(t, st.Get(key, &fetched))
	require.Equal(t, input, fetched)

	err := st.New(key, input)
	require.Equal(t, errors.StorageRecordAlreadyExists, err)
}

func TestLevelDBBackendNews(t *testing.T) {
	st, _ := NewTestMemoryLevelDBBackend()
	defer st.Close()

	require.NoError(t, st.News(Item{Key: "a", Value: 1}, Item{Key: "b", Value: 2}))

	var b int
	require.NoError(t, st.Get("b", &b))
	require.Equal(t, 2, b)

	require.Equal(t, errors.StorageRecordAlreadyExists, st.News(Item{Key: "c", Value: 3}, Item{Key: "a", Value: 1}))

	exists, err := st.Has("c")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestLevelDBBackendSetAndRemove(t *testing.T) {
	st, _ := NewTestMemoryLevelDBBackend()
	defer st.Close()

	require.Equal(t, errors.StorageRecordDoesNotExist, st.Set("killme", 1))

	require.NoError(t, st.New("killme", 1))
	require.NoError(t, st.Set("killme", 2))

	var v int
	require.NoError(t, st.Get("killme", &v))
	require.Equal(t, 2, v)

	require.NoError(t, st.Remove("killme"))
	require.Equal(t, errors.StorageRecordDoesNotExist, st.Remove("killme"))

	require.Equal(t, errors.StorageRecordDoesNotExist, st.Get("killme", &v))
}

func TestLevelDBBackendTransactionCommit(t *testing.T) {
	st, _ := NewTestMemoryLevelDBBackend()
	defer st.Close()

	ts, err := st.OpenTransaction()
	require.NoError(t, err)
	require.True(t, ts.IsTransaction())

	_, err = ts.OpenTransaction()
	require.Error(t, err)

	require.NoError(t, ts.New("key0", "findme"))

	var returned string
	require.NoError(t, ts.Get("key0", &returned))
	require.Equal(t, "findme", returned)

	require.NoError(t, ts.Commit())

	var returnedAgain string
	require.NoError(t, st.Get("key0", &returnedAgain))
	require.Equal(t, "findme", returnedAgain)
}

func TestLevelDBBackendTransactionDiscard(t *testing.T) {
	st, _ := NewTestMemoryLevelDBBackend()
	defer st.Close()

	ts, err := st.OpenTransaction()
	require.NoError(t, err)
	require.NoError(t, ts.New("key0", "findme"))
	require.NoError(t, ts.Discard())

	exists, err := st.Has("key0")
	require.NoError(t, err)
	require.False(t, exists)

	require.Error(t, st.Commit())
}

func TestLevelDBWalk(t *testing.T) {
	st, _ := NewTestMemoryLevelDBBackend()
	defer st.Close()

	for _, k := range []string{"test-3", "test-1", "test-5", "test-2", "test-4", "notest-1"} {
		require.NoError(t, st.New(k, k))
	}

	var walked []string
	err := st.Walk("test-", func(k, v []byte) (bool, error) {
		walked = append(walked, string(k))
		return true, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"test-1", "test-2", "test-3", "test-4", "test-5"}, walked)

	walked = nil
	err = st.Walk("test-", func(k, v []byte) (bool, error) {
		walked = append(walked, string(k))
		return len(walked) < 3, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"test-1", "test-2", "test-3"}, walked)

	stop := stderrors.New("stop")
	err = st.Walk("test-", func(k, v []byte) (bool, error) {
		return false, stop
	})
	require.Equal(t, stop, err)
}
