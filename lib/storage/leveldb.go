package storage

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbIterator "github.com/syndtr/goleveldb/leveldb/iterator"
	leveldbOpt "github.com/syndtr/goleveldb/leveldb/opt"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	leveldbUtil "github.com/syndtr/goleveldb/leveldb/util"

	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/errors"
)

type LevelDBCore interface {
	Has([]byte, *leveldbOpt.ReadOptions) (bool, error)
	Get([]byte, *leveldbOpt.ReadOptions) ([]byte, error)
	NewIterator(*leveldbUtil.Range, *leveldbOpt.ReadOptions) leveldbIterator.Iterator
	Put([]byte, []byte, *leveldbOpt.WriteOptions) error
	Write(*leveldb.Batch, *leveldbOpt.WriteOptions) error
	Delete([]byte, *leveldbOpt.WriteOptions) error
}

type LevelDBBackend struct {
	DB *leveldb.DB

	Core LevelDBCore
}

func NewLevelDBBackend(config *Config) (*LevelDBBackend, error) {
	st := &LevelDBBackend{}
	if err := st.Init(config); err != nil {
		return nil, err
	}

	return st, nil
}

func setLevelDBCoreError(err error) error {
	if err == nil {
		return nil
	}

	return errors.NewError(
		errors.StorageCoreError.Code,
		fmt.Sprintf("%s: %s", errors.StorageCoreError.Message, err.Error()),
	)
}

func (st *LevelDBBackend) Init(config *Config) (err error) {
	var db *leveldb.DB

	switch config.Scheme {
	case "memory":
		sto := leveldbStorage.NewMemStorage()
		if db, err = leveldb.Open(sto, nil); err != nil {
			err = setLevelDBCoreError(err)
			return
		}
	default:
		err = errors.StorageCoreError.Clone().SetData("scheme", config.Scheme)
		return
	}

	st.DB = db
	st.Core = db

	return
}

func (st *LevelDBBackend) Close() error {
	if st.DB == nil {
		return nil
	}
	return st.DB.Close()
}

func (st *LevelDBBackend) IsTransaction() bool {
	_, ok := st.Core.(*leveldb.Transaction)
	return ok
}

func (st *LevelDBBackend) OpenTransaction() (*LevelDBBackend, error) {
	if st.IsTransaction() {
		return nil, setLevelDBCoreError(fmt.Errorf("this is already *leveldb.Transaction"))
	}

	transaction, err := st.Core.(*leveldb.DB).OpenTransaction()
	if err != nil {
		err = setLevelDBCoreError(err)
		return nil, err
	}

	return &LevelDBBackend{
		DB:   st.DB,
		Core: transaction,
	}, nil
}

func (st *LevelDBBackend) Discard() error {
	ts, ok := st.Core.(*leveldb.Transaction)
	if !ok {
		return setLevelDBCoreError(fmt.Errorf("this is not *leveldb.Transaction"))
	}

	ts.Discard()
	return nil
}

func (st *LevelDBBackend) Commit() error {
	ts, ok := st.Core.(*leveldb.Transaction)
	if !ok {
		return setLevelDBCoreError(fmt.Errorf("this is not *leveldb.Transaction"))
	}

	return setLevelDBCoreError(ts.Commit())
}

func (st *LevelDBBackend) makeKey(key string) []byte {
	return []byte(key)
}

func (st *LevelDBBackend) Has(k string) (bool, error) {
	ok, err := st.Core.Has(st.makeKey(k), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return false, nil
		}
		return false, setLevelDBCoreError(err)
	}

	return ok, nil
}

func (st *LevelDBBackend) Get(k string, i interface{}) (err error) {
	var b []byte
	if b, err = st.Core.Get(st.makeKey(k), nil); err != nil {
		if err == leveldb.ErrNotFound {
			return errors.StorageRecordDoesNotExist
		}
		return setLevelDBCoreError(err)
	}

	if err = common.DecodeJSONValue(b, i); err != nil {
		err = setLevelDBCoreError(err)
		return
	}

	return
}

func encodeValue(v interface{}) (encoded []byte, err error) {
	encoded, err = common.EncodeJSONValue(v)
	err = setLevelDBCoreError(err)
	return
}

func (st *LevelDBBackend) New(k string, v interface{}) (err error) {
	var encoded []byte
	if encoded, err = encodeValue(v); err != nil {
		return
	}

	var exists bool
	if exists, err = st.Has(k); exists || err != nil {
		if exists {
			err = errors.StorageRecordAlreadyExists
		}
		return
	}

	err = setLevelDBCoreError(st.Core.Put(st.makeKey(k), encoded, nil))

	return
}

func (st *LevelDBBackend) News(vs ...Item) (err error) {
	if len(vs) < 1 {
		err = setLevelDBCoreError(fmt.Errorf("empty values"))
		return
	}

	var exists bool
	for _, v := range vs {
		if exists, err = st.Has(v.Key); exists || err != nil {
			if exists {
				err = errors.StorageRecordAlreadyExists
			}
			return
		}
	}

	batch := new(leveldb.Batch)
	for _, v := range vs {
		var encoded []byte
		if encoded, err = encodeValue(v.Value); err != nil {
			return
		}

		batch.Put(st.makeKey(v.Key), encoded)
	}

	err = setLevelDBCoreError(st.Core.Write(batch, nil))

	return
}

func (st *LevelDBBackend) Set(k string, v interface{}) (err error) {
	var encoded []byte
	if encoded, err = encodeValue(v); err != nil {
		return
	}

	var exists bool
	if exists, err = st.Has(k); !exists || err != nil {
		if !exists {
			err = errors.StorageRecordDoesNotExist
		}
		return
	}

	err = setLevelDBCoreError(st.Core.Put(st.makeKey(k), encoded, nil))

	return
}

func (st *LevelDBBackend) Remove(k string) (err error) {
	var exists bool
	if exists, err = st.Has(k); !exists || err != nil {
		if !exists {
			err = errors.StorageRecordDoesNotExist
		}
		return
	}

	err = setLevelDBCoreError(st.Core.Delete(st.makeKey(k), nil))

	return
}

// WalkFunc returns false to stop walking. `key` and `value` are only valid
// until it returns.
type WalkFunc func(key, value []byte) (bool, error)

// Walk visits the keys starting with `prefix` in key order.
func (st *LevelDBBackend) Walk(prefix string, walkFunc WalkFunc) error {
	var dbRange *leveldbUtil.Range
	if len(prefix) > 0 {
		dbRange = leveldbUtil.BytesPrefix(st.makeKey(prefix))
	}

	iter := st.Core.NewIterator(dbRange, nil)
	defer iter.Release()

	for ok := iter.First(); ok; ok = iter.Next() {
		if next, err := walkFunc(iter.Key(), iter.Value()); err != nil {
			return err
		} else if !next {
			break
		}
	}

	return setLevelDBCoreError(iter.Error())
}
