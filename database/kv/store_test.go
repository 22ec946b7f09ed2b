// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var _ Store = (*LevelDbStore)(nil)
var _ Store = (*MemoryStore)(nil)
var _ Store = (*MockStore)(nil)

func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"leveldb": func(t *testing.T) Store {
			store, err := OpenLevelDb(t.TempDir(), LevelDbConfig{})
			require.NoError(t, err)
			return store
		},
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
	}
}

func TestStore_CanSetGetAndDelete(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			store := factory(t)

			key1 := []byte("key1")
			value1 := []byte("value1")
			key2 := []byte("key2")
			value2 := []byte("value2")

			require.NoError(store.Put(key1, value1))
			require.NoError(store.Put(key2, value2))

			val, err := store.Get(key1)
			require.NoError(err)
			require.Equal(value1, val)

			val, err = store.Get(key2)
			require.NoError(err)
			require.Equal(value2, val)

			require.NoError(store.Put(key1, value2))
			val, err = store.Get(key1)
			require.NoError(err)
			require.Equal(value2, val)

			require.NoError(store.Delete(key1))
			_, err = store.Get(key1)
			require.ErrorIs(err, ErrNotFound)

			// deleting missing keys is fine
			require.NoError(store.Delete([]byte("nonexistent")))

			require.NoError(store.Flush())
			require.NoError(store.Close())
		})
	}
}

func TestStore_ReturnsNotFoundForMissingKey(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			_, err := store.Get([]byte("nonexistent"))
			require.ErrorIs(t, err, ErrNotFound)
			require.NoError(t, store.Close())
		})
	}
}

func TestStore_IteratorVisitsPrefixInOrder(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			store := factory(t)

			for _, key := range []string{"b3", "a1", "b1", "c1", "b2", "b"} {
				require.NoError(store.Put([]byte(key), []byte("v"+key)))
			}

			iter := store.NewIterator([]byte("b"))
			keys := []string{}
			for iter.Next() {
				keys = append(keys, string(iter.Key()))
				require.Equal("v"+string(iter.Key()), string(iter.Value()))
			}
			require.NoError(iter.Error())
			iter.Release()

			require.Equal([]string{"b", "b1", "b2", "b3"}, keys)
			require.NoError(store.Close())
		})
	}
}

func TestStore_IteratorIsNotAffectedByConcurrentUpdates(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			store := factory(t)

			for _, key := range []string{"k1", "k2", "k3"} {
				require.NoError(store.Put([]byte(key), []byte("old")))
			}

			iter := store.NewIterator([]byte("k"))
			count := 0
			for iter.Next() {
				require.Equal("old", string(iter.Value()))
				key := append([]byte{}, iter.Key()...)
				if count == 0 {
					require.NoError(store.Delete([]byte("k3")))
				}
				require.NoError(store.Put(key, []byte("new")))
				count++
			}
			require.NoError(iter.Error())
			iter.Release()
			require.Equal(3, count)

			require.NoError(store.Close())
		})
	}
}

func TestLevelDbStore_CanKeepDataPersistent(t *testing.T) {
	require := require.New(t)
	key := []byte("key1")
	value := []byte("value1")

	dir := t.TempDir()

	store, err := OpenLevelDb(dir, LevelDbConfig{SyncWrites: true})
	require.NoError(err)
	require.NoError(store.Put(key, value))
	require.NoError(store.Close())

	store2, err := OpenLevelDb(dir, LevelDbConfig{})
	require.NoError(err)

	val, err := store2.Get(key)
	require.NoError(err)
	require.Equal(value, val)

	require.NoError(store2.Close())
}

func TestLevelDbStore_OperationsOnClosedStoreFail(t *testing.T) {
	store, err := OpenLevelDb(t.TempDir(), LevelDbConfig{})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Get([]byte("key"))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, store.Put([]byte("key"), nil), ErrClosed)
}

func TestLevelDbStore_RepairKeepsContent(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	store, err := OpenLevelDb(dir, LevelDbConfig{})
	require.NoError(err)
	require.NoError(store.Put([]byte("key"), []byte("value")))
	require.NoError(store.Flush())
	require.NoError(store.Close())

	require.NoError(RepairLevelDb(dir))

	store, err = OpenLevelDb(dir, LevelDbConfig{})
	require.NoError(err)
	val, err := store.Get([]byte("key"))
	require.NoError(err)
	require.Equal([]byte("value"), val)
	require.NoError(store.Close())
}

func TestLevelDbStore_DestroyRemovesDirectory(t *testing.T) {
	require := require.New(t)
	dir := filepath.Join(t.TempDir(), "db")

	store, err := OpenLevelDb(dir, LevelDbConfig{})
	require.NoError(err)
	require.NoError(store.Put([]byte("key"), []byte("value")))
	require.NoError(store.Close())

	require.NoError(DestroyLevelDb(dir))
	_, err = os.Stat(dir)
	require.True(os.IsNotExist(err))
}

func TestDefaultBlockCacheSize_IsBounded(t *testing.T) {
	require := require.New(t)
	require.Equal(minBlockCacheSize, defaultBlockCacheSize(0))
	require.Equal(64*1024*1024, defaultBlockCacheSize(4<<30))
	require.Equal(maxBlockCacheSize, defaultBlockCacheSize(1<<50))
}

func TestMemoryStore_ClearRemovesAllEntries(t *testing.T) {
	require := require.New(t)
	store := NewMemoryStore()
	require.NoError(store.Put([]byte("a"), []byte("1")))
	store.Clear()
	_, err := store.Get([]byte("a"))
	require.ErrorIs(err, ErrNotFound)
}

func TestMemoryStore_OperationsOnClosedStoreFail(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())

	_, err := store.Get([]byte("key"))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, store.Put([]byte("key"), nil), ErrClosed)
	require.ErrorIs(t, store.NewIterator(nil).Error(), ErrClosed)
}
