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
	"errors"
	"fmt"
	"os"

	"github.com/pbnjay/memory"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	minBlockCacheSize = 8 * opt.MiB
	maxBlockCacheSize = 512 * opt.MiB
)

// LevelDbConfig tunes the LevelDB backend. Zero values select defaults.
type LevelDbConfig struct {
	// BlockCacheSize is the size of the block cache in bytes. If zero, a
	// size derived from the host's memory is used.
	BlockCacheSize int
	// WriteBufferSize is the size of the in-memory write buffer in bytes.
	WriteBufferSize int
	// SyncWrites forces an fsync of the journal on every write.
	SyncWrites bool
}

func (c LevelDbConfig) options() *opt.Options {
	cache := c.BlockCacheSize
	if cache <= 0 {
		cache = defaultBlockCacheSize(memory.TotalMemory())
	}
	return &opt.Options{
		BlockCacheCapacity: cache,
		WriteBuffer:        c.WriteBufferSize,
		Compression:        opt.SnappyCompression,
	}
}

// defaultBlockCacheSize uses 1/64 of the total memory, within fixed bounds.
func defaultBlockCacheSize(totalMemory uint64) int {
	size := totalMemory / 64
	if size < minBlockCacheSize {
		return minBlockCacheSize
	}
	if size > maxBlockCacheSize {
		return maxBlockCacheSize
	}
	return int(size)
}

// LevelDbStore is a Store persisting its content in a LevelDB directory.
type LevelDbStore struct {
	db     *leveldb.DB
	writes *opt.WriteOptions
}

// OpenLevelDb opens the LevelDB store in the given directory, creating it if
// it does not exist yet.
func OpenLevelDb(path string, config LevelDbConfig) (*LevelDbStore, error) {
	db, err := leveldb.OpenFile(path, config.options())
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB in %s: %w", path, err)
	}
	return &LevelDbStore{
		db:     db,
		writes: &opt.WriteOptions{Sync: config.SyncWrites},
	}, nil
}

func (s *LevelDbStore) Get(key []byte) ([]byte, error) {
	data, err := s.db.Get(key, nil)
	if err != nil {
		return nil, translate(err)
	}
	return data, nil
}

func (s *LevelDbStore) Put(key []byte, value []byte) error {
	return translate(s.db.Put(key, value, s.writes))
}

func (s *LevelDbStore) Delete(key []byte) error {
	return translate(s.db.Delete(key, s.writes))
}

func (s *LevelDbStore) NewIterator(prefix []byte) Iterator {
	return s.db.NewIterator(util.BytesPrefix(prefix), nil)
}

// Flush compacts the memory table into table files. LevelDB offers no other
// way of forcing buffered writes out of the journal. The compaction covers the
// whole key range, so its cost grows with the size of the database.
func (s *LevelDbStore) Flush() error {
	return translate(s.db.CompactRange(util.Range{}))
}

func (s *LevelDbStore) Close() error {
	return translate(s.db.Close())
}

// RepairLevelDb attempts to recover a damaged LevelDB directory by rebuilding
// its manifest from the table files found. The store must not be open.
func RepairLevelDb(path string) error {
	db, err := leveldb.RecoverFile(path, nil)
	if err != nil {
		return fmt.Errorf("failed to recover LevelDB in %s: %w", path, err)
	}
	return db.Close()
}

// DestroyLevelDb irrecoverably deletes the LevelDB directory. The store must
// not be open.
func DestroyLevelDb(path string) error {
	return os.RemoveAll(path)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leveldb.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return ErrClosed
	}
	return err
}
