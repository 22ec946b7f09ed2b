// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package archive

import (
	"errors"
	"fmt"
	"sync"

	"github.com/0xsoniclabs/starknet-archive/common"
	"github.com/0xsoniclabs/starknet-archive/database/contract"
	"github.com/0xsoniclabs/starknet-archive/database/history"
	"github.com/0xsoniclabs/starknet-archive/database/kv"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/rs/zerolog"
)

const (
	ErrDecode           = common.ConstError("failed to decode record")
	ErrEncode           = common.ConstError("failed to encode record")
	ErrHistory          = common.ConstError("invalid history update")
	ErrKeyspaceNotFound = common.ConstError("keyspace not found")
	ErrIterator         = common.ConstError("iteration failed")
)

// Parameters configure the opening of a Database.
type Parameters struct {
	// Directory is the location of the LevelDB files. Ignored if InMemory.
	Directory string
	// InMemory selects a volatile store, mainly for tests and experiments.
	InMemory bool

	BlockCacheSize  int
	WriteBufferSize int
	SyncWrites      bool

	Logger zerolog.Logger
}

// Database retains the full history of class hashes, nonces and storage
// values of Starknet contracts, indexed by block number.
//
// All methods are safe for concurrent use. Updates of a single record are
// read-modify-write cycles, so concurrent updates of the same contract
// record or storage slot must be serialized by the caller. RevertTo is
// mutually exclusive with all other operations.
type Database struct {
	store     kv.Store
	directory string // empty for in-memory instances
	log       zerolog.Logger

	// mu is held in read mode by regular operations and in write mode by
	// RevertTo.
	mu sync.RWMutex
	// headMu serializes read-modify-write cycles of the synced head.
	headMu sync.Mutex

	contracts region
	storage   region
	meta      region
}

// Open opens the database described by the given parameters, creating it if
// it does not exist.
func Open(params Parameters) (*Database, error) {
	var store kv.Store
	if params.InMemory {
		store = kv.NewMemoryStore()
	} else {
		db, err := kv.OpenLevelDb(params.Directory, kv.LevelDbConfig{
			BlockCacheSize:  params.BlockCacheSize,
			WriteBufferSize: params.WriteBufferSize,
			SyncWrites:      params.SyncWrites,
		})
		if err != nil {
			return nil, err
		}
		store = db
	}
	res, err := newDatabase(store, params)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}
	return res, nil
}

func newDatabase(store kv.Store, params Parameters) (*Database, error) {
	contracts, err := lookupRegion(ContractRegion)
	if err != nil {
		return nil, err
	}
	storage, err := lookupRegion(KeyRegion)
	if err != nil {
		return nil, err
	}
	meta, err := lookupRegion(MetaRegion)
	if err != nil {
		return nil, err
	}
	directory := params.Directory
	if params.InMemory {
		directory = ""
	}
	log := params.Logger.With().Str("component", "archive").Logger()
	log.Debug().Str("directory", directory).Bool("in_memory", params.InMemory).Msg("opened database")
	return &Database{
		store:     store,
		directory: directory,
		log:       log,
		contracts: contracts,
		storage:   storage,
		meta:      meta,
	}, nil
}

// InsertKey records the value of a storage slot of a contract at the given
// block.
func (db *Database) InsertKey(address, key, value common.Felt, block uint64) error {
	return update(db, db.storage.storageKey(address, key), func(h *history.History[common.Felt]) error {
		return h.Push(block, value)
	})
}

// GetKey returns the latest value of a storage slot.
func (db *Database) GetKey(address, key common.Felt) (common.Felt, bool, error) {
	return lookup(db, db.storage.storageKey(address, key), func(h *history.History[common.Felt]) (common.Felt, bool) {
		return h.Get()
	})
}

// GetKeyAt returns the value a storage slot had at the given block.
func (db *Database) GetKeyAt(address, key common.Felt, block uint64) (common.Felt, bool, error) {
	return lookup(db, db.storage.storageKey(address, key), func(h *history.History[common.Felt]) (common.Felt, bool) {
		return h.GetAt(block)
	})
}

// InsertNonce records the nonce of a contract at the given block.
func (db *Database) InsertNonce(address, nonce common.Felt, block uint64) error {
	return update(db, db.contracts.contractKey(address), func(c *contract.Contract) error {
		return c.PushNonce(block, nonce)
	})
}

func (db *Database) GetNonce(address common.Felt) (common.Felt, bool, error) {
	return lookup(db, db.contracts.contractKey(address), (*contract.Contract).GetNonce)
}

func (db *Database) GetNonceAt(address common.Felt, block uint64) (common.Felt, bool, error) {
	return lookup(db, db.contracts.contractKey(address), func(c *contract.Contract) (common.Felt, bool) {
		return c.GetNonceAt(block)
	})
}

// InsertClassHash records the class hash of a contract at the given block.
// This covers both deployments and class replacements.
func (db *Database) InsertClassHash(address, classHash common.Felt, block uint64) error {
	return update(db, db.contracts.contractKey(address), func(c *contract.Contract) error {
		return c.PushClassHash(block, classHash)
	})
}

func (db *Database) GetClassHash(address common.Felt) (common.Felt, bool, error) {
	return lookup(db, db.contracts.contractKey(address), (*contract.Contract).GetClassHash)
}

func (db *Database) GetClassHashAt(address common.Felt, block uint64) (common.Felt, bool, error) {
	return lookup(db, db.contracts.contractKey(address), func(c *contract.Contract) (common.Felt, bool) {
		return c.GetClassHashAt(block)
	})
}

// Flush forces buffered writes to disk. For LevelDB this compacts the entire
// database, which may take long on large archives. Writes are durable through
// the journal without it.
func (db *Database) Flush() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.store.Flush()
}

func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.log.Debug().Msg("closing database")
	return db.store.Close()
}

// Destroy closes the database and irrecoverably removes its content.
func (db *Database) Destroy() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if mem, ok := db.store.(*kv.MemoryStore); ok {
		mem.Clear()
	}
	err := db.store.Close()
	if db.directory != "" {
		err = errors.Join(err, kv.DestroyLevelDb(db.directory))
	}
	db.log.Info().Str("directory", db.directory).Msg("destroyed database")
	return err
}

// Repair attempts to recover the database in the given directory after a
// crash or file corruption. The database must not be open.
func Repair(directory string) error {
	return kv.RepairLevelDb(directory)
}

// decodable is satisfied by pointers to the record types stored in the
// database.
type decodable[T any] interface {
	*T
	rlp.Decoder
}

// load fetches and decodes the record stored under the given key. A missing
// record is reported as the zero value and false.
func load[T any, P decodable[T]](store kv.Store, key []byte) (T, bool, error) {
	var res T
	data, err := store.Get(key)
	if errors.Is(err, kv.ErrNotFound) {
		return res, false, nil
	}
	if err != nil {
		return res, false, err
	}
	if err := rlp.DecodeBytes(data, P(&res)); err != nil {
		return res, false, fmt.Errorf("%w: record %x: %w", ErrDecode, key, err)
	}
	return res, true, nil
}

func lookup[T any, P decodable[T]](db *Database, key []byte, get func(P) (common.Felt, bool)) (common.Felt, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	record, found, err := load[T, P](db.store, key)
	if err != nil || !found {
		return common.Felt{}, false, err
	}
	value, found := get(P(&record))
	return value, found, nil
}

// update applies the given modification to the record stored under the
// given key, starting from an empty record if there is none.
func update[T any, P decodable[T]](db *Database, key []byte, modify func(P) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	record, _, err := load[T, P](db.store, key)
	if err != nil {
		return err
	}
	if err := modify(P(&record)); err != nil {
		return fmt.Errorf("%w: record %x: %w", ErrHistory, key, err)
	}
	data, err := rlp.EncodeToBytes(P(&record))
	if err != nil {
		return fmt.Errorf("%w: record %x: %w", ErrEncode, key, err)
	}
	return db.store.Put(key, data)
}
