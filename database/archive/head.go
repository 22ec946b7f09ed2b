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

	"github.com/0xsoniclabs/starknet-archive/database/kv"
	"github.com/ethereum/go-ethereum/rlp"
)

var syncedHeadKey = []byte("head")

// SyncedHead returns the last block fully applied by the ingestion, if any.
func (db *Database) SyncedHead() (uint64, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.syncedHead()
}

// SetSyncedHead records the last block fully applied by the ingestion. The
// head is only ever raised; a block at or below the recorded head is ignored.
// RevertTo is the only way of lowering it.
func (db *Database) SetSyncedHead(block uint64) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	db.headMu.Lock()
	defer db.headMu.Unlock()
	head, found, err := db.syncedHead()
	if err != nil {
		return err
	}
	if found && head >= block {
		return nil
	}
	return db.setSyncedHead(block)
}

func (db *Database) syncedHead() (uint64, bool, error) {
	data, err := db.store.Get(db.meta.key(syncedHeadKey))
	if errors.Is(err, kv.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var block uint64
	if err := rlp.DecodeBytes(data, &block); err != nil {
		return 0, false, fmt.Errorf("%w: synced head: %w", ErrDecode, err)
	}
	return block, true, nil
}

func (db *Database) setSyncedHead(block uint64) error {
	data, err := rlp.EncodeToBytes(block)
	if err != nil {
		return fmt.Errorf("%w: synced head: %w", ErrEncode, err)
	}
	return db.store.Put(db.meta.key(syncedHeadKey), data)
}
