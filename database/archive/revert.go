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
	"bytes"
	"fmt"
	"time"

	"github.com/0xsoniclabs/starknet-archive/common"
	"github.com/0xsoniclabs/starknet-archive/database/contract"
	"github.com/0xsoniclabs/starknet-archive/database/history"
	"github.com/0xsoniclabs/tracy"
	"github.com/ethereum/go-ethereum/rlp"
)

// RevertStats summarizes the effect of a revert on one region.
type RevertStats struct {
	Visited int
	Updated int
	Deleted int
}

// RevertTo drops every update recorded after the given block from all
// contract records and storage slots. Records left without any entries are
// deleted. The synced head is lowered to the given block if it is above.
//
// The operation fails on the first error encountered. Records processed up
// to this point remain reverted; there is no rollback.
func (db *Database) RevertTo(block uint64) error {
	zone := tracy.ZoneBegin("archive::revert_to")
	defer zone.End()

	db.mu.Lock()
	defer db.mu.Unlock()

	start := time.Now()
	storage, err := revertRegion[history.History[common.Felt]](db, KeyRegion, block)
	if err != nil {
		return err
	}
	contracts, err := revertRegion[contract.Contract](db, ContractRegion, block)
	if err != nil {
		return err
	}

	head, found, err := db.syncedHead()
	if err != nil {
		return err
	}
	if found && head > block {
		if err := db.setSyncedHead(block); err != nil {
			return err
		}
	}

	db.log.Info().
		Uint64("block", block).
		Int("storage_visited", storage.Visited).
		Int("storage_updated", storage.Updated).
		Int("storage_deleted", storage.Deleted).
		Int("contracts_visited", contracts.Visited).
		Int("contracts_updated", contracts.Updated).
		Int("contracts_deleted", contracts.Deleted).
		Dur("duration", time.Since(start)).
		Msg("reverted database")
	return nil
}

// revertible is satisfied by pointers to record types supporting reverts.
type revertible[T any] interface {
	decodable[T]
	RevertTo(block uint64)
	IsEmpty() bool
}

// revertRegion scans all records of the named region and truncates their
// histories to the given block. The caller must hold the write lock.
func revertRegion[T any, P revertible[T]](db *Database, name string, block uint64) (RevertStats, error) {
	zone := tracy.ZoneBegin("archive::revert_region")
	defer zone.End()

	var stats RevertStats
	r, err := lookupRegion(name)
	if err != nil {
		return stats, err
	}

	iter := db.store.NewIterator([]byte{r.prefix})
	defer iter.Release()
	for iter.Next() {
		stats.Visited++
		key := bytes.Clone(iter.Key())
		data := iter.Value()

		var record T
		if err := rlp.DecodeBytes(data, P(&record)); err != nil {
			return stats, fmt.Errorf("%w: record %x in region %s: %w", ErrDecode, key, name, err)
		}
		P(&record).RevertTo(block)

		if P(&record).IsEmpty() {
			if err := db.store.Delete(key); err != nil {
				return stats, err
			}
			stats.Deleted++
			continue
		}

		encoded, err := rlp.EncodeToBytes(P(&record))
		if err != nil {
			return stats, fmt.Errorf("%w: record %x in region %s: %w", ErrEncode, key, name, err)
		}
		if bytes.Equal(encoded, data) {
			continue
		}
		if err := db.store.Put(key, encoded); err != nil {
			return stats, err
		}
		stats.Updated++
	}
	if err := iter.Error(); err != nil {
		return stats, fmt.Errorf("%w: region %s: %w", ErrIterator, name, err)
	}
	return stats, nil
}
