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
	"github.com/0xsoniclabs/starknet-archive/common"
)

const (
	ErrNotFound = common.ConstError("not found")
	ErrClosed   = common.ConstError("store closed")
)

//go:generate mockgen -source store.go -destination store_mocks.go -package kv

// Store is an ordered, byte-keyed key-value store. All operations are safe
// for concurrent use.
type Store interface {
	// Get returns the value stored for the given key or ErrNotFound.
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error

	// NewIterator iterates in ascending key order over all entries with the
	// given prefix. The iterator operates on a snapshot of the store taken at
	// creation time; updates performed during the iteration are not visible.
	NewIterator(prefix []byte) Iterator

	// Flush forces buffered writes into durable storage.
	Flush() error
	Close() error
}

// Iterator is a cursor over a range of store entries. Key and Value are only
// valid until the next call to Next and must be copied if retained. Release
// must be called once the iterator is no longer needed.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Release()
}
