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
	"bytes"
	"sync"

	"github.com/google/btree"
)

const memoryTreeDegree = 32

type entry struct {
	key   []byte
	value []byte
}

func lessEntry(a, b entry) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// MemoryStore is an in-memory Store, mainly intended for tests and
// short-lived tools.
type MemoryStore struct {
	mu     sync.RWMutex
	tree   *btree.BTreeG[entry]
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tree: btree.NewG(memoryTreeDegree, lessEntry)}
}

func (s *MemoryStore) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	found, ok := s.tree.Get(entry{key: key})
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(found.value), nil
}

func (s *MemoryStore) Put(key []byte, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.tree.ReplaceOrInsert(entry{
		key:   bytes.Clone(key),
		value: append([]byte{}, value...),
	})
	return nil
}

func (s *MemoryStore) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.tree.Delete(entry{key: key})
	return nil
}

// NewIterator collects the matching entries up front, which makes the
// iterator independent of later modifications of the store.
func (s *MemoryStore) NewIterator(prefix []byte) Iterator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &memoryIterator{pos: -1, err: ErrClosed}
	}
	var entries []entry
	s.tree.AscendGreaterOrEqual(entry{key: prefix}, func(e entry) bool {
		if !bytes.HasPrefix(e.key, prefix) {
			return false
		}
		entries = append(entries, e)
		return true
	})
	return &memoryIterator{entries: entries, pos: -1}
}

func (s *MemoryStore) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Clear removes all entries of the store.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Clear(false)
}

type memoryIterator struct {
	entries []entry
	pos     int
	err     error
}

func (i *memoryIterator) Next() bool {
	if i.err != nil || i.pos >= len(i.entries) {
		return false
	}
	i.pos++
	return i.pos < len(i.entries)
}

func (i *memoryIterator) Key() []byte {
	if i.pos < 0 || i.pos >= len(i.entries) {
		return nil
	}
	return i.entries[i.pos].key
}

func (i *memoryIterator) Value() []byte {
	if i.pos < 0 || i.pos >= len(i.entries) {
		return nil
	}
	return i.entries[i.pos].value
}

func (i *memoryIterator) Error() error {
	return i.err
}

func (i *memoryIterator) Release() {
	i.entries = nil
	i.pos = 0
}
