// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package history

import (
	"fmt"
	"io"
	"sort"

	"github.com/0xsoniclabs/starknet-archive/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// ErrNonMonotonicIndex is returned when a value is pushed for a block that is
// not strictly after the latest block recorded in a history.
const ErrNonMonotonicIndex = common.ConstError("non-monotonic block index")

// History is a sparse, append-only record of the values of a single field
// over the block axis. Entries are kept sorted by block number, with no two
// entries for the same block. The zero value is an empty history.
//
// A History is not safe for concurrent use.
type History[V any] struct {
	entries []Entry[V]
}

// Entry is a single value recorded in a History.
type Entry[V any] struct {
	Block uint64
	Value V
}

// Push records the value of the field at the given block. The block must be
// strictly greater than any block recorded so far. On failure the history is
// left unchanged.
func (h *History[V]) Push(block uint64, value V) error {
	if n := len(h.entries); n > 0 && block <= h.entries[n-1].Block {
		return fmt.Errorf("%w: block %d is not after block %d", ErrNonMonotonicIndex, block, h.entries[n-1].Block)
	}
	h.entries = append(h.entries, Entry[V]{Block: block, Value: value})
	return nil
}

// Get returns the most recent value, if any.
func (h *History[V]) Get() (V, bool) {
	if len(h.entries) == 0 {
		var zero V
		return zero, false
	}
	return h.entries[len(h.entries)-1].Value, true
}

// GetAt returns the value the field had at the given block, which is the
// value of the latest entry recorded at or before that block.
func (h *History[V]) GetAt(block uint64) (V, bool) {
	pos := h.split(block)
	if pos == 0 {
		var zero V
		return zero, false
	}
	return h.entries[pos-1].Value, true
}

// RevertTo drops all entries recorded after the given block.
func (h *History[V]) RevertTo(block uint64) {
	pos := h.split(block)
	clear(h.entries[pos:])
	h.entries = h.entries[:pos]
}

func (h *History[V]) IsEmpty() bool {
	return len(h.entries) == 0
}

// Len returns the number of recorded entries.
func (h *History[V]) Len() int {
	return len(h.entries)
}

// LastBlock returns the block of the most recent entry, if any.
func (h *History[V]) LastBlock() (uint64, bool) {
	if len(h.entries) == 0 {
		return 0, false
	}
	return h.entries[len(h.entries)-1].Block, true
}

// Entries returns a copy of the recorded entries in ascending block order.
func (h *History[V]) Entries() []Entry[V] {
	return append([]Entry[V](nil), h.entries...)
}

// split returns the number of entries recorded at or before the given block.
func (h *History[V]) split(block uint64) int {
	return sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].Block > block
	})
}

// EncodeRLP encodes the history as an RLP list of [block, value] pairs.
func (h History[V]) EncodeRLP(w io.Writer) error {
	entries := h.entries
	if entries == nil {
		entries = []Entry[V]{}
	}
	return rlp.Encode(w, entries)
}

// DecodeRLP restores a history encoded by EncodeRLP. Lists that are not
// strictly ordered by block are rejected.
func (h *History[V]) DecodeRLP(s *rlp.Stream) error {
	var entries []Entry[V]
	if err := s.Decode(&entries); err != nil {
		return err
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Block >= entries[i].Block {
			return fmt.Errorf("%w: encoded block %d follows block %d", ErrNonMonotonicIndex, entries[i].Block, entries[i-1].Block)
		}
	}
	if len(entries) == 0 {
		entries = nil
	}
	h.entries = entries
	return nil
}
