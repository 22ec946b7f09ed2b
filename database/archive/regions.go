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
	"fmt"

	"github.com/0xsoniclabs/starknet-archive/common"
)

// Names of the regions the key space of the underlying store is split into.
const (
	ContractRegion = "contract"
	KeyRegion      = "key"
	MetaRegion     = "meta"
)

// region is a disjoint namespace of the underlying store. Since the store
// offers a single ordered key space, regions are realized by a one-byte key
// prefix.
type region struct {
	name   string
	prefix byte
}

var regions = map[string]region{
	ContractRegion: {name: ContractRegion, prefix: 'c'},
	KeyRegion:      {name: KeyRegion, prefix: 'k'},
	MetaRegion:     {name: MetaRegion, prefix: 'm'},
}

func lookupRegion(name string) (region, error) {
	r, found := regions[name]
	if !found {
		return region{}, fmt.Errorf("%w: %q", ErrKeyspaceNotFound, name)
	}
	return r, nil
}

// key builds a key of this region by concatenating the given fixed-width
// components.
func (r region) key(parts ...[]byte) []byte {
	size := 1
	for _, part := range parts {
		size += len(part)
	}
	res := make([]byte, 0, size)
	res = append(res, r.prefix)
	for _, part := range parts {
		res = append(res, part...)
	}
	return res
}

// contractKey addresses the record holding class hash and nonce history of
// a contract.
func (r region) contractKey(address common.Felt) []byte {
	return r.key(address.Bytes())
}

// storageKey addresses the value history of a single storage slot. Both
// components are fixed width, so no separator is needed.
func (r region) storageKey(address, slot common.Felt) []byte {
	return r.key(address.Bytes(), slot.Bytes())
}
