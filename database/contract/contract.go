// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package contract

import (
	"io"

	"github.com/0xsoniclabs/starknet-archive/common"
	"github.com/0xsoniclabs/starknet-archive/database/history"
	"github.com/ethereum/go-ethereum/rlp"
)

// Contract bundles the class hash and nonce histories of a single contract
// address, such that both are persisted as a single record.
type Contract struct {
	classHash history.History[common.Felt]
	nonce     history.History[common.Felt]
}

func New() *Contract {
	return &Contract{}
}

func (c *Contract) PushClassHash(block uint64, classHash common.Felt) error {
	return c.classHash.Push(block, classHash)
}

func (c *Contract) GetClassHash() (common.Felt, bool) {
	return c.classHash.Get()
}

func (c *Contract) GetClassHashAt(block uint64) (common.Felt, bool) {
	return c.classHash.GetAt(block)
}

func (c *Contract) PushNonce(block uint64, nonce common.Felt) error {
	return c.nonce.Push(block, nonce)
}

func (c *Contract) GetNonce() (common.Felt, bool) {
	return c.nonce.Get()
}

func (c *Contract) GetNonceAt(block uint64) (common.Felt, bool) {
	return c.nonce.GetAt(block)
}

// RevertTo drops all class hash and nonce updates after the given block.
func (c *Contract) RevertTo(block uint64) {
	c.classHash.RevertTo(block)
	c.nonce.RevertTo(block)
}

// IsEmpty is true if neither a class hash nor a nonce is recorded.
func (c *Contract) IsEmpty() bool {
	return c.classHash.IsEmpty() && c.nonce.IsEmpty()
}

// encodedContract is the on-disk layout of a contract record.
type encodedContract struct {
	ClassHash history.History[common.Felt]
	Nonce     history.History[common.Felt]
}

func (c Contract) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &encodedContract{
		ClassHash: c.classHash,
		Nonce:     c.nonce,
	})
}

func (c *Contract) DecodeRLP(s *rlp.Stream) error {
	var decoded encodedContract
	if err := s.Decode(&decoded); err != nil {
		return err
	}
	c.classHash = decoded.ClassHash
	c.nonce = decoded.Nonce
	return nil
}
