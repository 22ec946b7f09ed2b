// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// FeltSize is the number of bytes of the binary representation of a Felt.
const FeltSize = 32

// ErrInvalidFelt is returned when parsing a textual field element fails.
const ErrInvalidFelt = ConstError("invalid field element")

// Felt is an element of the Starknet prime field, stored as a 32-byte
// big-endian number. It is used for addresses, class hashes, storage keys,
// storage values, and nonces alike.
type Felt [FeltSize]byte

// fieldModulus is the Starknet prime P = 2^251 + 17*2^192 + 1. Every valid
// felt is strictly below it.
var fieldModulus = uint256.MustFromHex("0x800000000000011000000000000000000000000000000000000000000000001")

// FeltFromUint64 creates a felt holding the given small value.
func FeltFromUint64(value uint64) Felt {
	return Felt(uint256.NewInt(value).Bytes32())
}

// FeltFromHex parses a hex string with an optional 0x prefix. Up to 64 hex
// digits are accepted, leading zeros may be omitted.
func FeltFromHex(s string) (Felt, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(digits) == 0 || len(digits) > 2*FeltSize {
		return Felt{}, fmt.Errorf("%w: %q has %d hex digits", ErrInvalidFelt, s, len(digits))
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	decoded, err := hex.DecodeString(digits)
	if err != nil {
		return Felt{}, fmt.Errorf("%w: %q: %w", ErrInvalidFelt, s, err)
	}
	var res Felt
	copy(res[FeltSize-len(decoded):], decoded)
	if !res.Uint256().Lt(fieldModulus) {
		return Felt{}, fmt.Errorf("%w: %q exceeds the field modulus", ErrInvalidFelt, s)
	}
	return res, nil
}

// MustFeltFromHex is like FeltFromHex but panics on invalid input. It is
// intended for constants and tests.
func MustFeltFromHex(s string) Felt {
	res, err := FeltFromHex(s)
	if err != nil {
		panic(err)
	}
	return res
}

// Bytes returns the fixed-width big-endian representation of the felt.
func (f Felt) Bytes() []byte {
	return f[:]
}

// Uint256 returns the numeric value of the felt.
func (f Felt) Uint256() *uint256.Int {
	return new(uint256.Int).SetBytes32(f[:])
}

// Cmp compares two felts numerically, returning -1, 0, or +1.
func (f Felt) Cmp(other Felt) int {
	return bytes.Compare(f[:], other[:])
}

func (f Felt) IsZero() bool {
	return f == Felt{}
}

// String renders the felt as a fixed-length, 0x-prefixed hex string.
func (f Felt) String() string {
	return hexutil.Encode(f[:])
}

func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Felt) UnmarshalText(text []byte) error {
	res, err := FeltFromHex(string(text))
	if err != nil {
		return err
	}
	*f = res
	return nil
}
