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
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFelt_HexRoundTrip(t *testing.T) {
	require := require.New(t)

	inputs := []string{
		"0x0",
		"0x1",
		"0x7b",
		"0x00da114221cb83fa859dbdb4c44beeaa0bb37c7537ad5ae66fe5e0efd20e6eb3",
		"da114221cb83fa859dbdb4c44beeaa0bb37c7537ad5ae66fe5e0efd20e6eb3",
	}
	for _, input := range inputs {
		felt, err := FeltFromHex(input)
		require.NoError(err, input)

		text := felt.String()
		require.Len(text, 2+2*FeltSize)

		restored, err := FeltFromHex(text)
		require.NoError(err)
		require.Equal(felt, restored)
	}
}

func TestFelt_ShortHexIsLeftPadded(t *testing.T) {
	felt, err := FeltFromHex("0x7b")
	require.NoError(t, err)
	require.Equal(t, FeltFromUint64(123), felt)
	require.Equal(t, "0x"+strings.Repeat("0", 62)+"7b", felt.String())
}

func TestFelt_InvalidInputIsRejected(t *testing.T) {
	inputs := []string{
		"",
		"0x",
		"0xzz",
		"0x" + strings.Repeat("1", 65),
		// the field modulus itself and anything above it
		"0x800000000000011000000000000000000000000000000000000000000000001",
		"0x" + strings.Repeat("f", 64),
	}
	for _, input := range inputs {
		_, err := FeltFromHex(input)
		require.ErrorIs(t, err, ErrInvalidFelt, input)
	}
}

func TestFelt_LargestValueBelowModulusIsAccepted(t *testing.T) {
	_, err := FeltFromHex("0x800000000000011000000000000000000000000000000000000000000000000")
	require.NoError(t, err)
}

func TestFelt_CmpOrdersNumerically(t *testing.T) {
	require := require.New(t)
	a := FeltFromUint64(1)
	b := FeltFromUint64(256)
	require.Equal(-1, a.Cmp(b))
	require.Equal(1, b.Cmp(a))
	require.Equal(0, a.Cmp(a))
}

func TestFelt_CanBeUsedAsJsonMapKey(t *testing.T) {
	require := require.New(t)

	in := map[Felt]Felt{FeltFromUint64(1): FeltFromUint64(2)}
	data, err := json.Marshal(in)
	require.NoError(err)

	var out map[Felt]Felt
	require.NoError(json.Unmarshal(data, &out))
	require.Equal(in, out)

	require.NoError(json.Unmarshal([]byte(`{"0x5":"0x6"}`), &out))
	require.Equal(FeltFromUint64(6), out[FeltFromUint64(5)])
}

func TestFelt_Uint256ReflectsValue(t *testing.T) {
	require.Equal(t, "300", FeltFromUint64(300).Uint256().Dec())
}
