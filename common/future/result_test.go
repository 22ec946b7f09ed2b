// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package future

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResult_OkAndErrAreDone(t *testing.T) {
	require := require.New(t)

	ok := Ok(12)
	require.True(ok.Done())
	require.True(ok.Succeeded())
	value, err := ok.Get()
	require.NoError(err)
	require.Equal(12, value)

	injected := errors.New("injected")
	failed := Err[int](injected)
	require.True(failed.Done())
	require.False(failed.Succeeded())
	_, err = failed.Get()
	require.ErrorIs(err, injected)

	var pending Result[int]
	require.False(pending.Done())
	require.False(pending.Succeeded())
}

func TestPrefix_StopsAtFirstUnsuccessfulResult(t *testing.T) {
	injected := errors.New("injected")
	tests := map[string]struct {
		results []Result[int]
		values  []int
		stop    int
	}{
		"empty": {
			results: nil,
			values:  []int{},
			stop:    0,
		},
		"all ok": {
			results: []Result[int]{Ok(1), Ok(2), Ok(3)},
			values:  []int{1, 2, 3},
			stop:    3,
		},
		"failure in the middle": {
			results: []Result[int]{Ok(1), Err[int](injected), Ok(3)},
			values:  []int{1},
			stop:    1,
		},
		"pending entry": {
			results: []Result[int]{Ok(1), Ok(2), {}},
			values:  []int{1, 2},
			stop:    2,
		},
		"first fails": {
			results: []Result[int]{Err[int](injected), Ok(2)},
			values:  []int{},
			stop:    0,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			values, stop := Prefix(test.results)
			require.Equal(t, test.values, values)
			require.Equal(t, test.stop, stop)
		})
	}
}
