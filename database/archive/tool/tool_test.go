// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/0xsoniclabs/starknet-archive/common"
	"github.com/0xsoniclabs/starknet-archive/ingest"
	"github.com/stretchr/testify/require"
)

func runTool(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"archive-tool"}, args...))
	return out.String(), err
}

// newFeed serves state updates where block n sets storage slot 0x5 of
// contract 0x10 to n+1 and its nonce to n. Block 0 deploys the contract.
func newFeed(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		block, err := strconv.ParseUint(r.URL.Query().Get("blockNumber"), 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		address := common.FeltFromUint64(0x10)
		update := ingest.StateUpdate{StateDiff: ingest.StateDiff{
			StorageDiffs: map[common.Felt][]ingest.StorageDiff{
				address: {{Key: common.FeltFromUint64(5), Value: common.FeltFromUint64(block + 1)}},
			},
			Nonces: map[common.Felt]common.Felt{address: common.FeltFromUint64(block)},
		}}
		if block == 0 {
			update.StateDiff.DeployedContracts = []ingest.DeployedContract{{Address: address, ClassHash: common.FeltFromUint64(0x20)}}
		}
		if err := json.NewEncoder(w).Encode(update); err != nil {
			t.Errorf("failed to encode update: %v", err)
		}
	}))
}

func TestTool_SyncQueryAndRevert(t *testing.T) {
	require := require.New(t)

	var requests atomic.Int32
	feed := newFeed(t, &requests)
	defer feed.Close()

	dir := t.TempDir()
	global := []string{"--datadir", dir, "--log-level", "error"}
	run := func(args ...string) string {
		t.Helper()
		out, err := runTool(t, append(global, args...)...)
		require.NoError(err, "running %v", args)
		return strings.TrimSpace(out)
	}

	require.Equal("not synced", run("head"))

	run("sync", "--gateway", feed.URL, "--to", "4", "--window", "2")
	require.Equal(int32(5), requests.Load())
	require.Equal("4", run("head"))

	require.Equal(common.FeltFromUint64(0x20).String(), run("class-hash", "0x10"))
	require.Equal("not found", run("class-hash", "0x11"))
	require.Equal(common.FeltFromUint64(2).String()+" (2)", run("nonce", "0x10", "2"))
	require.Equal(common.FeltFromUint64(4).String(), run("storage", "0x10", "0x5", "3"))
	require.Equal(common.FeltFromUint64(5).String(), run("storage", "0x10", "0x5"))

	_, err := runTool(t, append(global, "revert", "2")...)
	require.ErrorContains(err, "--yes")

	run("revert", "--yes", "--flush", "2")
	require.Equal("2", run("head"))
	require.Equal(common.FeltFromUint64(3).String(), run("storage", "0x10", "0x5"))

	// sync resumes after the head
	run("sync", "--gateway", feed.URL, "--to", "4", "--flush")
	require.Equal(int32(7), requests.Load())
	require.Equal("4", run("head"))
	require.Equal(common.FeltFromUint64(5).String(), run("storage", "0x10", "0x5"))

	// re-syncing an older range keeps the head
	run("sync", "--gateway", feed.URL, "--from", "0", "--to", "1")
	require.Equal(int32(9), requests.Load())
	require.Equal("4", run("head"))

	// a start beyond the block after the head would leave a gap
	_, err = runTool(t, append(global, "sync", "--gateway", feed.URL, "--from", "7", "--to", "9")...)
	require.ErrorContains(err, "skip blocks 5 to 6")
	require.Equal(int32(9), requests.Load())
	require.Equal("4", run("head"))

	run("flush")
	run("repair")
	require.Equal("4", run("head"))

	run("destroy", "--yes")
	_, err = os.Stat(dir)
	require.True(os.IsNotExist(err))
}

func TestTool_InvalidArgumentsAreReported(t *testing.T) {
	dir := t.TempDir()
	tests := map[string][]string{
		"missing address":  {"class-hash"},
		"invalid address":  {"class-hash", "0xzz"},
		"too many args":    {"nonce", "0x1", "2", "3"},
		"invalid block":    {"storage", "0x1", "0x2", "latest"},
		"missing to":       {"sync"},
		"revert no block":  {"revert", "--yes"},
		"destroy no yes":   {"destroy"},
		"bad log level":    {"--log-level", "loud", "head"},
		"bad log format":   {"--log-format", "xml", "head"},
		"out of field":     {"class-hash", "0x800000000000011000000000000000000000000000000000000000000000001"},
		"repair in memory": {"--in-memory", "repair"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := runTool(t, append([]string{"--datadir", dir}, args...)...)
			require.Error(t, err)
		})
	}
}
