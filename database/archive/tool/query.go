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
	"fmt"
	"strconv"

	"github.com/0xsoniclabs/starknet-archive/common"
	"github.com/0xsoniclabs/starknet-archive/database/archive"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var ClassHash = cli.Command{
	Action:    classHash,
	Name:      "class-hash",
	Usage:     "prints the class hash of a contract",
	ArgsUsage: "<address> [<block>]",
}

var Nonce = cli.Command{
	Action:    nonce,
	Name:      "nonce",
	Usage:     "prints the nonce of a contract",
	ArgsUsage: "<address> [<block>]",
}

var Storage = cli.Command{
	Action:    storage,
	Name:      "storage",
	Usage:     "prints the value of a storage slot of a contract",
	ArgsUsage: "<address> <key> [<block>]",
}

var Head = cli.Command{
	Action: head,
	Name:   "head",
	Usage:  "prints the last block added by the sync",
}

func classHash(context *cli.Context) error {
	args, block, err := parseQueryArgs(context, 1)
	if err != nil {
		return err
	}
	return withDatabase(context, func(db *archive.Database, _ zerolog.Logger) error {
		var value common.Felt
		var found bool
		if block == nil {
			value, found, err = db.GetClassHash(args[0])
		} else {
			value, found, err = db.GetClassHashAt(args[0], *block)
		}
		if err != nil {
			return err
		}
		printValue(context, value, found, false)
		return nil
	})
}

func nonce(context *cli.Context) error {
	args, block, err := parseQueryArgs(context, 1)
	if err != nil {
		return err
	}
	return withDatabase(context, func(db *archive.Database, _ zerolog.Logger) error {
		var value common.Felt
		var found bool
		if block == nil {
			value, found, err = db.GetNonce(args[0])
		} else {
			value, found, err = db.GetNonceAt(args[0], *block)
		}
		if err != nil {
			return err
		}
		printValue(context, value, found, true)
		return nil
	})
}

func storage(context *cli.Context) error {
	args, block, err := parseQueryArgs(context, 2)
	if err != nil {
		return err
	}
	return withDatabase(context, func(db *archive.Database, _ zerolog.Logger) error {
		var value common.Felt
		var found bool
		if block == nil {
			value, found, err = db.GetKey(args[0], args[1])
		} else {
			value, found, err = db.GetKeyAt(args[0], args[1], *block)
		}
		if err != nil {
			return err
		}
		printValue(context, value, found, false)
		return nil
	})
}

func head(context *cli.Context) error {
	return withDatabase(context, func(db *archive.Database, _ zerolog.Logger) error {
		block, found, err := db.SyncedHead()
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintln(context.App.Writer, "not synced")
			return nil
		}
		fmt.Fprintln(context.App.Writer, block)
		return nil
	})
}

// parseQueryArgs parses the given number of field values followed by an
// optional block number.
func parseQueryArgs(context *cli.Context, numFelts int) ([]common.Felt, *uint64, error) {
	args := context.Args()
	if args.Len() < numFelts || args.Len() > numFelts+1 {
		return nil, nil, fmt.Errorf("expected %d or %d arguments, got %d", numFelts, numFelts+1, args.Len())
	}
	felts := make([]common.Felt, numFelts)
	for i := range felts {
		value, err := common.FeltFromHex(args.Get(i))
		if err != nil {
			return nil, nil, err
		}
		felts[i] = value
	}
	if args.Len() == numFelts {
		return felts, nil, nil
	}
	block, err := parseBlock(args.Get(numFelts))
	if err != nil {
		return nil, nil, err
	}
	return felts, &block, nil
}

func parseBlock(arg string) (uint64, error) {
	block, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block number %q: %w", arg, err)
	}
	return block, nil
}

func printValue(context *cli.Context, value common.Felt, found bool, decimal bool) {
	if !found {
		fmt.Fprintln(context.App.Writer, "not found")
		return
	}
	if decimal {
		fmt.Fprintf(context.App.Writer, "%v (%s)\n", value, value.Uint256().Dec())
		return
	}
	fmt.Fprintln(context.App.Writer, value)
}
