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

	"github.com/0xsoniclabs/starknet-archive/database/archive"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var confirmFlag = cli.BoolFlag{
	Name:  "yes",
	Usage: "confirm the irreversible operation",
}

var flushFlag = cli.BoolFlag{
	Name:  "flush",
	Usage: "compact the database afterwards, takes long on large databases",
}

var Revert = cli.Command{
	Action:    revert,
	Name:      "revert",
	Usage:     "drops all updates recorded after the given block",
	ArgsUsage: "<block>",
	Flags:     []cli.Flag{&confirmFlag, &flushFlag},
}

var Flush = cli.Command{
	Action: flush,
	Name:   "flush",
	Usage:  "writes buffered updates to disk by compacting the whole database",
}

var Repair = cli.Command{
	Action: repair,
	Name:   "repair",
	Usage:  "attempts to recover a damaged database",
}

var Destroy = cli.Command{
	Action: destroy,
	Name:   "destroy",
	Usage:  "irrecoverably deletes the database",
	Flags:  []cli.Flag{&confirmFlag},
}

func revert(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("missing block to revert to")
	}
	block, err := parseBlock(context.Args().Get(0))
	if err != nil {
		return err
	}
	if !context.Bool(confirmFlag.Name) {
		return fmt.Errorf("reverting drops data irrecoverably, confirm with --%s", confirmFlag.Name)
	}
	return withDatabase(context, func(db *archive.Database, _ zerolog.Logger) error {
		fmt.Fprintf(context.App.Writer, "Reverting to block %d ...\n", block)
		if err := db.RevertTo(block); err != nil {
			return err
		}
		if context.Bool(flushFlag.Name) {
			if err := db.Flush(); err != nil {
				return err
			}
		}
		fmt.Fprintf(context.App.Writer, "Reverted to block %d\n", block)
		return nil
	})
}

func flush(context *cli.Context) error {
	return withDatabase(context, func(db *archive.Database, _ zerolog.Logger) error {
		return db.Flush()
	})
}

func repair(context *cli.Context) error {
	if context.Bool(inMemoryFlag.Name) {
		return fmt.Errorf("an in-memory database can not be repaired")
	}
	dir := context.String(dataDirFlag.Name)
	fmt.Fprintf(context.App.Writer, "Repairing database in %s ...\n", dir)
	if err := archive.Repair(dir); err != nil {
		return err
	}
	fmt.Fprintf(context.App.Writer, "Repaired database in %s\n", dir)
	return nil
}

func destroy(context *cli.Context) error {
	if !context.Bool(confirmFlag.Name) {
		return fmt.Errorf("destroying drops all data irrecoverably, confirm with --%s", confirmFlag.Name)
	}
	log, err := newLogger(context)
	if err != nil {
		return err
	}
	db, err := openDatabase(context, log)
	if err != nil {
		return err
	}
	if err := db.Destroy(); err != nil {
		return err
	}
	fmt.Fprintf(context.App.Writer, "Destroyed database in %s\n", context.String(dataDirFlag.Name))
	return nil
}
