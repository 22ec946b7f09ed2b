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
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/0xsoniclabs/starknet-archive/database/archive"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// Run using
//  go run ./database/archive/tool <command> <flags>

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "archive-tool",
		Usage: "maintains a block-indexed archive of Starknet contract state",
		Flags: []cli.Flag{
			&dataDirFlag,
			&inMemoryFlag,
			&blockCacheSizeFlag,
			&writeBufferSizeFlag,
			&syncWritesFlag,
			&logLevelFlag,
			&logFormatFlag,
		},
		Commands: []*cli.Command{
			&Sync,
			&ClassHash,
			&Nonce,
			&Storage,
			&Head,
			&Revert,
			&Flush,
			&Repair,
			&Destroy,
		},
	}
}

var (
	dataDirFlag = cli.StringFlag{
		Name:    "datadir",
		Usage:   "directory of the archive database",
		EnvVars: []string{"ARCHIVE_DATADIR"},
		Value:   "db",
	}
	inMemoryFlag = cli.BoolFlag{
		Name:    "in-memory",
		Usage:   "use a volatile in-memory database",
		EnvVars: []string{"ARCHIVE_IN_MEMORY"},
	}
	blockCacheSizeFlag = cli.IntFlag{
		Name:    "block-cache-size",
		Usage:   "size of the LevelDB block cache in bytes, 0 derives it from the host memory",
		EnvVars: []string{"ARCHIVE_BLOCK_CACHE_SIZE"},
	}
	writeBufferSizeFlag = cli.IntFlag{
		Name:    "write-buffer-size",
		Usage:   "size of the LevelDB write buffer in bytes, 0 uses the LevelDB default",
		EnvVars: []string{"ARCHIVE_WRITE_BUFFER_SIZE"},
	}
	syncWritesFlag = cli.BoolFlag{
		Name:    "sync-writes",
		Usage:   "sync every write to disk",
		EnvVars: []string{"ARCHIVE_SYNC_WRITES"},
	}
	logLevelFlag = cli.StringFlag{
		Name:    "log-level",
		Usage:   "minimum level of log messages (trace, debug, info, warn, error)",
		EnvVars: []string{"ARCHIVE_LOG_LEVEL"},
		Value:   "info",
	}
	logFormatFlag = cli.StringFlag{
		Name:    "log-format",
		Usage:   "format of log messages (console, json)",
		EnvVars: []string{"ARCHIVE_LOG_FORMAT"},
		Value:   "console",
	}
)

// newLogger creates the logger configured by the global flags. Logs are
// written to the error stream of the application.
func newLogger(context *cli.Context) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(context.String(logLevelFlag.Name))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	out := context.App.ErrWriter
	if out == nil {
		out = os.Stderr
	}
	switch format := context.String(logFormatFlag.Name); format {
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func openDatabase(context *cli.Context, log zerolog.Logger) (*archive.Database, error) {
	return archive.Open(archive.Parameters{
		Directory:       context.String(dataDirFlag.Name),
		InMemory:        context.Bool(inMemoryFlag.Name),
		BlockCacheSize:  context.Int(blockCacheSizeFlag.Name),
		WriteBufferSize: context.Int(writeBufferSizeFlag.Name),
		SyncWrites:      context.Bool(syncWritesFlag.Name),
		Logger:          log,
	})
}

// withDatabase runs the given operation on the database configured by the
// global flags and closes it afterwards.
func withDatabase(context *cli.Context, op func(*archive.Database, zerolog.Logger) error) (err error) {
	log, err := newLogger(context)
	if err != nil {
		return err
	}
	db, err := openDatabase(context, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return op(db, log)
}
