// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xsoniclabs/starknet-archive/common"
	"github.com/0xsoniclabs/starknet-archive/common/future"
	"github.com/0xsoniclabs/tracy"
	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source pipeline.go -destination pipeline_mocks.go -package ingest

// Updater is the write interface of the database the pipeline feeds.
type Updater interface {
	InsertClassHash(address, classHash common.Felt, block uint64) error
	InsertNonce(address, nonce common.Felt, block uint64) error
	InsertKey(address, key, value common.Felt, block uint64) error
	// SetSyncedHead records the last applied block. Implementations are
	// expected to ignore blocks below the recorded head.
	SetSyncedHead(block uint64) error
}

type PipelineConfig struct {
	// WindowSize is the number of blocks fetched concurrently.
	WindowSize int
	// ApplyConcurrency bounds the number of concurrent database updates
	// while applying a block.
	ApplyConcurrency int
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		WindowSize:       20,
		ApplyConcurrency: 16,
	}
}

// Pipeline transfers state updates from a source into the database, one
// window of blocks at a time. All blocks of a window are fetched
// concurrently and applied in ascending order before the next window is
// started.
type Pipeline struct {
	source  StateSource
	target  Updater
	config  PipelineConfig
	metrics *Metrics
	log     zerolog.Logger
}

func NewPipeline(source StateSource, target Updater, config PipelineConfig, log zerolog.Logger, metrics *Metrics) *Pipeline {
	defaults := DefaultPipelineConfig()
	if config.WindowSize <= 0 {
		config.WindowSize = defaults.WindowSize
	}
	if config.ApplyConcurrency <= 0 {
		config.ApplyConcurrency = defaults.ApplyConcurrency
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Pipeline{
		source:  source,
		target:  target,
		config:  config,
		metrics: metrics,
		log:     log.With().Str("component", "pipeline").Logger(),
	}
}

// Sync fetches and applies the state updates of all blocks in the range
// [from, to]. It stops at the first window that can not be fetched
// completely. Blocks of that window preceding the failed block are applied
// before the error is returned.
func (p *Pipeline) Sync(ctx context.Context, from, to uint64) error {
	if from > to {
		return nil
	}
	window := uint64(p.config.WindowSize)
	for start := from; ; start += window {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := to
		if to-start >= window {
			end = start + window - 1
		}
		if err := p.processWindow(ctx, start, end); err != nil {
			return err
		}
		if end == to {
			return nil
		}
	}
}

func (p *Pipeline) processWindow(ctx context.Context, start, end uint64) error {
	zone := tracy.ZoneBegin("pipeline::window")
	defer zone.End()

	begin := time.Now()
	results := make([]future.Result[*StateUpdate], end-start+1)
	group, groupCtx := errgroup.WithContext(ctx)
	for i := range results {
		block := start + uint64(i)
		group.Go(func() error {
			update, err := p.source.FetchStateUpdate(groupCtx, block)
			if err != nil {
				err = fmt.Errorf("block %d: %w", block, err)
				results[i] = future.Err[*StateUpdate](err)
				return err
			}
			results[i] = future.Ok(update)
			return nil
		})
	}
	fetchErr := group.Wait()
	fetched := time.Since(begin)

	updates, _ := future.Prefix(results)
	for i, update := range updates {
		p.applyBlock(start+uint64(i), update)
	}
	if len(updates) > 0 {
		head := start + uint64(len(updates)) - 1
		if err := p.target.SetSyncedHead(head); err != nil {
			return fmt.Errorf("failed to record synced head %d: %w", head, err)
		}
	}
	p.metrics.windowDuration.Observe(time.Since(begin).Seconds())

	if fetchErr != nil {
		p.log.Error().
			Uint64("from", start).
			Uint64("to", end).
			Int("applied", len(updates)).
			Err(fetchErr).
			Msg("window failed")
		if errors.Is(fetchErr, ErrFetch) || errors.Is(fetchErr, ErrResponseDecode) {
			return fmt.Errorf("window %d-%d: %w", start, end, fetchErr)
		}
		return fmt.Errorf("%w: window %d-%d: %w", ErrFetch, start, end, fetchErr)
	}

	p.log.Info().
		Uint64("from", start).
		Uint64("to", end).
		Dur("fetch", fetched).
		Dur("total", time.Since(begin)).
		Msg("processed window")
	return nil
}

// contractUpdates collects the updates of a single contract record in a
// block, which have to be applied sequentially.
type contractUpdates struct {
	classHashes []common.Felt
	nonce       *common.Felt
}

// applyBlock writes all updates of a block to the database. Failing updates
// are logged and skipped.
func (p *Pipeline) applyBlock(block uint64, update *StateUpdate) {
	zone := tracy.ZoneBegin("pipeline::apply_block")
	defer zone.End()

	diff := &update.StateDiff
	if len(diff.DeclaredClasses) > 0 {
		p.metrics.declaredClasses.Add(float64(len(diff.DeclaredClasses)))
		p.log.Debug().Uint64("block", block).Int("classes", len(diff.DeclaredClasses)).Msg("skipping declared classes")
	}

	contracts := map[common.Felt]*contractUpdates{}
	get := func(address common.Felt) *contractUpdates {
		res, found := contracts[address]
		if !found {
			res = &contractUpdates{}
			contracts[address] = res
		}
		return res
	}
	for _, deployed := range diff.DeployedContracts {
		entry := get(deployed.Address)
		entry.classHashes = append(entry.classHashes, deployed.ClassHash)
	}
	for _, replaced := range diff.ReplacedClasses {
		entry := get(replaced.Address)
		entry.classHashes = append(entry.classHashes, replaced.ClassHash)
	}
	for address, nonce := range diff.Nonces {
		get(address).nonce = &nonce
	}

	var group errgroup.Group
	group.SetLimit(p.config.ApplyConcurrency)
	for _, address := range maps.Keys(contracts) {
		updates := contracts[address]
		group.Go(func() error {
			for _, classHash := range updates.classHashes {
				p.record(block, address, fieldClassHash, p.target.InsertClassHash(address, classHash, block))
			}
			if updates.nonce != nil {
				p.record(block, address, fieldNonce, p.target.InsertNonce(address, *updates.nonce, block))
			}
			return nil
		})
	}
	for address, diffs := range diff.StorageDiffs {
		for _, write := range diffs {
			group.Go(func() error {
				p.record(block, address, fieldStorage, p.target.InsertKey(address, write.Key, write.Value, block))
				return nil
			})
		}
	}
	_ = group.Wait()
	p.metrics.appliedBlocks.Inc()
}

func (p *Pipeline) record(block uint64, address common.Felt, field string, err error) {
	if err == nil {
		p.metrics.appliedUpdates.WithLabelValues(field).Inc()
		return
	}
	p.metrics.failedUpdates.WithLabelValues(field).Inc()
	p.log.Error().
		Uint64("block", block).
		Stringer("address", address).
		Str("field", field).
		Err(err).
		Msg("failed to apply update")
}
