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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/0xsoniclabs/starknet-archive/database/archive"
	"github.com/0xsoniclabs/starknet-archive/ingest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var Sync = cli.Command{
	Action: sync,
	Name:   "sync",
	Usage:  "fetches state updates from the feeder gateway and adds them to the archive",
	Flags: []cli.Flag{
		&fromFlag,
		&toFlag,
		&gatewayFlag,
		&maxRetriesFlag,
		&retryBaseFlag,
		&maxRetryDelayFlag,
		&requestsPerSecondFlag,
		&burstFlag,
		&requestTimeoutFlag,
		&windowSizeFlag,
		&applyConcurrencyFlag,
		&metricsAddrFlag,
		&flushFlag,
	},
}

var (
	fromFlag = cli.Uint64Flag{
		Name:  "from",
		Usage: "first block to fetch, defaults to the block after the synced head",
	}
	toFlag = cli.Uint64Flag{
		Name:     "to",
		Usage:    "last block to fetch",
		Required: true,
	}
	gatewayFlag = cli.StringFlag{
		Name:    "gateway",
		Usage:   "URL of the feeder gateway",
		EnvVars: []string{"ARCHIVE_GATEWAY"},
		Value:   ingest.DefaultGatewayURL,
	}
	maxRetriesFlag = cli.Uint64Flag{
		Name:    "max-retries",
		Usage:   "number of retries of a failed request",
		EnvVars: []string{"ARCHIVE_MAX_RETRIES"},
		Value:   ingest.DefaultFeedConfig().MaxRetries,
	}
	retryBaseFlag = cli.DurationFlag{
		Name:    "retry-base",
		Usage:   "delay before the first retry, doubled for every further retry",
		EnvVars: []string{"ARCHIVE_RETRY_BASE"},
		Value:   ingest.DefaultFeedConfig().RetryBase,
	}
	maxRetryDelayFlag = cli.DurationFlag{
		Name:    "max-retry-delay",
		Usage:   "upper bound of the delay between retries, 0 for no bound",
		EnvVars: []string{"ARCHIVE_MAX_RETRY_DELAY"},
	}
	requestsPerSecondFlag = cli.Float64Flag{
		Name:    "rps",
		Usage:   "maximum number of requests per second, 0 for no limit",
		EnvVars: []string{"ARCHIVE_RPS"},
	}
	burstFlag = cli.IntFlag{
		Name:    "burst",
		Usage:   "number of requests that may exceed the rate limit at once",
		EnvVars: []string{"ARCHIVE_BURST"},
		Value:   ingest.DefaultFeedConfig().Burst,
	}
	requestTimeoutFlag = cli.DurationFlag{
		Name:    "request-timeout",
		Usage:   "timeout of a single request, 0 for no timeout",
		EnvVars: []string{"ARCHIVE_REQUEST_TIMEOUT"},
	}
	windowSizeFlag = cli.IntFlag{
		Name:    "window",
		Usage:   "number of blocks fetched concurrently",
		EnvVars: []string{"ARCHIVE_WINDOW"},
		Value:   ingest.DefaultPipelineConfig().WindowSize,
	}
	applyConcurrencyFlag = cli.IntFlag{
		Name:    "apply-concurrency",
		Usage:   "number of concurrent database updates per block",
		EnvVars: []string{"ARCHIVE_APPLY_CONCURRENCY"},
		Value:   ingest.DefaultPipelineConfig().ApplyConcurrency,
	}
	metricsAddrFlag = cli.StringFlag{
		Name:    "metrics-addr",
		Usage:   "address to serve Prometheus metrics on, disabled if empty",
		EnvVars: []string{"ARCHIVE_METRICS_ADDR"},
	}
)

func sync(context *cli.Context) error {
	return withDatabase(context, func(db *archive.Database, log zerolog.Logger) error {
		from, err := syncStart(context, db)
		if err != nil {
			return err
		}
		to := context.Uint64(toFlag.Name)
		if from > to {
			fmt.Fprintf(context.App.Writer, "Archive already covers block %d\n", to)
			return nil
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := ingest.NewMetrics(registry)

		client, err := ingest.NewFeederClient(ingest.FeedConfig{
			GatewayURL:        context.String(gatewayFlag.Name),
			MaxRetries:        context.Uint64(maxRetriesFlag.Name),
			RetryBase:         context.Duration(retryBaseFlag.Name),
			MaxRetryDelay:     context.Duration(maxRetryDelayFlag.Name),
			RequestsPerSecond: context.Float64(requestsPerSecondFlag.Name),
			Burst:             context.Int(burstFlag.Name),
			RequestTimeout:    context.Duration(requestTimeoutFlag.Name),
		}, log, metrics)
		if err != nil {
			return err
		}
		pipeline := ingest.NewPipeline(client, db, ingest.PipelineConfig{
			WindowSize:       context.Int(windowSizeFlag.Name),
			ApplyConcurrency: context.Int(applyConcurrencyFlag.Name),
		}, log, metrics)

		if addr := context.String(metricsAddrFlag.Name); addr != "" {
			stop := serveMetrics(addr, registry, log)
			defer stop()
		}

		ctx, cancel := signal.NotifyContext(context.Context, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		fmt.Fprintf(context.App.Writer, "Syncing blocks %d to %d ...\n", from, to)
		start := time.Now()
		if err := pipeline.Sync(ctx, from, to); err != nil {
			return err
		}
		if context.Bool(flushFlag.Name) {
			if err := db.Flush(); err != nil {
				return err
			}
		}
		fmt.Fprintf(context.App.Writer, "Synced blocks %d to %d in %v\n", from, to, time.Since(start).Round(time.Millisecond))
		return nil
	})
}

// syncStart determines the first block to fetch. An explicit start beyond the
// block after the synced head is rejected since it would leave a gap.
func syncStart(context *cli.Context, db *archive.Database) (uint64, error) {
	head, found, err := db.SyncedHead()
	if err != nil {
		return 0, err
	}
	if !context.IsSet(fromFlag.Name) {
		if !found {
			return 0, nil
		}
		return head + 1, nil
	}
	from := context.Uint64(fromFlag.Name)
	if found && from > head+1 {
		return 0, fmt.Errorf("starting at block %d would skip blocks %d to %d after the synced head", from, head+1, from-1)
	}
	return from, nil
}

// serveMetrics exposes the metrics of the given registry via HTTP until the
// returned function is called.
func serveMetrics(addr string, registry *prometheus.Registry, log zerolog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
