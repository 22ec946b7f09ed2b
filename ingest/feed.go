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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/0xsoniclabs/starknet-archive/common"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

const (
	ErrFetch          = common.ConstError("failed to fetch state update")
	ErrResponseDecode = common.ConstError("failed to decode state update")
)

// DefaultGatewayURL is the feeder gateway of the Starknet mainnet.
const DefaultGatewayURL = "https://alpha-mainnet.starknet.io/feeder_gateway"

//go:generate mockgen -source feed.go -destination feed_mocks.go -package ingest

// StateSource provides the state updates of individual blocks.
type StateSource interface {
	FetchStateUpdate(ctx context.Context, block uint64) (*StateUpdate, error)
}

// FeedConfig configures the access to the feeder gateway.
type FeedConfig struct {
	GatewayURL string
	// MaxRetries is the number of retries after the initial attempt of a
	// fetch before it is given up.
	MaxRetries uint64
	// RetryBase is the delay before the first retry. Every further retry
	// doubles the delay.
	RetryBase time.Duration
	// MaxRetryDelay caps the delay between retries. Zero disables the cap.
	MaxRetryDelay time.Duration
	// RequestsPerSecond limits the rate of requests sent to the gateway.
	// Zero disables the limit.
	RequestsPerSecond float64
	Burst             int
	// RequestTimeout bounds a single request. Zero disables the timeout.
	RequestTimeout time.Duration
}

func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		GatewayURL: DefaultGatewayURL,
		MaxRetries: 20,
		RetryBase:  time.Second,
		Burst:      1,
	}
}

// FeederClient fetches state updates from the feeder gateway. Failed
// requests are retried with exponential backoff.
type FeederClient struct {
	config   FeedConfig
	endpoint *url.URL
	client   *http.Client
	limiter  *rate.Limiter
	metrics  *Metrics
	log      zerolog.Logger

	// sleep waits between retries; replaced in tests.
	sleep func(context.Context, time.Duration) error
}

func NewFeederClient(config FeedConfig, log zerolog.Logger, metrics *Metrics) (*FeederClient, error) {
	gateway, err := url.Parse(config.GatewayURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway URL %q: %w", config.GatewayURL, err)
	}
	if gateway.Scheme == "" || gateway.Host == "" {
		return nil, fmt.Errorf("invalid gateway URL %q: missing scheme or host", config.GatewayURL)
	}
	if config.RetryBase <= 0 {
		return nil, fmt.Errorf("invalid retry base delay %v", config.RetryBase)
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &FeederClient{
		config:   config,
		endpoint: gateway.JoinPath("get_state_update"),
		client:   &http.Client{Timeout: config.RequestTimeout},
		limiter:  rate.NewLimiter(limit, burst),
		metrics:  metrics,
		log:      log.With().Str("component", "feeder").Logger(),
		sleep:    sleepContext,
	}, nil
}

// FetchStateUpdate retrieves the state update of the given block. Responses
// with a non-success status and transport failures are retried until the
// retry budget is exhausted. Malformed responses are not retried.
func (c *FeederClient) FetchStateUpdate(ctx context.Context, block uint64) (*StateUpdate, error) {
	backoff := c.newBackoff()
	for attempt := 1; ; attempt++ {
		update, retryable, err := c.fetchOnce(ctx, block)
		if err == nil {
			return update, nil
		}
		if !retryable {
			return nil, err
		}
		delay, stop := backoff.Next()
		if stop {
			return nil, fmt.Errorf("%w: block %d: giving up after %d attempts: %w", ErrFetch, block, attempt, err)
		}
		c.log.Debug().Uint64("block", block).Int("attempt", attempt).Dur("delay", delay).Err(err).Msg("retrying fetch")
		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("%w: block %d: %w", ErrFetch, block, err)
		}
	}
}

func (c *FeederClient) newBackoff() retry.Backoff {
	backoff := retry.NewExponential(c.config.RetryBase)
	if c.config.MaxRetryDelay > 0 {
		backoff = retry.WithCappedDuration(c.config.MaxRetryDelay, backoff)
	}
	return retry.WithMaxRetries(c.config.MaxRetries, backoff)
}

// fetchOnce performs a single request. The second result reports whether a
// failed request may be retried.
func (c *FeederClient) fetchOnce(ctx context.Context, block uint64) (*StateUpdate, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("%w: block %d: %w", ErrFetch, block, err)
	}

	endpoint := *c.endpoint
	query := endpoint.Query()
	query.Set("blockNumber", strconv.FormatUint(block, 10))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: block %d: %w", ErrFetch, block, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("%w: block %d: %w", ErrFetch, block, ctx.Err())
		}
		c.metrics.fetchAttempts.WithLabelValues(outcomeTransport).Inc()
		c.log.Warn().Uint64("block", block).Err(err).Msg("request failed")
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		c.metrics.fetchAttempts.WithLabelValues(outcomeRateLimited).Inc()
		c.log.Info().Uint64("block", block).Msg("too many requests")
		return nil, true, fmt.Errorf("unexpected status %s", resp.Status)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		c.metrics.fetchAttempts.WithLabelValues(outcomeStatus).Inc()
		c.log.Warn().Uint64("block", block).Int("status", resp.StatusCode).Msg("unexpected status")
		return nil, true, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var update StateUpdate
	if err := json.NewDecoder(resp.Body).Decode(&update); err != nil {
		c.metrics.fetchAttempts.WithLabelValues(outcomeDecode).Inc()
		return nil, false, fmt.Errorf("%w: block %d: %w", ErrResponseDecode, block, err)
	}
	c.metrics.fetchAttempts.WithLabelValues(outcomeSuccess).Inc()
	return &update, false, nil
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
