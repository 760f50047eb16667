// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrThrottleParams is returned when a throttle rate or burst is
	// not positive.
	ErrThrottleParams = errors.New("asynchttp/transport: throttle rate and burst must be greater than zero")
	// ErrThrottleWait is wrapped by errors returned when waiting for a
	// throttle token fails.
	ErrThrottleWait = errors.New("asynchttp/transport: throttle wait failed")
)

// throttle is an http.RoundTripper, using the time/rate token
// bucket limiter to restrict outbound exchanges across all workers.
type throttle struct {
	limiter *rate.Limiter
	rps     int
	burst   int
	next    http.RoundTripper
	logFn   func() *slog.Logger
}

// NewThrottle returns an http.RoundTripper that limits outbound
// requests to rps per second with bursts of up to burst. A worker
// waiting for a token blocks only itself. logFn lazily resolves the
// logger; if it returns nil, waits are not logged.
func NewThrottle(rps, burst int, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("%w: rps[%d] burst[%d]", ErrThrottleParams, rps, burst)
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	return &throttle{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
		burst:   burst,
		next:    next,
		logFn:   logFn,
	}, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	var waited time.Duration
	logger := t.logFn()
	if logger != nil && t.limiter.Tokens() < 1 {
		logger.Debug("throttle tokens exhausted", "rate", t.rps, "burst", t.burst, "host", r.URL.Host)

		defer func() {
			logger.Debug("throttle wait complete", "waited", waited.String(), "rate", t.rps, "burst", t.burst)
		}()
	}

	start := time.Now()
	err := t.limiter.Wait(ctx)
	waited = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrThrottleWait, err)
	}

	return t.next.RoundTrip(r)
}
