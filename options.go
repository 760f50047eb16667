// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogama/asynchttp/cache"
	"github.com/gogama/asynchttp/config"
	"github.com/gogama/asynchttp/queue"
	"github.com/gogama/asynchttp/timeout"
	"github.com/gogama/asynchttp/transport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrOption is wrapped by errors returned when an Option is given an
// invalid value.
var ErrOption = errors.New("asynchttp: invalid option")

// An Option configures a Client. Options are applied in order by New.
type Option func(*options) error

type options struct {
	binder          transport.Binder
	doer            transport.HTTPDoer
	logger          *slog.Logger
	maxWorkers      int
	keepAlive       time.Duration
	idleSleep       time.Duration
	initialBodySize int
	cache           cache.Store
	cacheURL        string
	handlers        *HandlerGroup
	tracerProvider  trace.TracerProvider
	timeoutPolicy   timeout.Policy
	rps             int
	burst           int
	userAgent       string
	settings        transport.Settings
}

func (o *options) defaults() {
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.handlers == nil {
		o.handlers = &HandlerGroup{}
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.timeoutPolicy == nil {
		o.timeoutPolicy = timeout.DefaultPolicy
	}
	if o.userAgent == "" {
		o.userAgent = config.DefaultUserAgent
	}
}

// WithBinder makes the Client bind transfers with b instead of the
// shared HTTP transport. The shared transport is not initialized.
func WithBinder(b transport.Binder) Option {
	return func(o *options) error {
		if b == nil {
			return fmt.Errorf("%w: nil binder", ErrOption)
		}
		o.binder = b
		return nil
	}
}

// WithHTTPDoer makes the Client perform exchanges with d, typically an
// *http.Client, instead of the shared HTTP transport.
func WithHTTPDoer(d transport.HTTPDoer) Option {
	return func(o *options) error {
		if d == nil {
			return fmt.Errorf("%w: nil HTTPDoer", ErrOption)
		}
		o.doer = d
		return nil
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}

// WithMaxWorkers bounds the worker pool. Zero selects
// queue.DefaultMaxWorkers; values above queue.MaxWorkersCap are an
// error.
func WithMaxWorkers(n int) Option {
	return func(o *options) error {
		if n < 0 || n > queue.MaxWorkersCap {
			return fmt.Errorf("%w: max workers %d not in [0, %d]", ErrOption, n, queue.MaxWorkersCap)
		}
		o.maxWorkers = n
		return nil
	}
}

// WithKeepAlive sets how long the Client must be idle before its
// workers are stopped.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("%w: negative keep-alive %s", ErrOption, d)
		}
		o.keepAlive = d
		return nil
	}
}

// WithIdleSleep sets how long a worker sleeps when it finds no work.
func WithIdleSleep(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("%w: negative idle sleep %s", ErrOption, d)
		}
		o.idleSleep = d
		return nil
	}
}

// WithInitialBodySize sets the body reservation used for responses
// without a Content-Length.
func WithInitialBodySize(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("%w: negative initial body size %d", ErrOption, n)
		}
		o.initialBodySize = n
		return nil
	}
}

// WithCache sets the disk cache used by requests with a cache file.
func WithCache(s cache.Store) Option {
	return func(o *options) error {
		o.cache = s
		return nil
	}
}

// WithHandlers installs an event handler group.
func WithHandlers(g *HandlerGroup) Option {
	return func(o *options) error {
		o.handlers = g
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used to
// trace transfers. The default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) error {
		o.tracerProvider = tp
		return nil
	}
}

// WithTimeoutPolicy sets the per-attempt timeout policy. The default
// is timeout.DefaultPolicy, which never times out.
func WithTimeoutPolicy(p timeout.Policy) Option {
	return func(o *options) error {
		o.timeoutPolicy = p
		return nil
	}
}

// WithThrottle limits requests made through the shared transport to
// rps per second, with bursts of up to burst. Zero rps disables
// throttling.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps < 0 || burst < 0 {
			return fmt.Errorf("%w: throttle rps[%d] burst[%d]", ErrOption, rps, burst)
		}
		if rps > 0 && burst == 0 {
			burst = rps
		}
		o.rps, o.burst = rps, burst
		return nil
	}
}

// WithUserAgent sets the User-Agent sent by requests that do not set
// one.
func WithUserAgent(ua string) Option {
	return func(o *options) error {
		o.userAgent = ua
		return nil
	}
}

// WithTransportSettings configures the shared transport. Settings are
// ignored if another Client already holds the shared transport.
func WithTransportSettings(s transport.Settings) Option {
	return func(o *options) error {
		o.settings = s
		return nil
	}
}

// WithConfig applies a validated configuration. If cfg names a cache
// and no cache has been set, the Client opens it and closes it on
// Close.
func WithConfig(cfg config.Config) Option {
	return func(o *options) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrOption, err)
		}
		o.maxWorkers = cfg.Workers
		o.keepAlive = cfg.KeepAlive
		o.idleSleep = cfg.IdleSleep
		o.initialBodySize = cfg.InitialBodySize
		if cfg.UserAgent != "" {
			o.userAgent = cfg.UserAgent
		}
		o.cacheURL = cfg.Cache
		if cfg.Timeout.Usual > 0 {
			o.timeoutPolicy = timeout.Adaptive(cfg.Timeout.Usual, cfg.Timeout.After...)
		}
		if err := WithThrottle(cfg.Throttle.RPS, cfg.Throttle.Burst)(o); err != nil {
			return err
		}
		t := cfg.Transport
		o.settings = transport.Settings{
			MaxIdleConns:          t.MaxIdleConns,
			MaxIdleConnsPerHost:   t.MaxIdleConnsPerHost,
			MaxConnsPerHost:       t.MaxConnsPerHost,
			IdleConnTimeout:       t.IdleConnTimeout,
			ResponseHeaderTimeout: t.ResponseHeaderTimeout,
			TLSHandshakeTimeout:   t.TLSHandshakeTimeout,
			DisableCompression:    t.DisableCompression,
			HTTP2:                 t.HTTP2,
		}
		return nil
	}
}

func (o *options) openCache(ctx context.Context) (*cache.Bucket, error) {
	if o.cache != nil || o.cacheURL == "" {
		return nil, nil
	}
	b, err := cache.Open(ctx, o.cacheURL)
	if err != nil {
		return nil, err
	}
	o.cache = b
	return b, nil
}
