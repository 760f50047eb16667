// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gogama/asynchttp/cache"
	"github.com/gogama/asynchttp/queue"
	"github.com/gogama/asynchttp/request"
	"github.com/gogama/asynchttp/transport"
)

var (
	// ErrInert is returned by no-op requests of a Client whose
	// transport failed to initialize.
	ErrInert = errors.New("asynchttp: client is inert")
	// ErrClosed is the error of requests submitted to, or left
	// undispatched by, a closed Client.
	ErrClosed = errors.New("asynchttp: client closed")
	// ErrDispatched is returned when a request is configured after it
	// has been dispatched to the workers.
	ErrDispatched = errors.New("asynchttp: request already dispatched")
	// ErrNotFinished is the error of a resubmission of a request that
	// has not finished.
	ErrNotFinished = errors.New("asynchttp: request not finished")
	// ErrIncompleteResponse is recorded when an exchange ends without
	// a complete response head.
	ErrIncompleteResponse = errors.New("asynchttp: incomplete response head")
)

var (
	acquireTransport = transport.Acquire
	releaseTransport = transport.Release
)

// A Client is an asynchronous HTTP client driven by a frame loop.
//
// Requests are submitted and results delivered on a single owning
// goroutine, the one that calls Update. A Client is not safe for
// concurrent use by multiple goroutines; the workers it runs are
// internal and never call back into user code.
//
// Client implements the Submitter interface.
type Client struct {
	queue           *queue.Queue
	exec            *executor
	handlers        *HandlerGroup
	logger          *slog.Logger
	initialBodySize int
	store           cache.Store
	stats           Stats
	initErr         error
	release         func()
	cacheCloser     io.Closer
	closed          bool
	rejected        []*Request
	late            []lateListener
}

type lateListener struct {
	r *Request
	f FinishedFunc
}

// New returns a new Client configured by optFns. It returns an error
// only if an option is invalid.
//
// Unless WithBinder or WithHTTPDoer is given, the Client uses the
// process-wide shared transport, which New initializes on first use.
// If that initialization fails, New logs the failure and returns an
// inert Client: Inert reports true and every submission returns a
// no-op Request.
func New(optFns ...Option) (*Client, error) {
	var o options
	for _, fn := range optFns {
		if err := fn(&o); err != nil {
			return nil, err
		}
	}
	o.defaults()

	c := &Client{
		handlers:        o.handlers,
		logger:          o.logger,
		initialBodySize: o.initialBodySize,
	}

	b, err := o.openCache(context.Background())
	if err != nil {
		return nil, err
	}
	if b != nil {
		c.cacheCloser = b
	}
	c.store = o.cache

	binder, err := c.bind(&o)
	if err != nil {
		c.closeCache()
		if errors.Is(err, transport.ErrInit) {
			c.initErr = err
			c.logger.Error("transport initialization failed, client is inert", "error", err)
			return c, nil
		}
		return nil, err
	}

	c.exec = &executor{
		binder:        binder,
		logger:        o.logger,
		tracer:        o.tracerProvider.Tracer(tracerName),
		timeoutPolicy: o.timeoutPolicy,
		cache:         o.cache,
	}
	c.queue = queue.New(c.exec, queue.Options{
		MaxWorkers: o.maxWorkers,
		KeepAlive:  o.keepAlive,
		IdleSleep:  o.idleSleep,
		OnDispatch: c.dispatched,
		OnComplete: c.completed,
		Logger:     o.logger,
	})
	return c, nil
}

func (c *Client) bind(o *options) (transport.Binder, error) {
	if o.binder != nil {
		return o.binder, nil
	}
	if o.doer != nil {
		if o.rps > 0 {
			c.logger.Warn("throttle ignored with a custom HTTPDoer")
		}
		return &transport.HTTP{Doer: o.doer, UserAgent: o.userAgent}, nil
	}

	t, err := acquireTransport(o.settings)
	if err != nil {
		if !errors.Is(err, transport.ErrInit) {
			err = fmt.Errorf("%w: %w", transport.ErrInit, err)
		}
		return nil, err
	}
	c.release = releaseTransport

	var rt http.RoundTripper = t
	if o.rps > 0 {
		rt, err = transport.NewThrottle(o.rps, o.burst, func() *slog.Logger { return c.logger }, rt)
		if err != nil {
			c.releaseShared()
			return nil, err
		}
	}
	return transport.NewHTTP(rt, o.userAgent), nil
}

// Inert reports whether the Client's transport failed to initialize.
func (c *Client) Inert() bool {
	return c.initErr != nil
}

// InitErr returns the transport initialization error of an inert
// Client, or nil.
func (c *Client) InitErr() error {
	return c.initErr
}

// Cache returns the disk cache used by requests with a cache file, or
// nil if the Client has none.
func (c *Client) Cache() cache.Store {
	return c.store
}

// Do submits the plan p and returns a handle to the request. The
// request is dispatched to the workers on the next Update; until then
// the plan may still be changed through the handle.
//
// Do never blocks. Ownership of p passes to the Client.
func (c *Client) Do(p *request.Plan) *Request {
	if p == nil {
		panic("asynchttp: nil plan")
	}
	if r := c.unavailable(); r != nil {
		return r
	}
	return c.submit(request.NewExecution(p))
}

// Get submits a GET to the specified URL.
func (c *Client) Get(url string) *Request {
	return c.plan(request.Get, url, "", nil)
}

// Head submits a HEAD to the specified URL.
func (c *Client) Head(url string) *Request {
	return c.plan(request.Head, url, "", nil)
}

// Options submits an OPTIONS to the specified URL.
func (c *Client) Options(url string) *Request {
	return c.plan(request.Options, url, "", nil)
}

// Delete submits a DELETE to the specified URL.
func (c *Client) Delete(url string) *Request {
	return c.plan(request.Delete, url, "", nil)
}

// Post submits a POST to the specified URL. The body may be nil or any
// of the types accepted by request.BodyBytes.
func (c *Client) Post(url, contentType string, body interface{}) *Request {
	return c.plan(request.Post, url, contentType, body)
}

// Put submits a PUT to the specified URL.
func (c *Client) Put(url, contentType string, body interface{}) *Request {
	return c.plan(request.Put, url, contentType, body)
}

// Patch submits a PATCH to the specified URL.
func (c *Client) Patch(url, contentType string, body interface{}) *Request {
	return c.plan(request.Patch, url, contentType, body)
}

// PostForm submits a POST of URL-encoded form data.
func (c *Client) PostForm(url string, data url.Values) *Request {
	return PostForm(c, url, data)
}

// Resubmit submits the same logical request as r again, with its
// attempt counters advanced. The new request has no listeners. r must
// have finished; otherwise the new request fails with ErrNotFinished.
func (c *Client) Resubmit(r *Request) *Request {
	if r == nil {
		panic("asynchttp: nil request")
	}
	if u := c.unavailable(); u != nil {
		return u
	}
	if r.noop {
		return noopRequest(r.err)
	}
	prev := r.exec
	if !r.Finished() {
		return c.reject(prev.Plan.Method, urlString(prev.Plan.URL), ErrNotFinished)
	}
	if prev.Plan.URL == nil {
		return c.reject(prev.Plan.Method, "", prev.Err)
	}

	e := request.NewExecution(prev.Plan.Clone())
	e.Attempt = prev.Attempt + 1
	e.AttemptTimeouts = prev.AttemptTimeouts
	if prev.Timeout() {
		e.AttemptTimeouts++
	}
	return c.submit(e)
}

func (c *Client) unavailable() *Request {
	if c.initErr != nil {
		return noopRequest(fmt.Errorf("%w: %w", ErrInert, c.initErr))
	}
	if c.closed {
		return noopRequest(ErrClosed)
	}
	return nil
}

func (c *Client) plan(method request.Method, rawURL, contentType string, body interface{}) *Request {
	if r := c.unavailable(); r != nil {
		return r
	}
	p, err := request.NewPlan(method, rawURL, body)
	if err != nil {
		return c.reject(method, rawURL, err)
	}
	if len(p.Body) > 0 {
		p.ContentType = contentType
	}
	return c.submit(request.NewExecution(p))
}

func (c *Client) submit(e *request.Execution) *Request {
	if e.InitialBodySize == 0 {
		e.InitialBodySize = c.initialBodySize
	}
	r := &Request{client: c, exec: e}
	e.SetValue(requestKey{}, r)
	c.stats.Requests++
	c.handlers.run(Submitted, e)
	c.queue.Submit(e)
	return r
}

// reject returns a request that never reaches the workers and fails
// with err on the next Update.
func (c *Client) reject(method request.Method, rawURL string, err error) *Request {
	e := request.NewExecution(&request.Plan{Method: method})
	if _, ok := err.(*url.Error); !ok {
		err = &url.Error{Op: urlErrorOp(method), URL: rawURL, Err: err}
	}
	e.Err = err
	r := &Request{client: c, exec: e, state: stateDispatched}
	e.SetValue(requestKey{}, r)
	c.stats.Requests++
	c.rejected = append(c.rejected, r)
	return r
}

// Update advances the Client by one frame of duration dt. It
// dispatches submitted requests, delivers finished ones by firing
// their listeners, and scales the worker pool. Update must be called
// once per frame from the goroutine that owns the Client. It does not
// block on network activity.
func (c *Client) Update(dt time.Duration) {
	if c.queue != nil {
		c.queue.Pump(dt)
	}
	c.flush()
}

// flush delivers rejected requests and late listeners queued before
// the call. Anything queued by the callbacks waits for the next frame.
func (c *Client) flush() {
	rejected := c.rejected
	c.rejected = nil
	for _, r := range rejected {
		c.finish(r)
	}

	late := c.late
	c.late = nil
	for _, l := range late {
		l.f(l.r, l.r.StatusCode(), l.r.Err())
	}
}

func (c *Client) dispatched(e *request.Execution) {
	requestOf(e).state = stateDispatched
	c.handlers.run(Dispatched, e)
}

func (c *Client) completed(e *request.Execution) {
	c.finish(requestOf(e))
}

func (c *Client) finish(r *Request) {
	r.state = stateFinished
	c.stats.record(r.exec)
	c.handlers.run(Finished, r.exec)

	listeners := r.listeners
	r.listeners = nil
	status, err := r.StatusCode(), r.Err()
	for _, f := range listeners {
		f(r, status, err)
	}
}

// Pending returns the number of submitted requests that have not yet
// finished.
func (c *Client) Pending() int {
	return int(c.stats.Requests - c.stats.Completed)
}

// Stats returns a snapshot of the Client's counters.
func (c *Client) Stats() Stats {
	s := c.stats
	if c.queue != nil {
		s.Queued = c.queue.Pending()
		s.Executing = c.queue.Executing()
		s.Workers = c.queue.Workers()
	}
	return s
}

// Close stops the workers and releases the Client's resources.
//
// Close waits for in-flight exchanges to finish and delivers them.
// Requests that were never dispatched finish with ErrClosed. Either
// way, every submitted request's listeners fire exactly once, from
// within Close. Requests submitted after Close are no-ops.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if c.queue != nil {
		left := c.queue.Stop()
		for _, e := range left {
			e.Err = urlErrorWrap(e.Plan, ErrClosed)
			c.finish(requestOf(e))
		}
	}
	c.flush()

	c.releaseShared()
	return c.closeCache()
}

func (c *Client) releaseShared() {
	if c.release != nil {
		c.release()
		c.release = nil
	}
}

func (c *Client) closeCache() error {
	if c.cacheCloser == nil {
		return nil
	}
	err := c.cacheCloser.Close()
	c.cacheCloser = nil
	return err
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
