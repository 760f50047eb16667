// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package conditional

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gogama/asynchttp"
	"github.com/gogama/asynchttp/cache"
)

// ErrNoData is returned by Data when a transfer has no bytes to
// offer.
var ErrNoData = errors.New("asynchttp/conditional: no data")

// Source classifies where a finished transfer's authoritative bytes
// come from.
type Source int

const (
	// Pending means the transfer has not finished.
	Pending Source = iota
	// Original means the server sent a fresh body.
	Original
	// Cached means the server confirmed the cached entry is current.
	Cached
	// Failed means the transfer produced no usable bytes.
	Failed
)

var sourceNames = []string{
	"Pending",
	"Original",
	"Cached",
	"Failed",
}

// String returns the name of the source.
func (s Source) String() string {
	if s < Pending || s > Failed {
		return fmt.Sprintf("Source(%d)", int(s))
	}
	return sourceNames[s]
}

// StatusError is the error of a transfer that received a response
// with a status other than 200 or 304.
type StatusError struct {
	StatusCode int
	Status     string
}

// Error returns the status line, for example "404 Not Found".
func (e *StatusError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return e.Status
}

// A Transfer is a cache-validating download of one resource.
type Transfer struct {
	ref    string
	path   string
	store  cache.Store
	req    *asynchttp.Request
	source Source
	err    error
	done   func(t *Transfer)
}

// New submits a conditional GET for ref through c. If c has a cache,
// the transfer is tied to the entry c.Cache().PathForKey(ref). done,
// which may be nil, is called once from c.Update when the transfer
// finishes.
func New(c *asynchttp.Client, ref string, done func(t *Transfer)) *Transfer {
	t := &Transfer{
		ref:   ref,
		store: c.Cache(),
		done:  done,
	}
	t.req = c.Get(ref)
	if t.store != nil {
		t.path = t.store.PathForKey(ref)
		_ = t.req.SetCacheFile(t.path, true)
		_ = t.req.SetRevalidate(true)
	}
	t.req.OnFinished(t.finished)
	return t
}

func (t *Transfer) finished(r *asynchttp.Request, status int, err error) {
	switch {
	case err != nil:
		t.source = Failed
		t.err = err
	case status == http.StatusOK:
		t.source = Original
	case status == http.StatusNotModified:
		t.source = Cached
	default:
		t.source = Failed
		t.err = &StatusError{StatusCode: status, Status: r.Status()}
	}
	if t.done != nil {
		t.done(t)
	}
}

// Ref returns the resource reference the transfer was created with.
func (t *Transfer) Ref() string {
	return t.ref
}

// Path returns the cache entry path, or the empty string if the
// client has no cache.
func (t *Transfer) Path() string {
	return t.path
}

// Request returns the underlying request handle.
func (t *Transfer) Request() *asynchttp.Request {
	return t.req
}

// Noop reports whether the client could not submit the transfer. A
// no-op transfer never finishes.
func (t *Transfer) Noop() bool {
	return t.req.Noop()
}

// Finished reports whether the transfer has finished.
func (t *Transfer) Finished() bool {
	return t.source != Pending
}

// Source returns the classification of the finished transfer.
func (t *Transfer) Source() Source {
	return t.source
}

// StatusCode returns the response status, or -1.
func (t *Transfer) StatusCode() int {
	return t.req.StatusCode()
}

// Err returns the reason a Failed transfer failed: the transport
// error, or a *StatusError. It is nil otherwise, except for no-op
// transfers, which report why they could not be submitted.
func (t *Transfer) Err() error {
	if t.req.Noop() {
		return t.req.Err()
	}
	return t.err
}

// Data returns the authoritative bytes of a finished transfer. For an
// Original transfer these are the response body. For a Cached one
// they are the cache entry, read again from the store if the entry
// could not be loaded when the response arrived.
func (t *Transfer) Data(ctx context.Context) ([]byte, error) {
	switch t.source {
	case Original:
		return t.req.Body(), nil
	case Cached:
		if b := t.req.Body(); len(b) > 0 || t.store == nil {
			return b, nil
		}
		return t.store.Read(ctx, t.path)
	case Failed:
		return nil, fmt.Errorf("%w: %w", ErrNoData, t.err)
	default:
		return nil, fmt.Errorf("%w: transfer is %s", ErrNoData, t.source)
	}
}
