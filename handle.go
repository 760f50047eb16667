// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"net/url"
	"time"

	"github.com/gogama/asynchttp/header"
	"github.com/gogama/asynchttp/request"
	"github.com/google/uuid"
)

// A FinishedFunc is called once when a request finishes. The status
// is -1 if no response was received, in which case err is non-nil.
type FinishedFunc func(r *Request, status int, err error)

type requestState int

const (
	stateCreated requestState = iota
	stateDispatched
	stateFinished
)

type requestKey struct{}

// A Request is the handle to one submitted transfer.
//
// A Request belongs to the goroutine that owns its Client. It may be
// configured until the Client dispatches it on the next Update, and its
// results may be read once it has finished. Before it finishes, the
// result methods return zero values and StatusCode returns -1.
type Request struct {
	client    *Client
	exec      *request.Execution
	state     requestState
	listeners []FinishedFunc
	noop      bool
	err       error
}

func noopRequest(err error) *Request {
	return &Request{noop: true, err: err}
}

func requestOf(e *request.Execution) *Request {
	r, _ := e.Value(requestKey{}).(*Request)
	return r
}

// Noop reports whether r is a no-op handle, returned by an inert or
// closed Client. A no-op request never runs and its listeners never
// fire.
func (r *Request) Noop() bool {
	return r.noop
}

// ID returns the unique identity of the transfer, or the zero UUID for
// a no-op request.
func (r *Request) ID() uuid.UUID {
	if r.noop {
		return uuid.UUID{}
	}
	return r.exec.ID
}

// Method returns the request method.
func (r *Request) Method() request.Method {
	if r.noop {
		return 0
	}
	return r.exec.Plan.Method
}

// URL returns the request URL. It is nil for a no-op request and for a
// request whose URL could not be parsed.
func (r *Request) URL() *url.URL {
	if r.noop {
		return nil
	}
	return r.exec.Plan.URL
}

// Attempt returns the number of times the same logical request was
// submitted before this one.
func (r *Request) Attempt() int {
	if r.noop {
		return 0
	}
	return r.exec.Attempt
}

// Plan returns a copy of the request's plan, or nil for a no-op
// request. Changing the copy does not affect the request.
func (r *Request) Plan() *request.Plan {
	if r.noop {
		return nil
	}
	return r.exec.Plan.Clone()
}

func (r *Request) configurable() error {
	if r.noop {
		return r.err
	}
	if r.state != stateCreated {
		return ErrDispatched
	}
	return nil
}

// SetHeader sets a request header field, replacing any previous value.
func (r *Request) SetHeader(name, value string) error {
	if err := r.configurable(); err != nil {
		return err
	}
	return r.exec.Plan.SetHeader(name, value)
}

// RemoveHeader removes a request header field.
func (r *Request) RemoveHeader(name string) error {
	if err := r.configurable(); err != nil {
		return err
	}
	r.exec.Plan.Header.Del(name)
	return nil
}

// SetBody replaces the request body. The body may be any of the types
// accepted by request.BodyBytes.
func (r *Request) SetBody(contentType string, body interface{}) error {
	if err := r.configurable(); err != nil {
		return err
	}
	return r.exec.Plan.SetBody(contentType, body)
}

// SetBodyJSON marshals v and uses it as an application/json body.
func (r *Request) SetBodyJSON(v interface{}) error {
	if err := r.configurable(); err != nil {
		return err
	}
	return r.exec.Plan.SetBodyJSON(v)
}

// SetCacheFile associates the request with the disk cache entry at
// path. If write is true, a 200 response body is written to the entry
// when the request completes.
func (r *Request) SetCacheFile(path string, write bool) error {
	if err := r.configurable(); err != nil {
		return err
	}
	r.exec.Plan.SetCacheFile(path, write)
	return nil
}

// SetRevalidate makes the request conditional on the modification
// time of its cache entry. A 304 response then carries the cached
// bytes as its body.
func (r *Request) SetRevalidate(revalidate bool) error {
	if err := r.configurable(); err != nil {
		return err
	}
	r.exec.Plan.Revalidate = revalidate
	return nil
}

// SetVerbose requests a log dump of the exchange when it completes.
func (r *Request) SetVerbose(verbose bool) error {
	if err := r.configurable(); err != nil {
		return err
	}
	r.exec.Plan.Verbose = verbose
	return nil
}

// CacheFile returns the cache entry path associated with the request.
func (r *Request) CacheFile() string {
	if r.noop {
		return ""
	}
	return r.exec.Plan.CacheFile
}

// OnFinished registers f to be called when the request finishes.
// Listeners are called in registration order, during Update. A
// listener registered after the request has finished is called on the
// next Update. Listeners registered on a no-op request are never
// called.
func (r *Request) OnFinished(f FinishedFunc) {
	if f == nil {
		panic("asynchttp: nil listener")
	}
	if r.noop {
		return
	}
	if r.state == stateFinished {
		r.client.late = append(r.client.late, lateListener{r, f})
		return
	}
	r.listeners = append(r.listeners, f)
}

// Finished reports whether the request has finished.
func (r *Request) Finished() bool {
	return r.state == stateFinished
}

// Dispatched reports whether the request has been handed to the
// workers. A finished request counts as dispatched.
func (r *Request) Dispatched() bool {
	return r.state != stateCreated
}

// StatusCode returns the response status code, or -1 if the request
// has not finished or received no response.
func (r *Request) StatusCode() int {
	if r.state != stateFinished {
		return request.NoStatus
	}
	return r.exec.StatusCode
}

// Status returns the response status line without the protocol, for
// example "404 Not Found".
func (r *Request) Status() string {
	if r.state != stateFinished {
		return ""
	}
	return r.exec.StatusLine()
}

// Body returns the response body. For a 304 response to a revalidated
// request, it is the cached entry.
func (r *Request) Body() []byte {
	if r.state != stateFinished {
		return nil
	}
	return r.exec.Body
}

// ResponseHeader returns the value of a response header field.
func (r *Request) ResponseHeader(name string) string {
	if r.state != stateFinished {
		return ""
	}
	return r.exec.Header.Get(name)
}

// ResponseHeaderInt returns a response header field parsed as a signed
// integer, or def if it is missing or malformed.
func (r *Request) ResponseHeaderInt(name string, def int64) int64 {
	if r.state != stateFinished {
		return def
	}
	return r.exec.Header.Int(name, def)
}

// ResponseHeaderUint returns a response header field parsed as an
// unsigned integer, or def if it is missing or malformed.
func (r *Request) ResponseHeaderUint(name string, def uint64) uint64 {
	if r.state != stateFinished {
		return def
	}
	return r.exec.Header.Uint(name, def)
}

// ResponseHeaders returns a copy of the response header fields.
func (r *Request) ResponseHeaders() header.Map {
	if r.state != stateFinished {
		return header.Map{}
	}
	return r.exec.Header.Clone()
}

// Err returns the transport-level error of a finished request. It is
// nil when a response was received, whatever its status. For a no-op
// request it is the reason the request could not be submitted.
func (r *Request) Err() error {
	if r.noop {
		return r.err
	}
	if r.state != stateFinished {
		return nil
	}
	return r.exec.Err
}

// Error returns the text of Err, or the empty string if Err is nil.
func (r *Request) Error() string {
	if err := r.Err(); err != nil {
		return err.Error()
	}
	return ""
}

// Duration returns how long the exchange took.
func (r *Request) Duration() time.Duration {
	if r.state != stateFinished {
		return 0
	}
	return r.exec.Duration()
}

// Execution returns the underlying execution once the request has
// finished, and nil before.
func (r *Request) Execution() *request.Execution {
	if r.state != stateFinished {
		return nil
	}
	return r.exec
}
