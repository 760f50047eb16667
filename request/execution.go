// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"fmt"
	"time"

	"github.com/gogama/asynchttp/header"
	"github.com/gogama/asynchttp/transient"
	"github.com/google/uuid"
)

// DefaultInitialBodySize is the number of bytes reserved for the
// response body when the response carries no usable Content-Length.
const DefaultInitialBodySize = 256 * 1024

// MaxBodyReserve caps the up-front body reservation taken from a
// Content-Length header. Larger bodies still arrive in full; they
// just grow the buffer as they do.
const MaxBodyReserve = 64 * 1024 * 1024

// NoStatus is the status code of an execution that has not received
// a status line.
const NoStatus = -1

// An Execution represents one transfer: the Plan describing the
// request, plus the response state filled in while the transfer runs.
//
// An Execution is owned by exactly one goroutine at a time. The
// submitting goroutine creates it, a single worker fills in the
// response fields, and once the worker hands it back it is read-only.
//
// Event handlers may set values on an Execution using its SetValue
// method and read them back using the Value method. They should treat
// the exported fields as read-only.
type Execution struct {
	// ID uniquely identifies the transfer. It is never reused.
	ID uuid.UUID

	// Plan specifies the HTTP request being executed. It is never nil.
	Plan *Plan

	// Attempt is the zero-based number of times the same logical
	// request has been submitted before. It is zero on the initial
	// submission, one on the first resubmission, and so on.
	Attempt int

	// AttemptTimeouts is the number of earlier submissions of the same
	// logical request that ended in a timeout.
	AttemptTimeouts int

	// InitialBodySize is the body reservation used when the response
	// has no usable Content-Length. Zero means DefaultInitialBodySize.
	InitialBodySize int

	// Start is the time the exchange started. It is zero until a
	// worker begins the exchange.
	Start time.Time

	// End is the time the exchange ended. It is zero until the
	// exchange is over.
	End time.Time

	// ProtoMajor and ProtoMinor are the HTTP version from the status
	// line of the final response.
	ProtoMajor, ProtoMinor int

	// StatusCode is the numeric status of the final response, or
	// NoStatus if no status line was received.
	StatusCode int

	// Status is the reason phrase of the final response, for example
	// "Not Found".
	Status string

	// Header contains the final response's header fields. Where a
	// field is repeated, the last value wins.
	Header header.Map

	// Body is the response body received so far.
	Body []byte

	// HeadBytes is the number of raw header bytes received for the
	// final response, including the status line.
	HeadBytes int

	// Err is the transport-level error, if any. A response carrying
	// an error status is not an error at this level.
	Err error

	parser parser
	data   context.Context
}

// NewExecution returns an Execution for p with a fresh ID and no
// response.
func NewExecution(p *Plan) *Execution {
	return &Execution{
		ID:         uuid.New(),
		Plan:       p,
		StatusCode: NoStatus,
	}
}

// Duration returns the duration of the exchange.
//
// If the exchange has not yet started, the duration is zero. If the
// exchange has ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the exchange has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the exchange has ended. Once it has, there
// will be no further changes to the execution.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// Failed indicates whether the exchange ended in a transport-level
// error.
func (e *Execution) Failed() bool {
	return e.Err != nil
}

// Timeout indicates whether Err currently contains a non-nil value
// which indicates a timeout.
func (e *Execution) Timeout() bool {
	cat := transient.Categorize(e.Err)
	return cat == transient.Timeout
}

// HeadComplete reports whether a complete response head, from status
// line to the terminating empty line, has been parsed.
func (e *Execution) HeadComplete() bool {
	return e.parser.state == InBody
}

// ParseState returns the current state of the response head parser.
func (e *Execution) ParseState() ParseState {
	return e.parser.state
}

// StatusLine returns "<status> <reason>" for the final response, for
// example "404 Not Found", or the empty string if there is no status.
func (e *Execution) StatusLine() string {
	if e.StatusCode == NoStatus {
		return ""
	}
	if e.Status == "" {
		return fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Status)
}

// SetValue allows event handlers to store arbitrary data in the
// execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • it may not be nil;
//
// • it must be comparable;
//
// • it should not be of type string or any other built-in type to avoid
// collisions between different event handlers putting data into the
// same execution.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
