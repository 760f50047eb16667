// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"net/url"

	"github.com/gogama/asynchttp/header"
	"github.com/gogama/asynchttp/request"
)

var (
	// ErrBind is wrapped by errors returned when a transfer cannot be
	// bound to the transport.
	ErrBind = errors.New("asynchttp/transport: bind failed")
	// ErrBodyNotAllowed is returned when a body is attached to a
	// method that does not carry one.
	ErrBodyNotAllowed = errors.New("asynchttp/transport: method does not allow a request body")
	// ErrInit is wrapped by errors returned when the shared transport
	// cannot be initialized.
	ErrInit = errors.New("asynchttp/transport: initialization failed")
)

// A ResponseWriter receives the bytes of a response as they arrive.
// The head arrives on WriteHead and the body on WriteBody, each split
// at arbitrary points across any number of calls.
//
// *request.Execution implements ResponseWriter.
type ResponseWriter interface {
	WriteHead(b []byte) error
	WriteBody(b []byte) error
}

// A Conn is the per-transfer handle returned by a Binder. A Conn is
// used by one goroutine only.
type Conn interface {
	// SetHeaders attaches the request header fields.
	SetHeaders(h header.Map) error
	// SetBody attaches the request body and its content type.
	SetBody(body []byte, contentType string) error
	// Perform runs the exchange and blocks until the final response
	// has been written to w or the exchange fails.
	Perform(ctx context.Context, w ResponseWriter) error
	// Release frees per-transfer resources. The Conn may not be used
	// afterward.
	Release()
}

// A Binder acquires a Conn for one transfer.
//
// Implementations of Binder must be safe for concurrent use by multiple
// goroutines.
type Binder interface {
	Bind(method request.Method, u *url.URL) (Conn, error)
}

// The BinderFunc type is an adapter to allow the use of ordinary
// functions as binders.
type BinderFunc func(method request.Method, u *url.URL) (Conn, error)

// Bind calls f(method, u).
func (f BinderFunc) Bind(method request.Method, u *url.URL) (Conn, error) {
	return f(method, u)
}
