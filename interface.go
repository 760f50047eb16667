// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"net/url"
	"time"

	"github.com/gogama/asynchttp/header"
	"github.com/gogama/asynchttp/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do submits an HTTP request plan and returns a handle to the pending
// request. Client implements the Doer interface, and any other Doer
// implementation must behave substantially the same as Client.Do.
type Doer interface {
	Do(p *request.Plan) *Request
}

// Getter is the interface that wraps the basic Get method.
//
// Get submits a GET to the specified URL and returns a handle to the
// pending request. Client implements the Getter interface.
type Getter interface {
	Get(url string) *Request
}

// Header is the interface that wraps the basic Head method.
//
// Head submits a HEAD to the specified URL and returns a handle to the
// pending request. Client implements the Header interface.
type Header interface {
	Head(url string) *Request
}

// Poster is the interface that wraps the basic Post method.
//
// Post submits a POST to the specified URL and returns a handle to the
// pending request. Client implements the Poster interface.
//
// The body parameter may be nil for an empty body, or may be any of the
// types supported by request.NewPlan and request.BodyBytes, namely:
// string; []byte; io.Reader; and io.ReadCloser.
type Poster interface {
	Post(url, contentType string, body interface{}) *Request
}

// Updater is the interface that wraps the basic Update method.
//
// Update advances the engine by one frame of duration dt and delivers
// finished requests. It must be called from the goroutine that submits
// requests, once per frame.
type Updater interface {
	Update(dt time.Duration)
}

// Submitter is the interface that groups the submission methods with
// Update. Client implements the Submitter interface.
type Submitter interface {
	Doer
	Getter
	Header
	Poster
	Updater
}

var _ Submitter = (*Client)(nil)

// PostForm uses a Poster to issue a POST of URL-encoded form data
// with content type application/x-www-form-urlencoded.
func PostForm(p Poster, url string, data url.Values) *Request {
	return p.Post(url, header.TypeForm, data.Encode())
}
