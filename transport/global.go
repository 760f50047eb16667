// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

// Settings configures connection pooling on the shared transport.
// Zero values keep the net/http defaults.
type Settings struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration

	ResponseHeaderTimeout time.Duration
	TLSHandshakeTimeout   time.Duration

	DisableCompression bool

	// HTTP2 configures the transport for HTTP/2 over TLS using
	// golang.org/x/net/http2.
	HTTP2 bool
}

var configureHTTP2 = http2.ConfigureTransport

var shared struct {
	mu        sync.Mutex
	refs      int
	transport *http.Transport
}

// Acquire returns the process-wide transport, initializing it with s
// if no other user holds it. Settings passed while the transport is
// already live are ignored. Every successful Acquire must be paired
// with a Release.
func Acquire(s Settings) (*http.Transport, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.refs == 0 {
		t, err := newTransport(s)
		if err != nil {
			return nil, err
		}
		shared.transport = t
	}
	shared.refs++
	return shared.transport, nil
}

// Release drops one reference to the process-wide transport. When the
// last reference is dropped, idle connections are closed and the next
// Acquire initializes a fresh transport.
func Release() {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.refs == 0 {
		return
	}
	shared.refs--
	if shared.refs == 0 {
		shared.transport.CloseIdleConnections()
		shared.transport = nil
	}
}

// Refs returns the number of live references to the process-wide
// transport.
func Refs() int {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	return shared.refs
}

func newTransport(s Settings) (*http.Transport, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if s.MaxIdleConns > 0 {
		t.MaxIdleConns = s.MaxIdleConns
	}
	if s.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = s.MaxIdleConnsPerHost
	}
	if s.MaxConnsPerHost > 0 {
		t.MaxConnsPerHost = s.MaxConnsPerHost
	}
	if s.IdleConnTimeout > 0 {
		t.IdleConnTimeout = s.IdleConnTimeout
	}
	if s.ResponseHeaderTimeout > 0 {
		t.ResponseHeaderTimeout = s.ResponseHeaderTimeout
	}
	if s.TLSHandshakeTimeout > 0 {
		t.TLSHandshakeTimeout = s.TLSHandshakeTimeout
	}
	t.DisableCompression = s.DisableCompression
	t.DisableKeepAlives = false
	if s.HTTP2 {
		if err := configureHTTP2(t); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInit, err)
		}
	}
	return t, nil
}
