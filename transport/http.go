// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gogama/asynchttp/header"
	"github.com/gogama/asynchttp/request"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	Do(r *http.Request) (*http.Response, error)
}

// ChunkSize is the size of the buffer used to stream response bodies.
const ChunkSize = 16 * 1024

var chunkPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, ChunkSize)
		return &b
	},
}

// HTTP is a Binder backed by an HTTPDoer, typically an *http.Client.
// Its zero value uses http.DefaultClient.
type HTTP struct {
	// Doer performs the exchanges. If nil, http.DefaultClient is used.
	Doer HTTPDoer
	// UserAgent is sent when the request has no User-Agent field.
	UserAgent string
	// Propagator injects trace context into outgoing requests. If nil,
	// the global otel propagator is used.
	Propagator propagation.TextMapPropagator
}

// NewHTTP returns a Binder whose exchanges go through an http.Client
// built on rt. The client follows redirects.
func NewHTTP(rt http.RoundTripper, userAgent string) *HTTP {
	return &HTTP{
		Doer:      &http.Client{Transport: rt},
		UserAgent: userAgent,
	}
}

// Bind returns a Conn for one exchange with the given method and URL.
func (t *HTTP) Bind(method request.Method, u *url.URL) (Conn, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: invalid method %d", ErrBind, int(method))
	}
	if u == nil || u.Host == "" {
		return nil, fmt.Errorf("%w: URL has no host", ErrBind)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrBind, u.Scheme)
	}
	return &httpConn{t: t, method: method, url: u}, nil
}

func (t *HTTP) doer() HTTPDoer {
	if t.Doer == nil {
		return http.DefaultClient
	}
	return t.Doer
}

func (t *HTTP) propagator() propagation.TextMapPropagator {
	if t.Propagator == nil {
		return otel.GetTextMapPropagator()
	}
	return t.Propagator
}

type httpConn struct {
	t           *HTTP
	method      request.Method
	url         *url.URL
	header      http.Header
	body        []byte
	contentType string
	buf         *[]byte
}

func (c *httpConn) SetHeaders(h header.Map) error {
	c.header = h.ToHTTP()
	return nil
}

func (c *httpConn) SetBody(body []byte, contentType string) error {
	if len(body) > 0 && !c.method.AllowsBody() {
		return fmt.Errorf("%w: %s", ErrBodyNotAllowed, c.method)
	}
	c.body = body
	c.contentType = contentType
	return nil
}

func (c *httpConn) Perform(ctx context.Context, w ResponseWriter) error {
	var body io.Reader
	if len(c.body) > 0 {
		body = bytes.NewReader(c.body)
	}
	r, err := http.NewRequestWithContext(ctx, c.method.String(), c.url.String(), body)
	if err != nil {
		return err
	}
	if c.header != nil {
		r.Header = c.header
	}
	if c.contentType != "" && len(c.body) > 0 {
		r.Header.Set(header.ContentType, c.contentType)
	}
	if c.t.UserAgent != "" && r.Header.Get(header.UserAgent) == "" {
		r.Header.Set(header.UserAgent, c.t.UserAgent)
	}
	c.t.propagator().Inject(ctx, propagation.HeaderCarrier(r.Header))

	resp, err := c.t.doer().Do(r)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err = w.WriteHead(responseHead(resp)); err != nil {
		return err
	}

	c.buf = chunkPool.Get().(*[]byte)
	buf := *c.buf
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if werr := w.WriteBody(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}

func (c *httpConn) Release() {
	if c.buf != nil {
		chunkPool.Put(c.buf)
		c.buf = nil
	}
	c.header = nil
	c.body = nil
}

// responseHead renders the status line and header fields of resp in
// HTTP/1.1 wire form, ending with the empty line.
func responseHead(resp *http.Response) []byte {
	var b bytes.Buffer
	status := resp.Status
	if status == "" {
		status = strconv.Itoa(resp.StatusCode) + " " + http.StatusText(resp.StatusCode)
	} else if !strings.HasPrefix(status, strconv.Itoa(resp.StatusCode)) {
		status = strconv.Itoa(resp.StatusCode) + " " + status
	}
	major, minor := resp.ProtoMajor, resp.ProtoMinor
	if major == 0 {
		major, minor = 1, 1
	}
	fmt.Fprintf(&b, "HTTP/%d.%d %s\r\n", major, minor, strings.TrimSpace(status))

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range resp.Header[name] {
			fmt.Fprintf(&b, "%s: %s\r\n", name, value)
		}
	}
	if resp.ContentLength >= 0 && resp.Header.Get(header.ContentLength) == "" {
		fmt.Fprintf(&b, "%s: %d\r\n", header.ContentLength, resp.ContentLength)
	}
	b.WriteString("\r\n")
	return b.Bytes()
}
