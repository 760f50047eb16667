// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	urlpkg "net/url"
	"strings"

	"github.com/gogama/asynchttp/header"
	"golang.org/x/net/http/httpguts"
)

var (
	// ErrNoURL is returned when a plan is created without a URL.
	ErrNoURL = errors.New("asynchttp/request: empty URL")
	// ErrUnsupportedScheme is returned when a plan URL is neither
	// http nor https.
	ErrUnsupportedScheme = errors.New("asynchttp/request: unsupported URL scheme")
	// ErrInvalidHeader is returned when a header name or value cannot
	// be sent on the wire.
	ErrInvalidHeader = errors.New("asynchttp/request: invalid header")
)

// A Plan contains the outbound half of a transfer: everything needed
// to describe the HTTP request to the transport.
//
// A Plan is configured by the submitting goroutine and becomes
// read-only once the transfer has been handed to a worker.
type Plan struct {
	// Method specifies the HTTP method.
	Method Method

	// URL specifies the URL to access.
	URL *urlpkg.URL

	// Header contains the request header fields to be sent.
	Header header.Map

	// Body is the pre-buffered request body. A nil or empty body
	// indicates no request body should be sent.
	Body []byte

	// ContentType is the declared type of Body. It is sent as the
	// Content-Type header when Body is not empty.
	ContentType string

	// CacheFile is the disk cache path associated with the transfer.
	// It is empty if the transfer has no cache entry.
	CacheFile string

	// WriteCache indicates that the transfer itself persists the
	// response body to CacheFile on a 200 response. When false,
	// CacheFile only reports where the caller should read cached
	// bytes from.
	WriteCache bool

	// Revalidate makes the request conditional on the modification
	// time of the cache entry at CacheFile: if the entry exists, the
	// transfer sends If-Modified-Since and a 304 response is served
	// from the entry.
	Revalidate bool

	// Verbose requests a debug dump of the exchange once it
	// completes.
	Verbose bool
}

// NewPlan returns a new Plan given a method, URL, and optional body.
//
// Parameter body may be nil (empty body), or it may be a string,
// []byte, io.Reader, or io.ReadCloser. If body is an io.Reader, it is
// read to the end and buffered into a []byte. If body is an
// io.ReadCloser, it is closed after buffering.
func NewPlan(method Method, url string, body interface{}) (*Plan, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("asynchttp/request: invalid method %d", int(method))
	}
	if url == "" {
		return nil, ErrNoURL
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	u.Host = removeEmptyPort(u.Host)
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Method: method,
		URL:    u,
		Body:   b,
	}, nil
}

// SetHeader sets a request header field, replacing any previous value
// for the same name under any capitalization. The name must be a
// valid HTTP token and the value must not contain control characters.
func (p *Plan) SetHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("%w: name %q", ErrInvalidHeader, name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("%w: value for %q", ErrInvalidHeader, name)
	}
	p.Header.Set(name, value)
	return nil
}

// SetBody replaces the request body and its declared content type.
func (p *Plan) SetBody(contentType string, body interface{}) error {
	b, err := BodyBytes(body)
	if err != nil {
		return err
	}
	p.Body = b
	p.ContentType = contentType
	return nil
}

// SetBodyJSON marshals v as JSON and uses it as the request body with
// content type application/json.
func (p *Plan) SetBodyJSON(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("asynchttp/request: marshal body: %w", err)
	}
	p.Body = b
	p.ContentType = header.TypeJSON
	return nil
}

// ClearBody removes the request body and its content type.
func (p *Plan) ClearBody() {
	p.Body = nil
	p.ContentType = ""
}

// SetCacheFile associates a disk cache path with the plan. When write
// is true the transfer persists a 200 response body to path itself.
// An empty path removes the association.
func (p *Plan) SetCacheFile(path string, write bool) {
	p.CacheFile = path
	p.WriteCache = write && path != ""
}

// AddCookie adds a cookie to the request. Per RFC 6265 section 5.4,
// AddCookie does not attach more than one Cookie header field. That
// means all cookies, if any, are written into the same line,
// separated by semicolons.
func (p *Plan) AddCookie(c *http.Cookie) {
	c2 := &http.Cookie{Name: c.Name, Value: c.Value}
	s := c2.String()
	if h := p.Header.Get(header.Cookie); h != "" {
		p.Header.Set(header.Cookie, h+"; "+s)
	} else {
		p.Header.Set(header.Cookie, s)
	}
}

// SetBasicAuth sets the request plan's Authorization header to use HTTP
// Basic Authentication with the provided username and password.
//
// With HTTP Basic Authentication the provided username and password
// are not encrypted.
func (p *Plan) SetBasicAuth(username, password string) {
	p.Header.Set(header.Authorization, "Basic "+basicAuth(username, password))
}

// Clone returns a deep copy of p, suitable for submitting the same
// logical request again.
func (p *Plan) Clone() *Plan {
	p2 := new(Plan)
	*p2 = *p
	if p.URL != nil {
		u := *p.URL
		if p.URL.User != nil {
			user := *p.URL.User
			u.User = &user
		}
		p2.URL = &u
	}
	p2.Header = p.Header.Clone()
	if p.Body != nil {
		p2.Body = append([]byte(nil), p.Body...)
	}
	return p2
}

// basicAuth is lifted verbatim from net/http/client.go.
//
// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// "To receive authorization, the client sends the userid and password,
// separated by a single colon (":") character, within a base64
// encoded string in the credentials."
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
