// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"strings"
)

// A Method is one of the HTTP request methods a transfer can use.
type Method int

const (
	// Head identifies the HTTP HEAD method.
	Head Method = iota + 1
	// Options identifies the HTTP OPTIONS method.
	Options
	// Get identifies the HTTP GET method.
	Get
	// Put identifies the HTTP PUT method.
	Put
	// Patch identifies the HTTP PATCH method.
	Patch
	// Post identifies the HTTP POST method.
	Post
	// Delete identifies the HTTP DELETE method.
	Delete
	// methodSentinel is one past the last valid method.
	methodSentinel
)

var methodNames = []string{
	"",
	"HEAD",
	"OPTIONS",
	"GET",
	"PUT",
	"PATCH",
	"POST",
	"DELETE",
}

// Methods returns all valid methods in enumeration order.
func Methods() []Method {
	return []Method{Head, Options, Get, Put, Patch, Post, Delete}
}

// ParseMethod returns the Method whose textual form is s. Comparison
// ignores case, and the empty string means GET.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return Get, nil
	}
	u := strings.ToUpper(s)
	for m := Head; m < methodSentinel; m++ {
		if methodNames[m] == u {
			return m, nil
		}
	}
	return 0, fmt.Errorf("asynchttp/request: invalid method %q", s)
}

// Valid reports whether m is one of the enumerated methods.
func (m Method) Valid() bool {
	return m >= Head && m < methodSentinel
}

// String returns the HTTP verb for m, for example "GET". An invalid
// method yields "Method(n)".
func (m Method) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// AllowsBody reports whether a request using m may carry a body.
func (m Method) AllowsBody() bool {
	switch m {
	case Put, Patch, Post, Delete:
		return true
	default:
		return false
	}
}

// ExpectsBody reports whether a successful response to m normally
// carries a body. Responses to HEAD never do.
func (m Method) ExpectsBody() bool {
	return m != Head
}
