// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Plan (describes an HTTP
request) and Execution (describes one transfer of a Plan), together
with the Method enumeration and the incremental response head parser.

The first core type is Plan, which holds the outbound half of a
transfer: method, URL, header fields, body, and an optional disk cache
path.

	p, err := request.NewPlan(request.Get, "https://example.com", nil)
	...
	p.SetHeader("Accept", "application/json")

The second core type is Execution, which holds a Plan together with
the inbound half of the transfer: HTTP version, status, response
header, body, timing, and transport error. A transport feeds response
bytes into an Execution through two channels. WriteHead receives the
status line and header bytes, split at arbitrary points, and drives a
small state machine:

	AwaitingStatus -> AwaitingHeaderField <-> AwaitingHeaderValue
	AwaitingHeaderField -> InBody (on the empty line)

WriteBody receives body bytes once the head is complete. The first body
write reserves storage from the Content-Length header, or from a
generous default when there is none.

You will typically not allocate Execution instances yourself, but will
work with the ones handed out by asynchttp.Client.
*/
package request
