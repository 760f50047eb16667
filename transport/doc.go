// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport defines the capability the transfer engine uses to
perform one blocking HTTP exchange, and provides an implementation of
it on top of net/http.

A Binder produces a Conn for one transfer. The Conn is configured with
headers and body, performs the exchange, and streams the final
response back through a ResponseWriter as two channels of raw bytes:
the head (status line and header fields, in HTTP/1.1 wire form) and the
body. Redirects are followed and connections are kept alive by the
transport, so only the final response surfaces.

The net/http implementation shares one *http.Transport across every
client in the process. Acquire initializes it on first use and Release
tears it down when the last user is gone.
*/
package transport
