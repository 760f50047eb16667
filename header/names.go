// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

// Commonly used header field names.
const (
	Accept           = "Accept"
	AcceptEncoding   = "Accept-Encoding"
	Authorization    = "Authorization"
	CacheControl     = "Cache-Control"
	Connection       = "Connection"
	ContentEncoding  = "Content-Encoding"
	ContentLength    = "Content-Length"
	ContentType      = "Content-Type"
	Cookie           = "Cookie"
	Date             = "Date"
	ETag             = "ETag"
	Expect           = "Expect"
	Host             = "Host"
	IfModifiedSince  = "If-Modified-Since"
	IfNoneMatch      = "If-None-Match"
	LastModified     = "Last-Modified"
	Location         = "Location"
	SetCookie        = "Set-Cookie"
	TransferEncoding = "Transfer-Encoding"
	UserAgent        = "User-Agent"
)

// Commonly used content types.
const (
	TypeOctetStream = "application/octet-stream"
	TypeJSON        = "application/json"
	TypeXML         = "application/xml"
	TypeForm        = "application/x-www-form-urlencoded"
	TypeTextPlain   = "text/plain"
	TypeTextHTML    = "text/html"
	TypeTextXML     = "text/xml"
)
