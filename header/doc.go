// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package header provides the case-insensitive header map used for both
request and response headers of a transfer, the names of commonly used
header fields and content types, and conversions between HTTP-date
strings and Go times or Unix epoch seconds.

A Map keeps one value per field name. Field names compare without
regard to case, and when a field is set twice the last value wins:

	var m header.Map
	m.Set("Content-Type", "text/plain")
	m.Set("content-type", "application/json")
	m.Get("CONTENT-TYPE") // "application/json"

Iteration over a Map visits fields in case-insensitive name order, so
header dumps and request serialization are deterministic.
*/
package header
