// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

import (
	"net/http"
	"time"
)

// FormatTime formats t as an HTTP-date (RFC 7231 IMF-fixdate), for
// example "Sun, 06 Nov 1994 08:49:37 GMT". The time is converted to
// UTC first.
func FormatTime(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// ParseTime parses an HTTP-date in any of the three formats allowed
// by HTTP/1.1: IMF-fixdate, RFC 850, and ANSI C asctime. The returned
// time is in UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := http.ParseTime(s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// EpochToHTTPDate formats Unix epoch seconds as an HTTP-date.
func EpochToHTTPDate(sec int64) string {
	return FormatTime(time.Unix(sec, 0))
}

// HTTPDateToEpoch parses an HTTP-date and returns it as Unix epoch
// seconds. An unparsable date yields zero.
func HTTPDateToEpoch(s string) int64 {
	t, err := ParseTime(s)
	if err != nil {
		return 0
	}
	return t.Unix()
}
