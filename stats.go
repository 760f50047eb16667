// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gogama/asynchttp/request"
	"github.com/gogama/asynchttp/transient"
)

// Stats is a snapshot of a Client's running counters. Counters are
// updated as finished requests are delivered by Update.
type Stats struct {
	// Requests is the number of requests submitted.
	Requests int64
	// Completed is the number of requests that have finished.
	Completed int64
	// Failed is the number of finished requests with a transport-level
	// error.
	Failed int64
	// Transient is the number of failures categorized as transient by
	// package transient.
	Transient int64
	// NotModified is the number of 304 responses.
	NotModified int64
	// ErrorStatus is the number of responses with a 4xx or 5xx status.
	ErrorStatus int64
	// Downloaded is the number of response bytes received, head
	// included.
	Downloaded int64
	// Uploaded is the number of request body bytes sent.
	Uploaded int64
	// TotalTime is the sum of the durations of finished exchanges.
	TotalTime time.Duration
	// BestRate is the fastest body download rate seen, in bytes per
	// second.
	BestRate float64

	// Queued, Executing and Workers describe the worker pool at the
	// time of the snapshot.
	Queued    int
	Executing int
	Workers   int
}

func (s *Stats) record(e *request.Execution) {
	s.Completed++
	if e.Plan != nil {
		s.Uploaded += int64(len(e.Plan.Body))
	}
	if e.Err != nil {
		s.Failed++
		if transient.Categorize(e.Err) != transient.Not {
			s.Transient++
		}
		s.TotalTime += e.Duration()
		return
	}

	body := len(e.Body)
	switch {
	case e.StatusCode == http.StatusNotModified:
		s.NotModified++
		body = 0
	case e.StatusCode >= 400:
		s.ErrorStatus++
	}
	s.Downloaded += int64(e.HeadBytes + body)

	d := e.Duration()
	s.TotalTime += d
	if d > 0 && body > 0 {
		if rate := float64(body) / d.Seconds(); rate > s.BestRate {
			s.BestRate = rate
		}
	}
}

// AverageLatency returns the mean duration of finished exchanges.
func (s Stats) AverageLatency() time.Duration {
	if s.Completed == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Completed)
}

// AverageRate returns the mean download rate in bytes per second.
func (s Stats) AverageRate() float64 {
	if s.TotalTime <= 0 {
		return 0
	}
	return float64(s.Downloaded) / s.TotalTime.Seconds()
}

// String returns a one-line summary suitable for a diagnostics
// overlay.
func (s Stats) String() string {
	return fmt.Sprintf("requests=%d completed=%d failed=%d not_modified=%d down=%dB up=%dB avg=%s best=%.0fB/s workers=%d queued=%d executing=%d",
		s.Requests, s.Completed, s.Failed, s.NotModified, s.Downloaded, s.Uploaded,
		s.AverageLatency(), s.BestRate, s.Workers, s.Queued, s.Executing)
}
