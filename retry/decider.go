// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"github.com/gogama/asynchttp/request"
	"github.com/gogama/asynchttp/transient"
)

// A Decider decides whether a finished transfer should be resubmitted.
//
// Use the built-in constructors Times, Timeouts, and StatusCode, and
// the built-in deciders TransientErr and ServerErr; or implement your
// own. DeciderFunc converts an ordinary function into a Decider and
// composes deciders with And and Or.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface,
// and also provides the logical composition methods And and Or.
type DeciderFunc func(e *request.Execution) bool

// DefaultTimes is the number of times DefaultPolicy will resubmit.
const DefaultTimes = 5

// DefaultDecider allows up to DefaultTimes resubmissions of a
// transfer that failed with a transient error or received one of
// the status codes 429, 502, 503, or 504.
var DefaultDecider = Times(DefaultTimes).And(StatusCode(429, 502, 503, 504).Or(TransientErr))

// TransientErr decides to retry if the transfer error is transient
// according to transient.Categorize. It returns false whenever a
// response was received.
var TransientErr DeciderFunc = transientErr

// ServerErr decides to retry on any 5xx response status.
var ServerErr DeciderFunc = serverErr

// Decide returns true if the transfer described by e should be
// resubmitted.
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two deciders into one that returns true only if both
// do. g is not evaluated if f returns false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two deciders into one that returns true if either does.
// g is not evaluated if f returns true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times constructs a decider allowing up to n resubmissions. It
// returns true while e.Attempt is less than n.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

// Timeouts constructs a decider allowing up to n timed-out attempts,
// counting the transfer just finished.
func Timeouts(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		t := e.AttemptTimeouts
		if e.Timeout() {
			t++
		}
		return t < n
	}
}

// StatusCode constructs a decider that returns true if the transfer
// received a response whose status code is in ss.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(e *request.Execution) bool {
		for _, s := range ss2 {
			if e.StatusCode == s {
				return true
			}
		}
		return false
	}
}

func transientErr(e *request.Execution) bool {
	return transient.Categorize(e.Err) != transient.Not
}

func serverErr(e *request.Execution) bool {
	return e.Err == nil && e.StatusCode >= 500 && e.StatusCode <= 599
}
