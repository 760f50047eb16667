// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/asynchttp/request"
)

// A Policy decides the deadline the transport applies to one exchange.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines, since every worker consults the same policy.
type Policy interface {
	// Timeout returns the timeout to set on the exchange for e. A
	// return value of zero, or one at least as large as Forever, means
	// no deadline.
	Timeout(e *request.Execution) time.Duration
}

// Forever is the longest representable timeout. The transport sets
// no deadline at all for it.
const Forever = time.Duration(1<<63 - 1)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(Forever)

// DefaultPolicy is the default timeout policy. Transfers may be large
// asset downloads, so by default no deadline is set.
var DefaultPolicy = Infinite

// Fixed constructs a timeout policy that uses the same value to set
// every exchange timeout.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that lengthens the timeout for
// resubmissions of a request that has already timed out.
//
// Parameter usual is the timeout for a request none of whose earlier
// submissions timed out. Parameter after holds the timeouts to use once
// earlier submissions have timed out: after[0] after one timeout,
// after[1] after two, and so on. If more submissions have timed out
// than after has elements, the last element of after is used.
//
// Consider the following timeout policy:
//
//	p := Adaptive(2*time.Second, 10*time.Second, time.Minute)
//
// The policy p uses 2 seconds for a first submission, 10 seconds for a
// resubmission after one timeout, and 1 minute after two or more.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(e *request.Execution) time.Duration {
	i := e.AttemptTimeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}

// Bounded reports whether d is a real deadline, as opposed to zero or
// Forever.
func Bounded(d time.Duration) bool {
	return d > 0 && d < Forever
}
