// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gogama/asynchttp/request"
)

// A Waiter specifies how long to wait before resubmitting a failed
// transfer. It is only consulted after the Decider said yes.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// DefaultWaiter uses jittered exponential backoff with a base wait of
// 50 milliseconds and a maximum wait of 1 second.
var DefaultWaiter = NewExpWaiter(50*time.Millisecond, 1*time.Second, rand.NewPCG(uint64(time.Now().UnixNano()), 0))

// NewFixedWaiter constructs a Waiter that always returns d.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *request.Execution) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter constructs a Waiter implementing the "Full Jitter"
// exponential backoff formula:
//
//	ceil := min(base * 2**attempt, max)
//	wait := random in [0, ceil)
//
// Base must be positive and max at least base. If src is nil there is
// no jitter and the waiter returns ceil.
func NewExpWaiter(base, max time.Duration, src rand.Source) Waiter {
	if base < 1 {
		panic("asynchttp/retry: base must be positive")
	}
	if max < base {
		panic("asynchttp/retry: max must be at least base")
	}
	w := &expWaiter{base: base, max: max}
	if src != nil {
		w.rand = rand.New(src)
	}
	return w
}

type expWaiter struct {
	base time.Duration
	max  time.Duration
	rand *rand.Rand
	lock sync.Mutex
}

func (w *expWaiter) Wait(e *request.Execution) time.Duration {
	ceil := w.max
	if e.Attempt >= 0 && e.Attempt < 62 {
		exp := int64(1) << e.Attempt
		if c := int64(w.base) * exp; c/exp == int64(w.base) && c < int64(w.max) {
			ceil = time.Duration(c)
		}
	}

	if w.rand == nil || ceil <= 0 {
		return ceil
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	return time.Duration(w.rand.Int64N(int64(ceil)))
}
