// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/asynchttp"
)

// A Resubmitter applies a retry Policy to requests of a Client.
//
// Like the Client, a Resubmitter is driven by the frame loop: call its
// Update once per frame, on the goroutine that owns the Client, before
// calling the Client's Update. It never sleeps; waits are counted down
// in frame time.
type Resubmitter struct {
	client  *asynchttp.Client
	policy  Policy
	waiting []waiting
}

type waiting struct {
	r    *asynchttp.Request
	left time.Duration
	done asynchttp.FinishedFunc
}

// NewResubmitter returns a Resubmitter that resubmits requests of c
// according to p. If p is nil, DefaultPolicy is used.
func NewResubmitter(c *asynchttp.Client, p Policy) *Resubmitter {
	if c == nil {
		panic("asynchttp/retry: nil client")
	}
	if p == nil {
		p = DefaultPolicy
	}
	return &Resubmitter{client: c, policy: p}
}

// Watch arranges for done to be called once with the final outcome of
// r: either r itself, or the last of its resubmissions.
//
// A no-op request has no outcome to wait for, so done is called on it
// immediately.
func (rs *Resubmitter) Watch(r *asynchttp.Request, done asynchttp.FinishedFunc) {
	if done == nil {
		panic("asynchttp/retry: nil listener")
	}
	if r.Noop() {
		done(r, r.StatusCode(), r.Err())
		return
	}
	r.OnFinished(func(r *asynchttp.Request, status int, err error) {
		e := r.Execution()
		if !rs.policy.Decide(e) {
			done(r, status, err)
			return
		}
		rs.waiting = append(rs.waiting, waiting{r: r, left: rs.policy.Wait(e), done: done})
	})
}

// Update advances the waits of pending resubmissions by dt and
// resubmits every request whose wait has elapsed.
func (rs *Resubmitter) Update(dt time.Duration) {
	if len(rs.waiting) == 0 {
		return
	}
	ready := rs.waiting[:0:0]
	kept := rs.waiting[:0]
	for _, w := range rs.waiting {
		w.left -= dt
		if w.left <= 0 {
			ready = append(ready, w)
		} else {
			kept = append(kept, w)
		}
	}
	for i := len(kept); i < len(rs.waiting); i++ {
		rs.waiting[i] = waiting{}
	}
	rs.waiting = kept

	for _, w := range ready {
		rs.Watch(rs.client.Resubmit(w.r), w.done)
	}
}

// Pending returns the number of requests waiting to be resubmitted.
func (rs *Resubmitter) Pending() int {
	return len(rs.waiting)
}
