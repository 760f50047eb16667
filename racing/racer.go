// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package racing

import (
	"time"

	"github.com/gogama/asynchttp"
)

// A Racer runs races on a Client's frame loop. Call its Update once per
// frame, on the goroutine that owns the Client, before the Client's
// Update.
type Racer struct {
	client *asynchttp.Client
	policy Policy
	races  []*race
}

type race struct {
	attempts    []*asynchttp.Request
	outstanding int
	elapsed     time.Duration
	next        time.Duration
	done        asynchttp.FinishedFunc
	over        bool
}

// NewRacer returns a Racer that adds duplicates to races on c
// according to p. If p is nil, Disabled is used.
func NewRacer(c *asynchttp.Client, p Policy) *Racer {
	if c == nil {
		panic("asynchttp/racing: nil client")
	}
	if p == nil {
		p = Disabled
	}
	return &Racer{client: c, policy: p}
}

// Race starts a race with r and arranges for done to be called once,
// with the winning transfer. A no-op request cannot race, so done is
// called on it immediately.
func (rc *Racer) Race(r *asynchttp.Request, done asynchttp.FinishedFunc) {
	if done == nil {
		panic("asynchttp/racing: nil listener")
	}
	if r.Noop() {
		done(r, r.StatusCode(), r.Err())
		return
	}
	rr := &race{done: done}
	rc.join(rr, r)
	if r.URL() != nil {
		rr.next = rc.policy.Schedule(1)
	}
	if rr.next > 0 {
		rc.races = append(rc.races, rr)
	}
}

func (rc *Racer) join(rr *race, r *asynchttp.Request) {
	rr.attempts = append(rr.attempts, r)
	rr.outstanding++
	r.OnFinished(func(r *asynchttp.Request, status int, err error) {
		rr.outstanding--
		if rr.over || (err != nil && rr.outstanding > 0) {
			return
		}
		rr.over = true
		rr.done(r, status, err)
	})
}

// Update advances every growing race by dt and starts the duplicates
// that are due.
func (rc *Racer) Update(dt time.Duration) {
	if len(rc.races) == 0 {
		return
	}
	kept := rc.races[:0]
	for _, rr := range rc.races {
		if !rr.over {
			rr.elapsed += dt
			if rr.elapsed >= rr.next {
				rc.grow(rr)
			}
		}
		if !rr.over && rr.next > 0 {
			kept = append(kept, rr)
		}
	}
	for i := len(kept); i < len(rc.races); i++ {
		rc.races[i] = nil
	}
	rc.races = kept
}

func (rc *Racer) grow(rr *race) {
	rr.elapsed = 0
	orig := rr.attempts[0]
	if !rc.policy.Start(orig) {
		// Ask again after the same wait.
		rr.next = rc.policy.Schedule(len(rr.attempts))
		return
	}
	rr.next = 0
	dup := rc.client.Do(orig.Plan())
	if dup.Noop() {
		return
	}
	rc.join(rr, dup)
	rr.next = rc.policy.Schedule(len(rr.attempts))
}

// Pending returns the number of races that may still grow.
func (rc *Racer) Pending() int {
	return len(rc.races)
}
