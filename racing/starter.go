// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package racing

import (
	"sync"
	"time"

	"github.com/gogama/asynchttp"
)

// A Starter makes the final decision on a scheduled duplicate, given
// the race's original request. If Start returns false, the duplicate
// is deferred and Start is asked again after the Scheduler's wait.
type Starter interface {
	Start(r *asynchttp.Request) bool
}

// AlwaysStart is a Starter that starts every scheduled duplicate.
var AlwaysStart Starter = alwaysStarter{}

type alwaysStarter struct{}

func (alwaysStarter) Start(_ *asynchttp.Request) bool {
	return true
}

// A Limit caps the number of duplicates started within a sliding
// period of wall-clock time.
type Limit struct {
	MaxStarts int
	Period    time.Duration
}

// NewThrottleStarter returns a Starter that starts a duplicate only if
// doing so stays within every one of limits. The returned Starter is
// safe to share between Racers.
func NewThrottleStarter(limits ...Limit) Starter {
	st := &throttleStarter{
		windows: make([]window, len(limits)),
		now:     time.Now,
	}
	for i, l := range limits {
		st.windows[i] = window{period: l.Period, times: make([]time.Time, max(l.MaxStarts, 0))}
	}
	return st
}

type throttleStarter struct {
	windows []window
	now     func() time.Time
	lock    sync.Mutex
}

func (st *throttleStarter) Start(_ *asynchttp.Request) bool {
	st.lock.Lock()
	defer st.lock.Unlock()
	now := st.now()
	for i := range st.windows {
		if !st.windows[i].room(now) {
			return false
		}
	}
	for i := range st.windows {
		st.windows[i].add(now)
	}
	return true
}

// window is a ring of the start times within the last period.
type window struct {
	period  time.Duration
	times   []time.Time
	head, n int
}

func (w *window) room(now time.Time) bool {
	cutoff := now.Add(-w.period)
	for w.n > 0 && !cutoff.Before(w.times[w.head]) {
		w.head = (w.head + 1) % len(w.times)
		w.n--
	}
	return w.n < len(w.times)
}

func (w *window) add(t time.Time) {
	w.times[(w.head+w.n)%len(w.times)] = t
	w.n++
}
