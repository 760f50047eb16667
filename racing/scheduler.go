// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package racing

import "time"

// A Scheduler schedules the next duplicate of a race. Given the number
// n of transfers already in the race, at least one, Schedule returns
// how long after the latest of them started to add another. A return
// value of zero or less means the race stops growing.
type Scheduler interface {
	Schedule(n int) time.Duration
}

// NewStaticScheduler returns a Scheduler with fixed offsets: the first
// duplicate is added offsets[0] after the original starts, the second
// offsets[1] after the first duplicate, and so on. The race stops
// growing after len(offsets) duplicates.
func NewStaticScheduler(offsets ...time.Duration) Scheduler {
	o := make([]time.Duration, len(offsets))
	copy(o, offsets)
	return staticScheduler(o)
}

type staticScheduler []time.Duration

func (sc staticScheduler) Schedule(n int) time.Duration {
	if n < 1 || n > len(sc) {
		return 0
	}
	return sc[n-1]
}
