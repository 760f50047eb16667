// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package racing

import (
	"time"

	"github.com/gogama/asynchttp"
)

// A Policy decides when to add a duplicate transfer to a race.
type Policy interface {
	Scheduler
	Starter
}

// Disabled is a policy that never races.
var Disabled Policy = disabled{}

type policy struct {
	scheduler Scheduler
	starter   Starter
}

// NewPolicy composes a Scheduler and a Starter into a racing Policy.
func NewPolicy(sc Scheduler, st Starter) Policy {
	if sc == nil {
		panic("asynchttp/racing: nil scheduler")
	}
	if st == nil {
		panic("asynchttp/racing: nil starter")
	}
	return policy{scheduler: sc, starter: st}
}

func (p policy) Schedule(n int) time.Duration {
	return p.scheduler.Schedule(n)
}

func (p policy) Start(r *asynchttp.Request) bool {
	return p.starter.Start(r)
}

type disabled struct{}

func (disabled) Schedule(_ int) time.Duration {
	return 0
}

func (disabled) Start(_ *asynchttp.Request) bool {
	return false
}
