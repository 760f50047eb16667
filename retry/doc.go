// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry resubmits failed transfers of an asynchttp.Client
// according to a retry policy.
//
// A Policy pairs a Decider, which decides whether a finished transfer
// should be resubmitted, with a Waiter, which says how long to wait
// first. Both have constructors for common cases:
//
//	decider := retry.Times(3).
//		And(retry.StatusCode(429, 503).Or(retry.TransientErr))
//	waiter := retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, nil)
//	policy := retry.NewPolicy(decider, waiter)
//
// A Resubmitter applies a Policy on the frame loop. Waits are measured
// in frame time passed to Update, so nothing ever sleeps:
//
//	rs := retry.NewResubmitter(client, policy)
//	rs.Watch(client.Get(url), onDone)
//	for {
//		rs.Update(dt)
//		client.Update(dt)
//	}
package retry
