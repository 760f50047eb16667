// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package queue implements the work queue that sits between the goroutine
submitting transfers and the pool of worker goroutines executing them.

A transfer moves through four lists:

	created -> pending -> executing -> completed

Submit appends to created, which only the submitting goroutine touches.
Pump, called once per frame by the same goroutine, delivers completed
transfers, hands created transfers to the workers by moving them into
pending, and resizes the pool. Workers claim from pending in FIFO
order, execute, and complete. Pending and executing share one lock and
completed has its own, and no lock is held while a transfer executes.

Workers are started on demand, up to the smaller of the pending count
and the configured maximum, and all of them are stopped once the queue
has been idle for the keep-alive period.
*/
package queue
