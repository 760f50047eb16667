// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"time"
)

// A worker is a goroutine that claims and executes transfers until it
// is told to stop. A stop request never interrupts a transfer that is
// already executing.
type worker struct {
	q    *Queue
	stop chan struct{}
	done chan struct{}
}

func newWorker(q *Queue) *worker {
	return &worker{
		q:    q,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func startWorker(w *worker) error {
	go w.run()
	return nil
}

func (w *worker) run() {
	defer close(w.done)

	timer := time.NewTimer(w.q.idleSleep)
	defer timer.Stop()

	for {
		select {
		case <-w.stop:
			return
		default:
		}

		if e := w.q.claim(); e != nil {
			w.q.exec.Execute(e)
			w.q.complete(e)
			continue
		}

		timer.Reset(w.q.idleSleep)
		select {
		case <-w.stop:
			return
		case <-timer.C:
		}
	}
}

func (w *worker) signal() {
	close(w.stop)
}

func (w *worker) join() {
	<-w.done
}
