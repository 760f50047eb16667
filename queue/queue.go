// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/gogama/asynchttp/request"
)

const (
	// MaxWorkersCap is the hard upper bound on the worker pool size.
	MaxWorkersCap = 32
	// DefaultKeepAlive is how long the queue must be idle before its
	// workers are stopped.
	DefaultKeepAlive = 10 * time.Second
	// DefaultIdleSleep is how long a worker sleeps after finding no
	// pending transfer.
	DefaultIdleSleep = 16 * time.Millisecond
)

// DefaultMaxWorkers returns the default worker pool bound: the number
// of logical CPUs, capped at MaxWorkersCap.
func DefaultMaxWorkers() int {
	return min(runtime.NumCPU(), MaxWorkersCap)
}

// An Executor performs one transfer. Execute runs on a worker
// goroutine and has exclusive access to e for its duration.
//
// Implementations of Executor must be safe for concurrent use by
// multiple goroutines.
type Executor interface {
	Execute(e *request.Execution)
}

// The ExecutorFunc type is an adapter to allow the use of ordinary
// functions as executors.
type ExecutorFunc func(e *request.Execution)

// Execute calls f(e).
func (f ExecutorFunc) Execute(e *request.Execution) {
	f(e)
}

// Options configures a Queue. Zero values select the defaults.
type Options struct {
	// MaxWorkers bounds the worker pool. Values above MaxWorkersCap
	// are lowered to it. Zero means DefaultMaxWorkers.
	MaxWorkers int
	// KeepAlive is the idle period after which workers are stopped.
	// Zero means DefaultKeepAlive.
	KeepAlive time.Duration
	// IdleSleep is how long a worker sleeps when there is no pending
	// transfer. Zero means DefaultIdleSleep.
	IdleSleep time.Duration
	// OnDispatch is called by Pump, on the submitting goroutine, for
	// each transfer just before it becomes visible to workers.
	OnDispatch func(e *request.Execution)
	// OnComplete is called by Pump, on the submitting goroutine, for
	// each completed transfer.
	OnComplete func(e *request.Execution)
	// Logger receives pool lifecycle messages. Nil means slog.Default.
	Logger *slog.Logger
}

// A Queue schedules transfers onto an elastic pool of workers.
//
// Submit, Pending, Workers, Pump and Stop belong to the submitting
// goroutine and must not be called concurrently with each other.
type Queue struct {
	exec       Executor
	maxWorkers int
	keepAlive  time.Duration
	idleSleep  time.Duration
	onDispatch func(e *request.Execution)
	onComplete func(e *request.Execution)
	logger     *slog.Logger
	start      func(w *worker) error

	// Owned by the submitting goroutine.
	created []*request.Execution
	workers []*worker
	idle    time.Duration
	stopped bool

	mu        sync.Mutex
	pending   []*request.Execution
	executing map[*request.Execution]struct{}

	doneMu    sync.Mutex
	completed []*request.Execution
}

// New returns a queue whose workers run transfers through exec.
func New(exec Executor, opts Options) *Queue {
	if exec == nil {
		panic("asynchttp/queue: nil executor")
	}
	q := &Queue{
		exec:       exec,
		maxWorkers: opts.MaxWorkers,
		keepAlive:  opts.KeepAlive,
		idleSleep:  opts.IdleSleep,
		onDispatch: opts.OnDispatch,
		onComplete: opts.OnComplete,
		logger:     opts.Logger,
		start:      startWorker,
		executing:  make(map[*request.Execution]struct{}),
	}
	if q.maxWorkers <= 0 {
		q.maxWorkers = DefaultMaxWorkers()
	}
	q.maxWorkers = min(q.maxWorkers, MaxWorkersCap)
	if q.keepAlive <= 0 {
		q.keepAlive = DefaultKeepAlive
	}
	if q.idleSleep <= 0 {
		q.idleSleep = DefaultIdleSleep
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	return q
}

// MaxWorkers returns the worker pool bound.
func (q *Queue) MaxWorkers() int {
	return q.maxWorkers
}

// Submit adds e to the created list. It never blocks. The transfer
// becomes visible to workers on the next Pump.
func (q *Queue) Submit(e *request.Execution) {
	q.created = append(q.created, e)
}

// Pending returns the number of transfers submitted but not yet
// claimed by a worker.
func (q *Queue) Pending() int {
	q.mu.Lock()
	n := len(q.pending)
	q.mu.Unlock()
	return len(q.created) + n
}

// Executing returns the number of transfers currently claimed by
// workers.
func (q *Queue) Executing() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.executing)
}

// Workers returns the number of live workers.
func (q *Queue) Workers() int {
	return len(q.workers)
}

// Pump advances the queue by one frame of duration dt. In order, it:
// delivers completed transfers to OnComplete; dispatches created
// transfers to the workers; stops all workers if the queue has been
// idle for longer than the keep-alive period; and starts workers until
// there are as many as pending transfers, up to the pool bound.
func (q *Queue) Pump(dt time.Duration) {
	q.deliver()
	if q.stopped {
		return
	}
	q.dispatch()

	q.mu.Lock()
	pending := len(q.pending)
	busy := pending + len(q.executing)
	q.mu.Unlock()

	if busy == 0 {
		q.idle += dt
		if q.idle > q.keepAlive && len(q.workers) > 0 {
			q.logger.Debug("stopping idle workers", "workers", len(q.workers), "idle", q.idle)
			q.stopWorkers()
		}
	} else {
		q.idle = 0
	}

	q.grow(min(pending, q.maxWorkers))
}

func (q *Queue) deliver() {
	q.doneMu.Lock()
	completed := q.completed
	q.completed = nil
	q.doneMu.Unlock()

	for i, e := range completed {
		completed[i] = nil
		if q.onComplete != nil {
			q.onComplete(e)
		}
	}
}

func (q *Queue) dispatch() {
	if len(q.created) == 0 {
		return
	}
	// OnDispatch may Submit; those transfers wait for the next Pump.
	created := q.created
	q.created = nil
	if q.onDispatch != nil {
		for _, e := range created {
			q.onDispatch(e)
		}
	}

	q.mu.Lock()
	q.pending = append(q.pending, created...)
	q.mu.Unlock()
}

func (q *Queue) grow(want int) {
	for len(q.workers) < want {
		w := newWorker(q)
		if err := q.start(w); err != nil {
			q.logger.Error("failed to start worker", "workers", len(q.workers), "error", err)
			return
		}
		q.workers = append(q.workers, w)
		q.logger.Debug("started worker", "workers", len(q.workers))
	}
}

func (q *Queue) stopWorkers() {
	for _, w := range q.workers {
		w.signal()
	}
	for i, w := range q.workers {
		w.join()
		q.workers[i] = nil
	}
	q.workers = q.workers[:0]
}

// claim pops the oldest pending transfer and marks it executing. It
// returns nil if nothing is pending.
func (q *Queue) claim() *request.Execution {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	e := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	q.executing[e] = struct{}{}
	return e
}

// complete moves an executing transfer to the completed list.
func (q *Queue) complete(e *request.Execution) {
	q.mu.Lock()
	delete(q.executing, e)
	q.mu.Unlock()

	q.doneMu.Lock()
	q.completed = append(q.completed, e)
	q.doneMu.Unlock()
}

// Stop stops and joins every worker, waiting for in-flight transfers
// to finish, and delivers transfers that completed. It returns the
// transfers that never reached a worker, in submission order. The
// queue accepts no further work after Stop.
func (q *Queue) Stop() []*request.Execution {
	q.stopWorkers()
	q.deliver()
	q.stopped = true

	q.mu.Lock()
	left := append([]*request.Execution(nil), q.pending...)
	clear(q.pending)
	q.pending = nil
	q.mu.Unlock()

	left = append(left, q.created...)
	clear(q.created)
	q.created = nil
	return left
}
