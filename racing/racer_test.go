// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package racing

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogama/asynchttp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRacer(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		switch r.URL.Path {
		case "/slow-first":
			if n == 1 {
				time.Sleep(300 * time.Millisecond)
				_, _ = w.Write([]byte("slow"))
				return
			}
			_, _ = w.Write([]byte("fast"))
		case "/drop":
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				_ = conn.Close()
			}
		default:
			_, _ = w.Write([]byte("ok"))
		}
	}))
	t.Cleanup(srv.Close)

	hedge := NewPolicy(NewStaticScheduler(20*time.Millisecond), AlwaysStart)

	t.Run("duplicate wins", func(t *testing.T) {
		hits.Store(0)
		c := newClient(t, srv)
		rc := NewRacer(c, hedge)
		orig := c.Get(srv.URL + "/slow-first")
		out := run(t, c, rc, orig)
		assert.Equal(t, 1, out.calls)
		assert.Equal(t, http.StatusOK, out.status)
		assert.NotEqual(t, orig.ID(), out.r.ID())
		assert.Equal(t, "fast", string(out.r.Body()))
		pumpUntil(t, c, rc, orig.Finished)
		assert.Equal(t, 1, out.calls)
		assert.Equal(t, int32(2), hits.Load())
	})
	t.Run("disabled", func(t *testing.T) {
		hits.Store(0)
		c := newClient(t, srv)
		rc := NewRacer(c, nil)
		orig := c.Get(srv.URL + "/slow-first")
		assert.Equal(t, 0, rc.Pending())
		out := run(t, c, rc, orig)
		assert.Same(t, orig, out.r)
		assert.Equal(t, "slow", string(out.r.Body()))
		assert.Equal(t, int32(1), hits.Load())
	})
	t.Run("fast original", func(t *testing.T) {
		c := newClient(t, srv)
		rc := NewRacer(c, NewPolicy(NewStaticScheduler(time.Hour), AlwaysStart))
		orig := c.Get(srv.URL)
		out := run(t, c, rc, orig)
		assert.Same(t, orig, out.r)
		assert.Equal(t, 0, rc.Pending())
	})
	t.Run("starter declines", func(t *testing.T) {
		hits.Store(0)
		c := newClient(t, srv)
		rc := NewRacer(c, NewPolicy(NewStaticScheduler(time.Millisecond), NewThrottleStarter(Limit{Period: time.Hour})))
		orig := c.Get(srv.URL + "/slow-first")
		rc.Race(orig, func(*asynchttp.Request, int, error) {})
		rc.Update(time.Millisecond)
		assert.Equal(t, 1, rc.Pending(), "declined duplicate is deferred")
		pumpUntil(t, c, rc, orig.Finished)
		rc.Update(time.Millisecond)
		assert.Equal(t, 0, rc.Pending())
		assert.Equal(t, int32(1), hits.Load())
	})
	t.Run("starter declines then starts", func(t *testing.T) {
		hits.Store(0)
		c := newClient(t, srv)
		asked := 0
		st := starterFunc(func(*asynchttp.Request) bool {
			asked++
			return asked > 1
		})
		rc := NewRacer(c, NewPolicy(NewStaticScheduler(20*time.Millisecond), st))
		orig := c.Get(srv.URL + "/slow-first")
		out := run(t, c, rc, orig)
		assert.Equal(t, 2, asked)
		assert.NotEqual(t, orig.ID(), out.r.ID())
		assert.Equal(t, "fast", string(out.r.Body()))
		pumpUntil(t, c, rc, orig.Finished)
		assert.Equal(t, int32(2), hits.Load())
	})
	t.Run("lone failure", func(t *testing.T) {
		c := newClient(t, srv)
		rc := NewRacer(c, NewPolicy(NewStaticScheduler(time.Hour), AlwaysStart))
		out := run(t, c, rc, c.Get(srv.URL+"/drop"))
		assert.Equal(t, 1, out.calls)
		assert.Error(t, out.err)
		assert.Equal(t, -1, out.status)
		assert.Equal(t, 0, rc.Pending())
	})
	t.Run("noop", func(t *testing.T) {
		c := newClient(t, srv)
		require.NoError(t, c.Close())
		rc := NewRacer(c, hedge)
		var got error
		rc.Race(c.Get(srv.URL), func(_ *asynchttp.Request, _ int, err error) { got = err })
		assert.ErrorIs(t, got, asynchttp.ErrClosed)
	})
	t.Run("bad args", func(t *testing.T) {
		assert.PanicsWithValue(t, "asynchttp/racing: nil client", func() { NewRacer(nil, hedge) })
		c := newClient(t, srv)
		rc := NewRacer(c, hedge)
		assert.PanicsWithValue(t, "asynchttp/racing: nil listener", func() { rc.Race(c.Get(srv.URL), nil) })
	})
}

type starterFunc func(r *asynchttp.Request) bool

func (f starterFunc) Start(r *asynchttp.Request) bool {
	return f(r)
}

type outcome struct {
	r      *asynchttp.Request
	status int
	err    error
	calls  int
}

func newClient(t *testing.T, srv *httptest.Server) *asynchttp.Client {
	c, err := asynchttp.New(
		asynchttp.WithHTTPDoer(srv.Client()),
		asynchttp.WithIdleSleep(time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func run(t *testing.T, c *asynchttp.Client, rc *Racer, r *asynchttp.Request) *outcome {
	out := &outcome{}
	rc.Race(r, func(r *asynchttp.Request, status int, err error) {
		out.r, out.status, out.err = r, status, err
		out.calls++
	})
	pumpUntil(t, c, rc, func() bool { return out.calls > 0 })
	return out
}

func pumpUntil(t *testing.T, c *asynchttp.Client, rc *Racer, done func() bool) {
	deadline := time.Now().Add(5 * time.Second)
	for !done() {
		require.True(t, time.Now().Before(deadline), "timed out pumping client")
		rc.Update(10 * time.Millisecond)
		c.Update(10 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}
}
