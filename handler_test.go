// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"fmt"
	"testing"

	"github.com/gogama/asynchttp/request"
	"github.com/stretchr/testify/assert"
)

func TestHandlerGroup(t *testing.T) {
	var evts []string
	var execs []*request.Execution
	h1 := &testHandler{seq: 1, evts: &evts, execs: &execs}
	h2 := &testHandler{seq: 2, evts: &evts, execs: &execs}
	g := &HandlerGroup{}
	t.Run("PushBack", func(t *testing.T) {
		assert.Equal(t, 0, g.Len(Submitted))
		assert.Panics(t, func() { g.PushBack(Submitted, nil) })
		assert.Panics(t, func() { g.PushBack(Event(123), h1) })
		g.PushBack(Submitted, h1)
		g.PushBack(Submitted, h2)
		g.PushBack(Finished, h1)
		assert.Equal(t, 2, g.Len(Submitted))
		assert.Equal(t, 0, g.Len(Dispatched))
		assert.Equal(t, 1, g.Len(Finished))
		assert.Equal(t, 0, g.Len(Event(123)))
	})
	t.Run("run", func(t *testing.T) {
		e1 := &request.Execution{Attempt: 1}
		e2 := &request.Execution{Attempt: 2}
		assert.Empty(t, evts)
		assert.Empty(t, execs)
		g.run(Dispatched, e1)
		assert.Empty(t, evts)
		assert.Empty(t, execs)
		g.run(Submitted, e1)
		assert.Equal(t, []string{"1.Submitted", "2.Submitted"}, evts)
		assert.Equal(t, []*request.Execution{e1, e1}, execs)
		evts = evts[:0]
		execs = execs[:0]
		g.run(Finished, e2)
		assert.Equal(t, []string{"1.Finished"}, evts)
		assert.Equal(t, []*request.Execution{e2}, execs)
		evts = evts[:0]
		execs = execs[:0]
		g.run(Submitted, e2)
		assert.Equal(t, []string{"1.Submitted", "2.Submitted"}, evts)
		assert.Equal(t, []*request.Execution{e2, e2}, execs)
	})
	t.Run("empty group", func(t *testing.T) {
		var empty HandlerGroup
		assert.NotPanics(t, func() { empty.run(Finished, &request.Execution{}) })
	})
}

type testHandler struct {
	seq   int
	evts  *[]string
	execs *[]*request.Execution
}

func (h *testHandler) Handle(evt Event, e *request.Execution) {
	*h.evts = append(*h.evts, fmt.Sprintf("%d.%s", h.seq, evt))
	*h.execs = append(*h.execs, e)
}

func TestHandlerFunc(t *testing.T) {
	var _evt Event
	var _e *request.Execution
	var f = func(evt Event, e *request.Execution) {
		_evt = evt
		_e = e
	}
	h := HandlerFunc(f)
	e := &request.Execution{}
	h.Handle(Dispatched, e)

	assert.Equal(t, Dispatched, _evt)
	assert.Same(t, e, _e)
}
