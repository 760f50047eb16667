// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package racing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlwaysStart(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.True(t, AlwaysStart.Start(nil))
	}
}

func TestNewThrottleStarter(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		st, _ := newThrottleStarter(t)
		assert.Len(t, st.windows, 0)
		for i := 0; i < 20; i++ {
			assert.True(t, st.Start(nil))
		}
	})
	t.Run("One Limit", func(t *testing.T) {
		st, clock := newThrottleStarter(t, Limit{Period: 100 * time.Millisecond, MaxStarts: 2})
		assert.True(t, st.Start(nil))
		assert.True(t, st.Start(nil))
		assert.False(t, st.Start(nil))
		clock.advance(100 * time.Millisecond)
		assert.True(t, st.Start(nil))
		assert.True(t, st.Start(nil))
		assert.False(t, st.Start(nil))
	})
	t.Run("Two Limits", func(t *testing.T) {
		st, clock := newThrottleStarter(t,
			Limit{Period: 25 * time.Millisecond, MaxStarts: 1},
			Limit{Period: 100 * time.Millisecond, MaxStarts: 2})
		assert.True(t, st.Start(nil))
		assert.False(t, st.Start(nil))
		clock.advance(30 * time.Millisecond)
		assert.True(t, st.Start(nil))
		assert.False(t, st.Start(nil))
		clock.advance(30 * time.Millisecond)
		assert.False(t, st.Start(nil), "short window has room, long one does not")
		clock.advance(41 * time.Millisecond)
		assert.True(t, st.Start(nil))
		assert.False(t, st.Start(nil))
	})
	t.Run("Rejection Not Recorded", func(t *testing.T) {
		st, clock := newThrottleStarter(t,
			Limit{Period: time.Second, MaxStarts: 3},
			Limit{Period: time.Millisecond, MaxStarts: 1})
		assert.True(t, st.Start(nil))
		for i := 0; i < 5; i++ {
			assert.False(t, st.Start(nil))
		}
		clock.advance(time.Millisecond)
		assert.True(t, st.Start(nil))
		clock.advance(time.Millisecond)
		assert.True(t, st.Start(nil))
		clock.advance(time.Millisecond)
		assert.False(t, st.Start(nil))
	})
	t.Run("Zero Max", func(t *testing.T) {
		st, _ := newThrottleStarter(t, Limit{Period: time.Second})
		assert.False(t, st.Start(nil))
	})
}

func TestWindow(t *testing.T) {
	t.Run("Period=0", func(t *testing.T) {
		w := window{times: make([]time.Time, 1)}
		x := time.Time{}
		for i := 0; i < 4; i++ {
			require.True(t, w.room(x))
			w.add(x)
		}
	})
	t.Run("FillEmptyFill", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			t.Run(fmt.Sprintf("Len=%d", i), func(t *testing.T) {
				w := window{period: 2 * time.Second, times: make([]time.Time, i)}
				x := time.Time{}
				for j := 1; j <= 2; j++ {
					for k := 1; k <= i; k++ {
						require.True(t, w.room(x))
						w.add(x)
						assert.Equal(t, k, w.n)
					}
					assert.False(t, w.room(x))
					// None expired yet.
					x = x.Add(time.Second)
					assert.False(t, w.room(x))
					// All expired.
					x = x.Add(time.Second)
					assert.True(t, w.room(x))
					assert.Equal(t, 0, w.n)
					x = x.Add(2 * time.Second)
				}
			})
		}
	})
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newThrottleStarter(t *testing.T, limits ...Limit) (*throttleStarter, *fakeClock) {
	st := NewThrottleStarter(limits...)
	require.IsType(t, &throttleStarter{}, st)
	ts := st.(*throttleStarter)
	clock := &fakeClock{t: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)}
	ts.now = clock.now
	return ts, clock
}
