// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/gogama/asynchttp/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWaiter(t *testing.T) {
	max := []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1 * time.Second,
		1 * time.Second,
		1 * time.Second,
	}
	for i := range max {
		wait := DefaultWaiter.Wait(&request.Execution{Attempt: i})
		assert.GreaterOrEqual(t, wait, time.Duration(0))
		assert.Less(t, wait, max[i])
	}
}

func TestNewFixedWaiter(t *testing.T) {
	w := NewFixedWaiter(3 * time.Second)
	assert.Equal(t, 3*time.Second, w.Wait(&request.Execution{}))
	assert.Equal(t, 3*time.Second, w.Wait(&request.Execution{Attempt: 10}))
}

func TestNewExpWaiter(t *testing.T) {
	base, max := 1*time.Millisecond, 1*time.Hour
	t.Run("invalid base", func(t *testing.T) {
		assert.PanicsWithValue(t, "asynchttp/retry: base must be positive", func() {
			NewExpWaiter(-1, max, nil)
		})
		assert.PanicsWithValue(t, "asynchttp/retry: base must be positive", func() {
			NewExpWaiter(0, max, nil)
		})
	})
	t.Run("invalid max", func(t *testing.T) {
		assert.PanicsWithValue(t, "asynchttp/retry: max must be at least base", func() {
			NewExpWaiter(2, 1, nil)
		})
	})
	t.Run("no jitter", func(t *testing.T) {
		w := NewExpWaiter(base, max, nil)
		for i := 0; i < 10; i++ {
			assert.Equal(t, time.Duration(1<<i)*time.Millisecond, w.Wait(&request.Execution{Attempt: i}))
		}
		assert.Equal(t, max, w.Wait(&request.Execution{Attempt: 25}))
		assert.Equal(t, max, w.Wait(&request.Execution{Attempt: 62}))
		assert.Equal(t, max, w.Wait(&request.Execution{Attempt: 1000}))
		assert.Equal(t, max, w.Wait(&request.Execution{Attempt: math.MaxInt}))
	})
	t.Run("overflow", func(t *testing.T) {
		w := NewExpWaiter(time.Duration(math.MaxInt64/4), time.Duration(math.MaxInt64), nil)
		assert.Equal(t, time.Duration(math.MaxInt64/4)*2, w.Wait(&request.Execution{Attempt: 1}))
		assert.Equal(t, time.Duration(math.MaxInt64), w.Wait(&request.Execution{Attempt: 3}))
	})
	t.Run("with jitter", func(t *testing.T) {
		w := NewExpWaiter(base, max, rand.NewPCG(1, 2))
		ew, ok := w.(*expWaiter)
		require.True(t, ok)
		require.NotNil(t, ew.rand)
		for i := 0; i < 30; i++ {
			ceil := max
			if i < 22 {
				ceil = time.Duration(1<<i) * time.Millisecond
			}
			wait := w.Wait(&request.Execution{Attempt: i})
			assert.GreaterOrEqual(t, wait, time.Duration(0))
			assert.Less(t, wait, ceil)
		}
	})
	t.Run("deterministic", func(t *testing.T) {
		a := NewExpWaiter(base, max, rand.NewPCG(7, 7))
		b := NewExpWaiter(base, max, rand.NewPCG(7, 7))
		for i := 0; i < 10; i++ {
			e := request.Execution{Attempt: i}
			assert.Equal(t, a.Wait(&e), b.Wait(&e))
		}
	})
}
