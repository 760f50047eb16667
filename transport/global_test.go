// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	require.Equal(t, 0, Refs())

	a, err := Acquire(Settings{MaxIdleConnsPerHost: 7, IdleConnTimeout: time.Minute, DisableCompression: true})
	require.NoError(t, err)
	assert.Equal(t, 1, Refs())
	assert.Equal(t, 7, a.MaxIdleConnsPerHost)
	assert.Equal(t, time.Minute, a.IdleConnTimeout)
	assert.True(t, a.DisableCompression)
	assert.NotSame(t, http.DefaultTransport, a)

	b, err := Acquire(Settings{MaxIdleConnsPerHost: 99})
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 2, Refs())

	Release()
	assert.Equal(t, 1, Refs())
	Release()
	assert.Equal(t, 0, Refs())
	Release()
	assert.Equal(t, 0, Refs())

	c, err := Acquire(Settings{})
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	Release()
}

func TestAcquire_HTTP2(t *testing.T) {
	a, err := Acquire(Settings{HTTP2: true})
	require.NoError(t, err)
	defer Release()
	assert.Contains(t, a.TLSNextProto, "h2")
}

func TestAcquire_InitFailure(t *testing.T) {
	saved := configureHTTP2
	defer func() { configureHTTP2 = saved }()
	initErr := errors.New("no h2 for you")
	configureHTTP2 = func(*http.Transport) error { return initErr }

	a, err := Acquire(Settings{HTTP2: true})
	assert.Nil(t, a)
	assert.True(t, errors.Is(err, ErrInit))
	assert.True(t, errors.Is(err, initErr))
	assert.Equal(t, 0, Refs())
}
