// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gogama/asynchttp/header"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		p, err := NewPlan(Post, "https://example.com:/upload?x=1", strings.NewReader("payload"))
		require.NoError(t, err)
		assert.Equal(t, Post, p.Method)
		assert.Equal(t, "example.com", p.URL.Host)
		assert.Equal(t, "/upload", p.URL.Path)
		assert.Equal(t, []byte("payload"), p.Body)
		assert.Equal(t, 0, p.Header.Len())
		assert.Empty(t, p.CacheFile)
	})
	t.Run("invalid method", func(t *testing.T) {
		p, err := NewPlan(Method(42), "http://example.com", nil)
		assert.Nil(t, p)
		assert.EqualError(t, err, "asynchttp/request: invalid method 42")
	})
	t.Run("empty URL", func(t *testing.T) {
		_, err := NewPlan(Get, "", nil)
		assert.Same(t, ErrNoURL, err)
	})
	t.Run("unparsable URL", func(t *testing.T) {
		_, err := NewPlan(Get, "http://[::1", nil)
		assert.Error(t, err)
	})
	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := NewPlan(Get, "ftp://example.com/file", nil)
		assert.True(t, errors.Is(err, ErrUnsupportedScheme))
	})
	t.Run("bad body", func(t *testing.T) {
		_, err := NewPlan(Post, "http://example.com", 3.14)
		assert.EqualError(t, err, badBodyTypeMsg)
	})
}

func TestPlan_SetHeader(t *testing.T) {
	p, err := NewPlan(Get, "http://example.com", nil)
	require.NoError(t, err)
	require.NoError(t, p.SetHeader("X-Foo", "bar"))
	require.NoError(t, p.SetHeader("x-foo", "baz"))
	assert.Equal(t, 1, p.Header.Len())
	assert.Equal(t, "baz", p.Header.Get("X-FOO"))
	err = p.SetHeader("Bad Name", "x")
	assert.True(t, errors.Is(err, ErrInvalidHeader))
	err = p.SetHeader("X-Foo", "line\r\nInjected: 1")
	assert.True(t, errors.Is(err, ErrInvalidHeader))
	assert.Equal(t, "baz", p.Header.Get("X-Foo"))
}

func TestPlan_Body(t *testing.T) {
	p, err := NewPlan(Put, "http://example.com", nil)
	require.NoError(t, err)
	require.NoError(t, p.SetBody(header.TypeTextPlain, "hi"))
	assert.Equal(t, []byte("hi"), p.Body)
	assert.Equal(t, header.TypeTextPlain, p.ContentType)
	require.NoError(t, p.SetBodyJSON(map[string]int{"a": 1}))
	assert.Equal(t, `{"a":1}`, string(p.Body))
	assert.Equal(t, header.TypeJSON, p.ContentType)
	assert.Error(t, p.SetBodyJSON(func() {}))
	assert.Error(t, p.SetBody("x", 1))
	p.ClearBody()
	assert.Nil(t, p.Body)
	assert.Empty(t, p.ContentType)
}

func TestPlan_SetCacheFile(t *testing.T) {
	p := &Plan{}
	p.SetCacheFile("a/b", true)
	assert.Equal(t, "a/b", p.CacheFile)
	assert.True(t, p.WriteCache)
	p.SetCacheFile("", true)
	assert.Empty(t, p.CacheFile)
	assert.False(t, p.WriteCache)
	p.SetCacheFile("c", false)
	assert.False(t, p.WriteCache)
}

func TestPlan_AddCookie(t *testing.T) {
	p := &Plan{}
	p.AddCookie(&http.Cookie{Name: "a", Value: "1", Path: "/ignored"})
	assert.Equal(t, "a=1", p.Header.Get("Cookie"))
	p.AddCookie(&http.Cookie{Name: "b", Value: "2"})
	assert.Equal(t, "a=1; b=2", p.Header.Get("Cookie"))
}

func TestPlan_SetBasicAuth(t *testing.T) {
	p := &Plan{}
	p.SetBasicAuth("Aladdin", "open sesame")
	assert.Equal(t, "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==", p.Header.Get("authorization"))
}

func TestPlan_Clone(t *testing.T) {
	p, err := NewPlan(Post, "http://user:pw@example.com/x", "body")
	require.NoError(t, err)
	require.NoError(t, p.SetHeader("X-A", "1"))
	p.SetCacheFile("cache/x", true)
	c := p.Clone()
	assert.Equal(t, p, c)
	c.URL.Path = "/y"
	c.Header.Set("X-A", "2")
	c.Body[0] = 'B'
	assert.Equal(t, "/x", p.URL.Path)
	assert.Equal(t, "1", p.Header.Get("X-A"))
	assert.Equal(t, "body", string(p.Body))
}
