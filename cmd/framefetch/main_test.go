// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	modTime := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
			return
		case "/stall":
			select {
			case <-r.Context().Done():
			case <-release:
			}
			return
		}
		http.ServeContent(w, r, "x.txt", modTime, strings.NewReader("hello, frame"))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	dir := t.TempDir()
	cache := "file://" + filepath.ToSlash(dir)

	t.Run("fetch then revalidate", func(t *testing.T) {
		var out, errOut bytes.Buffer
		code := run(context.Background(), []string{"-cache", cache, "-fps", "200", srv.URL + "/a"}, &out, &errOut)
		require.Equal(t, ExitSuccess, code, errOut.String())
		assert.Equal(t, srv.URL+"/a\tOriginal\t200\t12B\n", out.String())

		out.Reset()
		code = run(context.Background(), []string{"-cache", cache, "-fps", "200", srv.URL + "/a"}, &out, &errOut)
		require.Equal(t, ExitSuccess, code, errOut.String())
		assert.Equal(t, srv.URL+"/a\tCached\t304\t12B\n", out.String())
	})
	t.Run("no cache", func(t *testing.T) {
		var out, errOut bytes.Buffer
		code := run(context.Background(), []string{srv.URL + "/b", srv.URL + "/c"}, &out, &errOut)
		require.Equal(t, ExitSuccess, code, errOut.String())
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		assert.Len(t, lines, 2)
		for _, l := range lines {
			assert.Contains(t, l, "\tOriginal\t200\t12B")
		}
	})
	t.Run("failed transfer", func(t *testing.T) {
		var out, errOut bytes.Buffer
		code := run(context.Background(), []string{srv.URL + "/missing"}, &out, &errOut)
		assert.Equal(t, ExitFetchFailed, code)
		assert.Contains(t, out.String(), "\tFailed\t404\t")
	})
	t.Run("deadline bounds stalled transfer", func(t *testing.T) {
		var out, errOut bytes.Buffer
		start := time.Now()
		code := run(context.Background(), []string{"-fps", "200", "-deadline", "200ms", srv.URL + "/stall"}, &out, &errOut)
		assert.Equal(t, ExitFetchFailed, code)
		assert.Less(t, time.Since(start), 3*time.Second)
	})
	t.Run("interrupted", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var out, errOut bytes.Buffer
		code := run(ctx, []string{"-fps", "1", srv.URL + "/d"}, &out, &errOut)
		assert.Equal(t, ExitInterrupted, code)
	})
}

func TestRun_Errors(t *testing.T) {
	t.Run("no URLs", func(t *testing.T) {
		var out, errOut bytes.Buffer
		assert.Equal(t, ExitInvalidArgs, run(context.Background(), nil, &out, &errOut))
		assert.Contains(t, errOut.String(), "Usage: framefetch")
	})
	t.Run("bad fps", func(t *testing.T) {
		var out, errOut bytes.Buffer
		assert.Equal(t, ExitInvalidArgs, run(context.Background(), []string{"-fps", "0", "http://x"}, &out, &errOut))
	})
	t.Run("fps too high", func(t *testing.T) {
		var out, errOut bytes.Buffer
		assert.Equal(t, ExitInvalidArgs, run(context.Background(), []string{"-fps", "2000000000", "http://x"}, &out, &errOut))
		assert.Contains(t, errOut.String(), "between 1 and 1000")
	})
	t.Run("bad deadline", func(t *testing.T) {
		var out, errOut bytes.Buffer
		assert.Equal(t, ExitInvalidArgs, run(context.Background(), []string{"-deadline", "0s", "http://x"}, &out, &errOut))
	})
	t.Run("bad flag", func(t *testing.T) {
		var out, errOut bytes.Buffer
		assert.Equal(t, ExitInvalidArgs, run(context.Background(), []string{"-nope"}, &out, &errOut))
	})
	t.Run("missing config", func(t *testing.T) {
		var out, errOut bytes.Buffer
		code := run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "nope.yaml"), "http://x"}, &out, &errOut)
		assert.Equal(t, ExitConfigError, code)
		assert.Contains(t, errOut.String(), "read config file")
	})
	t.Run("invalid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c.yaml")
		require.NoError(t, os.WriteFile(path, []byte("workers: 99\n"), 0o644))
		var out, errOut bytes.Buffer
		code := run(context.Background(), []string{"-config", path, "http://x"}, &out, &errOut)
		assert.Equal(t, ExitConfigError, code)
		assert.Contains(t, errOut.String(), "workers")
	})
	t.Run("bad cache", func(t *testing.T) {
		var out, errOut bytes.Buffer
		code := run(context.Background(), []string{"-cache", "nosuchscheme://x", "http://x"}, &out, &errOut)
		assert.Equal(t, ExitConfigError, code)
	})
}
