// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var httpServer = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var httpsServer = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var http2Server = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var servers = []*httptest.Server{httpServer, httpsServer, http2Server}

func TestMain(m *testing.M) {
	httpServer.Start()
	httpsServer.StartTLS()
	http2Server.EnableHTTP2 = true
	http2Server.StartTLS()
	code := m.Run()
	httpServer.Close()
	httpsServer.Close()
	http2Server.Close()
	os.Exit(code)
}

func serverName(server *httptest.Server) string {
	switch server {
	case httpServer:
		return "HTTP"
	case httpsServer:
		return "HTTPS"
	case http2Server:
		return "HTTP2"
	default:
		return "unknown"
	}
}

// serverHandler serves the fixtures used by the client tests:
//
//	/hello          "hello", Content-Length 5
//	/echo           the request body, with X-Method and X-Echo headers
//	/status?code=N  an empty response with status N
//	/slow?d=D       "slow" after D, or earlier if the client gives up
//	/big?n=N        N bytes of 'x' with no Content-Length
//	/ua             the request User-Agent
func serverHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/hello":
		w.Header().Set("Content-Length", "5")
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hello"))
	case "/echo":
		b, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Echo", r.Header.Get("X-Test"))
		if ct := r.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		_, _ = w.Write(b)
	case "/status":
		code, err := strconv.Atoi(r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(code)
	case "/slow":
		d, err := time.ParseDuration(r.URL.Query().Get("d"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		select {
		case <-time.After(d):
			_, _ = w.Write([]byte("slow"))
		case <-r.Context().Done():
		}
	case "/big":
		n, err := strconv.Atoi(r.URL.Query().Get("n"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = io.Copy(w, strings.NewReader(strings.Repeat("x", n)))
	case "/ua":
		_, _ = w.Write([]byte(r.UserAgent()))
	default:
		http.NotFound(w, r)
	}
}

// pumpUntil calls c.Update until cond holds, failing the test if it
// takes longer than a few seconds.
func pumpUntil(t *testing.T, c *Client, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		require.True(t, time.Now().Before(deadline), "condition not reached before deadline")
		c.Update(16 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}
}

// pumpFinished pumps until every request has finished.
func pumpFinished(t *testing.T, c *Client, rs ...*Request) {
	t.Helper()
	pumpUntil(t, c, func() bool {
		for _, r := range rs {
			if !r.Finished() {
				return false
			}
		}
		return true
	})
}
