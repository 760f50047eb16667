// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/asynchttp/cache"
	"github.com/gogama/asynchttp/header"
	"github.com/gogama/asynchttp/request"
	"github.com/gogama/asynchttp/timeout"
	"github.com/gogama/asynchttp/transport"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gogama/asynchttp"

// maxDumpBody is the largest body a verbose dump prints.
const maxDumpBody = 4096

// executor runs transfers on worker goroutines. It holds no state
// belonging to the submitting goroutine.
type executor struct {
	binder        transport.Binder
	logger        *slog.Logger
	tracer        trace.Tracer
	timeoutPolicy timeout.Policy
	cache         cache.Store
}

// Execute runs one exchange and records its outcome on e.
func (x *executor) Execute(e *request.Execution) {
	p := e.Plan
	ctx, span := x.tracer.Start(context.Background(), "HTTP "+p.Method.String(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", p.Method.String()),
			attribute.String("url.full", urlString(p.URL)),
			attribute.String("asynchttp.transfer.id", e.ID.String()),
			attribute.Int("asynchttp.attempt", e.Attempt),
		))
	defer span.End()

	e.Start = time.Now()
	x.exchange(ctx, e)
	e.End = time.Now()

	if e.Err != nil {
		e.Err = urlErrorWrap(p, e.Err)
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetAttributes(
			attribute.Int("http.response.status_code", e.StatusCode),
			attribute.Int("http.response.body.size", len(e.Body)),
		)
		if e.StatusCode >= 400 {
			span.SetStatus(codes.Error, e.StatusLine())
		}
	}

	if p.Verbose {
		x.dump(e)
	}
}

func (x *executor) exchange(ctx context.Context, e *request.Execution) {
	p := e.Plan
	conn, err := x.binder.Bind(p.Method, p.URL)
	if err != nil {
		e.Err = err
		return
	}
	defer conn.Release()

	h := p.Header
	if lm, ok := x.revalidate(ctx, p); ok {
		h = h.Clone()
		h.Set(header.IfModifiedSince, header.FormatTime(lm))
	}
	if err = conn.SetHeaders(h); err != nil {
		e.Err = err
		return
	}
	if len(p.Body) > 0 {
		if err = conn.SetBody(p.Body, p.ContentType); err != nil {
			e.Err = err
			return
		}
	}

	pctx := ctx
	if d := x.timeoutPolicy.Timeout(e); timeout.Bounded(d) {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	err = conn.Perform(pctx, e)
	if err == nil && !e.HeadComplete() {
		err = ErrIncompleteResponse
	}
	if err != nil {
		e.Err = err
		return
	}

	x.checkLength(e)
	switch e.StatusCode {
	case http.StatusOK:
		x.writeCache(ctx, e)
	case http.StatusNotModified:
		x.readCache(ctx, e)
	}
}

// revalidate returns the modification time of the plan's cache entry
// if the request should be made conditional on it.
func (x *executor) revalidate(ctx context.Context, p *request.Plan) (time.Time, bool) {
	if !p.Revalidate || p.CacheFile == "" || x.cache == nil {
		return time.Time{}, false
	}
	if p.Header.Has(header.IfModifiedSince) {
		return time.Time{}, false
	}
	return x.cache.LastModified(ctx, p.CacheFile)
}

func (x *executor) checkLength(e *request.Execution) {
	if e.StatusCode != http.StatusOK || e.Plan.Method == request.Head {
		return
	}
	n := e.Header.Int(header.ContentLength, -1)
	if n >= 0 && n != int64(len(e.Body)) {
		x.logger.Warn("content length mismatch",
			"url", e.Plan.URL.String(),
			"content_length", n,
			"body_bytes", len(e.Body))
	}
}

func (x *executor) writeCache(ctx context.Context, e *request.Execution) {
	p := e.Plan
	if !p.WriteCache || p.CacheFile == "" || x.cache == nil || p.Method == request.Head {
		return
	}
	lm, err := header.ParseTime(e.Header.Get(header.LastModified))
	if err != nil {
		lm = time.Time{}
	}
	if err = x.cache.Write(ctx, p.CacheFile, e.Body, lm); err != nil {
		x.logger.Warn("failed to write cache entry", "path", p.CacheFile, "url", p.URL.String(), "error", err)
	}
}

func (x *executor) readCache(ctx context.Context, e *request.Execution) {
	p := e.Plan
	if !p.Revalidate || p.CacheFile == "" || x.cache == nil {
		return
	}
	data, err := x.cache.Read(ctx, p.CacheFile)
	if err != nil {
		x.logger.Warn("failed to read cache entry", "path", p.CacheFile, "url", p.URL.String(), "error", err)
		return
	}
	e.Body = data
}

func (x *executor) dump(e *request.Execution) {
	attrs := []interface{}{
		"id", e.ID.String(),
		"method", e.Plan.Method.String(),
		"url", urlString(e.Plan.URL),
		"duration", e.Duration(),
	}
	if e.Err != nil {
		attrs = append(attrs, "error", e.Err)
		x.logger.Info("transfer dump", attrs...)
		return
	}
	attrs = append(attrs,
		"status", e.StatusLine(),
		"proto", fmt.Sprintf("HTTP/%d.%d", e.ProtoMajor, e.ProtoMinor),
		"headers", e.Header.Len(),
		"head_bytes", e.HeadBytes,
		"body_bytes", len(e.Body))
	if printable(e.Header.Get(header.ContentType)) {
		body := e.Body
		if len(body) > maxDumpBody {
			body = body[:maxDumpBody]
		}
		attrs = append(attrs, "body", string(body))
	}
	x.logger.Info("transfer dump", attrs...)
}

// printable reports whether a body of the given content type is text.
func printable(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	switch mt {
	case header.TypeJSON, header.TypeXML, header.TypeForm:
		return true
	}
	return strings.HasSuffix(mt, "+json") || strings.HasSuffix(mt, "+xml")
}

func urlErrorWrap(p *request.Plan, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	u := ""
	if p.URL != nil {
		u = p.URL.String()
	}
	return &url.Error{
		Op:  urlErrorOp(p.Method),
		URL: u,
		Err: err,
	}
}

// urlErrorOp mirrors the Op naming of net/http/client.go.
func urlErrorOp(method request.Method) string {
	if !method.Valid() {
		return "Get"
	}
	s := method.String()
	return s[:1] + strings.ToLower(s[1:])
}
