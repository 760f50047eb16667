// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command framefetch downloads URLs through an asynchttp.Client driven
// by a fixed-rate frame loop, revalidating against a blob cache, and
// prints where each result came from.
//
// Usage:
//
//	framefetch [options] URL...
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogama/asynchttp"
	"github.com/gogama/asynchttp/conditional"
	"github.com/gogama/asynchttp/config"
	"github.com/gogama/asynchttp/timeout"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitConfigError  = 3
	ExitFetchFailed  = 4
	ExitInterrupted  = 5
)

const maxFPS = 1000

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("framefetch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "YAML configuration file")
	cacheURL := fs.String("cache", "", "Blob cache URL, e.g. file:///var/cache/framefetch (overrides config)")
	fps := fs.Int("fps", 60, "Frames per second of the update loop")
	deadline := fs.Duration("deadline", time.Minute, "Give up on unfinished transfers after this long; also the per-request timeout unless configured")
	verbose := fs.Bool("v", false, "Log debug output")

	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: framefetch [options] URL...

Fetch each URL with a conditional GET. With a cache, an unchanged
resource is served from the cache entry.

Configuration is read from -config, then from ASYNCHTTP_* environment
variables.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	urls := fs.Args()
	if len(urls) == 0 || *fps < 1 || *fps > maxFPS || *deadline <= 0 {
		fmt.Fprintf(stderr, "Error: at least one URL, -fps between 1 and %d, and a positive -deadline are required\n", maxFPS)
		fs.Usage()
		return ExitInvalidArgs
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	if *cacheURL != "" {
		cfg.Cache = *cacheURL
	}

	opts := []asynchttp.Option{asynchttp.WithConfig(cfg), asynchttp.WithLogger(logger)}
	if cfg.Timeout.Usual <= 0 {
		// Close waits for in-flight exchanges, so none may outlive the deadline.
		opts = append(opts, asynchttp.WithTimeoutPolicy(timeout.Fixed(*deadline)))
	}
	c, err := asynchttp.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("close client", "error", err)
		}
	}()
	if c.Inert() {
		fmt.Fprintf(stderr, "Error: %v\n", c.InitErr())
		return ExitGeneralError
	}

	transfers := make([]*conditional.Transfer, len(urls))
	left := len(urls)
	for i, u := range urls {
		transfers[i] = conditional.New(c, u, func(t *conditional.Transfer) {
			left--
			logger.Debug("transfer finished", "url", t.Ref(), "source", t.Source(), "status", t.StatusCode())
		})
		if transfers[i].Noop() {
			left--
		}
	}

	code := loop(ctx, c, *fps, *deadline, func() bool { return left == 0 })
	if code != ExitSuccess {
		return code
	}

	for _, t := range transfers {
		data, err := t.Data(ctx)
		if err != nil {
			fmt.Fprintf(stdout, "%s\t%s\t%d\t%v\n", t.Ref(), t.Source(), t.StatusCode(), err)
			code = ExitFetchFailed
			continue
		}
		fmt.Fprintf(stdout, "%s\t%s\t%d\t%dB\n", t.Ref(), t.Source(), t.StatusCode(), len(data))
	}
	logger.Info("done", "stats", c.Stats().String())
	return code
}

func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loop calls Update once per frame until done reports true.
func loop(ctx context.Context, c *asynchttp.Client, fps int, deadline time.Duration, done func() bool) int {
	frame := time.Second / time.Duration(fps)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	last := time.Now()
	for !done() {
		select {
		case <-ctx.Done():
			return ExitInterrupted
		case <-timer.C:
			return ExitFetchFailed
		case now := <-ticker.C:
			c.Update(now.Sub(last))
			last = now
		}
	}
	return ExitSuccess
}
