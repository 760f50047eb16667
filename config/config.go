// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gogama/asynchttp/queue"
	"github.com/gogama/asynchttp/request"
	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is the User-Agent sent when none is configured.
const DefaultUserAgent = "asynchttp/1.0"

// Config defines configuration for an asynchttp client.
type Config struct {
	Workers         int             `yaml:"workers" validate:"gte=0,lte=32"`
	KeepAlive       time.Duration   `yaml:"keep_alive" validate:"gte=0s"`
	IdleSleep       time.Duration   `yaml:"idle_sleep" validate:"gte=0s"`
	InitialBodySize int             `yaml:"initial_body_size" validate:"gte=0"`
	UserAgent       string          `yaml:"user_agent" validate:"printascii"`
	Cache           string          `yaml:"cache" validate:"omitempty,bucketurl"`
	Timeout         TimeoutConfig   `yaml:"timeout"`
	Throttle        ThrottleConfig  `yaml:"throttle"`
	Transport       TransportConfig `yaml:"transport"`
}

// TimeoutConfig defines per-attempt timeouts. A zero Usual means no
// timeout. After lists the timeouts used once that many earlier
// attempts of the same request have timed out.
type TimeoutConfig struct {
	Usual time.Duration   `yaml:"usual" validate:"gte=0s"`
	After []time.Duration `yaml:"after" validate:"dive,gt=0s"`
}

// ThrottleConfig rate limits outgoing requests. A zero RPS disables
// throttling; a zero Burst means a burst equal to RPS.
type ThrottleConfig struct {
	RPS   int `yaml:"rps" validate:"gte=0"`
	Burst int `yaml:"burst" validate:"gte=0"`
}

// TransportConfig tunes the shared HTTP transport. Zero values keep
// the net/http defaults.
type TransportConfig struct {
	MaxIdleConns          int           `yaml:"max_idle_conns" validate:"gte=0"`
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host" validate:"gte=0"`
	MaxConnsPerHost       int           `yaml:"max_conns_per_host" validate:"gte=0"`
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout" validate:"gte=0s"`
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout" validate:"gte=0s"`
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout" validate:"gte=0s"`
	DisableCompression    bool          `yaml:"disable_compression"`
	HTTP2                 bool          `yaml:"http2"`
}

// Default returns a Config with sensible defaults. Workers is zero,
// which sizes the pool from the number of logical CPUs.
func Default() Config {
	return Config{
		KeepAlive:       queue.DefaultKeepAlive,
		IdleSleep:       queue.DefaultIdleSleep,
		InitialBodySize: request.DefaultInitialBodySize,
		UserAgent:       DefaultUserAgent,
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	Workers         int                 `yaml:"workers"`
	KeepAlive       string              `yaml:"keep_alive"`
	IdleSleep       string              `yaml:"idle_sleep"`
	InitialBodySize int                 `yaml:"initial_body_size"`
	UserAgent       string              `yaml:"user_agent"`
	Cache           string              `yaml:"cache"`
	Timeout         yamlTimeoutConfig   `yaml:"timeout"`
	Throttle        ThrottleConfig      `yaml:"throttle"`
	Transport       yamlTransportConfig `yaml:"transport"`
}

type yamlTimeoutConfig struct {
	Usual string   `yaml:"usual"`
	After []string `yaml:"after"`
}

type yamlTransportConfig struct {
	MaxIdleConns          int    `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost   int    `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost       int    `yaml:"max_conns_per_host"`
	IdleConnTimeout       string `yaml:"idle_conn_timeout"`
	ResponseHeaderTimeout string `yaml:"response_header_timeout"`
	TLSHandshakeTimeout   string `yaml:"tls_handshake_timeout"`
	DisableCompression    bool   `yaml:"disable_compression"`
	HTTP2                 bool   `yaml:"http2"`
}

// LoadFromFile loads configuration from a YAML file. Fields absent
// from the file keep their Default values.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if err := parseDuration("keep_alive", yc.KeepAlive, &cfg.KeepAlive); err != nil {
		return Config{}, err
	}
	if err := parseDuration("idle_sleep", yc.IdleSleep, &cfg.IdleSleep); err != nil {
		return Config{}, err
	}
	if yc.InitialBodySize != 0 {
		cfg.InitialBodySize = yc.InitialBodySize
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	cfg.Cache = yc.Cache
	if err := parseDuration("timeout.usual", yc.Timeout.Usual, &cfg.Timeout.Usual); err != nil {
		return Config{}, err
	}
	for i, s := range yc.Timeout.After {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout.after[%d]: %w", i, err)
		}
		cfg.Timeout.After = append(cfg.Timeout.After, d)
	}
	cfg.Throttle = yc.Throttle

	t := &cfg.Transport
	t.MaxIdleConns = yc.Transport.MaxIdleConns
	t.MaxIdleConnsPerHost = yc.Transport.MaxIdleConnsPerHost
	t.MaxConnsPerHost = yc.Transport.MaxConnsPerHost
	if err := parseDuration("transport.idle_conn_timeout", yc.Transport.IdleConnTimeout, &t.IdleConnTimeout); err != nil {
		return Config{}, err
	}
	if err := parseDuration("transport.response_header_timeout", yc.Transport.ResponseHeaderTimeout, &t.ResponseHeaderTimeout); err != nil {
		return Config{}, err
	}
	if err := parseDuration("transport.tls_handshake_timeout", yc.Transport.TLSHandshakeTimeout, &t.TLSHandshakeTimeout); err != nil {
		return Config{}, err
	}
	t.DisableCompression = yc.Transport.DisableCompression
	t.HTTP2 = yc.Transport.HTTP2

	return cfg, nil
}

func parseDuration(name, s string, d *time.Duration) error {
	if s == "" {
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*d = v
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the ASYNCHTTP_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("ASYNCHTTP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ASYNCHTTP_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if err := envDuration("ASYNCHTTP_KEEP_ALIVE", &c.KeepAlive); err != nil {
		return err
	}
	if err := envDuration("ASYNCHTTP_IDLE_SLEEP", &c.IdleSleep); err != nil {
		return err
	}
	if v := os.Getenv("ASYNCHTTP_INITIAL_BODY_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ASYNCHTTP_INITIAL_BODY_SIZE: %w", err)
		}
		c.InitialBodySize = n
	}
	if v := os.Getenv("ASYNCHTTP_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("ASYNCHTTP_CACHE"); v != "" {
		c.Cache = v
	}
	if err := envDuration("ASYNCHTTP_TIMEOUT", &c.Timeout.Usual); err != nil {
		return err
	}
	if v := os.Getenv("ASYNCHTTP_THROTTLE_RPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ASYNCHTTP_THROTTLE_RPS: %w", err)
		}
		c.Throttle.RPS = n
	}
	if v := os.Getenv("ASYNCHTTP_THROTTLE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ASYNCHTTP_THROTTLE_BURST: %w", err)
		}
		c.Throttle.Burst = n
	}
	if v := os.Getenv("ASYNCHTTP_HTTP2"); v != "" {
		c.Transport.HTTP2 = v == "true" || v == "1"
	}

	return nil
}

func envDuration(name string, d *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	p, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*d = p
	return nil
}

// Validate validates the configuration. It returns FieldErrors
// describing every invalid field.
func (c *Config) Validate() error {
	return validateStruct(c)
}
