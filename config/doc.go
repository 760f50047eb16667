// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package config loads and validates asynchttp client configuration.

Configuration starts from Default, is optionally overlaid by a YAML
file with LoadFromFile, and then by ASYNCHTTP_ environment variables
with LoadFromEnv. Validate reports every invalid field at once as
FieldErrors.

A YAML file looks like:

	workers: 8
	keep_alive: 30s
	user_agent: mygame/1.0
	cache: file:///var/cache/mygame
	timeout:
	  usual: 10s
	  after: [20s, 40s]
	throttle:
	  rps: 50
	  burst: 10
	transport:
	  max_idle_conns_per_host: 4
	  http2: true

Durations are written as Go duration strings.
*/
package config
