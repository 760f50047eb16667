// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package racing hedges slow requests of an asynchttp.Client by racing
duplicate transfers of the same plan against them.

Racing smooths over pockets of bad server response times, but every
duplicate is a real request: it costs bandwidth and server capacity,
and it is only safe for idempotent requests. The default policy,
Disabled, never starts a duplicate.

A group of transfers racing for the same result is a race. Every race
starts with one request and may grow as the Policy adds duplicates:

• The Scheduler says how long after the latest start to wait before
  adding the next duplicate. Waits are measured in the frame time passed
  to Racer.Update.

• When a scheduled duplicate is due, the Starter decides whether it
  really starts, as circumstances may have changed since it was
  scheduled. If it does not, the duplicate is scheduled again after
  the same wait.

• The first transfer to receive a response wins, and the race's
  listener is called with it. A transfer that fails only ends the race
  if no other transfer is still running. Losers run to completion; their
  results are dropped.
*/
package racing
