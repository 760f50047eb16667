// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package asynchttp provides an asynchronous HTTP transfer engine for
programs built around a frame loop, such as games and simulations.

Create a Client, submit requests from the frame goroutine, and call
Update once per frame. Requests run on an elastic pool of background
workers; their results are delivered back to the frame goroutine from
inside Update, so listeners never run concurrently with each other or
with the rest of the frame.

	client, err := asynchttp.New(asynchttp.WithMaxWorkers(4))
	...
	defer client.Close()

	r := client.Get("https://www.example.com/level1.json")
	r.OnFinished(func(r *asynchttp.Request, status int, err error) {
		if err != nil {
			log.Println("download failed:", err)
			return
		}
		load(r.Body())
	})

	for running {
		dt := frame()
		client.Update(dt)
	}

Submission never blocks. A Request may be configured (headers, body,
cache file) until the next Update dispatches it to the workers:

	r := client.Post("https://api.example.com/score", "application/json", nil)
	_ = r.SetBodyJSON(score)
	_ = r.SetHeader("X-Player", id)

Every submitted Request finishes exactly once, with a status code and
an error. A transport failure finishes with status -1 and a non-nil
error; a response with an error status, such as 404, finishes with a
nil error and is left to the caller to interpret.

If the shared HTTP transport cannot be initialized, New still returns a
Client, but it is inert: every submission returns a no-op Request whose
listeners never fire. Check Request.Noop or Client.Inert.

For conditional downloads backed by a disk cache, see package
conditional. For caller-driven retries, see package retry, and for hedging
slow requests with duplicates, see package racing.

To hook into the life of every request, install a handler into the
appropriate handler chain:

	handlers := &asynchttp.HandlerGroup{}
	handlers.PushBack(asynchttp.Finished, asynchttp.HandlerFunc(
		func(evt asynchttp.Event, e *request.Execution) {
			slog.Info("transfer finished", "url", e.Plan.URL, "status", e.StatusCode)
		}))
	client, err := asynchttp.New(asynchttp.WithHandlers(handlers))

Handlers run on the frame goroutine.
*/
package asynchttp
