// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package conditional downloads resources through a disk cache, asking the
server to send the body only if it changed since the cached copy was
written.

A Transfer is a GET whose cache entry is named after the resource
reference. If the entry exists, the request carries If-Modified-Since
with the entry's time. The transfer then ends in one of three ways:

• Original: the server sent 200 and a fresh body, which is written to
the cache;

• Cached: the server sent 304, and the body is the cached entry;

• Failed: the exchange failed or the server sent any other status.

Create the Client with a cache so that entries are read and written:

	store, err := cache.Open(ctx, "file:///var/cache/mygame")
	...
	client, err := asynchttp.New(asynchttp.WithCache(store))
	...
	conditional.New(client, "https://cdn.example.com/level1.json",
		func(t *conditional.Transfer) {
			if t.Source() == conditional.Failed {
				log.Println(t.Err())
				return
			}
			data, err := t.Data(ctx)
			...
		})
*/
package conditional
