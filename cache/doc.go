// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package cache provides the disk cache collaborator used for conditional
GET revalidation. A Store maps a resource key to a path, reports when
the entry at a path was last modified, and reads and writes entries.

Bucket implements Store on top of a gocloud.dev/blob bucket, so the
cache can live in a local directory (file:///var/cache/app), in memory
(mem://), or in any other blob driver linked into the program:

	c, err := cache.Open(ctx, "file:///tmp/asset-cache")
	...
	defer c.Close()
	path := c.PathForKey("http://example.com/textures/wall.png")

Each entry carries the Last-Modified time reported by the server that
produced it, which the transfer engine sends back as If-Modified-Since.
*/
package cache
