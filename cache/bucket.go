// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gogama/asynchttp/header"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

const metaLastModified = "last-modified"

// Bucket is a Store backed by a blob bucket. Entries are stored as
// blobs named prefix + SanitizeKey(key).
type Bucket struct {
	bucket *blob.Bucket
	prefix string
	owned  bool
}

// Open opens the bucket at urlstr, for example "file:///var/cache/app"
// or "mem://", and returns a Store over it. The returned Bucket owns
// the blob bucket and closes it on Close.
func Open(ctx context.Context, urlstr string) (*Bucket, error) {
	b, err := blob.OpenBucket(ctx, urlstr)
	if err != nil {
		return nil, fmt.Errorf("asynchttp/cache: open %q: %w", urlstr, err)
	}
	return &Bucket{bucket: b, owned: true}, nil
}

// NewBucket returns a Store over an already open blob bucket. Entry
// names are prefixed with prefix, which may be empty. Close does not
// close b.
func NewBucket(b *blob.Bucket, prefix string) *Bucket {
	if b == nil {
		panic("asynchttp/cache: nil bucket")
	}
	return &Bucket{bucket: b, prefix: prefix}
}

// PathForKey returns prefix + SanitizeKey(key).
func (c *Bucket) PathForKey(key string) string {
	return c.prefix + SanitizeKey(key)
}

// LastModified returns the Last-Modified time stored with the entry
// at path. Entries written by other tools, which carry no such
// metadata, report their blob modification time instead.
func (c *Bucket) LastModified(ctx context.Context, path string) (time.Time, bool) {
	if path == "" {
		return time.Time{}, false
	}
	attrs, err := c.bucket.Attributes(ctx, path)
	if err != nil {
		return time.Time{}, false
	}
	if v, ok := attrs.Metadata[metaLastModified]; ok {
		if t, err := header.ParseTime(v); err == nil {
			return t, true
		}
	}
	return attrs.ModTime.UTC(), true
}

// Read returns the contents of the entry at path.
func (c *Bucket) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := c.bucket.ReadAll(ctx, path)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("asynchttp/cache: read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces the entry at path.
func (c *Bucket) Write(ctx context.Context, path string, data []byte, lastModified time.Time) error {
	if lastModified.IsZero() {
		lastModified = time.Now()
	}
	opts := &blob.WriterOptions{
		ContentType: header.TypeOctetStream,
		Metadata:    map[string]string{metaLastModified: header.FormatTime(lastModified)},
	}
	if err := c.bucket.WriteAll(ctx, path, data, opts); err != nil {
		return fmt.Errorf("asynchttp/cache: write %s: %w", path, err)
	}
	return nil
}

// Delete removes the entry at path. Deleting a missing entry returns
// an error wrapping ErrNotFound.
func (c *Bucket) Delete(ctx context.Context, path string) error {
	if err := c.bucket.Delete(ctx, path); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("asynchttp/cache: delete %s: %w", path, err)
	}
	return nil
}

// Close closes the underlying bucket if Open created it.
func (c *Bucket) Close() error {
	if !c.owned {
		return nil
	}
	return c.bucket.Close()
}
