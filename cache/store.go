// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrNotFound is returned when a cache entry does not exist.
var ErrNotFound = errors.New("asynchttp/cache: entry not found")

// A Store is a disk cache of response bodies keyed by path.
//
// Implementations of Store must be safe for concurrent use by multiple
// goroutines, since workers write entries while the submitting
// goroutine reads them.
type Store interface {
	// PathForKey returns the path under which the entry for key is
	// stored. It does not check whether the entry exists.
	PathForKey(key string) string
	// LastModified returns the modification time recorded for the
	// entry at path, and false if there is no such entry.
	LastModified(ctx context.Context, path string) (time.Time, bool)
	// Read returns the contents of the entry at path. It returns an
	// error wrapping ErrNotFound if there is no such entry.
	Read(ctx context.Context, path string) ([]byte, error)
	// Write replaces the entry at path with data and records
	// lastModified as its modification time. A zero lastModified
	// records the current time.
	Write(ctx context.Context, path string, data []byte, lastModified time.Time) error
}

const maxKeyLen = 200

// SanitizeKey converts a resource key, typically a URL, into a string
// that is safe to use as a single file name. Characters that are not
// allowed in file names on common platforms are replaced with '_', and
// the scheme separator "://" is collapsed. A result longer than 200
// bytes keeps its leading part and ends in the hex SHA-256 of key, so
// distinct keys stay distinct.
func SanitizeKey(key string) string {
	key = strings.Replace(key, "://", "_", 1)
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r < 0x20 || r == 0x7f:
			b.WriteByte('_')
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) <= maxKeyLen {
		return s
	}
	sum := sha256.Sum256([]byte(key))
	n := maxKeyLen - 1 - 2*sha256.Size
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "_" + hex.EncodeToString(sum[:])
}
