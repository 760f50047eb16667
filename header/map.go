// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

import (
	"iter"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// A Map is a set of header fields whose names are unique under
// case-insensitive comparison. The zero value is an empty map ready
// to use.
//
// A Map is not safe for concurrent mutation. Within a transfer, the
// map is written only by the goroutine that owns the transfer.
type Map struct {
	fields map[string]field
}

type field struct {
	name  string
	value string
}

func fold(name string) string {
	return strings.ToLower(name)
}

// Set sets the value of the named field, replacing any value the
// field had before under any capitalization. The most recent spelling
// of the name is retained.
func (m *Map) Set(name, value string) {
	if m.fields == nil {
		m.fields = make(map[string]field)
	}
	m.fields[fold(name)] = field{name: name, value: value}
}

// Get returns the value of the named field, or the empty string if
// the field is absent.
func (m *Map) Get(name string) string {
	v, _ := m.Lookup(name)
	return v
}

// Lookup returns the value of the named field and whether it is
// present.
func (m *Map) Lookup(name string) (string, bool) {
	if m == nil || m.fields == nil {
		return "", false
	}
	f, ok := m.fields[fold(name)]
	return f.value, ok
}

// Has reports whether the named field is present.
func (m *Map) Has(name string) bool {
	_, ok := m.Lookup(name)
	return ok
}

// Del removes the named field. Deleting an absent field is a no-op.
func (m *Map) Del(name string) {
	if m.fields != nil {
		delete(m.fields, fold(name))
	}
}

// Len returns the number of fields in the map.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.fields)
}

// Reset removes all fields.
func (m *Map) Reset() {
	clear(m.fields)
}

// Names returns the field names, in the spelling last used to set
// them, ordered by case-insensitive comparison.
func (m *Map) Names() []string {
	if m.Len() == 0 {
		return nil
	}
	keys := make([]string, 0, len(m.fields))
	for k := range m.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = m.fields[k].name
	}
	return names
}

// All returns an iterator over the name/value pairs in the map,
// ordered by case-insensitive name.
func (m *Map) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, name := range m.Names() {
			if !yield(name, m.fields[fold(name)].value) {
				return
			}
		}
	}
}

// Clone returns a deep copy of m.
func (m *Map) Clone() Map {
	var c Map
	if m.Len() > 0 {
		c.fields = make(map[string]field, len(m.fields))
		for k, f := range m.fields {
			c.fields[k] = f
		}
	}
	return c
}

// Int returns the value of the named field parsed as a base 10
// integer, or def if the field is absent, empty, or not a valid
// integer.
func (m *Map) Int(name string, def int64) int64 {
	v := strings.TrimSpace(m.Get(name))
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

// Uint returns the value of the named field parsed as an unsigned
// base 10 integer, or def if the field is absent, empty, or not a
// valid unsigned integer.
func (m *Map) Uint(name string, def uint64) uint64 {
	v := strings.TrimSpace(m.Get(name))
	if v == "" {
		return def
	}
	u, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return u
}

// ToHTTP converts m into a net/http header. Names are canonicalized
// by net/http.
func (m *Map) ToHTTP() http.Header {
	h := make(http.Header, m.Len())
	for name, value := range m.All() {
		h.Set(name, value)
	}
	return h
}

// FromHTTP converts a net/http header into a Map. Where a field has
// several values, the last one wins.
func FromHTTP(h http.Header) Map {
	var m Map
	for name, values := range h {
		if len(values) > 0 {
			m.Set(name, values[len(values)-1])
		}
	}
	return m
}
