// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	tm := time.Date(1994, time.November, 6, 10, 49, 37, 0, loc)
	assert.Equal(t, "Sun, 06 Nov 1994 08:49:37 GMT", FormatTime(tm))
}

func TestParseTime(t *testing.T) {
	want := time.Date(1994, time.November, 6, 8, 49, 37, 0, time.UTC)
	for _, s := range []string{
		"Sun, 06 Nov 1994 08:49:37 GMT",
		"Sunday, 06-Nov-94 08:49:37 GMT",
		"Sun Nov  6 08:49:37 1994",
	} {
		t.Run(s, func(t *testing.T) {
			got, err := ParseTime(s)
			require.NoError(t, err)
			assert.True(t, want.Equal(got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
	t.Run("invalid", func(t *testing.T) {
		_, err := ParseTime("yesterday")
		assert.Error(t, err)
	})
}

func TestEpoch(t *testing.T) {
	assert.Equal(t, "Sun, 06 Nov 1994 08:49:37 GMT", EpochToHTTPDate(784111777))
	assert.Equal(t, int64(784111777), HTTPDateToEpoch("Sun, 06 Nov 1994 08:49:37 GMT"))
	assert.Equal(t, int64(0), HTTPDateToEpoch("not a date"))
	assert.Equal(t, int64(0), HTTPDateToEpoch(""))
}
