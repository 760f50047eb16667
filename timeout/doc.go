// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for bounding a single HTTP exchange
// inside the transport. The transfer engine itself never cancels a
// submitted transfer; a deadline set by a Policy surfaces as an
// ordinary transport error whose transient category is Timeout.
package timeout
