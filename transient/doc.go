// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport errors recorded on a transfer
// as transient or non-transient. The client uses the classification to
// bucket error statistics and log lines, and retry deciders use it to
// choose which failed transfers are worth submitting again.
//
// Package transient depends only on the standard library, so it can be
// imported on its own.
package transient
