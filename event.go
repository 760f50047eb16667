// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend it with custom
// functionality.
//
// All events fire on the goroutine that owns the Client, that is the
// goroutine which submits requests and calls Update.
type Event int

const (
	// Submitted identifies the event that occurs when a request is
	// submitted to the Client.
	//
	// When Client fires Submitted, the execution's plan is set but it
	// may still be reconfigured through the Request handle until the
	// next Update.
	Submitted Event = iota
	// Dispatched identifies the event that occurs during Update, just
	// before a request becomes visible to the workers.
	//
	// Dispatched handlers are the last chance to change the plan.
	// After they return, the execution belongs to a worker until it
	// finishes, and handlers must not touch it.
	Dispatched
	// Finished identifies the event that occurs during Update when a
	// request's outcome is delivered, before the request's own
	// listeners run.
	//
	// When Client fires Finished, the execution is complete and
	// read-only: either its error field is set, or its status code,
	// header and body are.
	Finished
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"Submitted",
	"Dispatched",
	"Finished",
}

// Events returns a slice containing all events which can occur in the
// life of a request, in the order in which they occur.
func Events() []Event {
	return []Event{
		Submitted,
		Dispatched,
		Finished,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
