// Copyright 2021 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/gogama/asynchttp/header"
	"golang.org/x/net/http/httpguts"
)

// A ParseState is the state of the incremental response head parser.
type ParseState int

const (
	// AwaitingStatus means the parser expects a status line, such as
	// "HTTP/1.1 200 OK".
	AwaitingStatus ParseState = iota
	// AwaitingHeaderField means the parser expects a header field
	// name or the empty line ending the head.
	AwaitingHeaderField
	// AwaitingHeaderValue means the parser has a field name and is
	// collecting its value.
	AwaitingHeaderValue
	// InBody means the head is complete and body bytes may follow.
	InBody
)

var parseStateNames = []string{
	"AwaitingStatus",
	"AwaitingHeaderField",
	"AwaitingHeaderValue",
	"InBody",
}

// String returns the name of the state.
func (s ParseState) String() string {
	if s < 0 || int(s) >= len(parseStateNames) {
		return fmt.Sprintf("ParseState(%d)", int(s))
	}
	return parseStateNames[s]
}

// MaxHeadBytes is the largest response head, status line included,
// the parser accepts.
const MaxHeadBytes = 80 * 1024

// ErrBodyBeforeHead is returned by WriteBody when body bytes arrive
// before the response head is complete.
var ErrBodyBeforeHead = errors.New("asynchttp/request: body data before end of response head")

// A ParseError reports a malformed response head.
type ParseError struct {
	// State is the parser state in which the problem was found.
	State ParseState
	// Reason describes the problem.
	Reason string
	// Data is the offending token, possibly truncated.
	Data string
}

func (e *ParseError) Error() string {
	if e.Data == "" {
		return fmt.Sprintf("asynchttp/request: %s in %s", e.Reason, e.State)
	}
	return fmt.Sprintf("asynchttp/request: %s in %s: %q", e.Reason, e.State, e.Data)
}

func parseError(state ParseState, reason string, data []byte) *ParseError {
	const maxData = 64
	if len(data) > maxData {
		data = data[:maxData]
	}
	return &ParseError{State: state, Reason: reason, Data: string(data)}
}

type parser struct {
	state   ParseState
	partial []byte
	field   string
}

// stepFunc consumes a prefix of b and returns its length together with
// the next parser state.
type stepFunc func(e *Execution, b []byte) (int, ParseState, error)

var steps = [...]stepFunc{
	AwaitingStatus:      (*Execution).awaitStatus,
	AwaitingHeaderField: (*Execution).awaitHeaderField,
	AwaitingHeaderValue: (*Execution).awaitHeaderValue,
}

// WriteHead feeds raw response head bytes to the parser. The head may
// arrive split at arbitrary points across any number of calls.
//
// Head bytes arriving after a complete head start a new response, as
// happens when a redirect is followed or an interim 1xx response is
// received, and reset the status, header, and body.
func (e *Execution) WriteHead(b []byte) error {
	for len(b) > 0 {
		if e.parser.state == InBody {
			e.resetResponse()
		}
		n, next, err := steps[e.parser.state](e, b)
		e.HeadBytes += n
		if err != nil {
			return err
		}
		if e.HeadBytes > MaxHeadBytes {
			return parseError(e.parser.state, "response head too large", nil)
		}
		e.parser.state = next
		b = b[n:]
	}
	return nil
}

// WriteBody appends response body bytes. The first call reserves
// storage sized from the Content-Length header when present, or from
// InitialBodySize otherwise.
func (e *Execution) WriteBody(b []byte) error {
	if e.parser.state != InBody {
		return ErrBodyBeforeHead
	}
	if len(b) == 0 {
		return nil
	}
	if e.Body == nil {
		e.Body = make([]byte, 0, e.bodyReserve(len(b)))
	}
	e.Body = append(e.Body, b...)
	return nil
}

func (e *Execution) bodyReserve(first int) int {
	n := e.InitialBodySize
	if n <= 0 {
		n = DefaultInitialBodySize
	}
	if cl := e.Header.Int(header.ContentLength, -1); cl >= 0 {
		n = int(min(cl, MaxBodyReserve))
	}
	return max(n, first)
}

func (e *Execution) resetResponse() {
	e.ProtoMajor, e.ProtoMinor = 0, 0
	e.StatusCode = NoStatus
	e.Status = ""
	e.Header.Reset()
	e.Body = nil
	e.HeadBytes = 0
	e.parser = parser{partial: e.parser.partial[:0]}
}

// line returns the bytes of the current line, joining any partial
// prefix carried over from earlier writes, with a trailing CR removed.
func (p *parser) line(b []byte) []byte {
	if len(p.partial) > 0 {
		b = append(p.partial, b...)
		p.partial = p.partial[:0]
	}
	return bytes.TrimSuffix(b, []byte("\r"))
}

func (p *parser) carry(b []byte) int {
	p.partial = append(p.partial, b...)
	return len(b)
}

func (e *Execution) awaitStatus(b []byte) (int, ParseState, error) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return e.parser.carry(b), AwaitingStatus, nil
	}
	line := e.parser.line(b[:i])
	if len(line) == 0 {
		return i + 1, AwaitingStatus, nil
	}
	major, minor, code, text, ok := parseStatusLine(line)
	if !ok {
		return i + 1, AwaitingStatus, parseError(AwaitingStatus, "malformed status line", line)
	}
	e.ProtoMajor, e.ProtoMinor = major, minor
	e.StatusCode = code
	e.Status = text
	return i + 1, AwaitingHeaderField, nil
}

func (e *Execution) awaitHeaderField(b []byte) (int, ParseState, error) {
	i := bytes.IndexAny(b, ":\n")
	if i < 0 {
		return e.parser.carry(b), AwaitingHeaderField, nil
	}
	if b[i] == '\n' {
		line := e.parser.line(b[:i])
		if len(line) > 0 {
			return i + 1, AwaitingHeaderField, parseError(AwaitingHeaderField, "header line without colon", line)
		}
		if e.StatusCode >= 100 && e.StatusCode < 200 {
			// Interim response. The final status line follows.
			e.resetResponse()
			return i + 1, AwaitingStatus, nil
		}
		return i + 1, InBody, nil
	}
	name := e.parser.line(b[:i])
	if !httpguts.ValidHeaderFieldName(string(name)) {
		return i + 1, AwaitingHeaderField, parseError(AwaitingHeaderField, "invalid header field name", name)
	}
	e.parser.field = string(name)
	return i + 1, AwaitingHeaderValue, nil
}

func (e *Execution) awaitHeaderValue(b []byte) (int, ParseState, error) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return e.parser.carry(b), AwaitingHeaderValue, nil
	}
	value := bytes.Trim(e.parser.line(b[:i]), " \t")
	e.Header.Set(e.parser.field, string(value))
	e.parser.field = ""
	return i + 1, AwaitingHeaderField, nil
}

// parseStatusLine parses "HTTP/<major>[.<minor>] <code>[ <reason>]".
func parseStatusLine(line []byte) (major, minor, code int, text string, ok bool) {
	const prefix = "HTTP/"
	if !bytes.HasPrefix(line, []byte(prefix)) {
		return
	}
	line = line[len(prefix):]
	sp := bytes.IndexByte(line, ' ')
	if sp < 0 {
		return
	}
	version, rest := line[:sp], bytes.TrimLeft(line[sp+1:], " ")
	var err error
	if dot := bytes.IndexByte(version, '.'); dot >= 0 {
		if major, err = strconv.Atoi(string(version[:dot])); err != nil {
			return
		}
		if minor, err = strconv.Atoi(string(version[dot+1:])); err != nil {
			return
		}
	} else if major, err = strconv.Atoi(string(version)); err != nil {
		return
	}
	if len(rest) < 3 || (len(rest) > 3 && rest[3] != ' ') {
		return
	}
	if code, err = strconv.Atoi(string(rest[:3])); err != nil || code < 100 {
		return
	}
	if len(rest) > 3 {
		text = string(bytes.TrimSpace(rest[4:]))
	}
	ok = true
	return
}
