// Copyright 2019 The Kythe Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package charstream implements a readonly character source with exactly
// one rune of lookahead, the leaf dependency of the cmake tokenizer.
package charstream

import (
	"bufio"
	"errors"
	"io"
	"strings"

	plex "github.com/alecthomas/participle/lexer"
)

// ErrUnsupported is returned by every CharStream operation that has no
// meaning on a forward-only stream: it is not seekable and not
// line-oriented. Returning it never poisons the stream; the next
// Peek/Advance/Eof call behaves as if the unsupported call never happened.
var ErrUnsupported = errors.ErrUnsupported

// CharStream is a readonly, forward-only rune source with one rune of
// lookahead. Peek observes the current rune without consuming it; Advance
// consumes the rune most recently reported by Peek; Eof reports whether any
// further rune can ever be produced. The zero value is not usable; use New.
type CharStream struct {
	r   *bufio.Reader
	pos plex.Position

	buf   rune
	valid bool // buf holds a rune that has not yet been consumed
	eof   bool // the underlying reader is exhausted

	closer io.Closer
}

// New wraps r in a CharStream. If r also implements io.Closer, Close closes
// it; the CharStream otherwise has no resource of its own to release.
func New(r io.Reader) *CharStream {
	c, _ := r.(io.Closer)
	return &CharStream{
		r:      bufio.NewReader(r),
		pos:    plex.Position{Line: 1, Column: 1},
		closer: c,
	}
}

// NewFromString wraps a string's contents in a CharStream.
func NewFromString(s string) *CharStream {
	return New(strings.NewReader(s))
}

// fill reads one rune into the lookahead buffer if it is not already full.
// It is the only place that touches the underlying reader.
func (c *CharStream) fill() {
	if c.valid || c.eof {
		return
	}
	r, _, err := c.r.ReadRune()
	if err != nil {
		c.eof = true
		return
	}
	c.buf = r
	c.valid = true
}

// Peek returns the next rune without consuming it, and false at EOF.
func (c *CharStream) Peek() (rune, bool) {
	c.fill()
	if !c.valid {
		return 0, false
	}
	return c.buf, true
}

// Advance consumes the rune most recently reported by Peek. It is a no-op,
// not an error, if the stream is already at EOF; the tokenizer relies on
// this tolerance to flush a final token without special-casing EOF in every
// state of its transition table.
func (c *CharStream) Advance() {
	c.fill()
	if !c.valid {
		return
	}
	if c.buf == '\n' {
		c.pos.Line++
		c.pos.Column = 1
	} else {
		c.pos.Column++
	}
	c.pos.Offset++
	c.valid = false
}

// Eof reports whether the stream is exhausted. It may read one rune into
// the lookahead buffer but otherwise does not mutate observable state.
func (c *CharStream) Eof() bool {
	c.fill()
	return !c.valid
}

// Position returns the position of the rune Peek would currently return.
func (c *CharStream) Position() plex.Position {
	return c.pos
}

// Close releases the underlying resource, if any. It is safe to call
// multiple times and on every exit path: normal exhaustion, a lex error, or
// early abandonment of the tokenizer.
func (c *CharStream) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// Seek, Tell, Flush, ReadLine and iteration are all meaningless for a
// forward-only, one-rune-of-lookahead stream; they report ErrUnsupported
// rather than being silently wrong.

// Seek always fails: CharStream is not seekable.
func (c *CharStream) Seek(int64, int) (int64, error) { return 0, ErrUnsupported }

// Tell always fails: CharStream does not expose a seek offset.
func (c *CharStream) Tell() (int64, error) { return 0, ErrUnsupported }

// Flush always fails: CharStream is readonly.
func (c *CharStream) Flush() error { return ErrUnsupported }

// ReadLine always fails: CharStream is not line-oriented.
func (c *CharStream) ReadLine() (string, error) { return "", ErrUnsupported }

// Lines always fails: CharStream does not support iteration as lines.
func (c *CharStream) Lines() ([]string, error) { return nil, ErrUnsupported }
