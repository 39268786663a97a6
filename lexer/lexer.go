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

// Package lexer implements a deterministic, one-rune-lookahead tokenizer for
// the CMake language. See https://cmake.org/cmake/help/v3.0/manual/cmake-language.7.html
//
// This does not support the "legacy unquoted" element form. Examples of such
// elements and how they should be quoted instead:
//
//	ORIGINAL FORM           QUOTED FORM
//	-Da="b c"               "-Da=\"b c\""
//	-Da=$(v)                "-Da=$(v)"
//	a" "b"c"d               "a\" \"b\"c\"d"
package lexer

import (
	"fmt"
	"io"
	"os"

	plex "github.com/alecthomas/participle/lexer"

	"github.com/qzmfranklin/cmake-parser/charstream"
	"github.com/qzmfranklin/cmake-parser/token"
)

// state is the internal state of the Tokenizer's transition table. It is
// never exposed outside this package.
type state int

const (
	stateStart state = iota

	stateComment
	stateCommentLine
	stateCommentBracketOpen
	stateCommentBracketContent
	stateCommentBracketClose

	stateBracketArgumentOpen
	stateBracketArgumentContent
	stateBracketArgumentClose

	stateQuotedArgument
	stateQuotedArgumentBackslash

	stateUnquotedArgument
	stateUnquotedArgumentEscape
)

// isWhitespace reports whether r is one of cmake's whitespace characters.
func isWhitespace(r rune, ok bool) bool {
	return ok && (r == ' ' || r == '\t' || r == '\v' || r == '\n' || r == '\r')
}

// isQuotedEscapeChar reports whether r is an admissible character to follow a
// backslash inside a QuotedArgument: LF, one of "trn;", or (permissively)
// any character that isn't a letter, digit or semicolon.
func isQuotedEscapeChar(r rune, ok bool) bool {
	if !ok {
		return false
	}
	if r == '\n' {
		return true
	}
	switch r {
	case 't', 'r', 'n', ';':
		return true
	}
	return !isAlnum(r) && r != ';'
}

// isUnquotedEscapeChar reports whether r is an admissible character to
// follow a backslash inside an UnquotedArgument: one of "trn; ".
func isUnquotedEscapeChar(r rune, ok bool) bool {
	if !ok {
		return false
	}
	switch r {
	case 't', 'r', 'n', ';', ' ':
		return true
	}
	return false
}

func isAlnum(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// LexError reports a transition with no admissible rule: the state machine
// halted with buf accumulated so far and, if any, the offending rune. Lex
// errors are fatal to the Tokenizer instance that produced them; further
// calls to Next are undefined.
type LexError struct {
	Buffer string
	Rune   rune
	AtEOF  bool
	Pos    plex.Position
}

func (e *LexError) Error() string {
	where := fmt.Sprintf("%d:%d", e.Pos.Line, e.Pos.Column)
	if e.AtEOF {
		return fmt.Sprintf("lexer: cannot parse at EOF after %q (%s)", e.Buffer, where)
	}
	return fmt.Sprintf("lexer: cannot parse %q after %q (%s)", e.Rune, e.Buffer, where)
}

// Tokenizer is a deterministic finite-state machine, driven by a
// charstream.CharStream, that emits a lazy sequence of token.Token in source
// order. It is single-threaded and cooperative: a single Tokenizer is not
// safe for concurrent use, and every call to Next runs to completion without
// suspension.
//
// The Tokenizer exclusively owns its CharStream, which exclusively owns the
// underlying character source; Close (or exhaustion, or a lex error)
// releases it.
type Tokenizer struct {
	stream *charstream.CharStream

	state state
	buf   []byte
	// startPos is the position of the first rune pushed into buf for the
	// in-progress token; it becomes the emitted token's Pos.
	startPos plex.Position
	havePos  bool

	openEqLen  int
	closeEqLen int

	done bool
}

// FromString constructs a Tokenizer over in-memory source text.
func FromString(text string) *Tokenizer {
	return New(charstream.NewFromString(text))
}

// FromFile constructs a Tokenizer over a file's contents. The returned
// Tokenizer owns the file and closes it when exhausted, on a lex error, or
// when Close is called directly.
func FromFile(path string) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return New(charstream.New(f)), nil
}

// New constructs a Tokenizer over an already-built CharStream.
func New(stream *charstream.CharStream) *Tokenizer {
	return &Tokenizer{stream: stream, state: stateStart}
}

// Close releases the underlying CharStream. Safe to call multiple times.
func (t *Tokenizer) Close() error {
	return t.stream.Close()
}

// Next pulls the next token from the stream. It returns io.EOF once the
// input is exhausted and every in-progress token has been flushed; a
// subsequent call after that also returns io.EOF. A non-nil, non-io.EOF
// error is a *LexError and is fatal: further calls are undefined.
func (t *Tokenizer) Next() (token.Token, error) {
	if t.done {
		return token.Token{}, io.EOF
	}
	for !t.stream.Eof() {
		tok, emitted, err := t.step()
		if err != nil {
			t.done = true
			t.stream.Close()
			return token.Token{}, err
		}
		if emitted {
			return tok, nil
		}
	}
	// Flush any in-progress Comment via the EOF branches below.
	tok, emitted, err := t.step()
	t.done = true
	t.stream.Close()
	if err != nil {
		return token.Token{}, err
	}
	if emitted {
		return tok, nil
	}
	return token.Token{}, io.EOF
}

// push appends the current rune (as reported by Peek) to the in-progress
// token's buffer and consumes it from the stream. It records the position
// of the token's first rune for use by emit. A no-op at EOF.
func (t *Tokenizer) push() {
	r, ok := t.stream.Peek()
	if !ok {
		return
	}
	if len(t.buf) == 0 {
		t.startPos = t.stream.Position()
		t.havePos = true
	}
	t.buf = append(t.buf, string(r)...)
	t.stream.Advance()
}

// advance moves the stream forward without pushing, tolerating EOF.
func (t *Tokenizer) advance() {
	t.stream.Advance()
}

func (t *Tokenizer) emit(kind token.Kind) token.Token {
	pos := t.startPos
	if !t.havePos {
		pos = t.stream.Position()
	}
	tok := token.New(kind, string(t.buf), pos)
	t.buf = nil
	t.havePos = false
	return tok
}

func (t *Tokenizer) errorHere() error {
	r, ok := t.stream.Peek()
	return &LexError{
		Buffer: string(t.buf),
		Rune:   r,
		AtEOF:  !ok,
		Pos:    t.stream.Position(),
	}
}

// step executes exactly one transition of the tokenizer's state table,
// driven by the current state and the stream's current lookahead rune. It
// returns
// (token, true, nil) when a transition emits a token, (zero, false, nil)
// when it does not, and (zero, false, err) on a lex error.
func (t *Tokenizer) step() (token.Token, bool, error) {
	r, ok := t.stream.Peek()

	switch t.state {
	case stateStart:
		switch {
		case ok && r == '#':
			t.push()
			t.state = stateComment
		case ok && r == '[':
			t.push()
			t.openEqLen = 0
			t.state = stateBracketArgumentOpen
		case ok && r == '"':
			t.push()
			t.state = stateQuotedArgument
		case ok && r == '(':
			t.push()
			return t.emit(token.OpenParen), true, nil
		case ok && r == ')':
			t.push()
			return t.emit(token.CloseParen), true, nil
		case ok && r == ';':
			// Not part of CMake's grammar, but a bare ';' between tokens is
			// treated the same as whitespace.
			t.advance()
		case isWhitespace(r, ok):
			t.advance()
		default:
			if ok && r != '\\' {
				t.push()
			}
			t.state = stateUnquotedArgument
		}

	case stateComment:
		switch {
		case ok && r == '[':
			t.push()
			t.openEqLen = 0
			t.state = stateCommentBracketOpen
		case r == '\n' || !ok:
			t.advance()
			t.state = stateStart
			return t.emit(token.Comment), true, nil
		default:
			t.push()
			t.state = stateCommentLine
		}

	case stateCommentLine:
		if r == '\n' || !ok {
			t.advance()
			t.state = stateStart
			return t.emit(token.Comment), true, nil
		}
		t.push()

	case stateCommentBracketOpen:
		switch {
		case ok && r == '=':
			t.push()
			t.openEqLen++
		case ok && r == '[':
			t.push()
			t.state = stateCommentBracketContent
		case r == '\n' || !ok:
			t.advance()
			t.state = stateStart
			return t.emit(token.Comment), true, nil
		default:
			t.push()
			t.state = stateCommentLine
		}

	case stateCommentBracketContent:
		switch {
		case ok && r == ']':
			t.push()
			t.closeEqLen = 0
			t.state = stateCommentBracketClose
		case r == '\n' || !ok:
			t.advance()
			t.state = stateStart
			return t.emit(token.Comment), true, nil
		default:
			t.push()
		}

	case stateCommentBracketClose:
		switch {
		case ok && r == '=':
			t.push()
			t.closeEqLen++
		case ok && r == ']' && t.closeEqLen == t.openEqLen:
			t.push()
			t.state = stateStart
			return t.emit(token.Comment), true, nil
		case r == '\n' || !ok:
			t.advance()
			t.state = stateStart
			return t.emit(token.Comment), true, nil
		default:
			t.push()
			t.state = stateCommentBracketContent
		}

	case stateBracketArgumentOpen:
		switch {
		case ok && r == '=':
			t.push()
			t.openEqLen++
		case ok && r == '[':
			t.push()
			t.state = stateBracketArgumentContent
		default:
			return token.Token{}, false, t.errorHere()
		}

	case stateBracketArgumentContent:
		switch {
		case ok && r == ']':
			t.push()
			t.closeEqLen = 0
			t.state = stateBracketArgumentClose
		case !ok:
			return token.Token{}, false, t.errorHere()
		default:
			t.push()
		}

	case stateBracketArgumentClose:
		switch {
		case ok && r == '=':
			t.push()
			t.closeEqLen++
		case ok && r == ']' && t.closeEqLen == t.openEqLen:
			t.push()
			t.state = stateStart
			return t.emit(token.BracketArgument), true, nil
		case !ok:
			return token.Token{}, false, t.errorHere()
		default:
			t.push()
			t.state = stateBracketArgumentContent
		}

	case stateQuotedArgument:
		switch {
		case ok && r == '\\':
			t.push()
			t.state = stateQuotedArgumentBackslash
		case ok && r == '"':
			t.push()
			t.state = stateStart
			return t.emit(token.QuotedArgument), true, nil
		case !ok:
			return token.Token{}, false, t.errorHere()
		default:
			t.push()
		}

	case stateQuotedArgumentBackslash:
		if isQuotedEscapeChar(r, ok) {
			t.push()
			t.state = stateQuotedArgument
			break
		}
		return token.Token{}, false, t.errorHere()

	case stateUnquotedArgument:
		switch {
		case ok && r == '\\':
			t.push()
			t.state = stateUnquotedArgumentEscape
		case ok && r == ';':
			// Consumed, not re-processed: the ';' ends the argument and is
			// dropped, so a trailing ';' produces no empty token.
			t.advance()
			t.state = stateStart
			return t.emit(token.UnquotedArgument), true, nil
		case isWhitespace(r, ok) || (ok && (r == '(' || r == ')' || r == '#' || r == '"')):
			t.state = stateStart
			return t.emit(token.UnquotedArgument), true, nil
		case !ok:
			t.state = stateStart
			return t.emit(token.UnquotedArgument), true, nil
		default:
			t.push()
		}

	case stateUnquotedArgumentEscape:
		if isUnquotedEscapeChar(r, ok) {
			t.push()
			t.state = stateUnquotedArgument
			break
		}
		return token.Token{}, false, t.errorHere()
	}

	return token.Token{}, false, nil
}
