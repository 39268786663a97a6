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

// Package token defines the closed family of tokens emitted by the cmake
// tokenizer, and the pure decoding rules that turn each token's original
// source text into its semantic string value. See
// https://cmake.org/cmake/help/v3.0/manual/cmake-language.7.html for the
// grammar these kinds correspond to.
//
// Each kind has its own decoding rule rather than a shared base type: a
// tagged variant over a Kind enum, with a single Value method that switches
// on the tag, is all the polymorphism this needs.
package token

import (
	"fmt"
	"strings"

	plex "github.com/alecthomas/participle/lexer"
)

// Kind identifies which of the closed set of cmake token kinds a Token is.
type Kind int

// The closed set of token kinds the cmake lexical grammar produces.
const (
	Comment Kind = iota
	BracketArgument
	QuotedArgument
	UnquotedArgument
	OpenParen
	CloseParen
)

// String returns the kind's name, used as the prefix of Token.String().
func (k Kind) String() string {
	switch k {
	case Comment:
		return "Comment"
	case BracketArgument:
		return "BracketArgument"
	case QuotedArgument:
		return "QuotedArgument"
	case UnquotedArgument:
		return "UnquotedArgument"
	case OpenParen:
		return "OpenParen"
	case CloseParen:
		return "CloseParen"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is the exact source substring a tokenizer produced, tagged with the
// kind it was produced as. Tokens are immutable after construction and have
// lifetimes independent of the stream that produced them.
type Token struct {
	Kind Kind
	Text string // the original, verbatim source slice
	Pos  plex.Position
}

// New constructs a Token of kind at the given position. For OpenParen and
// CloseParen, text is ignored: their original text is fixed by kind.
func New(kind Kind, text string, pos plex.Position) Token {
	switch kind {
	case OpenParen:
		text = "("
	case CloseParen:
		text = ")"
	}
	return Token{Kind: kind, Text: text, Pos: pos}
}

// Equal reports whether two tokens have the same kind and original text.
// Position is deliberately excluded: two tokens scanned from different
// places in a file (or different files) are still equal if their kind and
// text match.
func (t Token) Equal(other Token) bool {
	return t.Kind == other.Kind && t.Text == other.Text
}

// String renders a token as "<Kind TEXT>", using Go's quoted-string escaping
// for TEXT. This is the format the golden-file corpus under
// lexer/testdata compares against.
func (t Token) String() string {
	return fmt.Sprintf("<%s %q>", t.Kind, t.Text)
}

// escapePairs maps each two-character escape sequence of a Quoted or
// Unquoted argument to its replacement. Every key is exactly two bytes long
// and none overlaps another, so a single left-to-right scan that looks up
// each backslash-led pair suffices; the map's iteration order is irrelevant.
var escapePairs = map[string]string{
	"\\\n": "",
	`\ `:   " ",
	`\;`:   ";",
	`\n`:   "\n",
	`\r`:   "\r",
	`\t`:   "\t",
	`\v`:   "\v",
}

// decodeEscapes applies the escape substitutions in escapePairs to text in a
// single left-to-right pass. A backslash whose two-character sequence is not
// in escapePairs (for example the `\$` a QuotedArgument may contain) is kept
// verbatim together with the character after it.
func decodeEscapes(text string) string {
	var out []byte
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) {
			if repl, ok := escapePairs[text[i:i+2]]; ok {
				out = append(out, repl...)
				i++
				continue
			}
		}
		out = append(out, text[i])
	}
	return string(out)
}

// Value decodes a token's original text into its semantic string value,
// applying the kind-specific escape and quoting rules. It is a pure
// function of Text; repeated calls return equal results.
func (t Token) Value() (string, error) {
	switch t.Kind {
	case Comment:
		return t.Text, nil
	case BracketArgument:
		return decodeBracket(t.Text)
	case QuotedArgument:
		return decodeQuoted(t.Text)
	case UnquotedArgument:
		return decodeEscapes(t.Text), nil
	case OpenParen:
		return "(", nil
	case CloseParen:
		return ")", nil
	default:
		return "", fmt.Errorf("token: unknown kind %v", t.Kind)
	}
}

// decodeQuoted strips the surrounding quotes from a QuotedArgument's
// original text and applies the escape substitutions.
func decodeQuoted(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", fmt.Errorf("token: QuotedArgument has invalid original text %q", text)
	}
	return decodeEscapes(text[1 : len(text)-1]), nil
}

// decodeBracket recovers the bracket length by scanning from the start of
// text, validates that the closing bracket matches, and returns the
// interior content.
func decodeBracket(text string) (string, error) {
	if len(text) == 0 || text[0] != '[' {
		return "", fmt.Errorf("token: BracketArgument has invalid original text %q", text)
	}
	numEq := 0
	i := 1
	for ; i < len(text); i++ {
		switch text[i] {
		case '[':
			i++
			goto foundOpen
		case '=':
			numEq++
		default:
			return "", fmt.Errorf("token: BracketArgument has invalid original text %q", text)
		}
	}
	return "", fmt.Errorf("token: BracketArgument has invalid original text %q", text)
foundOpen:
	bracketLen := numEq + 2 // the outer bracket plus numEq '=' plus the inner bracket
	closing := "]" + strings.Repeat("=", numEq) + "]"
	if len(text) < i+bracketLen || text[len(text)-bracketLen:] != closing {
		return "", fmt.Errorf("token: BracketArgument has invalid original text %q", text)
	}
	return text[i : len(text)-bracketLen], nil
}
