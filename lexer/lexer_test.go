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

package lexer

import (
	"errors"
	"io"
	"testing"

	plex "github.com/alecthomas/participle/lexer"
	"github.com/alecthomas/repr"

	"github.com/qzmfranklin/cmake-parser/token"
)

func lexAll(t *testing.T, text string) []token.Token {
	t.Helper()
	tok := FromString(text)
	var toks []token.Token
	for {
		next, err := tok.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next() error lexing %q: %v", text, err)
		}
		toks = append(toks, next)
	}
	return toks
}

func wantToken(kind token.Kind, text string) token.Token {
	return token.New(kind, text, plex.Position{})
}

func compareTokens(t *testing.T, text string, got, want []token.Token) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("lexing %q: got %d tokens, want %d\ngot:  %s\nwant: %s",
			text, len(got), len(want), repr.String(got), repr.String(want))
		return
	}
	for i := range got {
		if !got[i].Equal(want[i]) {
			t.Errorf("lexing %q: token %d = %s, want %s", text, i, repr.String(got[i]), repr.String(want[i]))
		}
	}
}

func TestLineComment(t *testing.T) {
	const line = "# one-line comment"
	tests := map[string][]token.Token{
		line:      {wantToken(token.Comment, line)},
		line + "\n": {wantToken(token.Comment, line)},
		line + "\n" + line + "\n" + line: {
			wantToken(token.Comment, line),
			wantToken(token.Comment, line),
			wantToken(token.Comment, line),
		},
	}
	for text, want := range tests {
		compareTokens(t, text, lexAll(t, text), want)
	}
}

func TestBracketComment(t *testing.T) {
	tests := map[string][]token.Token{
		"#[[ bracket comment ]]": {wantToken(token.Comment, "#[[ bracket comment ]]")},
		"#[==[a\n#a": {
			wantToken(token.Comment, "#[==[a"),
			wantToken(token.Comment, "#a"),
		},
		"#[=[ foo ]=] \t#[=[a]=]": {
			wantToken(token.Comment, "#[=[ foo ]=]"),
			wantToken(token.Comment, "#[=[a]=]"),
		},
	}
	for text, want := range tests {
		compareTokens(t, text, lexAll(t, text), want)
	}
}

func TestBracketArgument(t *testing.T) {
	const blockText = "[=[\n" +
		"This is the first line in a bracket argument with bracket length\n" +
		"1.  No \\-escape sequences or ${variable} references are\n" +
		"evaluated.  This is always one argument even though it contains\n" +
		"a ; character.\n" +
		"]=]"
	tests := map[string][]token.Token{
		blockText: {wantToken(token.BracketArgument, blockText)},
		"[[foo]]": {wantToken(token.BracketArgument, "[[foo]]")},
	}
	for text, want := range tests {
		compareTokens(t, text, lexAll(t, text), want)
	}
}

func TestQuotedArgument(t *testing.T) {
	tests := map[string][]token.Token{
		`"foo"`:     {wantToken(token.QuotedArgument, `"foo"`)},
		`"\r"`:      {wantToken(token.QuotedArgument, `"\r"`)},
		`"\t"`:      {wantToken(token.QuotedArgument, `"\t"`)},
		`"\n"`:      {wantToken(token.QuotedArgument, `"\n"`)},
		`"\;"`:      {wantToken(token.QuotedArgument, `"\;"`)},
		`"\ "`:      {wantToken(token.QuotedArgument, `"\ "`)},
		`"foo;bar"`: {wantToken(token.QuotedArgument, `"foo;bar"`)},
		`"foo""bar"`: {
			wantToken(token.QuotedArgument, `"foo"`),
			wantToken(token.QuotedArgument, `"bar"`),
		},
		"\"foo\\\n bar\"": {wantToken(token.QuotedArgument, "\"foo\\\n bar\"")},
	}
	for text, want := range tests {
		compareTokens(t, text, lexAll(t, text), want)
	}
}

func TestUnquotedArgument(t *testing.T) {
	tests := map[string][]token.Token{
		"foo":  {wantToken(token.UnquotedArgument, "foo")},
		`\r`:   {wantToken(token.UnquotedArgument, `\r`)},
		`\t`:   {wantToken(token.UnquotedArgument, `\t`)},
		`\n`:   {wantToken(token.UnquotedArgument, `\n`)},
		`\;`:   {wantToken(token.UnquotedArgument, `\;`)},
		`\ `:   {wantToken(token.UnquotedArgument, `\ `)},
		"foo;bar;": {
			wantToken(token.UnquotedArgument, "foo"),
			wantToken(token.UnquotedArgument, "bar"),
		},
	}
	for text, want := range tests {
		compareTokens(t, text, lexAll(t, text), want)
	}
}

func TestParens(t *testing.T) {
	text := `(foo "x" )`
	want := []token.Token{
		wantToken(token.OpenParen, "("),
		wantToken(token.UnquotedArgument, "foo"),
		wantToken(token.QuotedArgument, `"x"`),
		wantToken(token.CloseParen, ")"),
	}
	compareTokens(t, text, lexAll(t, text), want)
}

func TestBracketArgumentUnterminatedIsLexError(t *testing.T) {
	tok := FromString("[=[unterminated")
	_, err := tok.Next()
	var lexErr *LexError
	if err == nil {
		t.Fatal("Next() on an unterminated bracket argument: want error, got nil")
	}
	if !errors.As(err, &lexErr) {
		t.Fatalf("Next() error = %v (%T), want *LexError", err, err)
	}
}

func TestBracketArgumentOpenBadCharIsLexError(t *testing.T) {
	tok := FromString("[x")
	_, err := tok.Next()
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("Next() error = %v, want *LexError", err)
	}
}

func TestQuotedArgumentBadEscapeIsLexError(t *testing.T) {
	tok := FromString(`"\A"`)
	// 'A' is alphanumeric, so it is not an admissible escape target, unlike
	// e.g. '\$' which is.
	_, err := tok.Next()
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("Next() error = %v, want *LexError", err)
	}
}

func TestQuotedArgumentPermissiveEscape(t *testing.T) {
	// Permissive by design: any non-alphanumeric, non-semicolon character
	// is an admissible escape target, not just the documented
	// t/r/n/;/space/LF set.
	text := `"\$var\@"`
	want := []token.Token{wantToken(token.QuotedArgument, text)}
	compareTokens(t, text, lexAll(t, text), want)
}

func TestUnquotedArgumentBadEscapeIsLexError(t *testing.T) {
	tok := FromString(`foo\$bar`)
	_, err := tok.Next()
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("Next() error = %v, want *LexError", err)
	}
}

func TestNextAfterExhaustionReturnsEOF(t *testing.T) {
	tok := FromString("foo")
	if _, err := tok.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if _, err := tok.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next() after exhaustion = %v, want io.EOF", err)
	}
	if _, err := tok.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next() after exhaustion (again) = %v, want io.EOF", err)
	}
}

func TestDeterminism(t *testing.T) {
	const text = `add_library(foo STATIC "a.cc" "b.cc") # comment` + "\n"
	a := lexAll(t, text)
	b := lexAll(t, text)
	compareTokens(t, text, a, b)
}

func TestRoundTripPreservesNonWhitespaceText(t *testing.T) {
	const text = `command(a "b" [[c]] #trailing` + "\n"
	toks := lexAll(t, text)
	var rebuilt string
	for _, tok := range toks {
		rebuilt += tok.Text
	}
	// Whitespace between tokens is consumed without being pushed into any
	// token, so the round trip is only exact once whitespace is stripped
	// from both sides.
	stripSpace := func(s string) string {
		var out []byte
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case ' ', '\t', '\v', '\n', '\r':
				continue
			}
			out = append(out, s[i])
		}
		return string(out)
	}
	if stripSpace(rebuilt) != stripSpace(text) {
		t.Errorf("round trip mismatch:\ngot:  %q\nwant: %q", rebuilt, text)
	}
}
