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

// Package ast is a placeholder for the syntactic layer above the
// tokenizer. Building a real grammar on top of the token stream (command
// invocations, argument lists, variable references) is out of scope for
// now; this package keeps a stub in place so that a future grammar has
// somewhere to live without disturbing lexer, token or charstream.
package ast

import (
	"fmt"
	"io"

	"github.com/qzmfranklin/cmake-parser/lexer"
	"github.com/qzmfranklin/cmake-parser/token"
)

// Node is the root of the (currently unbuilt) syntax tree. Every concrete
// node kind this package might eventually grow implements it.
type Node interface {
	node()
}

// File is the root Node a Parser produces: a flat, unevaluated sequence
// of the tokens that make up a source file. It deliberately stops short
// of grouping tokens into command invocations or argument lists — that
// grammar is the part left unbuilt.
type File struct {
	Tokens []token.Token
}

func (*File) node() {}

// Parser turns a token stream into a File. It does not interpret the
// tokens in any way: no command recognition, no argument-list grouping,
// no variable evaluation.
type Parser struct {
	tok *lexer.Tokenizer
}

// NewParser constructs a Parser over an already-built Tokenizer.
func NewParser(tok *lexer.Tokenizer) *Parser {
	return &Parser{tok: tok}
}

// Parse drains the underlying Tokenizer into a File.
//
// TODO: once a grammar exists, this should build command/argument nodes
// instead of handing back the raw token sequence.
func (p *Parser) Parse() (*File, error) {
	f := &File{}
	for {
		tok, err := p.tok.Next()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ast: %w", err)
		}
		f.Tokens = append(f.Tokens, tok)
	}
}

// ParseString is a convenience constructor that lexes and parses s in one
// call.
func ParseString(s string) (*File, error) {
	return NewParser(lexer.FromString(s)).Parse()
}
