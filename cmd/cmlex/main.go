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

// Binary cmlex tokenizes one or more CMake source files and prints the
// resulting token stream, one token per line, in the same
// <Kind "text"> rendering the golden-file corpus under lexer/testdata
// uses. It is the Go equivalent of generate_test_data_toks.py.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/qzmfranklin/cmake-parser/charstream"
	"github.com/qzmfranklin/cmake-parser/lexer"
)

var value = flag.Bool("value", false, "also print each token's decoded value")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	status := 0
	for _, path := range args {
		if err := lexFile(w, path); err != nil {
			log.Printf("%s: %v", path, err)
			status = 1
		}
	}
	w.Flush()
	os.Exit(status)
}

func lexFile(w io.Writer, path string) error {
	var tok *lexer.Tokenizer
	if path == "-" {
		tok = lexer.New(charstream.New(os.Stdin))
	} else {
		t, err := lexer.FromFile(path)
		if err != nil {
			return err
		}
		tok = t
	}
	defer tok.Close()

	for {
		next, err := tok.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, next.String()); err != nil {
			return err
		}
		if *value {
			v, err := next.Value()
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "  = %q\n", v); err != nil {
				return err
			}
		}
	}
}
