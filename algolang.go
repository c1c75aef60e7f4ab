// Package algolang is the host-facing surface of the AlgoLang execution
// engine: tokenize source, parse tokens into a program, and interpret a
// program into a resumable Handle. See ast, lexer, parser and interp for
// the pipeline stages themselves.
package algolang

import (
	"github.com/algolang/algolang/ast"
	"github.com/algolang/algolang/interp"
	"github.com/algolang/algolang/lexer"
	"github.com/algolang/algolang/parser"
)

// Tokenize converts AlgoLang source text into an ordered token sequence.
func Tokenize(source string) ([]lexer.Token, error) {
	return lexer.Tokenize(source)
}

// Parse consumes a token sequence and produces the program's AST root.
func Parse(toks []lexer.Token) (*ast.Program, error) {
	return parser.Parse(toks)
}

// Compile tokenizes and parses source text in one step.
func Compile(source string) (*ast.Program, error) {
	toks, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

// Interpret constructs a fresh, ready interpreter handle for program.
func Interpret(program *ast.Program) *interp.Handle {
	return interp.New(program)
}
