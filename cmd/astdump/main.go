// Command astdump parses an AlgoLang source file and prints a summary of
// its AST, for tooling/debugging use while authoring course programs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/algolang/algolang"
	"github.com/algolang/algolang/ast"
)

func main() {
	source := flag.String("source", "", "path to an AlgoLang source file")
	flag.Parse()

	if *source == "" {
		fmt.Fprintln(os.Stderr, "usage: astdump -source <file.algo>")
		os.Exit(2)
	}

	data, err := os.ReadFile(*source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}

	prog, err := algolang.Compile(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Algorithm %s\n", prog.Name)
	fmt.Printf("vars=%d\n", len(prog.Vars))
	for _, v := range prog.Vars {
		fmt.Printf("  %v : %s\n", v.Names, v.Type)
	}
	fmt.Printf("functions=%d procedures=%d\n", len(prog.Functions), len(prog.Procedures))
	dumpBlock(prog.Body, 0)
}

func dumpBlock(b *ast.Block, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	for i, stmt := range b.Statements {
		fmt.Printf("%spc %d %s\n", indent, i, describe(stmt))
		switch s := stmt.(type) {
		case *ast.If:
			dumpBlock(s.Then, depth+1)
			if s.Else != nil {
				fmt.Printf("%sElse\n", indent)
				dumpBlock(s.Else, depth+1)
			}
		case *ast.While:
			dumpBlock(s.Body, depth+1)
		case *ast.For:
			dumpBlock(s.Body, depth+1)
		}
	}
}

func describe(stmt ast.Statement) string {
	switch s := stmt.(type) {
	case *ast.Assignment:
		return fmt.Sprintf("Assignment line=%d", s.Line)
	case *ast.If:
		return fmt.Sprintf("If line=%d elseNil=%v", s.Line, s.Else == nil)
	case *ast.While:
		return fmt.Sprintf("While line=%d", s.Line)
	case *ast.For:
		return fmt.Sprintf("For var=%s line=%d", s.Var, s.Line)
	case *ast.IO:
		return fmt.Sprintf("IO dir=%v line=%d args=%d", s.Direction, s.Line, len(s.Args))
	case *ast.Return:
		return fmt.Sprintf("Return line=%d hasValue=%v", s.Line, s.Value != nil)
	case *ast.CallStmt:
		return fmt.Sprintf("Call %s line=%d args=%d", s.Name, s.Line, len(s.Args))
	default:
		return fmt.Sprintf("%T", stmt)
	}
}
