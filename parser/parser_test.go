package parser_test

import (
	"testing"

	"github.com/algolang/algolang/ast"
	"github.com/algolang/algolang/lexer"
	"github.com/algolang/algolang/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return prog
}

func TestParseEmptyProgram(t *testing.T) {
	prog := mustParse(t, "Algorithm H Begin End")
	if prog.Name != "H" {
		t.Fatalf("unexpected name: %s", prog.Name)
	}
	if len(prog.Body.Statements) != 0 {
		t.Fatalf("expected empty body")
	}
}

func TestParseVarDeclsAndArray(t *testing.T) {
	src := `
Algorithm H
Var
	a, b : Integer
	grid : array [3][3] of Integer
Begin
End
`
	prog := mustParse(t, src)
	if len(prog.Vars) != 2 {
		t.Fatalf("expected 2 var decl groups, got %d", len(prog.Vars))
	}
	if prog.Vars[0].Names[0] != "a" || prog.Vars[0].Names[1] != "b" {
		t.Fatalf("unexpected names: %v", prog.Vars[0].Names)
	}
	if !prog.Vars[1].IsArray() || len(prog.Vars[1].Dims) != 2 {
		t.Fatalf("expected a 2-dim array decl, got %+v", prog.Vars[1])
	}
}

func TestParseIfWhileFor(t *testing.T) {
	src := `
Algorithm H
Var x : Integer
Begin
	If x > 0 Then
		Write(x)
	Else
		Write(0)
	EndIf
	While x < 10 Do
		x := x + 1
	EndWhile
	For x := 1 To 10 Step 2 Do
		Write(x)
	EndFor
End
`
	prog := mustParse(t, src)
	if len(prog.Body.Statements) != 3 {
		t.Fatalf("expected 3 top-level statements, got %d", len(prog.Body.Statements))
	}
	ifStmt, ok := prog.Body.Statements[0].(*ast.If)
	if !ok || ifStmt.Else == nil {
		t.Fatalf("expected an If with an Else block")
	}
	forStmt, ok := prog.Body.Statements[2].(*ast.For)
	if !ok || forStmt.Step == nil {
		t.Fatalf("expected a For statement with a Step clause")
	}
}

func TestParseFunctionAndProcedureDecls(t *testing.T) {
	src := `
Algorithm H
Function Add(a : Integer, b : Integer) : Integer
Begin
	Return a + b
EndFunction
Procedure Greet(name : String)
Begin
	Write(name)
EndProcedure
Begin
End
`
	prog := mustParse(t, src)
	fn, ok := prog.Functions["ADD"]
	if !ok {
		t.Fatalf("expected function ADD to be registered")
	}
	if len(fn.Params) != 2 || fn.ReturnType != "Integer" {
		t.Fatalf("unexpected function signature: %+v", fn)
	}
	if _, ok := prog.Procedures["GREET"]; !ok {
		t.Fatalf("expected procedure GREET to be registered")
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	prog := mustParse(t, "Algorithm H Var r : Boolean Begin r := 1 + 2 * 3 = 7 And Not False End")
	a := prog.Body.Statements[0].(*ast.Assignment)
	and, ok := a.Value.(*ast.BinaryOp)
	if !ok || and.Op != ast.OpAnd {
		t.Fatalf("expected And at the root, got %+v", a.Value)
	}
	eq, ok := and.Left.(*ast.BinaryOp)
	if !ok || eq.Op != ast.OpEq {
		t.Fatalf("expected '=' as the left operand of And, got %+v", and.Left)
	}
	add, ok := eq.Left.(*ast.BinaryOp)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("expected '+' as the left operand of '=', got %+v", eq.Left)
	}
	if mul, ok := add.Right.(*ast.BinaryOp); !ok || mul.Op != ast.OpMul {
		t.Fatalf("expected '*' as the right operand of '+', got %+v", add.Right)
	}
	if not, ok := and.Right.(*ast.UnaryOp); !ok || not.Op != ast.OpNot {
		t.Fatalf("expected Not as the right operand of And, got %+v", and.Right)
	}
}

func TestAssignmentFormsProduceEquivalentAST(t *testing.T) {
	variants := []string{"x := 1", "x <- 1", "x ← 1"}
	var shapes []string
	for _, stmt := range variants {
		src := "Algorithm H Var x : Integer Begin " + stmt + " End"
		prog := mustParse(t, src)
		a := prog.Body.Statements[0].(*ast.Assignment)
		lit := a.Value.(*ast.Literal)
		shapes = append(shapes, a.Target.(*ast.Identifier).Name)
		if lit.Num != 1 {
			t.Fatalf("unexpected literal value: %v", lit.Num)
		}
	}
	for _, s := range shapes {
		if s != "x" {
			t.Fatalf("unexpected target name: %s", s)
		}
	}
}

func TestParseDuplicateFunctionNameIsError(t *testing.T) {
	src := `
Algorithm H
Function F() : Integer Begin Return 1 EndFunction
Function f() : Integer Begin Return 2 EndFunction
Begin End
`
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if _, err := parser.Parse(toks); err == nil {
		t.Fatalf("expected a duplicate-name parse error")
	}
}

func TestParseErrorCarriesLine(t *testing.T) {
	src := "Algorithm H\nBegin\nWrite(1\nEnd"
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	_, err = parser.Parse(toks)
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	pe, ok := err.(*parser.ParseError)
	if !ok {
		t.Fatalf("expected *parser.ParseError, got %T", err)
	}
	if pe.Line == 0 {
		t.Fatalf("expected a nonzero line number")
	}
}
