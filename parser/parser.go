// Package parser implements a recursive-descent parser over the AlgoLang
// token stream, producing the typed AST defined in package ast. Parsing
// is non-recovering: the first error terminates parsing.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/algolang/algolang/ast"
	"github.com/algolang/algolang/lexer"
)

// ParseError carries the line of the offending token and a human-readable
// expectation, shaped "Line <n>: <expectation>".
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Msg)
}

type parser struct {
	toks []lexer.Token
	pos  int
}

// Parse consumes a token sequence produced by lexer.Tokenize and returns
// the program's AST root.
func Parse(toks []lexer.Token) (*ast.Program, error) {
	p := &parser{toks: toks}
	return p.parseProgram()
}

func (p *parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *parser) curLine() int {
	return p.cur().Line
}

func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) check(k lexer.Kind) bool {
	return p.cur().Kind == k
}

func (p *parser) match(k lexer.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) consume(k lexer.Kind, expectation string) (lexer.Token, error) {
	if !p.check(k) {
		return lexer.Token{}, &ParseError{Line: p.curLine(), Msg: expectation}
	}
	return p.advance(), nil
}

// word matches a non-keyword identifier lexeme case-insensitively, used
// for the "array"/"of" soft keywords that the tokenizer does not reserve.
func (p *parser) word(w string) bool {
	return p.cur().Kind == lexer.Ident && strings.EqualFold(p.cur().Lexeme, w)
}

func (p *parser) matchWord(w string) bool {
	if p.word(w) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) parseProgram() (*ast.Program, error) {
	line := p.curLine()
	if _, err := p.consume(lexer.KwAlgorithm, "expected 'Algorithm'"); err != nil {
		return nil, err
	}
	nameTok, err := p.consume(lexer.Ident, "expected algorithm name")
	if err != nil {
		return nil, err
	}

	prog := &ast.Program{
		Name:       nameTok.Lexeme,
		Functions:  map[string]*ast.FunctionDecl{},
		Procedures: map[string]*ast.ProcedureDecl{},
		Line:       line,
	}

	if p.match(lexer.KwVar) {
		decls, err := p.parseVarDecls()
		if err != nil {
			return nil, err
		}
		prog.Vars = decls
	}

	for p.check(lexer.KwFunction) || p.check(lexer.KwProcedure) {
		if p.check(lexer.KwFunction) {
			fn, err := p.parseFunctionDecl()
			if err != nil {
				return nil, err
			}
			key := strings.ToUpper(fn.Name)
			if _, dup := prog.Functions[key]; dup {
				return nil, &ParseError{Line: fn.Line, Msg: fmt.Sprintf("duplicate function '%s'", fn.Name)}
			}
			if _, dup := prog.Procedures[key]; dup {
				return nil, &ParseError{Line: fn.Line, Msg: fmt.Sprintf("duplicate name '%s'", fn.Name)}
			}
			prog.Functions[key] = fn
		} else {
			proc, err := p.parseProcedureDecl()
			if err != nil {
				return nil, err
			}
			key := strings.ToUpper(proc.Name)
			if _, dup := prog.Procedures[key]; dup {
				return nil, &ParseError{Line: proc.Line, Msg: fmt.Sprintf("duplicate procedure '%s'", proc.Name)}
			}
			if _, dup := prog.Functions[key]; dup {
				return nil, &ParseError{Line: proc.Line, Msg: fmt.Sprintf("duplicate name '%s'", proc.Name)}
			}
			prog.Procedures[key] = proc
		}
	}

	if _, err := p.consume(lexer.KwBegin, "expected 'Begin'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(stopAt(lexer.KwEnd))
	if err != nil {
		return nil, err
	}
	prog.Body = body
	if _, err := p.consume(lexer.KwEnd, "expected 'End'"); err != nil {
		return nil, err
	}
	return prog, nil
}

func baseTypeName(k lexer.Kind) (string, bool) {
	switch k {
	case lexer.KwInteger:
		return "Integer", true
	case lexer.KwReal:
		return "Real", true
	case lexer.KwBoolean:
		return "Boolean", true
	case lexer.KwStringType:
		return "String", true
	case lexer.KwChar:
		return "Char", true
	}
	return "", false
}

func (p *parser) parseVarDecls() ([]ast.VarDecl, error) {
	var decls []ast.VarDecl
	for p.check(lexer.Ident) {
		line := p.curLine()
		names, err := p.parseNameList()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.Colon, "expected ':' in variable declaration"); err != nil {
			return nil, err
		}
		var dims []int
		if p.matchWord("array") {
			dims, err = p.parseDimList()
			if err != nil {
				return nil, err
			}
			if !p.matchWord("of") {
				return nil, &ParseError{Line: p.curLine(), Msg: "expected 'of' after array dimensions"}
			}
		}
		if !p.check(lexer.KwInteger) && !p.check(lexer.KwReal) && !p.check(lexer.KwBoolean) &&
			!p.check(lexer.KwStringType) && !p.check(lexer.KwChar) {
			return nil, &ParseError{Line: p.curLine(), Msg: "expected a type name"}
		}
		typeName, _ := baseTypeName(p.advance().Kind)
		decls = append(decls, ast.VarDecl{Names: names, Type: typeName, Dims: dims, Line: line})
	}
	return decls, nil
}

func (p *parser) parseNameList() ([]string, error) {
	tok, err := p.consume(lexer.Ident, "expected an identifier")
	if err != nil {
		return nil, err
	}
	names := []string{tok.Lexeme}
	for p.match(lexer.Comma) {
		tok, err := p.consume(lexer.Ident, "expected an identifier")
		if err != nil {
			return nil, err
		}
		names = append(names, tok.Lexeme)
	}
	return names, nil
}

func (p *parser) parseDimList() ([]int, error) {
	var dims []int
	if _, err := p.consume(lexer.LBracket, "expected '['"); err != nil {
		return nil, err
	}
	n, err := p.parseDimNumber()
	if err != nil {
		return nil, err
	}
	dims = append(dims, n)
	if _, err := p.consume(lexer.RBracket, "expected ']'"); err != nil {
		return nil, err
	}
	for p.check(lexer.LBracket) {
		p.advance()
		n, err := p.parseDimNumber()
		if err != nil {
			return nil, err
		}
		dims = append(dims, n)
		if _, err := p.consume(lexer.RBracket, "expected ']'"); err != nil {
			return nil, err
		}
	}
	return dims, nil
}

func (p *parser) parseDimNumber() (int, error) {
	tok, err := p.consume(lexer.Number, "expected a dimension size")
	if err != nil {
		return 0, err
	}
	n, _ := strconv.Atoi(tok.Lexeme)
	return n, nil
}

func (p *parser) parseParams() ([]ast.Param, error) {
	var params []ast.Param
	if p.check(lexer.RParen) {
		return params, nil
	}
	for {
		nameTok, err := p.consume(lexer.Ident, "expected a parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.Colon, "expected ':' after parameter name"); err != nil {
			return nil, err
		}
		if !p.check(lexer.KwInteger) && !p.check(lexer.KwReal) && !p.check(lexer.KwBoolean) &&
			!p.check(lexer.KwStringType) && !p.check(lexer.KwChar) {
			return nil, &ParseError{Line: p.curLine(), Msg: "expected a type name"}
		}
		typeName, _ := baseTypeName(p.advance().Kind)
		params = append(params, ast.Param{Name: nameTok.Lexeme, Type: typeName})
		if !p.match(lexer.Comma) {
			break
		}
	}
	return params, nil
}

func (p *parser) parseFunctionDecl() (*ast.FunctionDecl, error) {
	line := p.curLine()
	p.advance() // Function
	nameTok, err := p.consume(lexer.Ident, "expected a function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.LParen, "expected '('"); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.RParen, "expected ')'"); err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.Colon, "expected ':' before return type"); err != nil {
		return nil, err
	}
	if !p.check(lexer.KwInteger) && !p.check(lexer.KwReal) && !p.check(lexer.KwBoolean) &&
		!p.check(lexer.KwStringType) && !p.check(lexer.KwChar) {
		return nil, &ParseError{Line: p.curLine(), Msg: "expected a return type"}
	}
	retType, _ := baseTypeName(p.advance().Kind)

	var vars []ast.VarDecl
	if p.match(lexer.KwVar) {
		vars, err = p.parseVarDecls()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.KwBegin, "expected 'Begin'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(stopAt(lexer.KwEndFunction))
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.KwEndFunction, "expected 'EndFunction'"); err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{Name: nameTok.Lexeme, Params: params, ReturnType: retType, Vars: vars, Body: body, Line: line}, nil
}

func (p *parser) parseProcedureDecl() (*ast.ProcedureDecl, error) {
	line := p.curLine()
	p.advance() // Procedure
	nameTok, err := p.consume(lexer.Ident, "expected a procedure name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.LParen, "expected '('"); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.RParen, "expected ')'"); err != nil {
		return nil, err
	}
	var vars []ast.VarDecl
	if p.match(lexer.KwVar) {
		vars, err = p.parseVarDecls()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.KwBegin, "expected 'Begin'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(stopAt(lexer.KwEndProcedure))
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.KwEndProcedure, "expected 'EndProcedure'"); err != nil {
		return nil, err
	}
	return &ast.ProcedureDecl{Name: nameTok.Lexeme, Params: params, Vars: vars, Body: body, Line: line}, nil
}

func stopAt(kinds ...lexer.Kind) func(lexer.Kind) bool {
	return func(k lexer.Kind) bool {
		for _, s := range kinds {
			if k == s {
				return true
			}
		}
		return false
	}
}

func (p *parser) parseBlock(stop func(lexer.Kind) bool) (*ast.Block, error) {
	line := p.curLine()
	block := &ast.Block{Line: line}
	for !stop(p.cur().Kind) && p.cur().Kind != lexer.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	return block, nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	line := p.curLine()
	switch p.cur().Kind {
	case lexer.KwRead:
		p.advance()
		if _, err := p.consume(lexer.LParen, "expected '(' after 'Read'"); err != nil {
			return nil, err
		}
		var args []ast.Expr
		for {
			ref, err := p.parseRef()
			if err != nil {
				return nil, err
			}
			args = append(args, ref)
			if !p.match(lexer.Comma) {
				break
			}
		}
		if _, err := p.consume(lexer.RParen, "expected ')'"); err != nil {
			return nil, err
		}
		return &ast.IO{Direction: ast.DirRead, Args: args, Line: line}, nil

	case lexer.KwWrite:
		p.advance()
		if _, err := p.consume(lexer.LParen, "expected '(' after 'Write'"); err != nil {
			return nil, err
		}
		args, err := p.parseExprListUntil(lexer.RParen)
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.RParen, "expected ')'"); err != nil {
			return nil, err
		}
		return &ast.IO{Direction: ast.DirWrite, Args: args, Line: line}, nil

	case lexer.KwIf:
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.KwThen, "expected 'Then'"); err != nil {
			return nil, err
		}
		thenBlock, err := p.parseBlock(stopAt(lexer.KwElse, lexer.KwEndIf))
		if err != nil {
			return nil, err
		}
		var elseBlock *ast.Block
		if p.match(lexer.KwElse) {
			elseBlock, err = p.parseBlock(stopAt(lexer.KwEndIf))
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.consume(lexer.KwEndIf, "expected 'EndIf'"); err != nil {
			return nil, err
		}
		return &ast.If{Cond: cond, Then: thenBlock, Else: elseBlock, Line: line}, nil

	case lexer.KwWhile:
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.KwDo, "expected 'Do'"); err != nil {
			return nil, err
		}
		body, err := p.parseBlock(stopAt(lexer.KwEndWhile))
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.KwEndWhile, "expected 'EndWhile'"); err != nil {
			return nil, err
		}
		return &ast.While{Cond: cond, Body: body, Line: line}, nil

	case lexer.KwFor:
		p.advance()
		nameTok, err := p.consume(lexer.Ident, "expected a loop variable")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.Assign, "expected ':=' (or '<-'/'←')"); err != nil {
			return nil, err
		}
		start, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.KwTo, "expected 'To'"); err != nil {
			return nil, err
		}
		end, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		var step ast.Expr
		if p.match(lexer.KwStep) {
			step, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.consume(lexer.KwDo, "expected 'Do'"); err != nil {
			return nil, err
		}
		body, err := p.parseBlock(stopAt(lexer.KwEndFor))
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.KwEndFor, "expected 'EndFor'"); err != nil {
			return nil, err
		}
		return &ast.For{Var: nameTok.Lexeme, Start: start, End: end, Step: step, Body: body, Line: line}, nil

	case lexer.KwReturn:
		p.advance()
		var value ast.Expr
		if p.startsExpr() {
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			value = v
		}
		return &ast.Return{Value: value, Line: line}, nil

	case lexer.Ident:
		if p.toks[p.pos+1].Kind == lexer.LParen {
			name := p.advance().Lexeme
			p.advance() // '('
			args, err := p.parseExprListUntil(lexer.RParen)
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(lexer.RParen, "expected ')'"); err != nil {
				return nil, err
			}
			return &ast.CallStmt{Name: name, Args: args, Line: line}, nil
		}
		target, err := p.parseRef()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.Assign, "expected ':=' (or '<-'/'←')"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Target: target, Value: value, Line: line}, nil
	}

	return nil, &ParseError{Line: line, Msg: "expected a statement"}
}

// startsExpr reports whether the current token can begin an expression,
// used to decide whether a bare 'Return' carries a value.
func (p *parser) startsExpr() bool {
	switch p.cur().Kind {
	case lexer.Number, lexer.StringLit, lexer.Ident, lexer.LParen, lexer.Minus, lexer.KwNot:
		return true
	}
	return false
}

func (p *parser) parseExprListUntil(end lexer.Kind) ([]ast.Expr, error) {
	var exprs []ast.Expr
	if p.check(end) {
		return exprs, nil
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !p.match(lexer.Comma) {
			break
		}
	}
	return exprs, nil
}

// parseRef parses `ident { "[" expr "]" }`, yielding an *ast.Identifier
// or *ast.ArrayAccess — usable both as an assignment/Read target and as
// a plain expression.
func (p *parser) parseRef() (ast.Expr, error) {
	line := p.curLine()
	tok, err := p.consume(lexer.Ident, "expected an identifier")
	if err != nil {
		return nil, err
	}
	if !p.check(lexer.LBracket) {
		return &ast.Identifier{Name: tok.Lexeme, Line: line}, nil
	}
	var idx []ast.Expr
	for p.match(lexer.LBracket) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		idx = append(idx, e)
		if _, err := p.consume(lexer.RBracket, "expected ']'"); err != nil {
			return nil, err
		}
	}
	return &ast.ArrayAccess{Name: tok.Lexeme, Indices: idx, Line: line}, nil
}

// Expression parsing: precedence climbing.
// Or(1) < And(2) < (=,<>)(3) < (<,<=,>,>=)(4) < (+,-)(5) < (*,/,Mod,Div)(6)

func binPrec(k lexer.Kind) (int, ast.BinOpKind, bool) {
	switch k {
	case lexer.KwOr:
		return 1, ast.OpOr, true
	case lexer.KwAnd:
		return 2, ast.OpAnd, true
	case lexer.Eq:
		return 3, ast.OpEq, true
	case lexer.Neq:
		return 3, ast.OpNeq, true
	case lexer.Lt:
		return 4, ast.OpLt, true
	case lexer.Lte:
		return 4, ast.OpLte, true
	case lexer.Gt:
		return 4, ast.OpGt, true
	case lexer.Gte:
		return 4, ast.OpGte, true
	case lexer.Plus:
		return 5, ast.OpAdd, true
	case lexer.Minus:
		return 5, ast.OpSub, true
	case lexer.Star:
		return 6, ast.OpMul, true
	case lexer.Slash:
		return 6, ast.OpDiv, true
	case lexer.KwMod:
		return 6, ast.OpMod, true
	case lexer.KwDiv:
		return 6, ast.OpIDiv, true
	}
	return 0, 0, false
}

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseBinary(1)
}

func (p *parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, op, ok := binPrec(p.cur().Kind)
		if !ok || prec < minPrec {
			return left, nil
		}
		line := p.curLine()
		p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Op: op, Right: right, Line: line}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	switch p.cur().Kind {
	case lexer.KwNot:
		line := p.curLine()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.OpNot, Operand: operand, Line: line}, nil
	case lexer.Minus:
		line := p.curLine()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.OpNeg, Operand: operand, Line: line}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	line := p.curLine()
	switch p.cur().Kind {
	case lexer.Number:
		tok := p.advance()
		n, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &ast.Literal{Kind: ast.LitNumber, Num: n, Line: line}, nil
	case lexer.StringLit:
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitString, Str: tok.Lexeme, Line: line}, nil
	case lexer.LParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.RParen, "expected ')'"); err != nil {
			return nil, err
		}
		return e, nil
	case lexer.Ident:
		if strings.EqualFold(p.cur().Lexeme, "true") {
			p.advance()
			return &ast.Literal{Kind: ast.LitBoolean, Bool: true, Line: line}, nil
		}
		if strings.EqualFold(p.cur().Lexeme, "false") {
			p.advance()
			return &ast.Literal{Kind: ast.LitBoolean, Bool: false, Line: line}, nil
		}
		if p.toks[p.pos+1].Kind == lexer.LParen {
			name := p.advance().Lexeme
			p.advance() // '('
			args, err := p.parseExprListUntil(lexer.RParen)
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(lexer.RParen, "expected ')'"); err != nil {
				return nil, err
			}
			return &ast.CallExpr{Name: name, Args: args, Line: line}, nil
		}
		return p.parseRef()
	}
	return nil, &ParseError{Line: line, Msg: "expected an expression"}
}
