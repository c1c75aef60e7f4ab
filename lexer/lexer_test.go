package lexer_test

import (
	"testing"

	"github.com/algolang/algolang/lexer"
)

func kinds(toks []lexer.Token) []lexer.Kind {
	ks := make([]lexer.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestTokenizeKeywordsCaseInsensitive(t *testing.T) {
	a, err := lexer.Tokenize("Algorithm X Begin End")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	b, err := lexer.Tokenize("ALGORITHM X begin END")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	ka, kb := kinds(a), kinds(b)
	if len(ka) != len(kb) {
		t.Fatalf("length mismatch: %d vs %d", len(ka), len(kb))
	}
	for i := range ka {
		if ka[i] != kb[i] {
			t.Fatalf("kind mismatch at %d: %v vs %v", i, ka[i], kb[i])
		}
	}
	if a[1].Lexeme != "X" || b[1].Lexeme != "X" {
		t.Fatalf("identifier lexeme not preserved verbatim")
	}
}

func TestTokenizeAssignForms(t *testing.T) {
	for _, src := range []string{"x := 1", "x <- 1", "x ← 1"} {
		toks, err := lexer.Tokenize(src)
		if err != nil {
			t.Fatalf("tokenize(%q) failed: %v", src, err)
		}
		if toks[1].Kind != lexer.Assign {
			t.Fatalf("tokenize(%q): expected assign token, got %v", src, toks[1].Kind)
		}
	}
}

func TestTokenizeNumbersAndStrings(t *testing.T) {
	toks, err := lexer.Tokenize(`x := 3.1415 + "hi"`)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if toks[2].Kind != lexer.Number || toks[2].Lexeme != "3.1415" {
		t.Fatalf("unexpected number token: %+v", toks[2])
	}
	if toks[4].Kind != lexer.StringLit || toks[4].Lexeme != "hi" {
		t.Fatalf("unexpected string token: %+v", toks[4])
	}
}

func TestTokenizeComments(t *testing.T) {
	toks, err := lexer.Tokenize("x := 1 // trailing comment\ny := { a block comment } 2")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if toks[len(toks)-1].Kind != lexer.EOF {
		t.Fatalf("expected EOF sentinel at the end")
	}
	var numbers []string
	for _, tok := range toks {
		if tok.Kind == lexer.Number {
			numbers = append(numbers, tok.Lexeme)
		}
	}
	if len(numbers) != 2 || numbers[0] != "1" || numbers[1] != "2" {
		t.Fatalf("comments not skipped correctly: %v", numbers)
	}
}

func TestTokenizeLineTracking(t *testing.T) {
	toks, err := lexer.Tokenize("Algorithm X\nBegin\nWrite(1)\nEnd")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	var writeLine int
	for _, tok := range toks {
		if tok.Kind == lexer.KwWrite {
			writeLine = tok.Line
		}
	}
	if writeLine != 3 {
		t.Fatalf("expected Write on line 3, got %d", writeLine)
	}
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	_, err := lexer.Tokenize("x := 1 @ 2")
	if err == nil {
		t.Fatalf("expected a lexical error")
	}
	lexErr, ok := err.(*lexer.LexError)
	if !ok {
		t.Fatalf("expected *lexer.LexError, got %T", err)
	}
	if lexErr.Line != 1 {
		t.Fatalf("expected line 1, got %d", lexErr.Line)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := lexer.Tokenize("Algorithm H\nBegin\nWrite(\"hi\nEnd")
	if err == nil {
		t.Fatalf("expected a lexical error for unterminated string")
	}
	lexErr, ok := err.(*lexer.LexError)
	if !ok {
		t.Fatalf("expected *lexer.LexError, got %T", err)
	}
	if lexErr.Line != 3 {
		t.Fatalf("expected error on opening-quote line 3, got %d", lexErr.Line)
	}
}
