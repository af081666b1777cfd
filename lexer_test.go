// lexer_test.go
package pawx

import (
	"reflect"
	"strings"
	"testing"
)

func toks(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer(src)
	ts, err := l.Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	return ts
}

func typesWithoutEOF(tokens []Token) []TokenType {
	if len(tokens) == 0 {
		return nil
	}
	end := len(tokens)
	if tokens[end-1].Type == EOF {
		end--
	}
	out := make([]TokenType, 0, end)
	for i := 0; i < end; i++ {
		out = append(out, tokens[i].Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	got := toks(t, src)
	gotTypes := typesWithoutEOF(got)
	if !reflect.DeepEqual(gotTypes, want) {
		t.Fatalf("\nsource:\n%s\nwant types:\n%v\ngot types:\n%v\n", src, want, gotTypes)
	}
	return got
}

func Test_Lexer_Declaration(t *testing.T) {
	src := `snuggle name = "Trouble";`
	got := wantTypes(t, src, []TokenType{
		SNUGGLE, ID, ASSIGN, STRING, SEMI,
	})
	if got[1].Lexeme != "name" {
		t.Fatalf("identifier lexeme: got %q", got[1].Lexeme)
	}
	if got[3].Literal.(string) != "Trouble" {
		t.Fatalf("string literal: got %v", got[3].Literal)
	}
}

func Test_Lexer_Keywords(t *testing.T) {
	src := `snuggle den lair purr zoom nap try catch finally throw new clowder inherits static get set this break continue if else while return`
	wantTypes(t, src, []TokenType{
		SNUGGLE, DEN, LAIR, PURR, ZOOM, NAP, TRY, CATCH, FINALLY, THROW,
		NEW, CLOWDER, INHERITS, STATIC, GET, SET, THIS, BREAK, CONTINUE,
		IF, ELSE, WHILE, RETURN,
	})
}

func Test_Lexer_Operators(t *testing.T) {
	src := `a == b === c != d !== e <= >= < > && || ! ++ -- ->`
	wantTypes(t, src, []TokenType{
		ID, EQ, ID, EQ_STRICT, ID, NEQ, ID, NEQ_STRICT, ID,
		LESS_EQ, GREATER_EQ, LESS, GREATER, AND_AND, OR_OR, BANG,
		INCR, DECR, ARROW,
	})
}

func Test_Lexer_Numbers_AllFloat64(t *testing.T) {
	got := wantTypes(t, `42 3.14 0.5`, []TokenType{NUMBER, NUMBER, NUMBER})
	want := []float64{42, 3.14, 0.5}
	for i, w := range want {
		if got[i].Literal.(float64) != w {
			t.Fatalf("number %d: want %v, got %v", i, w, got[i].Literal)
		}
	}
}

func Test_Lexer_Booleans_And_Null(t *testing.T) {
	got := wantTypes(t, `true false null`, []TokenType{BOOLEAN, BOOLEAN, NULL})
	if got[0].Literal.(bool) != true || got[1].Literal.(bool) != false {
		t.Fatalf("boolean literals: %v, %v", got[0].Literal, got[1].Literal)
	}
}

func Test_Lexer_String_Escapes(t *testing.T) {
	got := toks(t, `"a\n\t\"\\b"`)
	if got[0].Literal.(string) != "a\n\t\"\\b" {
		t.Fatalf("escapes: got %q", got[0].Literal)
	}

	got = toks(t, `'single "quoted"'`)
	if got[0].Literal.(string) != `single "quoted"` {
		t.Fatalf("single-quoted: got %q", got[0].Literal)
	}
}

func Test_Lexer_Comments_Skipped(t *testing.T) {
	src := `
// a line comment
snuggle x = 1; /* block
spanning lines */ purr x;
`
	wantTypes(t, src, []TokenType{
		SNUGGLE, ID, ASSIGN, NUMBER, SEMI, PURR, ID, SEMI,
	})
}

func Test_Lexer_UnterminatedString_Fails(t *testing.T) {
	_, err := NewLexer(`snuggle s = "oops`).Scan()
	if err == nil {
		t.Fatalf("want lex error for unterminated string")
	}
	if !strings.Contains(err.Error(), "LEX ERROR") {
		t.Fatalf("want LEX ERROR, got: %v", err)
	}
}

func Test_Lexer_UnterminatedBlockComment_Fails(t *testing.T) {
	_, err := NewLexer("snuggle x = 1; /* never closed").Scan()
	if err == nil {
		t.Fatalf("want lex error for unterminated block comment")
	}
}

func Test_Lexer_LoneAmpersand_Suggests(t *testing.T) {
	_, err := NewLexer(`a & b`).Scan()
	if err == nil {
		t.Fatalf("want lex error for lone '&'")
	}
	if !strings.Contains(err.Error(), "&&") {
		t.Fatalf("error should suggest '&&', got: %v", err)
	}
}

func Test_Lexer_Positions(t *testing.T) {
	src := "snuggle x = 1;\npurr x;"
	got := toks(t, src)

	// columns are 0-based; snuggle starts the first line, purr the second
	if got[0].Line != 1 || got[0].Col != 0 {
		t.Fatalf("first token at %d:%d, want 1:0", got[0].Line, got[0].Col)
	}
	var purrTok *Token
	for i := range got {
		if got[i].Type == PURR {
			purrTok = &got[i]
		}
	}
	if purrTok == nil || purrTok.Line != 2 || purrTok.Col != 0 {
		t.Fatalf("purr position: %+v", purrTok)
	}
}

func Test_Lexer_Columns_AcrossLine(t *testing.T) {
	// identifier and number scanners rewind to the token start before
	// re-consuming; the columns of everything after them must not drift
	got := toks(t, "snuggle x = 1;")
	wantCols := []int{0, 8, 10, 12, 13}
	for i, w := range wantCols {
		if got[i].Col != w {
			t.Fatalf("token %d (%q) at col %d, want %d", i, got[i].Lexeme, got[i].Col, w)
		}
	}
}

func Test_Lexer_Columns_AfterStringLiteral(t *testing.T) {
	got := toks(t, `purr "hi" + x;`)
	wantCols := []int{0, 5, 10, 12, 13}
	for i, w := range wantCols {
		if got[i].Col != w {
			t.Fatalf("token %d (%q) at col %d, want %d", i, got[i].Lexeme, got[i].Col, w)
		}
	}
}

func Test_Lexer_EOF_Terminates(t *testing.T) {
	got := toks(t, "x")
	if got[len(got)-1].Type != EOF {
		t.Fatalf("stream must end with EOF, got %v", got[len(got)-1].Type)
	}
}
