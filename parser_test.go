// parser_test.go
package pawx

import (
	"strings"
	"testing"
)

func parseProg(t *testing.T, src string) S {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if tag(prog) != "prog" {
		t.Fatalf("root tag: got %q", tag(prog))
	}
	return prog
}

// firstStmt returns the first statement of the parsed program.
func firstStmt(t *testing.T, src string) S {
	t.Helper()
	prog := parseProg(t, src)
	if len(prog) < 2 {
		t.Fatalf("empty program for %q", src)
	}
	return prog[1].(S)
}

// exprOf unwraps an ("expr", e, pos) statement.
func exprOf(t *testing.T, src string) S {
	t.Helper()
	st := firstStmt(t, src)
	if tag(st) != "expr" {
		t.Fatalf("want expr statement, got %q", tag(st))
	}
	return st[1].(S)
}

func Test_Parser_Declaration(t *testing.T) {
	st := firstStmt(t, `snuggle x = 42;`)
	if tag(st) != "decl" {
		t.Fatalf("tag: %q", tag(st))
	}
	if st[1].(string) != "x" {
		t.Fatalf("name: %v", st[1])
	}
	val := st[2].(S)
	if tag(val) != "num" || val[1].(float64) != 42 {
		t.Fatalf("value: %v", val)
	}
}

func Test_Parser_Declaration_NoInitialiser(t *testing.T) {
	st := firstStmt(t, `snuggle x;`)
	if tag(st) != "decl" {
		t.Fatalf("tag: %q", tag(st))
	}
	if st[2] != nil {
		t.Fatalf("want nil initialiser, got %v", st[2])
	}
}

func Test_Parser_DenAndLair_AreDeclarations(t *testing.T) {
	for _, kw := range []string{"den", "lair"} {
		st := firstStmt(t, kw+` x = 1;`)
		if tag(st) != "decl" {
			t.Fatalf("%s: tag %q", kw, tag(st))
		}
	}
}

func Test_Parser_Precedence_MulBeforeAdd(t *testing.T) {
	e := exprOf(t, `1 + 2 * 3;`)
	if tag(e) != "binop" || e[1].(string) != "+" {
		t.Fatalf("root: %v", e)
	}
	rhs := e[3].(S)
	if tag(rhs) != "binop" || rhs[1].(string) != "*" {
		t.Fatalf("rhs should be the product: %v", rhs)
	}
}

func Test_Parser_Precedence_ComparisonBelowLogic(t *testing.T) {
	e := exprOf(t, `a < b && c;`)
	if tag(e) != "logic" || e[1].(string) != "&&" {
		t.Fatalf("root: %v", e)
	}
	lhs := e[2].(S)
	if tag(lhs) != "binop" || lhs[1].(string) != "<" {
		t.Fatalf("lhs: %v", lhs)
	}
}

func Test_Parser_Grouping_Vs_Tuple(t *testing.T) {
	// (1 + 2) is plain grouping
	e := exprOf(t, `(1 + 2);`)
	if tag(e) != "binop" {
		t.Fatalf("grouping: %v", e)
	}
	// (1, 2) is a tuple literal
	e = exprOf(t, `(1, 2);`)
	if tag(e) != "tuple" || len(e) != 3 {
		t.Fatalf("tuple: %v", e)
	}
}

func Test_Parser_Lambda(t *testing.T) {
	e := exprOf(t, `(a, b) -> { return a + b; };`)
	if tag(e) != "lambda" {
		t.Fatalf("tag: %q", tag(e))
	}
	params := e[1].([]string)
	if len(params) != 2 || params[0] != "a" || params[1] != "b" {
		t.Fatalf("params: %v", params)
	}
	if e[3].(bool) {
		t.Fatalf("plain lambda must not be async")
	}
}

func Test_Parser_ZoomLambda_IsAsync(t *testing.T) {
	e := exprOf(t, `zoom (x) -> { return x; };`)
	if tag(e) != "lambda" || !e[3].(bool) {
		t.Fatalf("zoom lambda: %v", e)
	}
}

func Test_Parser_ExpressionBodyLambda(t *testing.T) {
	e := exprOf(t, `(x) -> x * 2;`)
	if tag(e) != "lambda" {
		t.Fatalf("tag: %q", tag(e))
	}
	body := e[2].(S)
	if tag(body) != "block" {
		t.Fatalf("body should be wrapped in a block: %v", body)
	}
}

func Test_Parser_CallChain(t *testing.T) {
	e := exprOf(t, `a.b(1).c;`)
	if tag(e) != "get" || e[2].(string) != "c" {
		t.Fatalf("outer: %v", e)
	}
	call := e[1].(S)
	if tag(call) != "call" {
		t.Fatalf("inner: %v", call)
	}
}

func Test_Parser_Indexing(t *testing.T) {
	e := exprOf(t, `xs[0];`)
	if tag(e) != "idx" {
		t.Fatalf("tag: %q", tag(e))
	}
	e = exprOf(t, `xs[0] = 9;`)
	if tag(e) != "idxset" {
		t.Fatalf("tag: %q", tag(e))
	}
}

func Test_Parser_ObjectLiteral(t *testing.T) {
	// at statement position "{" opens a block, so bind the literal first
	st := firstStmt(t, `snuggle cat = { name: "Trouble", age: 3 };`)
	e := st[2].(S)
	if tag(e) != "object" || len(e) != 3 {
		t.Fatalf("object: %v", e)
	}
	p := e[1].(S)
	if tag(p) != "pair" || p[1].(string) != "name" {
		t.Fatalf("first pair: %v", p)
	}
}

func Test_Parser_IfElse(t *testing.T) {
	st := firstStmt(t, `if (x) { purr 1; } else { purr 2; }`)
	if tag(st) != "if" {
		t.Fatalf("tag: %q", tag(st))
	}
	if st[3] == nil {
		t.Fatalf("want else branch")
	}

	st = firstStmt(t, `if (x) { purr 1; }`)
	if st[3] != nil {
		t.Fatalf("want nil else, got %v", st[3])
	}
}

func Test_Parser_WhileBreakContinue(t *testing.T) {
	prog := parseProg(t, `while (x) { break; continue; }`)
	w := prog[1].(S)
	if tag(w) != "while" {
		t.Fatalf("tag: %q", tag(w))
	}
	body := w[2].(S)
	if tag(body[1].(S)) != "break" || tag(body[2].(S)) != "continue" {
		t.Fatalf("body: %v", body)
	}
}

func Test_Parser_TryCatchFinally(t *testing.T) {
	st := firstStmt(t, `try { a(); } catch (e) { b(); } finally { c(); }`)
	if tag(st) != "try" {
		t.Fatalf("tag: %q", tag(st))
	}
	if st[2].(string) != "e" {
		t.Fatalf("catch name: %v", st[2])
	}
	if st[3] == nil || st[4] == nil {
		t.Fatalf("want both catch and finally blocks")
	}
}

func Test_Parser_Clowder(t *testing.T) {
	src := `
clowder Cat inherits Animal {
    name = "unnamed";
    new(n) { this.name = n; }
    speak() { return "meow"; }
    static kind() { return "feline"; }
    get label { return this.name; }
    set label(v) { this.name = v; }
}
`
	st := firstStmt(t, src)
	if tag(st) != "clowder" {
		t.Fatalf("tag: %q", tag(st))
	}
	if st[1].(string) != "Cat" || st[2].(string) != "Animal" {
		t.Fatalf("names: %v %v", st[1], st[2])
	}
	members := st[3].(S)
	if tag(members) != "members" {
		t.Fatalf("members tag: %q", tag(members))
	}
	var kinds []string
	for _, m := range members[1:] {
		kinds = append(kinds, tag(m.(S)))
	}
	want := []string{"field", "method", "method", "method", "getter", "setter"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Fatalf("member kinds: %v", kinds)
	}
	// static flag sits on the third method
	static := members[4].(S)
	if !static[4].(bool) {
		t.Fatalf("static method not flagged: %v", static)
	}
}

func Test_Parser_New(t *testing.T) {
	e := exprOf(t, `new Cat("Trouble");`)
	if tag(e) != "new" || e[1].(string) != "Cat" {
		t.Fatalf("new: %v", e)
	}
}

func Test_Parser_PostfixIncrement(t *testing.T) {
	e := exprOf(t, `i++;`)
	if tag(e) != "postincr" {
		t.Fatalf("tag: %q", tag(e))
	}
	e = exprOf(t, `i--;`)
	if tag(e) != "postdecr" {
		t.Fatalf("tag: %q", tag(e))
	}
}

func Test_Parser_StatementPositions(t *testing.T) {
	prog := parseProg(t, "snuggle a = 1;\nsnuggle b = 2;")
	second := prog[2].(S)
	pos := second[len(second)-1].(Pos)
	if pos.Line != 2 {
		t.Fatalf("second statement line: %d", pos.Line)
	}
}

func Test_Parser_MissingSemicolon_Fails(t *testing.T) {
	_, err := Parse(`snuggle x = 1`)
	if err == nil {
		t.Fatalf("want parse error for missing ';'")
	}
	if !strings.Contains(err.Error(), "PARSE ERROR") {
		t.Fatalf("want PARSE ERROR, got: %v", err)
	}
}

func Test_Parser_Interactive_Incomplete(t *testing.T) {
	_, err := ParseInteractive(`if (x) {`)
	if err == nil {
		t.Fatalf("want error for truncated input")
	}
	if !IsIncomplete(err) {
		t.Fatalf("want incomplete diagnostic, got: %v", err)
	}

	// full Parse never reports incomplete
	_, err = Parse(`if (x) {`)
	if err == nil || IsIncomplete(err) {
		t.Fatalf("Parse should fail hard, got: %v", err)
	}
}

func Test_Parser_FunctionDeclaration(t *testing.T) {
	st := firstStmt(t, `purr add -> (a, b) -> { return a + b; }`)
	if tag(st) != "func" {
		t.Fatalf("tag: %q", tag(st))
	}
	if st[1].(string) != "add" {
		t.Fatalf("name: %v", st[1])
	}
	params := st[2].([]string)
	if len(params) != 2 || params[0] != "a" || params[1] != "b" {
		t.Fatalf("params: %v", params)
	}
	if tag(st[3].(S)) != "block" {
		t.Fatalf("body: %v", st[3])
	}
	if st[4].(bool) {
		t.Fatalf("plain purr declaration must not be async")
	}
}

func Test_Parser_AsyncFunctionDeclaration(t *testing.T) {
	st := firstStmt(t, `zoom purr fetch -> () -> { return 1; }`)
	if tag(st) != "func" {
		t.Fatalf("tag: %q", tag(st))
	}
	if st[1].(string) != "fetch" {
		t.Fatalf("name: %v", st[1])
	}
	if !st[4].(bool) {
		t.Fatalf("zoom purr declaration must be async")
	}
}

func Test_Parser_Purr_StillPrints(t *testing.T) {
	// purr followed by anything but "name ->" is the print statement
	st := firstStmt(t, `purr x;`)
	if tag(st) != "purr" {
		t.Fatalf("tag: %q", tag(st))
	}
	st = firstStmt(t, `purr x + 1;`)
	if tag(st) != "purr" {
		t.Fatalf("tag: %q", tag(st))
	}
}

func Test_Parser_FunctionDeclaration_RequiresParamList(t *testing.T) {
	_, err := Parse(`purr add -> { return 1; }`)
	if err == nil {
		t.Fatalf("want parse error when the parameter list is missing")
	}
	if !strings.Contains(err.Error(), "parameter list") {
		t.Fatalf("error should point at the parameter list, got: %v", err)
	}
}
