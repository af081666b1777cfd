// builtin_regex_test.go
package pawx

import (
	"strings"
	"testing"
)

func Test_Builtin_Regex_CreateAndTest(t *testing.T) {
	wantBool(t, evalSrc(t, `Regex.test(Regex.create("^cat"), "catnap");`), true)
	wantBool(t, evalSrc(t, `Regex.test(Regex.create("^cat"), "dog");`), false)
}

func Test_Builtin_Regex_IsFirstClass(t *testing.T) {
	v := evalSrc(t, `
		snuggle r = Regex.create("[a-z]+[0-9]");
		type(r);
	`)
	wantStr(t, v, "regex")

	v = evalSrc(t, `
		snuggle r = Regex.create("^paw");
		snuggle hits = [];
		Array.push(hits, Regex.test(r, "pawx"));
		Array.push(hits, Regex.test(r, "claw"));
		"" + hits;
	`)
	wantStr(t, v, "[true, false]")
}

func Test_Builtin_Regex_InvalidPattern_Fails(t *testing.T) {
	e := evalErr(t, `Regex.create("[");`)
	if !strings.Contains(e.Msg, "Regex.create") || !strings.Contains(e.Msg, "invalid pattern") {
		t.Fatalf("got %v", e)
	}
}

func Test_Builtin_Regex_Test_RequiresRegex(t *testing.T) {
	e := evalErr(t, `Regex.test("^cat", "catnap");`)
	if e.Kind != DiagType || !strings.Contains(e.Msg, "Regex.test expects regex: Regex") {
		t.Fatalf("got %v", e)
	}
}

func Test_Builtin_Regex_Stringify(t *testing.T) {
	wantStr(t, evalSrc(t, `"" + Regex.create("^cat");`), "[regex ^cat]")
}
