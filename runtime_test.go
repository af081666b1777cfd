// runtime_test.go
package pawx

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_Runtime_RunScript_PrintsAndSucceeds(t *testing.T) {
	rt := NewRuntime()
	var buf bytes.Buffer
	rt.IP.Out = &buf
	if err := rt.RunScript("t.pawx", `purr "hello";`); err != nil {
		t.Fatalf("run: %v", err)
	}
	if buf.String() != "hello\n" {
		t.Fatalf("output: %q", buf.String())
	}
}

func Test_Runtime_RunScript_ParseError_NamesSource(t *testing.T) {
	rt := NewRuntime()
	err := rt.RunScript("broken.pawx", `snuggle x = ;`)
	if err == nil {
		t.Fatalf("want parse error")
	}
	if !strings.Contains(err.Error(), "PARSE ERROR in broken.pawx") {
		t.Fatalf("got: %v", err)
	}
}

func Test_Runtime_RunScript_DrainsAsyncWork(t *testing.T) {
	rt := NewRuntime()
	var buf bytes.Buffer
	rt.IP.Out = &buf
	src := `
snuggle f = (zoom () -> { return "later"; })();
f.then((v) -> { purr v; });
`
	if err := rt.RunScript("t.pawx", src); err != nil {
		t.Fatalf("run: %v", err)
	}
	if buf.String() != "later\n" {
		t.Fatalf("output: %q", buf.String())
	}
}

func Test_Runtime_RunScript_ReportsUnhandledRejection(t *testing.T) {
	rt := NewRuntime()
	err := rt.RunScript("t.pawx", `(zoom () -> { throw "lost"; })();`)
	if err == nil {
		t.Fatalf("want rejection error")
	}
	if !strings.Contains(err.Error(), "uncaught (in future)") || !strings.Contains(err.Error(), "lost") {
		t.Fatalf("got: %v", err)
	}
}

func Test_Runtime_Eval_PersistsAcrossCalls(t *testing.T) {
	rt := NewRuntime()
	if _, err := rt.Eval(`snuggle total = 40;`); err != nil {
		t.Fatalf("first: %v", err)
	}
	v, err := rt.Eval(`total + 2;`)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	wantNum(t, v, 42)
}

func Test_Runtime_RunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.pawx")
	if err := os.WriteFile(path, []byte(`purr 1 + 1;`), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	rt := NewRuntime()
	var buf bytes.Buffer
	rt.IP.Out = &buf
	if err := rt.RunFile(path); err != nil {
		t.Fatalf("run: %v", err)
	}
	if buf.String() != "2\n" {
		t.Fatalf("output: %q", buf.String())
	}
}

func Test_Runtime_RunFile_Missing(t *testing.T) {
	rt := NewRuntime()
	if err := rt.RunFile(filepath.Join(t.TempDir(), "nope.pawx")); err == nil {
		t.Fatalf("want error for missing file")
	}
}
