// builtin_fs_test.go
package pawx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_Fs_WriteRead_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	src := fmt.Sprintf(`
Fs.writeText(%q, "hello cats\n");
Fs.readText(%q);
`, path, path)
	wantStr(t, evalSrc(t, src), "hello cats\n")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file missing: %v", err)
	}
	if string(raw) != "hello cats\n" {
		t.Fatalf("on disk: %q", raw)
	}
}

func Test_Fs_AppendText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	src := fmt.Sprintf(`
Fs.writeText(%q, "a");
Fs.appendText(%q, "b");
Fs.appendText(%q, "c");
Fs.readText(%q);
`, path, path, path, path)
	wantStr(t, evalSrc(t, src), "abc")
}

func Test_Fs_Latin1_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "l1.txt")
	src := fmt.Sprintf(`
Fs.writeText(%q, "café", "latin1");
Fs.readText(%q, "latin1");
`, path, path)
	wantStr(t, evalSrc(t, src), "café")

	// on disk é is the single byte 0xE9, not UTF-8
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(raw) != 4 || raw[3] != 0xE9 {
		t.Fatalf("latin1 bytes: %v", raw)
	}
}

func Test_Fs_ReadText_InvalidUTF8_Fails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte{0xFF, 0xFE}, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	e := evalErr(t, fmt.Sprintf(`Fs.readText(%q);`, path))
	if !strings.Contains(e.Msg, "invalid UTF-8") {
		t.Fatalf("msg: %q", e.Msg)
	}
}

func Test_Fs_UnsupportedEncoding_Fails(t *testing.T) {
	e := evalErr(t, `Fs.readText("x.txt", "ebcdic");`)
	if !strings.Contains(e.Msg, "unsupported encoding") {
		t.Fatalf("msg: %q", e.Msg)
	}
}

func Test_Fs_ReadText_Missing_NamesOperation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.txt")
	e := evalErr(t, fmt.Sprintf(`Fs.readText(%q);`, path))
	if !strings.Contains(e.Msg, "Fs.readText") {
		t.Fatalf("msg: %q", e.Msg)
	}
}

func Test_Fs_Bytes_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	src := fmt.Sprintf(`
snuggle b = Fs.readBytes(%q);
(b.length, b[0], b[2]);
`, path)
	if err := os.WriteFile(path, []byte{7, 0, 255}, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	tup := evalSrc(t, src).Data.([]Value)
	wantNum(t, tup[0], 3)
	wantNum(t, tup[1], 7)
	wantNum(t, tup[2], 255)
}

func Test_Fs_Exists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "here.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	wantBool(t, evalSrc(t, fmt.Sprintf(`Fs.exists(%q);`, path)), true)
	wantBool(t, evalSrc(t, fmt.Sprintf(`Fs.exists(%q);`, filepath.Join(dir, "gone"))), false)
}

func Test_Fs_Mkdir_Readdir_Rm(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")

	// non-recursive mkdir cannot create missing parents
	e := evalErr(t, fmt.Sprintf(`Fs.mkdir(%q);`, nested))
	if !strings.Contains(e.Msg, "Fs.mkdir") {
		t.Fatalf("msg: %q", e.Msg)
	}

	src := fmt.Sprintf(`
Fs.mkdir(%q, true);
Fs.writeText(%q, "1");
Fs.writeText(%q, "2");
Array.join(Array.sort(Fs.readdir(%q)), ",");
`, nested,
		filepath.Join(nested, "one.txt"),
		filepath.Join(nested, "two.txt"),
		nested)
	wantStr(t, evalSrc(t, src), "one.txt,two.txt")

	// non-recursive rm refuses a non-empty directory
	e = evalErr(t, fmt.Sprintf(`Fs.rm(%q);`, nested))
	if !strings.Contains(e.Msg, "Fs.rm") {
		t.Fatalf("msg: %q", e.Msg)
	}
	evalSrc(t, fmt.Sprintf(`Fs.rm(%q, true);`, filepath.Join(dir, "a")))
	if _, err := os.Stat(filepath.Join(dir, "a")); !os.IsNotExist(err) {
		t.Fatalf("directory survived recursive rm")
	}
}

func Test_Fs_Json_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.json")
	src := fmt.Sprintf(`
Fs.writeJson(%q, { name: "Trouble", age: 3, tags: ["lazy", "loud"] }, true);
snuggle back = Fs.readJson(%q);
back.name + ":" + back.age + ":" + back.tags[1];
`, path, path)
	wantStr(t, evalSrc(t, src), "Trouble:3:loud")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(raw)
	// pretty output: indented, keys sorted, trailing newline
	if !strings.HasSuffix(text, "\n") || !strings.Contains(text, "  \"age\": 3") {
		t.Fatalf("pretty form:\n%s", text)
	}
	if strings.Index(text, `"age"`) > strings.Index(text, `"name"`) {
		t.Fatalf("keys not sorted:\n%s", text)
	}
}

func Test_Fs_ReadJson_PreservesKeyOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "o.json")
	if err := os.WriteFile(path, []byte(`{"z": 1, "a": 2, "m": 3}`), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	src := fmt.Sprintf(`Array.join(Object.keys(Fs.readJson(%q)), ",");`, path)
	wantStr(t, evalSrc(t, src), "z,a,m")
}

func Test_Fs_WriteJson_HostValuesEncodeNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.json")
	src := fmt.Sprintf(`Fs.writeJson(%q, { fn: (x) -> x, n: 1 });`, path)
	evalSrc(t, src)
	raw, _ := os.ReadFile(path)
	if string(raw) != `{"fn":null,"n":1}` {
		t.Fatalf("encoded: %s", raw)
	}
}

func Test_Fs_Async_SuccessPath_ThenBeforeFinally(t *testing.T) {
	ip := NewInterpreter()
	log := recorder(ip)
	path := filepath.Join(t.TempDir(), "async.txt")
	src := fmt.Sprintf(`
Fs.writeTextAsync(%q, "async cats")
    .then((v) -> { record("ok"); })
    .catch((e) -> { record("fail"); })
    .finally(() -> { record("cleanup"); });
`, path)
	if _, err := ip.EvalPersistentSource(src); err != nil {
		t.Fatalf("eval: %v", err)
	}
	drainClean(t, ip)

	if diff := cmp.Diff([]string{"ok", "cleanup"}, *log); diff != "" {
		t.Fatalf("log mismatch (-want +got):\n%s", diff)
	}
	raw, err := os.ReadFile(path)
	if err != nil || string(raw) != "async cats" {
		t.Fatalf("file after drain: %q, %v", raw, err)
	}
}

func Test_Fs_Async_FailurePath_CatchThenFinally(t *testing.T) {
	ip := NewInterpreter()
	log := recorder(ip)
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "f.txt")
	src := fmt.Sprintf(`
Fs.writeTextAsync(%q, "doomed")
    .then((v) -> { record("ok"); })
    .catch((e) -> { record("fail"); })
    .finally(() -> { record("cleanup"); });
`, missing)
	if _, err := ip.EvalPersistentSource(src); err != nil {
		t.Fatalf("eval: %v", err)
	}
	drainClean(t, ip)

	if diff := cmp.Diff([]string{"fail", "cleanup"}, *log); diff != "" {
		t.Fatalf("log mismatch (-want +got):\n%s", diff)
	}
}

func Test_Fs_Async_ReadText_DeliversContent(t *testing.T) {
	ip := NewInterpreter()
	log := recorder(ip)
	path := filepath.Join(t.TempDir(), "r.txt")
	if err := os.WriteFile(path, []byte("purr"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	src := fmt.Sprintf(`
Fs.readTextAsync(%q).then((text) -> { record("got:" + text); });
`, path)
	if _, err := ip.EvalPersistentSource(src); err != nil {
		t.Fatalf("eval: %v", err)
	}
	drainClean(t, ip)
	if len(*log) != 1 || (*log)[0] != "got:purr" {
		t.Fatalf("log: %v", *log)
	}
}

func Test_Fs_Async_RejectionCarriesMessage(t *testing.T) {
	ip := NewInterpreter()
	log := recorder(ip)
	path := filepath.Join(t.TempDir(), "ghost.txt")
	src := fmt.Sprintf(`
Fs.readTextAsync(%q).catch((e) -> { record(e.message); });
`, path)
	if _, err := ip.EvalPersistentSource(src); err != nil {
		t.Fatalf("eval: %v", err)
	}
	drainClean(t, ip)
	if len(*log) != 1 || !strings.Contains((*log)[0], "no such file") {
		t.Fatalf("log: %v", *log)
	}
}

func Test_Fs_Async_WriteJson_SnapshotsAtCallTime(t *testing.T) {
	// the value is serialized on the calling goroutine before the worker
	// starts, so mutations after the call never reach the file
	path := filepath.Join(t.TempDir(), "snap.json")
	ip := NewInterpreter()
	src := fmt.Sprintf(`
snuggle o = { n: 1 };
snuggle f = Fs.writeJsonAsync(%q, o);
o.n = 2;
o.extra = "late";
`, path)
	if _, err := ip.EvalPersistentSource(src); err != nil {
		t.Fatalf("eval: %v", err)
	}
	drainClean(t, ip)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(string(raw)) != `{"n":1}` {
		t.Fatalf("on disk: %q", raw)
	}
}

func Test_Fs_Async_WriteBytes_SnapshotsAtCallTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.bin")
	ip := NewInterpreter()
	src := fmt.Sprintf(`
snuggle b = Fs.readBytes(%q);
snuggle f = Fs.writeBytesAsync(%q, b);
b[0] = 90;
`, seedBytesFile(t, path), path)
	if _, err := ip.EvalPersistentSource(src); err != nil {
		t.Fatalf("eval: %v", err)
	}
	drainClean(t, ip)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(raw) != 3 || raw[0] != 1 {
		t.Fatalf("mutation after the call leaked into the file: %v", raw)
	}
}

func seedBytesFile(t *testing.T, dst string) string {
	t.Helper()
	seed := filepath.Join(filepath.Dir(dst), "seed.bin")
	if err := os.WriteFile(seed, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return seed
}

func Test_Fs_Async_BadArgument_RejectsFuture(t *testing.T) {
	// argument validation happens at the call, but an async misuse rejects
	// the Future instead of failing the caller
	ip := NewInterpreter()
	log := recorder(ip)
	src := `
Fs.readTextAsync(42).catch((e) -> { record(e.message); });
`
	if _, err := ip.EvalPersistentSource(src); err != nil {
		t.Fatalf("eval: %v", err)
	}
	drainClean(t, ip)
	if len(*log) != 1 || !strings.Contains((*log)[0], "Fs.readText expects path: String") {
		t.Fatalf("log: %v", *log)
	}
}
