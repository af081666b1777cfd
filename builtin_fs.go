// builtin_fs.go
//
// The Fs namespace: filesystem natives in sync and async flavors.
//
//   - Fs.readText(path, encoding?)               -> String
//   - Fs.writeText(path, text, encoding?)        -> Null
//   - Fs.appendText(path, text, encoding?)       -> Null
//   - Fs.readBytes(path)                         -> Bytes
//   - Fs.writeBytes(path, bytes)                 -> Null
//   - Fs.exists(path)                            -> Bool
//   - Fs.readdir(path)                           -> Array<String>
//   - Fs.mkdir(path, recursive?)                 -> Null
//   - Fs.rm(path, recursive?)                    -> Null
//   - Fs.readJson(path, encoding?)               -> Value
//   - Fs.writeJson(path, value, pretty?, encoding?) -> Null
//
// Every operation has an Async variant with the same argument shape that
// returns a Future immediately.
//
// Each operation is split into two phases. The prep phase runs on the
// calling goroutine: it validates the arguments and snapshots every script
// value into host data (encoded text, copied byte slices, serialized JSON).
// The job it returns performs only host I/O and touches no interpreter
// state, so the async twins can hand it to a worker while the script keeps
// mutating the values it passed in. A bad argument fails the sync form hard
// and rejects the async form's Future.
//
// Encodings: "utf8" (default, validated on read), "ascii" and "latin1"
// (byte-per-char in both directions, non-Latin-1 runes truncate on write).

package pawx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"unicode/utf8"
)

// fsJob is the worker-safe I/O step of an Fs operation.
type fsJob func() (Value, error)

func registerFsBuiltins(ip *Interpreter) {
	ns := ip.namespace("Fs")

	type fsOp struct {
		name   string
		params []string
		prep   func(ctx CallCtx) fsJob
	}

	ops := []fsOp{
		{"readText", []string{"path", "encoding"}, func(ctx CallCtx) fsJob {
			path := argStr(ctx, "path", "Fs.readText")
			enc := fsEncoding(ctx, "Fs.readText")
			return func() (Value, error) {
				b, err := os.ReadFile(path)
				if err != nil {
					return Null, err
				}
				s, err := decodeText(b, enc, path)
				if err != nil {
					return Null, err
				}
				return Str(s), nil
			}
		}},

		{"writeText", []string{"path", "text", "encoding"}, func(ctx CallCtx) fsJob {
			path := argStr(ctx, "path", "Fs.writeText")
			data := encodeText(argStr(ctx, "text", "Fs.writeText"), fsEncoding(ctx, "Fs.writeText"))
			return func() (Value, error) {
				return Null, os.WriteFile(path, data, 0o644)
			}
		}},

		{"appendText", []string{"path", "text", "encoding"}, func(ctx CallCtx) fsJob {
			path := argStr(ctx, "path", "Fs.appendText")
			data := encodeText(argStr(ctx, "text", "Fs.appendText"), fsEncoding(ctx, "Fs.appendText"))
			return func() (Value, error) {
				f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
				if err != nil {
					return Null, err
				}
				_, werr := f.Write(data)
				if cerr := f.Close(); werr == nil {
					werr = cerr
				}
				return Null, werr
			}
		}},

		{"readBytes", []string{"path"}, func(ctx CallCtx) fsJob {
			path := argStr(ctx, "path", "Fs.readBytes")
			return func() (Value, error) {
				b, err := os.ReadFile(path)
				if err != nil {
					return Null, err
				}
				return Bytes(b), nil
			}
		}},

		{"writeBytes", []string{"path", "bytes"}, func(ctx CallCtx) fsJob {
			path := argStr(ctx, "path", "Fs.writeBytes")
			bv, ok := ctx.Arg("bytes")
			if !ok || bv.Tag != VTBytes {
				failType("Fs.writeBytes expects bytes: Bytes")
			}
			// snapshot: the script can keep mutating its bytes value
			data := append([]byte(nil), bv.Data.([]byte)...)
			return func() (Value, error) {
				return Null, os.WriteFile(path, data, 0o644)
			}
		}},

		{"exists", []string{"path"}, func(ctx CallCtx) fsJob {
			path := argStr(ctx, "path", "Fs.exists")
			return func() (Value, error) {
				_, err := os.Stat(path)
				return Bool(err == nil), nil
			}
		}},

		{"readdir", []string{"path"}, func(ctx CallCtx) fsJob {
			path := argStr(ctx, "path", "Fs.readdir")
			return func() (Value, error) {
				ents, err := os.ReadDir(path)
				if err != nil {
					return Null, err
				}
				out := make([]Value, 0, len(ents))
				for _, e := range ents {
					out = append(out, Str(e.Name()))
				}
				return Arr(out), nil
			}
		}},

		{"mkdir", []string{"path", "recursive"}, func(ctx CallCtx) fsJob {
			path := argStr(ctx, "path", "Fs.mkdir")
			recursive := optBool(ctx, "recursive", false, "Fs.mkdir")
			return func() (Value, error) {
				if recursive {
					return Null, os.MkdirAll(path, 0o755)
				}
				return Null, os.Mkdir(path, 0o755)
			}
		}},

		{"rm", []string{"path", "recursive"}, func(ctx CallCtx) fsJob {
			path := argStr(ctx, "path", "Fs.rm")
			recursive := optBool(ctx, "recursive", false, "Fs.rm")
			return func() (Value, error) {
				if recursive {
					return Null, os.RemoveAll(path)
				}
				// non-recursive: files always, directories only when empty
				return Null, os.Remove(path)
			}
		}},

		{"readJson", []string{"path", "encoding"}, func(ctx CallCtx) fsJob {
			path := argStr(ctx, "path", "Fs.readJson")
			enc := fsEncoding(ctx, "Fs.readJson")
			return func() (Value, error) {
				b, err := os.ReadFile(path)
				if err != nil {
					return Null, err
				}
				s, err := decodeText(b, enc, path)
				if err != nil {
					return Null, err
				}
				// the decoded value is built fresh here and published to
				// the interpreter through the Future settle
				v, err := jsonDecodeValue([]byte(s))
				if err != nil {
					return Null, fmt.Errorf("Fs.readJson('%s'): %v", path, err)
				}
				return v, nil
			}
		}},

		{"writeJson", []string{"path", "value", "pretty", "encoding"}, func(ctx CallCtx) fsJob {
			path := argStr(ctx, "path", "Fs.writeJson")
			v, _ := ctx.Arg("value")
			pretty := optBool(ctx, "pretty", false, "Fs.writeJson")
			enc := fsEncoding(ctx, "Fs.writeJson")
			// serialize now: later mutations of the value must not bleed
			// into the written file
			data := encodeText(jsonEncodeValue(v, pretty), enc)
			return func() (Value, error) {
				return Null, os.WriteFile(path, data, 0o644)
			}
		}},
	}

	for _, op := range ops {
		op := op

		ns.fn(op.name, op.params, func(ip *Interpreter, ctx CallCtx) Value {
			v, err := op.prep(ctx)()
			if err != nil {
				fail("Fs." + op.name + ": " + err.Error())
			}
			return v
		})

		// Async twin: prep runs here on the calling goroutine; only the
		// I/O job crosses to the worker.
		ns.fn(op.name+"Async", op.params, func(ip *Interpreter, ctx CallCtx) Value {
			job, bad := fsPrepare(op.prep, ctx)
			if bad != nil {
				f := ip.Sched.NewFuture()
				f.Reject(ErrVal(bad.msg))
				return FutureVal(f)
			}
			return FutureVal(ip.Sched.GoBlocking(job))
		})
	}

	ns.install()
}

// fsPrepare runs an operation's prep phase, translating argument failures
// into a value the async twins can reject with instead of failing the caller.
func fsPrepare(prep func(CallCtx) fsJob, ctx CallCtx) (job fsJob, bad *rtErr) {
	defer func() {
		if r := recover(); r != nil {
			re, ok := r.(rtErr)
			if !ok {
				panic(r)
			}
			bad = &re
		}
	}()
	return prep(ctx), nil
}

// ---- encodings -------------------------------------------------------------

// fsEncoding reads the optional encoding argument, defaulting to utf8.
func fsEncoding(ctx CallCtx, fn string) string {
	enc := optStr(ctx, "encoding", "utf8", fn)
	switch enc {
	case "utf8", "utf-8":
		return "utf8"
	case "ascii", "latin1":
		return enc
	}
	fail(fn + ": unsupported encoding '" + enc + "'")
	return ""
}

func decodeText(b []byte, enc, path string) (string, error) {
	switch enc {
	case "utf8":
		if !utf8.Valid(b) {
			return "", fmt.Errorf("'%s': invalid UTF-8", path)
		}
		return string(b), nil
	default: // ascii, latin1: one byte per rune
		rs := make([]rune, len(b))
		for i, c := range b {
			rs[i] = rune(c)
		}
		return string(rs), nil
	}
}

func encodeText(s, enc string) []byte {
	if enc == "utf8" {
		return []byte(s)
	}
	// ascii, latin1: one byte per rune, truncating like the display layer
	// never will. Callers writing non-Latin-1 text get mojibake, not errors.
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, byte(r))
	}
	return out
}

// ---- JSON <-> Value --------------------------------------------------------

// jsonDecodeValue maps JSON onto runtime values preserving object key order,
// which plain unmarshaling into map[string]any would lose.
func jsonDecodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := jsonDecodeNext(dec)
	if err != nil {
		return Null, err
	}
	return v, nil
}

func jsonDecodeNext(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null, err
	}
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Null, err
		}
		return Num(f), nil
	case json.Delim:
		switch t {
		case '[':
			var elems []Value
			for dec.More() {
				e, err := jsonDecodeNext(dec)
				if err != nil {
					return Null, err
				}
				elems = append(elems, e)
			}
			if _, err := dec.Token(); err != nil { // ']'
				return Null, err
			}
			return Arr(elems), nil
		case '{':
			mo := NewMapObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Null, err
				}
				val, err := jsonDecodeNext(dec)
				if err != nil {
					return Null, err
				}
				mo.SetKey(kt.(string), val)
			}
			if _, err := dec.Token(); err != nil { // '}'
				return Null, err
			}
			return ObjVal(mo), nil
		}
	}
	return Null, fmt.Errorf("unexpected JSON token %v", tok)
}

// jsonEncodeValue renders a runtime value as JSON text. Object keys are
// written sorted; functions, classes, futures, and other host-only values
// encode as null.
func jsonEncodeValue(v Value, pretty bool) string {
	var b bytes.Buffer
	jsonEncodeInto(&b, v, pretty, "")
	if pretty {
		b.WriteByte('\n')
	}
	return b.String()
}

func jsonEncodeInto(b *bytes.Buffer, v Value, pretty bool, indent string) {
	inner := indent + "  "
	switch v.Tag {
	case VTBool:
		b.WriteString(strconv.FormatBool(v.Data.(bool)))
	case VTNum:
		f := v.Data.(float64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			b.WriteString("null") // no JSON form
			return
		}
		b.WriteString(formatNum(f))
	case VTStr:
		writeJSONString(b, v.Data.(string))
	case VTArray, VTTuple:
		var elems []Value
		if v.Tag == VTArray {
			elems = v.Data.(*ArrayObject).Elems
		} else {
			elems = v.Data.([]Value)
		}
		if len(elems) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		for i, e := range elems {
			if i > 0 {
				b.WriteByte(',')
			}
			if pretty {
				b.WriteByte('\n')
				b.WriteString(inner)
			}
			jsonEncodeInto(b, e, pretty, inner)
		}
		if pretty {
			b.WriteByte('\n')
			b.WriteString(indent)
		}
		b.WriteByte(']')
	case VTObject:
		mo := v.Data.(*MapObject)
		if len(mo.Keys) == 0 {
			b.WriteString("{}")
			return
		}
		keys := append([]string(nil), mo.Keys...)
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			if pretty {
				b.WriteByte('\n')
				b.WriteString(inner)
			}
			writeJSONString(b, k)
			b.WriteByte(':')
			if pretty {
				b.WriteByte(' ')
			}
			jsonEncodeInto(b, mo.Entries[k], pretty, inner)
		}
		if pretty {
			b.WriteByte('\n')
			b.WriteString(indent)
		}
		b.WriteByte('}')
	default:
		// null, functions, classes, instances, futures, regexes, bytes,
		// errors
		b.WriteString("null")
	}
}

func writeJSONString(b *bytes.Buffer, s string) {
	enc, err := json.Marshal(s)
	if err != nil {
		b.WriteString(`""`)
		return
	}
	b.Write(enc)
}
