// builtin_core.go
//
// This file provides:
//   • Top-level globals: meow (print function), Error (error constructor),
//     len, type, str, num, clock, setProto, getProto
//   • The Object namespace: keys, values, entries
//   • The Time namespace: now, utc, local, format, tzOffset, sleep
//
// Conventions:
//   - namespaces are ordinary object values bound in Core
//   - argument misuse raises hard errors with fail/failType
//   - native registry keys for namespaced functions are "Ns.name"

package pawx

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ---- argument helpers shared by all builtin files --------------------------

func argStr(ctx CallCtx, name, fn string) string {
	v, ok := ctx.Arg(name)
	if !ok || v.Tag != VTStr {
		failType(fn + " expects " + name + ": String")
	}
	return v.Data.(string)
}

func argNum(ctx CallCtx, name, fn string) float64 {
	v, ok := ctx.Arg(name)
	if !ok || v.Tag != VTNum {
		failType(fn + " expects " + name + ": Number")
	}
	return v.Data.(float64)
}

func argArr(ctx CallCtx, name, fn string) *ArrayObject {
	v, ok := ctx.Arg(name)
	if !ok || v.Tag != VTArray {
		failType(fn + " expects " + name + ": Array")
	}
	return v.Data.(*ArrayObject)
}

func argObj(ctx CallCtx, name, fn string) *MapObject {
	v, ok := ctx.Arg(name)
	if !ok || v.Tag != VTObject {
		failType(fn + " expects " + name + ": Object")
	}
	return v.Data.(*MapObject)
}

func argFun(ctx CallCtx, name, fn string) Value {
	v, ok := ctx.Arg(name)
	if !ok || v.Tag != VTFun {
		failType(fn + " expects " + name + ": Function")
	}
	return v
}

// optStr returns the named argument as a string, or def when absent/null.
func optStr(ctx CallCtx, name, def, fn string) string {
	v, ok := ctx.Arg(name)
	if !ok {
		return def
	}
	if v.Tag != VTStr {
		failType(fn + " expects " + name + ": String")
	}
	return v.Data.(string)
}

// optBool returns the named argument as a bool, or def when absent/null.
func optBool(ctx CallCtx, name string, def bool, fn string) bool {
	v, ok := ctx.Arg(name)
	if !ok {
		return def
	}
	if v.Tag != VTBool {
		failType(fn + " expects " + name + ": Bool")
	}
	return v.Data.(bool)
}

// ---- namespace builder -----------------------------------------------------

// nsBuilder accumulates a namespace object (Fs, Math, ...) bound in Core.
type nsBuilder struct {
	ip   *Interpreter
	name string
	mo   *MapObject
}

func (ip *Interpreter) namespace(name string) *nsBuilder {
	return &nsBuilder{ip: ip, name: name, mo: NewMapObject()}
}

func (b *nsBuilder) fn(name string, params []string, impl NativeImpl) *nsBuilder {
	b.mo.SetKey(name, b.ip.NativeFun(b.name+"."+name, params, impl))
	return b
}

func (b *nsBuilder) val(name string, v Value) *nsBuilder {
	b.mo.SetKey(name, v)
	return b
}

func (b *nsBuilder) install() {
	b.ip.Core.Define(b.name, ObjVal(b.mo))
}

// ---- core globals ----------------------------------------------------------

func registerCoreBuiltins(ip *Interpreter) {
	// meow(value) -> Null : print the display form plus newline
	ip.RegisterNative(
		"meow",
		[]string{"value"},
		func(ip *Interpreter, ctx CallCtx) Value {
			v, _ := ctx.Arg("value")
			fmt.Fprintln(ip.Out, stringify(v))
			return Null
		},
	)

	// Error(message?) -> Error value
	ip.RegisterNative(
		"Error",
		[]string{"message"},
		func(_ *Interpreter, ctx CallCtx) Value {
			msg := optStr(ctx, "message", "Unknown error", "Error")
			return ErrVal(msg)
		},
	)

	// len(value) -> Number : element/char/byte/key count
	ip.RegisterNative(
		"len",
		[]string{"value"},
		func(_ *Interpreter, ctx CallCtx) Value {
			v, _ := ctx.Arg("value")
			switch v.Tag {
			case VTStr:
				return Num(float64(len(v.Data.(string))))
			case VTArray:
				return Num(float64(len(v.Data.(*ArrayObject).Elems)))
			case VTTuple:
				return Num(float64(len(v.Data.([]Value))))
			case VTBytes:
				return Num(float64(len(v.Data.([]byte))))
			case VTObject:
				return Num(float64(len(v.Data.(*MapObject).Keys)))
			}
			failType("len expects a string, array, tuple, bytes, or object")
			return Null
		},
	)

	// type(value) -> String
	ip.RegisterNative(
		"type",
		[]string{"value"},
		func(_ *Interpreter, ctx CallCtx) Value {
			v, _ := ctx.Arg("value")
			return Str(typeName(v))
		},
	)

	// str(value) -> String : display form
	ip.RegisterNative(
		"str",
		[]string{"value"},
		func(_ *Interpreter, ctx CallCtx) Value {
			v, _ := ctx.Arg("value")
			return Str(stringify(v))
		},
	)

	// num(value) -> Number : numeric coercion (null on unparseable string)
	ip.RegisterNative(
		"num",
		[]string{"value"},
		func(_ *Interpreter, ctx CallCtx) Value {
			v, _ := ctx.Arg("value")
			switch v.Tag {
			case VTNum:
				return v
			case VTBool:
				if v.Data.(bool) {
					return Num(1)
				}
				return Num(0)
			case VTStr:
				f, err := strconv.ParseFloat(strings.TrimSpace(v.Data.(string)), 64)
				if err != nil {
					return Null
				}
				return Num(f)
			}
			failType("num expects a number, bool, or string")
			return Null
		},
	)

	// clock() -> Number : milliseconds since the Unix epoch
	ip.RegisterNative(
		"clock",
		[]string{},
		func(_ *Interpreter, _ CallCtx) Value {
			return Num(float64(time.Now().UnixMilli()))
		},
	)

	// setProto(obj, proto) -> obj : attach the delegation link
	ip.RegisterNative(
		"setProto",
		[]string{"obj", "proto"},
		func(_ *Interpreter, ctx CallCtx) Value {
			mo := argObj(ctx, "obj", "setProto")
			pv, ok := ctx.Arg("proto")
			if !ok {
				mo.Proto = nil
				return ObjVal(mo)
			}
			if pv.Tag != VTObject {
				failType("setProto expects proto: Object")
			}
			mo.Proto = pv.Data.(*MapObject)
			return ObjVal(mo)
		},
	)

	// getProto(obj) -> Object | Null
	ip.RegisterNative(
		"getProto",
		[]string{"obj"},
		func(_ *Interpreter, ctx CallCtx) Value {
			mo := argObj(ctx, "obj", "getProto")
			if mo.Proto == nil {
				return Null
			}
			return ObjVal(mo.Proto)
		},
	)

	registerObjectNamespace(ip)
	registerTimeNamespace(ip)
}

// ---- Object namespace ------------------------------------------------------

func registerObjectNamespace(ip *Interpreter) {
	ns := ip.namespace("Object")

	// Object.keys(obj) -> Array<String> in insertion order
	ns.fn("keys", []string{"obj"}, func(_ *Interpreter, ctx CallCtx) Value {
		mo := argObj(ctx, "obj", "Object.keys")
		out := make([]Value, 0, len(mo.Keys))
		for _, k := range mo.Keys {
			out = append(out, Str(k))
		}
		return Arr(out)
	})

	// Object.values(obj) -> Array in key insertion order
	ns.fn("values", []string{"obj"}, func(_ *Interpreter, ctx CallCtx) Value {
		mo := argObj(ctx, "obj", "Object.values")
		out := make([]Value, 0, len(mo.Keys))
		for _, k := range mo.Keys {
			out = append(out, mo.Entries[k])
		}
		return Arr(out)
	})

	// Object.entries(obj) -> Array of (key, value) tuples
	ns.fn("entries", []string{"obj"}, func(_ *Interpreter, ctx CallCtx) Value {
		mo := argObj(ctx, "obj", "Object.entries")
		out := make([]Value, 0, len(mo.Keys))
		for _, k := range mo.Keys {
			out = append(out, Tup([]Value{Str(k), mo.Entries[k]}))
		}
		return Arr(out)
	})

	ns.install()
}

// ---- Time namespace --------------------------------------------------------

func registerTimeNamespace(ip *Interpreter) {
	ns := ip.namespace("Time")

	ns.fn("now", []string{}, func(_ *Interpreter, _ CallCtx) Value {
		return Num(float64(time.Now().UnixMilli()))
	})

	ns.fn("utc", []string{}, func(_ *Interpreter, _ CallCtx) Value {
		return Str(time.Now().UTC().Format(time.RFC3339))
	})

	ns.fn("local", []string{}, func(_ *Interpreter, _ CallCtx) Value {
		return Str(time.Now().Format(time.RFC3339))
	})

	// Time.format(layout) -> String : strftime-style verbs on local time
	ns.fn("format", []string{"layout"}, func(_ *Interpreter, ctx CallCtx) Value {
		layout := argStr(ctx, "layout", "Time.format")
		return Str(strftime(time.Now(), layout))
	})

	// Time.tzOffset() -> Number : local offset from UTC in minutes
	ns.fn("tzOffset", []string{}, func(_ *Interpreter, _ CallCtx) Value {
		_, secs := time.Now().Zone()
		return Num(float64(secs / 60))
	})

	// Time.sleep(ms) -> Null : blocks the current evaluation
	ns.fn("sleep", []string{"ms"}, func(_ *Interpreter, ctx CallCtx) Value {
		ms := argNum(ctx, "ms", "Time.sleep")
		if ms > 0 {
			time.Sleep(time.Duration(ms * float64(time.Millisecond)))
		}
		return Null
	})

	ns.install()
}

// strftime renders the %-verbs the Time namespace documents. Unknown verbs
// pass through literally.
func strftime(t time.Time, layout string) string {
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		if layout[i] != '%' || i+1 == len(layout) {
			b.WriteByte(layout[i])
			continue
		}
		i++
		switch layout[i] {
		case 'Y':
			b.WriteString(t.Format("2006"))
		case 'm':
			b.WriteString(t.Format("01"))
		case 'd':
			b.WriteString(t.Format("02"))
		case 'H':
			b.WriteString(t.Format("15"))
		case 'M':
			b.WriteString(t.Format("04"))
		case 'S':
			b.WriteString(t.Format("05"))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(layout[i])
		}
	}
	return b.String()
}
