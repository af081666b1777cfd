// builtin_string.go
//
// The String and Array namespaces. Both follow the prototype surface of the
// language's standard library: free functions taking the subject as the
// first argument (String.upper(s), Array.push(arr, v)).

package pawx

import (
	"sort"
	"strings"
)

func registerStringBuiltins(ip *Interpreter) {
	registerStringNamespace(ip)
	registerArrayNamespace(ip)
}

// ---- String ----------------------------------------------------------------

func registerStringNamespace(ip *Interpreter) {
	ns := ip.namespace("String")

	ns.fn("len", []string{"str"}, func(_ *Interpreter, ctx CallCtx) Value {
		return Num(float64(len(argStr(ctx, "str", "String.len"))))
	})

	ns.fn("upper", []string{"str"}, func(_ *Interpreter, ctx CallCtx) Value {
		return Str(strings.ToUpper(argStr(ctx, "str", "String.upper")))
	})

	ns.fn("lower", []string{"str"}, func(_ *Interpreter, ctx CallCtx) Value {
		return Str(strings.ToLower(argStr(ctx, "str", "String.lower")))
	})

	ns.fn("trim", []string{"str"}, func(_ *Interpreter, ctx CallCtx) Value {
		return Str(strings.TrimSpace(argStr(ctx, "str", "String.trim")))
	})

	// String.split(str, sep) -> Array<String>
	ns.fn("split", []string{"str", "sep"}, func(_ *Interpreter, ctx CallCtx) Value {
		s := argStr(ctx, "str", "String.split")
		sep := argStr(ctx, "sep", "String.split")
		parts := strings.Split(s, sep)
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = Str(p)
		}
		return Arr(out)
	})

	ns.fn("contains", []string{"str", "search"}, func(_ *Interpreter, ctx CallCtx) Value {
		return Bool(strings.Contains(
			argStr(ctx, "str", "String.contains"),
			argStr(ctx, "search", "String.contains")))
	})

	ns.fn("startsWith", []string{"str", "prefix"}, func(_ *Interpreter, ctx CallCtx) Value {
		return Bool(strings.HasPrefix(
			argStr(ctx, "str", "String.startsWith"),
			argStr(ctx, "prefix", "String.startsWith")))
	})

	ns.fn("endsWith", []string{"str", "suffix"}, func(_ *Interpreter, ctx CallCtx) Value {
		return Bool(strings.HasSuffix(
			argStr(ctx, "str", "String.endsWith"),
			argStr(ctx, "suffix", "String.endsWith")))
	})

	// String.replace(str, find, replace) -> String (all occurrences)
	ns.fn("replace", []string{"str", "find", "replace"}, func(_ *Interpreter, ctx CallCtx) Value {
		return Str(strings.ReplaceAll(
			argStr(ctx, "str", "String.replace"),
			argStr(ctx, "find", "String.replace"),
			argStr(ctx, "replace", "String.replace")))
	})

	ns.fn("repeat", []string{"str", "n"}, func(_ *Interpreter, ctx CallCtx) Value {
		n := argNum(ctx, "n", "String.repeat")
		if n < 0 {
			failRange("String.repeat expects n >= 0")
		}
		return Str(strings.Repeat(argStr(ctx, "str", "String.repeat"), int(n)))
	})

	ns.install()
}

// ---- Array -----------------------------------------------------------------

func registerArrayNamespace(ip *Interpreter) {
	ns := ip.namespace("Array")

	ns.fn("isArray", []string{"value"}, func(_ *Interpreter, ctx CallCtx) Value {
		v, _ := ctx.Arg("value")
		return Bool(v.Tag == VTArray)
	})

	// Array.push(arr, value) -> new length
	ns.fn("push", []string{"arr", "value"}, func(_ *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.push")
		v, _ := ctx.Arg("value")
		ao.Elems = append(ao.Elems, v)
		return Num(float64(len(ao.Elems)))
	})

	// Array.pop(arr) -> removed element (null on empty)
	ns.fn("pop", []string{"arr"}, func(_ *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.pop")
		n := len(ao.Elems)
		if n == 0 {
			return Null
		}
		v := ao.Elems[n-1]
		ao.Elems = ao.Elems[:n-1]
		return v
	})

	ns.fn("includes", []string{"arr", "value"}, func(_ *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.includes")
		v, _ := ctx.Arg("value")
		for _, e := range ao.Elems {
			if equalsLoose(e, v) {
				return Bool(true)
			}
		}
		return Bool(false)
	})

	// Array.join(arr, sep=",") -> String
	ns.fn("join", []string{"arr", "sep"}, func(_ *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.join")
		sep := optStr(ctx, "sep", ",", "Array.join")
		parts := make([]string, len(ao.Elems))
		for i, e := range ao.Elems {
			parts[i] = joinElem(e)
		}
		return Str(strings.Join(parts, sep))
	})

	// Array.slice(arr, start, end?) -> new array (clamped bounds)
	ns.fn("slice", []string{"arr", "start", "end"}, func(_ *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.slice")
		n := len(ao.Elems)
		start := clampIdx(int(argNum(ctx, "start", "Array.slice")), n)
		end := n
		if ev, ok := ctx.Arg("end"); ok {
			if ev.Tag != VTNum {
				failType("Array.slice expects end: Number")
			}
			end = clampIdx(int(ev.Data.(float64)), n)
		}
		if end < start {
			end = start
		}
		out := make([]Value, end-start)
		copy(out, ao.Elems[start:end])
		return Arr(out)
	})

	// Array.map(arr, fn) -> new array
	ns.fn("map", []string{"arr", "fn"}, func(ip *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.map")
		fn := argFun(ctx, "fn", "Array.map")
		out := make([]Value, len(ao.Elems))
		for i, e := range ao.Elems {
			out[i] = ip.applyArgs(fn, []Value{e, Num(float64(i))})
		}
		return Arr(out)
	})

	// Array.filter(arr, fn) -> new array of elements where fn is truthy
	ns.fn("filter", []string{"arr", "fn"}, func(ip *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.filter")
		fn := argFun(ctx, "fn", "Array.filter")
		var out []Value
		for i, e := range ao.Elems {
			if truthy(ip.applyArgs(fn, []Value{e, Num(float64(i))})) {
				out = append(out, e)
			}
		}
		return Arr(out)
	})

	// Array.forEach(arr, fn) -> Null
	ns.fn("forEach", []string{"arr", "fn"}, func(ip *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.forEach")
		fn := argFun(ctx, "fn", "Array.forEach")
		for i, e := range ao.Elems {
			ip.applyArgs(fn, []Value{e, Num(float64(i))})
		}
		return Null
	})

	// Array.find(arr, fn) -> first matching element or null
	ns.fn("find", []string{"arr", "fn"}, func(ip *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.find")
		fn := argFun(ctx, "fn", "Array.find")
		for i, e := range ao.Elems {
			if truthy(ip.applyArgs(fn, []Value{e, Num(float64(i))})) {
				return e
			}
		}
		return Null
	})

	ns.fn("some", []string{"arr", "fn"}, func(ip *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.some")
		fn := argFun(ctx, "fn", "Array.some")
		for i, e := range ao.Elems {
			if truthy(ip.applyArgs(fn, []Value{e, Num(float64(i))})) {
				return Bool(true)
			}
		}
		return Bool(false)
	})

	ns.fn("every", []string{"arr", "fn"}, func(ip *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.every")
		fn := argFun(ctx, "fn", "Array.every")
		for i, e := range ao.Elems {
			if !truthy(ip.applyArgs(fn, []Value{e, Num(float64(i))})) {
				return Bool(false)
			}
		}
		return Bool(true)
	})

	// Array.reduce(arr, fn, initial?) -> accumulated value
	ns.fn("reduce", []string{"arr", "fn", "initial"}, func(ip *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.reduce")
		fn := argFun(ctx, "fn", "Array.reduce")
		elems := ao.Elems
		acc, ok := ctx.Arg("initial")
		if !ok {
			if len(elems) == 0 {
				fail("Array.reduce of empty array with no initial value")
			}
			acc = elems[0]
			elems = elems[1:]
		}
		for i, e := range elems {
			acc = ip.applyArgs(fn, []Value{acc, e, Num(float64(i))})
		}
		return acc
	})

	// Array.sort(arr, cmp?) -> same array, sorted in place. Without a
	// comparator, numbers sort numerically, strings lexically, mixed
	// elements keep their relative order.
	ns.fn("sort", []string{"arr", "cmp"}, func(ip *Interpreter, ctx CallCtx) Value {
		ao := argArr(ctx, "arr", "Array.sort")
		cmp, hasCmp := ctx.Arg("cmp")
		if hasCmp && cmp.Tag != VTFun {
			failType("Array.sort expects cmp: Function")
		}
		sort.SliceStable(ao.Elems, func(i, j int) bool {
			a, b := ao.Elems[i], ao.Elems[j]
			if hasCmp {
				r := ip.applyArgs(cmp, []Value{a, b})
				if r.Tag != VTNum {
					failType("Array.sort comparator must return a number")
				}
				return r.Data.(float64) < 0
			}
			if a.Tag == VTNum && b.Tag == VTNum {
				return a.Data.(float64) < b.Data.(float64)
			}
			if a.Tag == VTStr && b.Tag == VTStr {
				return a.Data.(string) < b.Data.(string)
			}
			return false
		})
		return ArrVal(ao)
	})

	ns.install()
}

func clampIdx(i, n int) int {
	if i < 0 {
		i = n + i
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// joinElem renders one element for Array.join: primitives by display form,
// containers as "[object]".
func joinElem(v Value) string {
	switch v.Tag {
	case VTStr:
		return v.Data.(string)
	case VTNum, VTBool, VTNull:
		return stringify(v)
	}
	return "[object]"
}
