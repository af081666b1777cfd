// interpreter_ops.go — PRIVATE: control-flow signals, truthiness, equality,
// arithmetic coercion, and stringification used by the exec layer.
//
// This file:
//  - Defines the panic-based control signals (return/break/continue/throw)
//    and the structured runtime error carrier (rtErr).
//  - Implements the documented coercion rules for operators.
//  - Implements loose vs strict equality and script-visible stringification.
//
// Public API is in interpreter.go. The evaluator is in interpreter_exec.go.
//
// Concurrency model:
//  - A single *Interpreter is **not re-entrant**; do not call it from multiple
//    goroutines. Worker goroutines spawned by async natives never touch the
//    interpreter or its Envs: they settle Futures, and continuation callbacks
//    re-enter the interpreter only through the scheduler's delivery queue,
//    drained on the interpreter's own goroutine (see future.go).

package pawx

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
//                         PRIVATE PANIC / ERROR HELPERS
////////////////////////////////////////////////////////////////////////////////

type returnSig struct{ v Value }
type breakSig struct{}
type continueSig struct{}

// throwSig carries a language-level `throw` payload upward until a try/catch
// absorbs it.
type throwSig struct{ v Value }

type rtErr struct {
	kind DiagKind
	msg  string
	line int
	col  int
}

func fail(msg string)      { panicRt(DiagRuntime, msg, 0, 0) }
func failType(msg string)  { panicRt(DiagType, msg, 0, 0) }
func failRange(msg string) { panicRt(DiagRange, msg, 0, 0) }
func failName(msg string)  { panicRt(DiagName, msg, 0, 0) }

// panicRt rethrows a structured runtime error as a **value** (never a
// pointer). A zero line defers position stamping to recoverToError. Always
// use this (or the fail helpers) to signal runtime errors within the
// interpreter.
func panicRt(kind DiagKind, msg string, line, col int) {
	panic(rtErr{kind: kind, msg: msg, line: line, col: col})
}

// recoverToError converts a recovered panic payload into an *Error, stamping
// the interpreter's current statement position when the signal carries none.
func (ip *Interpreter) recoverToError(r any) error {
	switch sig := r.(type) {
	case rtErr:
		line, col := sig.line, sig.col
		if line == 0 {
			line, col = ip.curPos.Line, ip.curPos.Col
		}
		return &Error{Kind: sig.kind, Msg: sig.msg, Line: line, Col: col}
	case throwSig:
		return &Error{
			Kind: DiagRuntime,
			Msg:  "uncaught exception: " + stringify(sig.v),
			Line: ip.curPos.Line,
			Col:  ip.curPos.Col,
		}
	case returnSig:
		return &Error{Kind: DiagRuntime, Msg: "'return' outside function", Line: ip.curPos.Line, Col: ip.curPos.Col}
	case breakSig:
		return &Error{Kind: DiagRuntime, Msg: "'break' outside loop", Line: ip.curPos.Line, Col: ip.curPos.Col}
	case continueSig:
		return &Error{Kind: DiagRuntime, Msg: "'continue' outside loop", Line: ip.curPos.Line, Col: ip.curPos.Col}
	default:
		panic(r)
	}
}

////////////////////////////////////////////////////////////////////////////////
//                              TRUTHINESS & NUMBERS
////////////////////////////////////////////////////////////////////////////////

// truthy follows the documented rule: null, false, 0, NaN, and "" are falsy;
// everything else is truthy.
func truthy(v Value) bool {
	switch v.Tag {
	case VTNull:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTNum:
		n := v.Data.(float64)
		return n != 0 && !math.IsNaN(n)
	case VTStr:
		return v.Data.(string) != ""
	default:
		return true
	}
}

func isNum(v Value) bool { return v.Tag == VTNum }
func asNum(v Value) float64 {
	return v.Data.(float64)
}

// needNum extracts a number operand or raises a TypeError naming the operator.
func needNum(v Value, op string) float64 {
	if v.Tag != VTNum {
		failType("operand of '" + op + "' must be a number, got " + typeName(v))
	}
	return v.Data.(float64)
}

func typeName(v Value) string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return "boolean"
	case VTNum:
		return "number"
	case VTStr:
		return "string"
	case VTBytes:
		return "bytes"
	case VTArray:
		return "array"
	case VTTuple:
		return "tuple"
	case VTObject:
		return "object"
	case VTFun:
		return "function"
	case VTClass:
		return "class"
	case VTInstance:
		return "instance"
	case VTFuture:
		return "future"
	case VTRegex:
		return "regex"
	case VTError:
		return "error"
	default:
		return "unknown"
	}
}

////////////////////////////////////////////////////////////////////////////////
//                              OPERATOR SEMANTICS
////////////////////////////////////////////////////////////////////////////////

// binaryOp applies an arithmetic/comparison operator with the documented
// coercion rule: '+' on two numbers adds, and when either operand is a string
// the other is stringified and the results concatenated. All other arithmetic
// requires numbers. Comparisons accept two numbers or two strings.
func binaryOp(op string, a, b Value) Value {
	switch op {
	case "+":
		if isNum(a) && isNum(b) {
			return Num(asNum(a) + asNum(b))
		}
		if a.Tag == VTStr || b.Tag == VTStr {
			return Str(stringify(a) + stringify(b))
		}
		failType("unsupported operands for '+': " + typeName(a) + " and " + typeName(b))
	case "-":
		return Num(needNum(a, op) - needNum(b, op))
	case "*":
		return Num(needNum(a, op) * needNum(b, op))
	case "/":
		x, y := needNum(a, op), needNum(b, op)
		if y == 0 {
			fail("division by zero")
		}
		return Num(x / y)
	case "%":
		x, y := needNum(a, op), needNum(b, op)
		if y == 0 {
			fail("modulo by zero")
		}
		return Num(math.Mod(x, y))
	case "<", "<=", ">", ">=":
		return compareOp(op, a, b)
	case "==":
		return Bool(equalsLoose(a, b))
	case "!=":
		return Bool(!equalsLoose(a, b))
	case "===":
		return Bool(equalsStrict(a, b))
	case "!==":
		return Bool(!equalsStrict(a, b))
	}
	fail("unknown operator: " + op)
	return Null
}

func compareOp(op string, a, b Value) Value {
	if isNum(a) && isNum(b) {
		x, y := asNum(a), asNum(b)
		switch op {
		case "<":
			return Bool(x < y)
		case "<=":
			return Bool(x <= y)
		case ">":
			return Bool(x > y)
		default:
			return Bool(x >= y)
		}
	}
	if a.Tag == VTStr && b.Tag == VTStr {
		x, y := a.Data.(string), b.Data.(string)
		switch op {
		case "<":
			return Bool(x < y)
		case "<=":
			return Bool(x <= y)
		case ">":
			return Bool(x > y)
		default:
			return Bool(x >= y)
		}
	}
	failType("operands of '" + op + "' must both be numbers or both be strings")
	return Null
}

// equalsLoose compares primitives by value and containers/instances by
// identity (two references are equal iff they are the same object).
func equalsLoose(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTNum:
		return asNum(a) == asNum(b)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTBytes:
		x, y := a.Data.([]byte), b.Data.([]byte)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
		return true
	case VTArray:
		return a.Data.(*ArrayObject) == b.Data.(*ArrayObject)
	case VTTuple:
		x, y := a.Data.([]Value), b.Data.([]Value)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equalsLoose(x[i], y[i]) {
				return false
			}
		}
		return true
	case VTObject:
		return a.Data.(*MapObject) == b.Data.(*MapObject)
	case VTInstance:
		return a.Data.(*Instance) == b.Data.(*Instance)
	case VTClass:
		return a.Data.(*Class) == b.Data.(*Class)
	case VTFun:
		return a.Data.(*Fun) == b.Data.(*Fun)
	case VTFuture:
		return a.Data.(*Future) == b.Data.(*Future)
	case VTRegex:
		return a.Data.(*regexp.Regexp) == b.Data.(*regexp.Regexp)
	case VTError:
		return a.Data.(*ErrorValue) == b.Data.(*ErrorValue)
	}
	return false
}

// equalsStrict adds a same-tag requirement on top of loose equality. With all
// numbers carried as float64 the tag check is what distinguishes the two
// forms at primitive level; containers compare identically.
func equalsStrict(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	return equalsLoose(a, b)
}

////////////////////////////////////////////////////////////////////////////////
//                              STRINGIFICATION
////////////////////////////////////////////////////////////////////////////////

// stringify renders a Value the way scripts observe it (purr, string
// concatenation). Numbers print without a trailing ".0"; arrays render as
// [a, b], tuples as (a, b), objects as { k: v }.
func stringify(v Value) string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		if v.Data.(bool) {
			return "true"
		}
		return "false"
	case VTNum:
		return formatNum(v.Data.(float64))
	case VTStr:
		return v.Data.(string)
	case VTBytes:
		b := v.Data.([]byte)
		parts := make([]string, len(b))
		for i, x := range b {
			parts[i] = strconv.Itoa(int(x))
		}
		return "bytes[" + strings.Join(parts, ", ") + "]"
	case VTArray:
		elems := v.Data.(*ArrayObject).Elems
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = stringify(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTTuple:
		elems := v.Data.([]Value)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = stringify(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case VTObject:
		mo := v.Data.(*MapObject)
		if len(mo.Keys) == 0 {
			return "{ }"
		}
		parts := make([]string, len(mo.Keys))
		for i, k := range mo.Keys {
			parts[i] = k + ": " + stringify(mo.Entries[k])
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case VTFun:
		return "[function]"
	case VTClass:
		return "[class " + v.Data.(*Class).Name + "]"
	case VTInstance:
		return "[instance " + v.Data.(*Instance).Class.Name + "]"
	case VTFuture:
		return "[future]"
	case VTRegex:
		return "[regex " + v.Data.(*regexp.Regexp).String() + "]"
	case VTError:
		return "Error(" + v.Data.(*ErrorValue).Message + ")"
	default:
		return "<unknown>"
	}
}

func formatNum(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
