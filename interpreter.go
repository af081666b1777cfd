// interpreter.go — SINGLE PUBLIC API SURFACE for the PAWX interpreter.
//
// OVERVIEW
// ========
// This file exposes the **entire public surface** of the PAWX runtime. It
// deliberately contains **only exported types and thin methods**. All behavior
// is specified here in enough detail that a consumer can use the interpreter
// without reading any private implementation.
//
// What you get in this file:
//   • The **runtime value model** (`Value`, `ValueTag`, constructors like
//     `Num/Str/Arr/Obj`).
//   • **Ordered objects** (`MapObject`) and helpers.
//   • **Functions / closures** (`Fun`) as first-class values.
//   • **Classes and instances** (`Class`, `Instance`) — see classes.go.
//   • **Environments** (`Env`) with lexical scoping.
//   • The **Interpreter** type with the canonical entry points:
//        - parsing+evaluation of source/AST (ephemeral vs persistent),
//        - function application (`Apply`, `Call0`),
//        - native registration (`RegisterNative`).
//
// EXECUTION & SCOPING SEMANTICS
// -----------------------------
// PAWX code evaluates in **environments** (`*Env`) that form a lexical chain
// via `parent`. The Interpreter exposes two well-known frames:
//   • `Core`: built-ins and registered natives (read-only to user code).
//   • `Global`: user-visible program state (REPL/script globals).
//
// Entry points differ only in *which* environment they target:
//   • Ephemeral (sandboxed) runs: `EvalSource` creates a **fresh child of
//     Global**; names bound during evaluation land in that throwaway child.
//   • Persistent (REPL-style) runs: `EvalPersistentSource` evaluates **in
//     Global** itself, so declarations update the persistent state.
//   • Advanced embedding: `EvalAST(ast, env)` evaluates exactly in the
//     provided environment.
//
// RUNTIME ERRORS
// --------------
// All `Eval*` methods return `(Value, error)`. On failure they return a Go
// `error` of type `*Error` (errors.go) carrying the diagnostic kind and a
// 1-based (Line, Col). Successful runs return a `Value` and `nil` error.
//
// VALUES
// ------
// `Value` is a tagged sum covering: null, bool, float64 numbers, strings,
// byte sequences, mutable arrays, immutable tuples, ordered objects,
// functions, classes, instances, futures, compiled regexes, and error values. Arrays, objects,
// instances, and futures are **reference-shared**: copying the Value copies
// the reference, and mutation is visible through every holder. Numbers,
// booleans, strings, bytes, null, and tuples are logically immutable.
//
// FUNCTIONS & NATIVES
// -------------------
// `Fun` carries parameter names, a body (as an S-expression), its closure
// environment, an optional bound receiver (for methods), and an optional
// `NativeName` when the function is implemented in the host. Natives are
// registered via `RegisterNative(name, params, impl)`. `Apply` invokes a
// function Value with pre-evaluated arguments.
//
// CONCURRENCY
// -----------
// A single *Interpreter is **not re-entrant**; script evaluation happens on
// one goroutine. Asynchronous natives hand work to the scheduler (future.go),
// which settles Futures from worker goroutines and funnels continuation
// callbacks back through a single delivery queue that the interpreter drains.
//
// DEPENDENCIES (OTHER FILES)
// --------------------------
//   • lexer.go / parser.go: tokenization and parsing into S-expr ASTs.
//     (Public alias `type S = []any` is defined in parser.go.)
//   • interpreter_exec.go (private): the tree-walking evaluator.
//   • interpreter_ops.go  (private): signals, truthiness, equality, stringify.
//   • classes.go: class construction and instance dispatch.
//   • future.go: the Future state machine and scheduler.
//   • errors.go: the diagnostic taxonomy and snippet rendering.
//   • runtime.go / builtin_*.go: the standard native surface (Fs, Math, ...).

package pawx

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
)

////////////////////////////////////////////////////////////////////////////////
//                              PUBLIC TYPES & CTORS
////////////////////////////////////////////////////////////////////////////////

// ValueTag enumerates all runtime kinds a Value may hold.
// The tag determines which field of Value.Data is valid (see Value docs).
type ValueTag int

const (
	VTNull     ValueTag = iota // null (no payload)
	VTBool                     // bool
	VTNum                      // float64
	VTStr                      // string
	VTBytes                    // []byte (host byte sequences, distinct from text)
	VTArray                    // *ArrayObject (mutable, reference-shared)
	VTTuple                    // []Value (fixed arity, immutable)
	VTObject                   // *MapObject (ordered map, reference-shared)
	VTFun                      // *Fun (closure; native or user-defined)
	VTClass                    // *Class (see classes.go)
	VTInstance                 // *Instance (see classes.go)
	VTFuture                   // *Future (see future.go)
	VTRegex                    // *regexp.Regexp (compiled via Regex.create)
	VTError                    // *ErrorValue (thrown/rejection payloads)
)

// Value is the universal runtime carrier used by the interpreter.
//
// Invariants:
//   - When Tag==VTNull, Data is nil.
//   - When Tag==VTObject, Data is *MapObject preserving insertion order.
//   - When Tag==VTTuple, Data is []Value and is never mutated after build.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// String renders a human-friendly debug representation. Script-visible
// stringification lives in interpreter_ops.go (stringify).
func (v Value) String() string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return fmt.Sprintf("%v", v.Data.(bool))
	case VTNum:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		return fmt.Sprintf("%q", v.Data.(string))
	case VTBytes:
		return fmt.Sprintf("<bytes len=%d>", len(v.Data.([]byte)))
	case VTArray:
		return fmt.Sprintf("<array len=%d>", len(v.Data.(*ArrayObject).Elems))
	case VTTuple:
		return fmt.Sprintf("<tuple len=%d>", len(v.Data.([]Value)))
	case VTObject:
		return "<object>"
	case VTFun:
		return "<fun>"
	case VTClass:
		return fmt.Sprintf("<class %s>", v.Data.(*Class).Name)
	case VTInstance:
		return fmt.Sprintf("<instance %s>", v.Data.(*Instance).Class.Name)
	case VTFuture:
		return "<future>"
	case VTRegex:
		return fmt.Sprintf("<regex %q>", v.Data.(*regexp.Regexp).String())
	case VTError:
		return fmt.Sprintf("<error %q>", v.Data.(*ErrorValue).Message)
	default:
		return "<unknown>"
	}
}

// Null is the singleton null Value (no payload).
var Null = Value{Tag: VTNull}

// Primitive constructors for convenience.
func Bool(b bool) Value     { return Value{Tag: VTBool, Data: b} }
func Num(f float64) Value   { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value    { return Value{Tag: VTStr, Data: s} }
func Bytes(b []byte) Value  { return Value{Tag: VTBytes, Data: b} }
func Tup(xs []Value) Value  { return Value{Tag: VTTuple, Data: xs} }
func Arr(xs []Value) Value  { return Value{Tag: VTArray, Data: &ArrayObject{Elems: xs}} }
func ArrVal(a *ArrayObject) Value { return Value{Tag: VTArray, Data: a} }
func FunVal(f *Fun) Value   { return Value{Tag: VTFun, Data: f} }
func RegexVal(re *regexp.Regexp) Value { return Value{Tag: VTRegex, Data: re} }
func ErrVal(msg string) Value {
	return Value{Tag: VTError, Data: &ErrorValue{Message: msg}}
}

// ArrayObject is the shared backing store of an array Value. Every holder of
// the Value sees mutations.
type ArrayObject struct {
	Elems []Value
}

// ErrorValue is the payload of thrown errors and Future rejection reasons.
// Script code observes it through the `message` property.
type ErrorValue struct {
	Message string
}

// MapObject is an ordered map preserving insertion order.
//
// Semantics:
//   - Insert order is the iteration order.
//   - Setting a value for a new key appends that key to Keys.
//
// Values of object type are represented as Value{Tag: VTObject, Data: *MapObject}.
type MapObject struct {
	Entries map[string]Value
	Keys    []string

	// Proto is an optional delegate consulted on property misses. Objects use
	// this single link instead of the class chain; see setProto in
	// builtin_core.go.
	Proto *MapObject
}

// NewMapObject returns an empty ordered map.
func NewMapObject() *MapObject {
	return &MapObject{Entries: map[string]Value{}}
}

// SetKey inserts or updates a key, preserving first-insertion order.
func (m *MapObject) SetKey(k string, v Value) {
	if _, ok := m.Entries[k]; !ok {
		m.Keys = append(m.Keys, k)
	}
	m.Entries[k] = v
}

// GetKey retrieves a key.
func (m *MapObject) GetKey(k string) (Value, bool) {
	v, ok := m.Entries[k]
	return v, ok
}

// Obj constructs a VTObject from a plain Go map. Key order equals Go map
// iteration order; hosts that care about order should build via SetKey.
func Obj(m map[string]Value) Value {
	mo := &MapObject{Entries: m}
	mo.Keys = make([]string, 0, len(m))
	for k := range m {
		mo.Keys = append(mo.Keys, k)
	}
	return Value{Tag: VTObject, Data: mo}
}

// ObjVal wraps an existing MapObject.
func ObjVal(mo *MapObject) Value { return Value{Tag: VTObject, Data: mo} }

// Fun represents a function/closure. Functions are first-class Values (VTFun).
//
// Fields:
//   - Params     — parameter names in order.
//   - Body       — function body as an S-expression ("block" node).
//   - Env        — closure environment captured at definition time.
//   - IsAsync    — zoom lambdas: calls return a Future settled by the body.
//   - This       — optional bound receiver (methods detached via obj.m).
//   - NativeName — non-empty iff implemented by a registered native.
type Fun struct {
	Params  []string
	Body    S
	Env     *Env
	IsAsync bool
	This    *Value

	NativeName string // non-empty for registered natives

	// Impl, when non-nil, is called directly instead of going through the
	// native registry. Used for receiver-bound natives (future chaining)
	// built per value.
	Impl NativeImpl
}

// Env is a lexical environment frame with a parent link. Lookups walk
// parent-ward. Use Define to bind in the current frame, Set to update an
// existing visible binding (nearest frame), and Get to retrieve.
type Env struct {
	parent *Env
	table  map[string]Value
}

// NewEnv creates a new lexical frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env { return &Env{parent: parent, table: make(map[string]Value)} }

// Define binds name to v in the current frame, shadowing any outer binding.
func (e *Env) Define(name string, v Value) {
	e.table[name] = v
}

// HasLocal reports whether name is bound in this frame (not ancestors).
func (e *Env) HasLocal(name string) bool {
	_, ok := e.table[name]
	return ok
}

// Set updates the nearest existing binding of name to v. If no binding exists
// in any visible frame, Set returns an error (it does not implicitly define).
func (e *Env) Set(name string, v Value) error {
	if _, ok := e.table[name]; ok {
		e.table[name] = v
		return nil
	}
	if e.parent != nil {
		return e.parent.Set(name, v)
	}
	return fmt.Errorf("undefined variable: %s", name)
}

// Get retrieves the nearest visible binding for name or returns an error.
func (e *Env) Get(name string) (Value, error) {
	if v, ok := e.table[name]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return Value{}, fmt.Errorf("undefined variable: %s", name)
}

// CallCtx is passed to native functions, providing access to bound arguments
// (by parameter name) and the effect scope (where side effects should land).
type CallCtx interface {
	Arg(name string) (Value, bool)
	MustArg(name string) Value
	Env() *Env
}

// NativeImpl is the implementation signature for registered host/native
// functions. Implementations return a Value or raise via the fail* helpers.
type NativeImpl func(ip *Interpreter, ctx CallCtx) Value

////////////////////////////////////////////////////////////////////////////////
//                               PUBLIC INTERPRETER
////////////////////////////////////////////////////////////////////////////////

// Interpreter is the entry point for evaluating PAWX programs.
//
// Public fields:
//   - Core   — built-in environment; parent of Global. Populated by NewInterpreter.
//   - Global — persistent program environment (REPL/script state).
//   - Sched  — the Future scheduler; Drain it after top-level execution.
//
// Construction:
//   - Use NewInterpreter() to obtain a ready-to-use instance. Core natives are
//     installed automatically; Global is an empty child of Core.
type Interpreter struct {
	Global *Env // program-global environment (persistent across EvalPersistent*)
	Core   *Env // built-ins; parent of Global
	Sched  *Scheduler

	// Out receives purr output. Defaults to os.Stdout; tests redirect it.
	Out io.Writer

	native map[string]NativeImpl

	// current statement position, used by fail() when raising runtime errors
	curPos Pos

	// live timers by id; only touched on the interpreter goroutine (natives
	// and drained timer callbacks both run there). See builtin_timers.go.
	timers   map[int]func()
	timerSeq int
}

// NewInterpreter constructs an engine with core natives and an empty Global
// (child of Core).
func NewInterpreter() *Interpreter {
	ip := &Interpreter{}
	ip.Out = os.Stdout
	ip.Core = NewEnv(nil)
	ip.Global = NewEnv(ip.Core)
	ip.native = map[string]NativeImpl{}
	ip.Sched = NewScheduler(ip)

	registerCoreBuiltins(ip)
	registerMathBuiltins(ip)
	registerStringBuiltins(ip)
	registerRegexBuiltins(ip)
	registerFsBuiltins(ip)
	registerTimerBuiltins(ip)
	return ip
}

////////////////////////////////////////////////////////////////////////////////
//                         PUBLIC METHODS (THIN DELEGATIONS)
////////////////////////////////////////////////////////////////////////////////

// EvalSource parses and evaluates source **in a fresh child of Global**.
// Effects (declarations/assignments) land in that ephemeral child; Global is
// unchanged unless the program explicitly mutates it.
//
// Returns the resulting Value or an *Error (as error) on failure.
func (ip *Interpreter) EvalSource(src string) (Value, error) {
	ast, err := Parse(src)
	if err != nil {
		return Null, err
	}
	return ip.runTop(ast, NewEnv(ip.Global))
}

// EvalPersistentSource parses and evaluates source **in Global** (REPL-style).
// Effects directly mutate Global. Returns Value or *Error (as error).
func (ip *Interpreter) EvalPersistentSource(src string) (Value, error) {
	ast, err := ParseInteractive(src)
	if err != nil {
		return Null, err
	}
	return ip.runTop(ast, ip.Global)
}

// EvalAST evaluates an AST in the provided environment exactly as given.
// Hosts use this to control scoping (e.g., per-request envs, sandboxes).
// Returns Value or *Error (as error).
func (ip *Interpreter) EvalAST(ast S, env *Env) (Value, error) {
	return ip.runTop(ast, env)
}

// Apply applies a function Value to the provided argument Values. Missing
// arguments bind to null; extra arguments are ignored (matching script-level
// call semantics). Runtime failures inside the callee surface as panics and
// are caught by Eval* callers; hosts calling Apply directly should guard with
// the same recover discipline or use ApplySafe.
func (ip *Interpreter) Apply(fn Value, args []Value) Value {
	return ip.applyArgs(fn, args)
}

// Call0 invokes a function with zero arguments (equivalent to Apply(fn, nil)).
func (ip *Interpreter) Call0(fn Value) Value { return ip.applyArgs(fn, nil) }

// ApplySafe applies fn and converts engine panics into (*Error, Value) form.
func (ip *Interpreter) ApplySafe(fn Value, args []Value) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ip.recoverToError(r)
			v = Null
		}
	}()
	return ip.applyArgs(fn, args), nil
}

// RegisterNative installs a host/native function into Core and exposes it as
// a first-class function Value available by `name` to programs.
//
// Contract:
//   - `params` declares parameter names (bound positionally; missing -> null).
//   - `impl` is invoked with (ip, CallCtx) at runtime.
//   - The created function is placed in Core under `name`.
func (ip *Interpreter) RegisterNative(name string, params []string, impl NativeImpl) {
	if ip.native == nil {
		ip.native = map[string]NativeImpl{}
	}
	ip.native[name] = impl

	if ip.Core == nil {
		ip.Core = NewEnv(nil)
	}
	ip.Core.Define(name, FunVal(&Fun{
		Params:     params,
		Body:       S{"native", name}, // sentinel for debugging; not executed
		Env:        ip.Core,
		NativeName: name,
	}))
}

// FormatValue renders a Value in its display form (the same form purr and
// the REPL echo print).
func FormatValue(v Value) string { return stringify(v) }

// NativeFun builds an unregistered native function Value with the given
// params and impl, for natives grouped under namespace objects (Fs.readText
// and friends) rather than bound as top-level names.
func (ip *Interpreter) NativeFun(name string, params []string, impl NativeImpl) Value {
	ip.native[name] = impl
	return FunVal(&Fun{
		Params:     params,
		Body:       S{"native", name},
		Env:        ip.Core,
		NativeName: name,
	})
}

//// END_OF_PUBLIC
