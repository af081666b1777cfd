// interpreter_exec.go — PRIVATE: the tree-walking execution engine.
//   - Walks the S-expression AST produced by parser.go.
//   - Statements flow through exec(); expressions through eval().
//   - Non-local control (return/break/continue/throw and runtime failures)
//     travels as panics and is normalized to *Error at the runTop boundary.
//   - No exported identifiers here. The public facade lives in interpreter.go.

package pawx

import (
	"fmt"
	"math"
	"time"
)

// runTop executes a "prog" node in env and is the recover boundary that turns
// engine panics into *Error values. The result is the value of the last
// expression statement (REPL echo), or null.
func (ip *Interpreter) runTop(ast S, env *Env) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ip.recoverToError(r)
			v = Null
		}
	}()

	v = Null
	for _, raw := range ast[1:] {
		v = ip.exec(raw.(S), env)
	}
	return v, nil
}

// posOf extracts the trailing source position statement nodes carry.
func posOf(n S) (Pos, bool) {
	if len(n) > 0 {
		if p, ok := n[len(n)-1].(Pos); ok {
			return p, true
		}
	}
	return Pos{}, false
}

// ─────────────────────────────── statements ─────────────────────────────────

func (ip *Interpreter) exec(n S, env *Env) Value {
	if p, ok := posOf(n); ok {
		ip.curPos = p
	}

	switch tag(n) {
	case "prog", "block":
		inner := env
		if tag(n) == "block" {
			inner = NewEnv(env)
		}
		last := Null
		for _, raw := range n[1:] {
			last = ip.exec(raw.(S), inner)
		}
		return last

	case "decl":
		name := n[1].(string)
		if env.HasLocal(name) {
			failName("variable already declared: " + name)
		}
		v := Null
		if n[2] != nil {
			v = ip.eval(n[2].(S), env)
		}
		env.Define(name, v)
		return Null

	case "func":
		name := n[1].(string)
		if env.HasLocal(name) {
			failName("function already declared: " + name)
		}
		// the binding exists before the body runs, so the closure can
		// call itself by name
		env.Define(name, FunVal(&Fun{
			Params:  n[2].([]string),
			Body:    n[3].(S),
			Env:     env,
			IsAsync: n[4].(bool),
		}))
		return Null

	case "expr":
		return ip.eval(n[1].(S), env)

	case "purr":
		v := ip.eval(n[1].(S), env)
		fmt.Fprintln(ip.Out, stringify(v))
		return Null

	case "nap":
		ms := needNum(ip.eval(n[1].(S), env), "nap")
		if ms > 0 {
			time.Sleep(time.Duration(ms * float64(time.Millisecond)))
		}
		return Null

	case "if":
		if truthy(ip.eval(n[1].(S), env)) {
			ip.exec(n[2].(S), env)
		} else if n[3] != nil {
			ip.exec(n[3].(S), env)
		}
		return Null

	case "while":
		cond, body := n[1].(S), n[2].(S)
		for truthy(ip.eval(cond, env)) {
			if broke := ip.loopIteration(body, env); broke {
				break
			}
		}
		return Null

	case "return":
		v := Null
		if n[1] != nil {
			v = ip.eval(n[1].(S), env)
		}
		panic(returnSig{v: v})

	case "break":
		panic(breakSig{})

	case "continue":
		panic(continueSig{})

	case "throw":
		panic(throwSig{v: ip.eval(n[1].(S), env)})

	case "try":
		ip.execTry(n, env)
		return Null

	case "clowder":
		name := n[1].(string)
		if env.HasLocal(name) {
			failName("class already declared: " + name)
		}
		env.Define(name, ClassVal(ip.buildClass(n, env)))
		return Null
	}

	fail("unknown statement: " + tag(n))
	return Null
}

// loopIteration runs one body pass, absorbing continue and reporting break.
func (ip *Interpreter) loopIteration(body S, env *Env) (broke bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch r.(type) {
		case breakSig:
			broke = true
		case continueSig:
			// next iteration
		default:
			panic(r)
		}
	}()
	ip.exec(body, NewEnv(env))
	return false
}

// execTry runs ("try", tryBlk, catchName, catchBlk, finallyBlk, pos). The
// catch clause sees thrown values directly and runtime failures as error
// values. finally always runs; an escape from finally wins over the pending
// outcome.
func (ip *Interpreter) execTry(n S, env *Env) {
	catchName := n[2].(string)
	var catchBlk, finallyBlk S
	if n[3] != nil {
		catchBlk = n[3].(S)
	}
	if n[4] != nil {
		finallyBlk = n[4].(S)
	}

	caught, escape := ip.runCaught(n[1].(S), env)

	if caught != nil && catchBlk != nil {
		catchEnv := NewEnv(env)
		if catchName != "" {
			catchEnv.Define(catchName, *caught)
		}
		// a throw inside catch propagates rather than re-entering this catch
		caught, escape = ip.runCaught(catchBlk, catchEnv)
	}

	if finallyBlk != nil {
		ip.exec(finallyBlk, NewEnv(env))
	}

	if escape != nil {
		panic(escape)
	}
	if caught != nil {
		panic(throwSig{v: *caught})
	}
}

// runCaught executes a block and intercepts catchable failures: thrown values
// bind as-is, runtime failures bind as error values. Control signals
// (return/break/continue) are returned for re-raising after finally.
func (ip *Interpreter) runCaught(blk S, env *Env) (caught *Value, escape any) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch sig := r.(type) {
		case throwSig:
			caught = &sig.v
		case rtErr:
			ev := ErrVal(sig.msg)
			caught = &ev
		case returnSig, breakSig, continueSig:
			escape = r
		default:
			panic(r)
		}
	}()
	ip.exec(blk, NewEnv(env))
	return nil, nil
}

// ─────────────────────────────── expressions ────────────────────────────────

func (ip *Interpreter) eval(n S, env *Env) Value {
	switch tag(n) {
	case "null":
		return Null
	case "bool":
		return Bool(n[1].(bool))
	case "num":
		return Num(n[1].(float64))
	case "str":
		return Str(n[1].(string))

	case "id":
		v, err := env.Get(n[1].(string))
		if err != nil {
			failName(err.Error())
		}
		return v

	case "this":
		v, err := env.Get("this")
		if err != nil {
			fail("'this' used outside of a method")
		}
		return v

	case "unop":
		rhs := ip.eval(n[2].(S), env)
		switch n[1].(string) {
		case "-":
			return Num(-needNum(rhs, "-"))
		case "!":
			return Bool(!truthy(rhs))
		}

	case "binop":
		return binaryOp(n[1].(string), ip.eval(n[2].(S), env), ip.eval(n[3].(S), env))

	case "logic":
		left := ip.eval(n[2].(S), env)
		if n[1].(string) == "&&" {
			if !truthy(left) {
				return left
			}
		} else if truthy(left) {
			return left
		}
		return ip.eval(n[3].(S), env)

	case "assign":
		v := ip.eval(n[2].(S), env)
		if err := env.Set(n[1].(string), v); err != nil {
			failName(err.Error())
		}
		return v

	case "set":
		recv := ip.eval(n[1].(S), env)
		v := ip.eval(n[3].(S), env)
		ip.setProp(recv, n[2].(string), v)
		return v

	case "idxset":
		recv := ip.eval(n[1].(S), env)
		idx := ip.eval(n[2].(S), env)
		v := ip.eval(n[3].(S), env)
		ip.setIndex(recv, idx, v)
		return v

	case "postincr", "postdecr":
		return ip.step(n, env)

	case "call":
		callee := ip.eval(n[1].(S), env)
		args := make([]Value, 0, len(n)-2)
		for _, raw := range n[2:] {
			args = append(args, ip.eval(raw.(S), env))
		}
		return ip.applyArgs(callee, args)

	case "get":
		return ip.getProp(ip.eval(n[1].(S), env), n[2].(string))

	case "idx":
		return ip.index(ip.eval(n[1].(S), env), ip.eval(n[2].(S), env))

	case "lambda":
		return FunVal(&Fun{
			Params:  n[1].([]string),
			Body:    n[2].(S),
			Env:     env,
			IsAsync: n[3].(bool),
		})

	case "array":
		elems := make([]Value, 0, len(n)-1)
		for _, raw := range n[1:] {
			elems = append(elems, ip.eval(raw.(S), env))
		}
		return Arr(elems)

	case "tuple":
		elems := make([]Value, 0, len(n)-1)
		for _, raw := range n[1:] {
			elems = append(elems, ip.eval(raw.(S), env))
		}
		return Tup(elems)

	case "object":
		mo := NewMapObject()
		for _, raw := range n[1:] {
			pair := raw.(S)
			mo.SetKey(pair[1].(string), ip.eval(pair[2].(S), env))
		}
		return ObjVal(mo)

	case "new":
		name := n[1].(string)
		cv, err := env.Get(name)
		if err != nil {
			failName("undefined class: " + name)
		}
		if cv.Tag != VTClass {
			failType("'" + name + "' is not a class")
		}
		args := make([]Value, 0, len(n)-2)
		for _, raw := range n[2:] {
			args = append(args, ip.eval(raw.(S), env))
		}
		return ip.constructInstance(cv.Data.(*Class), args)
	}

	fail("unknown expression: " + tag(n))
	return Null
}

// step implements the postfix ++ and -- forms: read, require a number, write
// back, yield the old value.
func (ip *Interpreter) step(n S, env *Env) Value {
	delta := 1.0
	if tag(n) == "postdecr" {
		delta = -1
	}
	target := n[1].(S)

	var old Value
	switch tag(target) {
	case "id":
		name := target[1].(string)
		v, err := env.Get(name)
		if err != nil {
			failName(err.Error())
		}
		old = v
		if err := env.Set(name, Num(needNum(v, "++")+delta)); err != nil {
			failName(err.Error())
		}
	case "get":
		recv := ip.eval(target[1].(S), env)
		name := target[2].(string)
		old = ip.getProp(recv, name)
		ip.setProp(recv, name, Num(needNum(old, "++")+delta))
	case "idx":
		recv := ip.eval(target[1].(S), env)
		idx := ip.eval(target[2].(S), env)
		old = ip.index(recv, idx)
		ip.setIndex(recv, idx, Num(needNum(old, "++")+delta))
	}
	return old
}

// ─────────────────────────────── indexing ───────────────────────────────────

// intIndex validates a numeric index against length, raising range errors for
// fractional, negative, or out-of-bounds values.
func intIndex(v Value, length int, what string) int {
	f := needNum(v, "index")
	i := int(f)
	if float64(i) != f {
		failRange("index into " + what + " must be a whole number")
	}
	if i < 0 || i >= length {
		failRange(what + " index out of bounds")
	}
	return i
}

func (ip *Interpreter) index(recv, idx Value) Value {
	switch recv.Tag {
	case VTArray:
		elems := recv.Data.(*ArrayObject).Elems
		return elems[intIndex(idx, len(elems), "array")]
	case VTTuple:
		elems := recv.Data.([]Value)
		return elems[intIndex(idx, len(elems), "tuple")]
	case VTStr:
		s := recv.Data.(string)
		return Str(string(s[intIndex(idx, len(s), "string")]))
	case VTBytes:
		b := recv.Data.([]byte)
		return Num(float64(b[intIndex(idx, len(b), "bytes")]))
	case VTObject, VTInstance:
		if idx.Tag != VTStr {
			failType("object index must be a string")
		}
		return ip.getProp(recv, idx.Data.(string))
	}
	failType("cannot index " + typeName(recv))
	return Null
}

func (ip *Interpreter) setIndex(recv, idx, v Value) {
	switch recv.Tag {
	case VTArray:
		ao := recv.Data.(*ArrayObject)
		ao.Elems[intIndex(idx, len(ao.Elems), "array")] = v
		return
	case VTTuple:
		fail("tuples are immutable")
	case VTBytes:
		b := recv.Data.([]byte)
		n := needNum(v, "byte")
		if n < 0 || n > 255 || n != math.Trunc(n) {
			failRange("byte value must be an integer in 0..255")
		}
		b[intIndex(idx, len(b), "bytes")] = byte(n)
		return
	case VTObject, VTInstance:
		if idx.Tag != VTStr {
			failType("object index must be a string")
		}
		ip.setProp(recv, idx.Data.(string), v)
		return
	}
	failType("cannot index " + typeName(recv))
}

// ─────────────────────────────── application ────────────────────────────────

// callCtx is the CallCtx handed to natives: positional args bound by declared
// parameter name, plus the frame the call effects land in.
type callCtx struct {
	args map[string]Value
	env  *Env
}

func (c *callCtx) Arg(name string) (Value, bool) {
	v, ok := c.args[name]
	if !ok || v.Tag == VTNull {
		return v, false
	}
	return v, true
}

func (c *callCtx) MustArg(name string) Value {
	if v, ok := c.args[name]; ok && v.Tag != VTNull {
		return v
	}
	fail("missing argument: " + name)
	return Null
}

func (c *callCtx) Env() *Env { return c.env }

// applyArgs is the single application path for every callable: user
// functions, natives, bound methods, and async bodies. Missing arguments
// bind to null; extra arguments are ignored.
func (ip *Interpreter) applyArgs(fn Value, args []Value) Value {
	if fn.Tag != VTFun {
		failType(typeName(fn) + " is not callable")
	}
	f := fn.Data.(*Fun)

	if f.Impl != nil || f.NativeName != "" {
		impl := f.Impl
		if impl == nil {
			impl = ip.native[f.NativeName]
			if impl == nil {
				fail("unbound native: " + f.NativeName)
			}
		}
		ctx := &callCtx{args: map[string]Value{}, env: NewEnv(f.Env)}
		for i, p := range f.Params {
			if i < len(args) {
				ctx.args[p] = args[i]
			} else {
				ctx.args[p] = Null
			}
		}
		return impl(ip, ctx)
	}

	if f.IsAsync {
		sync := *f
		sync.IsAsync = false
		return FutureVal(ip.Sched.RunAsync(FunVal(&sync), args))
	}

	callEnv := NewEnv(f.Env)
	if f.This != nil {
		callEnv.Define("this", *f.This)
	}
	for i, p := range f.Params {
		if i < len(args) {
			callEnv.Define(p, args[i])
		} else {
			callEnv.Define(p, Null)
		}
	}
	return ip.runBody(f.Body, callEnv)
}

// runBody executes a function body, converting `return` into the call's
// value. Falling off the end yields null.
func (ip *Interpreter) runBody(body S, env *Env) (out Value) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if sig, ok := r.(returnSig); ok {
			out = sig.v
			return
		}
		panic(r)
	}()
	ip.exec(body, env)
	return Null
}
