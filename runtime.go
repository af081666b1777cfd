// runtime.go
//
// This file wires the engine into a host-facing Runtime *against the stable
// surface* defined in interpreter.go: script execution with source-labeled
// diagnostics, future draining, and unhandled-rejection reporting. The CLI
// and the embedding tests go through this layer rather than the Interpreter
// directly.

package pawx

import (
	"errors"
	"os"
)

// Version is the interpreter release string reported by the CLI.
const Version = "0.1.0"

// Runtime couples an Interpreter with the run-to-quiescence discipline a
// script execution needs: evaluate the top level, then drain the scheduler
// so every settled Future has delivered its continuations.
type Runtime struct {
	IP *Interpreter
}

// NewRuntime returns a fully-initialized runtime with all standard natives.
func NewRuntime() *Runtime {
	return &Runtime{IP: NewInterpreter()}
}

// RunFile executes a script file in the runtime's Global environment.
func (rt *Runtime) RunFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return rt.RunScript(path, string(b))
}

// RunScript executes src in the runtime's Global environment, drains the
// scheduler, and reports failures with caret diagnostics labeled by name.
// Unhandled rejections surface as the returned error after a clean run.
func (rt *Runtime) RunScript(name, src string) error {
	ast, err := Parse(src)
	if err != nil {
		return WrapErrorWithName(err, name, src)
	}
	if _, err := rt.IP.EvalAST(ast, rt.IP.Global); err != nil {
		return WrapErrorWithName(err, name, src)
	}
	return errors.Join(rt.IP.Sched.Drain()...)
}

// Eval evaluates one REPL line persistently and drains before returning, so
// prompt-driven async work settles between inputs. The returned Value is the
// last expression's result.
func (rt *Runtime) Eval(src string) (Value, error) {
	v, err := rt.IP.EvalPersistentSource(src)
	if err != nil {
		return Null, WrapErrorWithSource(err, src)
	}
	if derr := errors.Join(rt.IP.Sched.Drain()...); derr != nil {
		return v, derr
	}
	return v, nil
}
