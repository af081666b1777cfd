// builtin_math.go
//
// The Math namespace: constants PI and E9 plus abs/ceil/floor/round/sqrt/
// pow/min/max/random. All functions take and return Numbers; argument misuse
// is a hard type error.

package pawx

import (
	"math"
	"math/rand"
)

func registerMathBuiltins(ip *Interpreter) {
	ns := ip.namespace("Math")

	ns.val("PI", Num(math.Pi))
	ns.val("E9", Num(math.E))

	one := func(name string, f func(float64) float64) {
		ns.fn(name, []string{"x"}, func(_ *Interpreter, ctx CallCtx) Value {
			return Num(f(argNum(ctx, "x", "Math."+name)))
		})
	}
	one("abs", math.Abs)
	one("ceil", math.Ceil)
	one("floor", math.Floor)
	one("round", math.Round)
	one("sqrt", math.Sqrt)

	ns.fn("pow", []string{"base", "exp"}, func(_ *Interpreter, ctx CallCtx) Value {
		return Num(math.Pow(argNum(ctx, "base", "Math.pow"), argNum(ctx, "exp", "Math.pow")))
	})

	ns.fn("min", []string{"a", "b"}, func(_ *Interpreter, ctx CallCtx) Value {
		return Num(math.Min(argNum(ctx, "a", "Math.min"), argNum(ctx, "b", "Math.min")))
	})

	ns.fn("max", []string{"a", "b"}, func(_ *Interpreter, ctx CallCtx) Value {
		return Num(math.Max(argNum(ctx, "a", "Math.max"), argNum(ctx, "b", "Math.max")))
	})

	// Math.random() -> Number in [0, 1)
	ns.fn("random", []string{}, func(_ *Interpreter, _ CallCtx) Value {
		return Num(rand.Float64())
	})

	ns.install()
}
