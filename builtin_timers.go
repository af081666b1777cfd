// builtin_timers.go
//
// JavaScript-style timers as top-level globals:
//
//   - setTimeout(callback, ms)  -> Number (timer id)
//   - setInterval(callback, ms) -> Number (timer id)
//   - clearTimeout(id)          -> Null
//   - clearInterval(id)         -> Null
//
// Timer threads never run script code: they enqueue the fire onto the
// scheduler's delivery queue, so callbacks execute on the interpreter
// goroutine during Drain. A pending timeout or live interval counts as
// in-flight work, which means a program does not finish until its timeouts
// have fired and its intervals are cleared.
//
// Cancellation is checked again at delivery time against the live-timer
// registry, so a tick that was already queued when clearInterval ran is
// dropped instead of firing a cleared timer.

package pawx

import (
	"math"
	"time"
)

func registerTimerBuiltins(ip *Interpreter) {
	ip.timers = map[int]func(){}

	ip.RegisterNative("setTimeout", []string{"callback", "ms"}, func(ip *Interpreter, ctx CallCtx) Value {
		cb := argFun(ctx, "callback", "setTimeout")
		ms := argNum(ctx, "ms", "setTimeout")
		id := ip.nextTimerID()
		ip.timers[id] = ip.Sched.After(msDuration(ms), func() {
			if _, live := ip.timers[id]; !live {
				return
			}
			delete(ip.timers, id)
			fireTimer(ip, cb)
		})
		return Num(float64(id))
	})

	ip.RegisterNative("setInterval", []string{"callback", "ms"}, func(ip *Interpreter, ctx CallCtx) Value {
		cb := argFun(ctx, "callback", "setInterval")
		ms := argNum(ctx, "ms", "setInterval")
		id := ip.nextTimerID()
		ip.timers[id] = ip.Sched.Every(msDuration(ms), func() {
			if _, live := ip.timers[id]; !live {
				return
			}
			fireTimer(ip, cb)
		})
		return Num(float64(id))
	})

	ip.RegisterNative("clearTimeout", []string{"id"}, func(ip *Interpreter, ctx CallCtx) Value {
		ip.clearTimer(timerID(ctx, "clearTimeout"))
		return Null
	})

	ip.RegisterNative("clearInterval", []string{"id"}, func(ip *Interpreter, ctx CallCtx) Value {
		ip.clearTimer(timerID(ctx, "clearInterval"))
		return Null
	})
}

func (ip *Interpreter) nextTimerID() int {
	ip.timerSeq++
	return ip.timerSeq
}

func (ip *Interpreter) clearTimer(id int) {
	cancel, ok := ip.timers[id]
	if !ok {
		return // unknown or already-fired ids are ignored
	}
	delete(ip.timers, id)
	cancel()
}

func timerID(ctx CallCtx, fn string) int {
	f := argNum(ctx, "id", fn)
	if f != math.Trunc(f) {
		failType(fn + " expects id: Number")
	}
	return int(f)
}

func msDuration(ms float64) time.Duration {
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// fireTimer applies a timer callback with no arguments. A throw or runtime
// failure inside the callback has no catch site of its own, so it is parked
// on a rejected Future and surfaces through Drain's rejection report.
func fireTimer(ip *Interpreter, cb Value) {
	if _, rej := ip.Sched.runGuarded(cb, nil); rej != nil {
		ip.Sched.NewFuture().Reject(*rej)
	}
}
