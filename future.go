// future.go — PRIVATE: the promise engine and its scheduler.
//
// Model:
//   - A Future is a one-shot settlement cell: Pending until fulfilled or
//     rejected exactly once. A second settle attempt is ignored.
//   - Settling a Future never runs user code inline. Continuations are pushed
//     onto the scheduler's delivery queue and run, in registration order, on
//     the single goroutine that drains the queue. Script code therefore never
//     executes concurrently with itself.
//   - Worker goroutines (blocking I/O natives) hand their result back by
//     enqueueing a settle closure; they never touch interpreter state.
//   - Drain runs the queue to quiescence (empty queue and no in-flight
//     workers) and then reports rejected Futures nobody subscribed to.

package pawx

import (
	"errors"
	"sync"
	"time"
)

type futureState int

const (
	futPending futureState = iota
	futFulfilled
	futRejected
)

// Future is the runtime representation of a pending asynchronous result.
// All fields are guarded by mu; continuations fire on the drain goroutine.
type Future struct {
	mu      sync.Mutex
	state   futureState
	result  Value
	conts   []continuation
	handled bool // some subscriber will observe a rejection
	sched   *Scheduler
}

// continuation is one registered reaction pair. Either side may be nil, in
// which case the settlement passes through untouched.
type continuation struct {
	onFulfil func(Value)
	onReject func(Value)
}

func FutureVal(f *Future) Value { return Value{Tag: VTFuture, Data: f} }

// NewFuture creates a pending Future tracked by the scheduler for
// unhandled-rejection reporting.
func (s *Scheduler) NewFuture() *Future {
	f := &Future{sched: s}
	s.mu.Lock()
	s.tracked = append(s.tracked, f)
	s.mu.Unlock()
	return f
}

// Fulfil settles the Future with a success value. No-ops if already settled.
func (f *Future) Fulfil(v Value) { f.settle(futFulfilled, v) }

// Reject settles the Future with a failure value. No-ops if already settled.
func (f *Future) Reject(v Value) { f.settle(futRejected, v) }

func (f *Future) settle(st futureState, v Value) {
	f.mu.Lock()
	if f.state != futPending {
		f.mu.Unlock()
		return
	}
	f.state = st
	f.result = v
	conts := f.conts
	f.conts = nil
	f.mu.Unlock()

	for _, c := range conts {
		f.deliver(c, st, v)
	}
}

// subscribe registers a continuation. On an already-settled Future the
// reaction still fires asynchronously, never inline.
func (f *Future) subscribe(c continuation) {
	f.mu.Lock()
	f.handled = true
	if f.state == futPending {
		f.conts = append(f.conts, c)
		f.mu.Unlock()
		return
	}
	st, v := f.state, f.result
	f.mu.Unlock()
	f.deliver(c, st, v)
}

func (f *Future) deliver(c continuation, st futureState, v Value) {
	f.sched.enqueue(func() {
		if st == futFulfilled {
			if c.onFulfil != nil {
				c.onFulfil(v)
			}
		} else {
			if c.onReject != nil {
				c.onReject(v)
			}
		}
	})
}

////////////////////////////////////////////////////////////////////////////////
//                                  SCHEDULER
////////////////////////////////////////////////////////////////////////////////

// Scheduler owns the delivery queue and the worker accounting. One Scheduler
// per Interpreter; Drain must be called from the goroutine that evaluates
// script code.
type Scheduler struct {
	ip *Interpreter

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []func()
	inflight int // blocking workers that have not enqueued their settle yet

	tracked []*Future
}

func NewScheduler(ip *Interpreter) *Scheduler {
	s := &Scheduler{ip: ip}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *Scheduler) enqueue(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.cond.Signal()
	s.mu.Unlock()
}

// GoBlocking runs work on its own goroutine and returns a Future settled with
// its result. The work function must not touch interpreter state; it computes
// a host value (or error) and the settle happens back on the drain goroutine.
func (s *Scheduler) GoBlocking(work func() (Value, error)) *Future {
	f := s.NewFuture()
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	go func() {
		v, err := runBlocking(work)
		s.mu.Lock()
		s.inflight--
		s.queue = append(s.queue, func() {
			if err != nil {
				f.Reject(ErrVal(err.Error()))
			} else {
				f.Fulfil(v)
			}
		})
		s.cond.Signal()
		s.mu.Unlock()
	}()
	return f
}

// runBlocking shields the worker goroutine from fail() panics, turning a
// stray runtime failure inside a job into a rejection instead of a crash.
func runBlocking(work func() (Value, error)) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			re, ok := r.(rtErr)
			if !ok {
				panic(r)
			}
			err = errors.New(re.msg)
		}
	}()
	return work()
}

// After enqueues fn for the drain goroutine once d has elapsed. The pending
// delay counts as an in-flight worker, so Drain waits for it. The returned
// cancel stops the delivery (a no-op once fn has been enqueued).
func (s *Scheduler) After(d time.Duration, fn func()) (cancel func()) {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	var once sync.Once
	settle := func(run bool) {
		once.Do(func() {
			s.mu.Lock()
			s.inflight--
			if run {
				s.queue = append(s.queue, fn)
			}
			s.cond.Signal()
			s.mu.Unlock()
		})
	}
	t := time.AfterFunc(d, func() { settle(true) })
	return func() {
		t.Stop()
		settle(false)
	}
}

// Every enqueues fn for the drain goroutine once per period until cancelled.
// The ticker holds an in-flight slot for its whole lifetime: Drain will not
// finish while an interval is live, so intervals must be cleared for a
// program to terminate. A tick already queued when cancel runs still fires;
// callers gate staleness themselves (see builtin_timers.go).
func (s *Scheduler) Every(d time.Duration, fn func()) (cancel func()) {
	if d <= 0 {
		d = time.Millisecond
	}
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	stop := make(chan struct{})
	var once sync.Once
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				s.enqueue(fn)
			}
		}
	}()
	return func() {
		once.Do(func() {
			close(stop)
			s.mu.Lock()
			s.inflight--
			s.cond.Signal()
			s.mu.Unlock()
		})
	}
}

// RunAsync invokes an async function body as a queued task and returns the
// Future it settles. A `return` fulfils (adopting a returned Future), a throw
// or runtime failure rejects, falling off the end fulfils with null.
func (s *Scheduler) RunAsync(fn Value, args []Value) *Future {
	f := s.NewFuture()
	s.enqueue(func() {
		v, rej := s.runGuarded(fn, args)
		if rej != nil {
			f.Reject(*rej)
			return
		}
		s.settleFrom(f, v)
	})
	return f
}

// runGuarded applies fn, translating engine panics into a rejection value:
// the thrown payload, or an error value wrapping a runtime failure.
func (s *Scheduler) runGuarded(fn Value, args []Value) (v Value, rejected *Value) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch sig := r.(type) {
		case throwSig:
			rejected = &sig.v
		case rtErr:
			ev := ErrVal(sig.msg)
			rejected = &ev
		default:
			panic(r)
		}
	}()
	return s.ip.applyArgs(fn, args), nil
}

// settleFrom fulfils target with v, unless v is itself a Future, in which
// case target adopts its eventual settlement.
func (s *Scheduler) settleFrom(target *Future, v Value) {
	if v.Tag == VTFuture {
		inner := v.Data.(*Future)
		inner.subscribe(continuation{
			onFulfil: target.Fulfil,
			onReject: target.Reject,
		})
		return
	}
	target.Fulfil(v)
}

// Drain runs queued continuations until the engine is quiescent: the queue is
// empty and no blocking workers remain. It returns one *Error per rejected
// Future that never gained a subscriber.
func (s *Scheduler) Drain() []error {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && s.inflight > 0 {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			break
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		fn()
	}

	var errs []error
	s.mu.Lock()
	for _, f := range s.tracked {
		f.mu.Lock()
		if f.state == futRejected && !f.handled {
			errs = append(errs, &Error{
				Kind: DiagRejection,
				Msg:  "uncaught (in future): " + stringify(f.result),
			})
		}
		f.mu.Unlock()
	}
	s.tracked = nil
	s.mu.Unlock()
	return errs
}

////////////////////////////////////////////////////////////////////////////////
//                              CHAINING COMBINATORS
////////////////////////////////////////////////////////////////////////////////

// futureMember resolves then/catch/finally on a Future receiver. Each returns
// a function that, applied to a callback, yields the derived Future.
func (ip *Interpreter) futureMember(f *Future, name string) Value {
	switch name {
	case "then":
		return boundNative([]string{"onFulfilled"}, func(ip *Interpreter, ctx CallCtx) Value {
			return FutureVal(ip.Sched.then(f, ctx.MustArg("onFulfilled"), true))
		})
	case "catch":
		return boundNative([]string{"onRejected"}, func(ip *Interpreter, ctx CallCtx) Value {
			return FutureVal(ip.Sched.then(f, ctx.MustArg("onRejected"), false))
		})
	case "finally":
		return boundNative([]string{"onSettled"}, func(ip *Interpreter, ctx CallCtx) Value {
			return FutureVal(ip.Sched.finally(f, ctx.MustArg("onSettled")))
		})
	}
	fail("undefined property '" + name + "' on future")
	return Null
}

// then derives a Future by reacting to one side of the settlement. With
// onFulfilSide the callback consumes success and rejections pass through;
// otherwise the callback consumes rejection and successes pass through.
func (s *Scheduler) then(f *Future, cb Value, onFulfilSide bool) *Future {
	if cb.Tag != VTFun {
		failType("future callback is not a function")
	}
	derived := s.NewFuture()

	react := func(v Value) {
		out, rej := s.runGuarded(cb, []Value{v})
		if rej != nil {
			derived.Reject(*rej)
			return
		}
		s.settleFrom(derived, out)
	}

	c := continuation{}
	if onFulfilSide {
		c.onFulfil = react
		c.onReject = derived.Reject
	} else {
		c.onFulfil = derived.Fulfil
		c.onReject = react
	}
	f.subscribe(c)
	return derived
}

// finally runs the callback with no arguments on either outcome, then passes
// the original settlement through. A throw inside the callback wins.
func (s *Scheduler) finally(f *Future, cb Value) *Future {
	if cb.Tag != VTFun {
		failType("future callback is not a function")
	}
	derived := s.NewFuture()

	pass := func(settle func(Value)) func(Value) {
		return func(v Value) {
			if _, rej := s.runGuarded(cb, nil); rej != nil {
				derived.Reject(*rej)
				return
			}
			settle(v)
		}
	}
	f.subscribe(continuation{
		onFulfil: pass(derived.Fulfil),
		onReject: pass(derived.Reject),
	})
	return derived
}

// boundNative builds an anonymous receiver-bound native function.
func boundNative(params []string, impl NativeImpl) Value {
	return FunVal(&Fun{Params: params, Body: S{"native", "<bound>"}, Impl: impl})
}
