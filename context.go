package rtkernel

// Thread is a running thread's handle to the kernel, passed as the first
// argument to its ThreadFunc. Instead of building an initial register
// frame and a synthesized return-to-unprivileged link register value,
// ThreadCreate spawns a goroutine parked on the kernel's scheduling
// condition variable, and Thread is the capability that goroutine uses
// to cooperate with the scheduler.
type Thread struct {
	k   *Kernel
	idx int
}

// killSignal unwinds a thread's goroutine stack after Kill or a fatal
// contract violation (insufficient mutex ceiling, exiting while holding a
// mutex held by main/idle). It is caught by runThread's recover and must
// never escape a ThreadFunc on its own.
type killSignal struct{}

// Index returns the thread's TCB table index (its priority, for user
// threads).
func (t *Thread) Index() int { return t.idx }

// waitForTurnLocked parks the calling goroutine until the kernel selects idx as
// the running thread, or until idx's slot has been recycled into a new
// generation (in which case the stale goroutine must stop entirely
// rather than believe it is still runnable).
//
// Callers must hold k.mu on entry; it is released while waiting and
// re-acquired before returning, following sync.Cond's contract.
func (k *Kernel) waitForTurnLocked(idx int, generation uint64) {
	for k.running != idx {
		if k.tcbs[idx].generation != generation {
			panic(killSignal{})
		}
		k.cond.Wait()
	}
}

// runThread is the goroutine body spawned by ThreadCreate for every user
// and idle thread. The goroutine parks immediately, and only calls fn
// once the scheduler has actually selected it to run for the first time.
// A normal return from fn takes the same exit path as an explicit
// Thread.Kill.
func (k *Kernel) runThread(idx int, generation uint64) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch r.(type) {
		case killSignal:
			return
		default:
			panic(r)
		}
	}()

	k.mu.Lock()
	k.waitForTurnLocked(idx, generation)
	t := k.tcbs[idx]
	fn, arg := t.fn, t.arg
	k.mu.Unlock()

	fn(&Thread{k: k, idx: idx}, arg)

	k.threadExit(idx, generation)
}

// CheckPoint is the cooperative preemption point a ThreadFunc must call
// periodically (e.g. once per loop iteration of real work). If the
// scheduler has since selected a different thread to run — because this
// thread exhausted its budget, was preempted by a tick, or blocked on a
// mutex — CheckPoint parks until it is selected again. It never returns
// for a thread whose slot has been recycled (thread_kill followed by
// reuse): that goroutine unwinds via killSignal instead.
func (t *Thread) CheckPoint() {
	k := t.k
	k.mu.Lock()
	defer k.mu.Unlock()
	gen := k.tcbs[t.idx].generation
	k.waitForTurnLocked(t.idx, gen)
}
