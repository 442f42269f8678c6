package rtkernel

import "github.com/google/uuid"

// Reserved priority slots. User priorities occupy [0, MaxUserPriority];
// the idle and fallback-main threads live one and two slots past them.
const (
	MaxUserPriority = 13
	MaxUserThreads  = MaxUserPriority + 1 // 14

	idleIndex = MaxUserThreads     // 14
	mainIndex = MaxUserThreads + 1 // 15
	numSlots  = MaxUserThreads + 2 // 16, total TCB table size
)

// ThreadState is a TCB's position in its lifecycle.
type ThreadState uint8

const (
	// StateInit is the slot's state before creation and after kill; the
	// slot is free for reuse by a future ThreadCreate.
	StateInit ThreadState = iota
	// StateWaiting means the thread is parked until its next period
	// boundary. (A thread blocked in Lock stays RUNNABLE with its blocked
	// flag set.)
	StateWaiting
	// StateRunnable means the thread is eligible for selection but not
	// currently executing.
	StateRunnable
	// StateRunning means the thread currently holds the CPU. At most one
	// TCB may be in this state at any time.
	StateRunning
)

func (s ThreadState) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateWaiting:
		return "WAITING"
	case StateRunnable:
		return "RUNNABLE"
	case StateRunning:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}

// ThreadFunc is a thread's entry point. t is the thread's own handle,
// through which it calls CheckPoint, Lock/Unlock, WaitUntilNextPeriod and
// Kill; arg is the value passed to ThreadCreate.
type ThreadFunc func(t *Thread, arg any)

// tcb is a thread control block: priority, budget/period accounting,
// lifecycle state, and the stack windows used for MPU region
// programming. The two raw stack pointers a real TCB would carry are
// represented here by stackWindow (simulated unprivileged/privileged
// stack regions) rather than real addresses, since this package runs
// threads as goroutines instead of synthesizing machine contexts on a
// real stack.
type tcb struct {
	index int
	id    uuid.UUID

	fn  ThreadFunc
	arg any

	priority    int // static P; smaller is higher
	effPriority int // P_eff after ceiling inheritance

	period   uint32 // T, in ticks
	budget   uint32 // C, in ticks
	duration uint32 // elapsed ticks within the current period
	periodCt uint32 // ticks into the current period

	totalTicks  uint64 // cumulative CPU ticks, for ThreadTime
	utilization float64

	state   ThreadState
	blocked bool // set while parked on a PCP-gated mutex acquisition
	inSvc   bool // was executing a supervisor call when preempted

	stack stackWindow

	generation uint64 // bumped on every (re)create; guards stale wakeups
}

func newTCB(index int) *tcb {
	return &tcb{index: index, state: StateInit}
}

// reset clears a slot back to its INIT defaults, keeping its index fixed.
// Called by killThread and by respawnIdleLocked; ThreadCreate builds a
// fresh tcb instead.
func (t *tcb) reset() {
	t.id = uuid.Nil
	t.fn = nil
	t.arg = nil
	t.priority = 0
	t.effPriority = 0
	t.period = 0
	t.budget = 0
	t.duration = 0
	t.periodCt = 0
	t.totalTicks = 0
	t.utilization = 0
	t.state = StateInit
	t.blocked = false
	t.inSvc = false
	t.generation++
}

// isUserIndex reports whether index names one of the MaxUserThreads
// application priority slots (as opposed to idle or main).
func isUserIndex(index int) bool {
	return index >= 0 && index < MaxUserThreads
}
