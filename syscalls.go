package rtkernel

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ThreadInit prepares the kernel for scheduling: it must be called
// exactly once, before any ThreadCreate, MutexInit or SchedulerStart
// call.
func (k *Kernel) ThreadInit(cfg Config) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.initialized {
		return ErrSchedulerRunning
	}
	if cfg.MaxThreads > MaxUserThreads {
		cfg.MaxThreads = MaxUserThreads
	}
	if cfg.MaxMutexes > MaxMutexes32 {
		cfg.MaxMutexes = MaxMutexes32
	}

	stackSizeBytes := uint32(1) << log2CeilAtLeastMin(cfg.StackSize*4)
	if cfg.UserStackArenaBytes != 0 && stackSizeBytes*uint32(numSlots) > cfg.UserStackArenaBytes {
		return ErrStackTooLarge
	}
	if cfg.KernelStackArenaBytes != 0 && stackSizeBytes*uint32(numSlots) > cfg.KernelStackArenaBytes {
		return ErrStackTooLarge
	}

	k.cfg = cfg
	k.zlog = cfg.Logger
	k.met = cfg.Metrics
	k.mx = newMutexTable(int(cfg.MaxMutexes))
	k.mpu = newMPUProgrammer(cfg.ProtectionMode)
	k.ready = newReadyWaitSets()
	k.exitCh = make(chan int, 1)
	k.stopTick = make(chan struct{})

	k.tcbs[idleIndex] = newTCB(idleIndex)
	k.respawnIdleLocked()

	k.tcbs[mainIndex] = newTCB(mainIndex)
	k.tcbs[mainIndex].priority = mainIndex

	k.initialized = true

	k.logger().Info("thread_init",
		zap.Uint32("max_threads", cfg.MaxThreads),
		zap.Uint32("stack_size_words", cfg.StackSize),
		zap.Int("protection_mode", int(cfg.ProtectionMode)),
	)
	return nil
}

func (k *Kernel) spawnIdleLocked() {
	t := k.tcbs[idleIndex]
	gen := t.generation
	go k.runThread(idleIndex, gen)
}

// respawnIdleLocked reinitializes the idle slot and spawns a fresh idle
// goroutine, invalidating any previous one through the generation bump in
// reset. Used by ThreadInit and by killThread when the idle thread itself
// is killed.
func (k *Kernel) respawnIdleLocked() {
	t := k.tcbs[idleIndex]
	t.reset()
	t.priority = idleIndex
	t.effPriority = idleIndex
	t.period = 1
	t.budget = 1
	t.state = StateRunnable
	t.fn = k.cfg.IdleFn
	if t.fn == nil {
		t.fn = defaultIdle
	}
	t.stack = k.stackWindowFor(idleIndex)
	k.spawnIdleLocked()
}

func defaultIdle(t *Thread, _ any) {
	for {
		t.CheckPoint()
	}
}

// ThreadCreate admits and starts a new periodic thread at the given
// static priority, with worst-case execution budget c and period t
// (both in ticks).
func (k *Kernel) ThreadCreate(fn ThreadFunc, priority int, c, t uint32, arg any) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.initialized {
		return ErrNotInitialized
	}
	if k.started {
		return ErrSchedulerRunning
	}
	if priority < 0 || priority >= MaxUserThreads {
		return ErrInvalidPriorityRange
	}
	if t == 0 {
		return ErrInvalidPeriod
	}

	existing := k.tcbs[priority]
	if existing.state != StateInit {
		return ErrDuplicatePriority
	}
	if k.userCount >= int(k.cfg.MaxThreads) {
		return ErrNoCapacity
	}

	var utils []float64
	for i := 0; i < MaxUserThreads; i++ {
		if k.tcbs[i].state != StateInit {
			utils = append(utils, k.tcbs[i].utilization)
		}
	}
	res := admit(utils, c, t)
	k.met.observeAdmission(res.accepted)
	k.logger().Info("thread_create: admission",
		zap.Int("priority", priority),
		zap.Float64("u_new", res.uNew),
		zap.Float64("u_sum", res.uSum),
		zap.Float64("bound", res.bound),
		zap.Bool("accepted", res.accepted),
	)
	if !res.accepted {
		return ErrUtilizationBound
	}

	tc := newTCB(priority)
	tc.id = uuid.New()
	tc.fn = fn
	tc.arg = arg
	tc.priority = priority
	tc.effPriority = priority
	tc.period = t
	tc.budget = c
	tc.utilization = res.uNew
	tc.state = StateRunnable
	tc.stack = k.stackWindowFor(priority)
	tc.generation = existing.generation + 1

	k.tcbs[priority] = tc
	k.userCount++

	go k.runThread(priority, tc.generation)

	return nil
}

// SchedulerStart enables the tick, pends the scheduler for the first
// selection, and blocks the calling goroutine — which stands in for the
// fallback-main thread — until every user thread has exited.
func (k *Kernel) SchedulerStart(frequency uint32) int {
	k.mu.Lock()
	if !k.initialized {
		k.mu.Unlock()
		return -1
	}
	if k.started {
		k.mu.Unlock()
		return -1
	}
	k.started = true
	k.running = mainIndex
	k.startTicking(frequency)
	k.runSchedulerLocked()
	ch := k.exitCh
	k.mu.Unlock()

	code := <-ch
	return code
}

// GetTime returns ticks elapsed since SchedulerStart.
func (k *Kernel) GetTime() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ticks
}

// GetPriority returns the calling thread's current effective priority.
func (t *Thread) GetPriority() int {
	k := t.k
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tcbs[t.idx].effPriority
}

// ThreadTime returns the calling thread's cumulative CPU ticks.
func (t *Thread) ThreadTime() uint64 {
	k := t.k
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tcbs[t.idx].totalTicks
}

// WaitUntilNextPeriod parks the calling thread until its next period
// boundary, then returns.
func (t *Thread) WaitUntilNextPeriod() {
	k := t.k
	k.mu.Lock()
	tc := k.tcbs[t.idx]
	if m := k.mx.ownedBy(t.idx); m != nil {
		k.logger().Warn("wait_until_next_period called while holding a mutex",
			zap.Int("thread", t.idx), zap.Int("mutex", m.index))
	}
	tc.state = StateWaiting
	tc.duration = 0
	tc.inSvc = true
	gen := tc.generation
	k.runSchedulerLocked()
	k.waitForTurnLocked(t.idx, gen)
	tc.inSvc = false
	k.mu.Unlock()
}

// MutexInit allocates a new ceiling-protected mutex, or returns nil if
// the mutex table is full.
func (k *Kernel) MutexInit(ceiling int) *Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.mx.initMutex(ceiling)
}

// Lock acquires m under the Priority-Ceiling Protocol, blocking the
// calling thread until it becomes the owner. A thread that attempts to
// lock a mutex whose ceiling is below its own priority is killed.
func (t *Thread) Lock(m *Mutex) {
	k := t.k
	k.mu.Lock()

	tc := k.tcbs[t.idx]
	c := tc.priority

	if m.ceiling > c {
		k.mu.Unlock()
		k.killThread(t.idx, "mutex lock with insufficient ceiling")
		panic(killSignal{})
	}

	if m.locked && m.owner == t.idx {
		k.logger().Warn("re-entrant mutex lock ignored", zap.Int("thread", t.idx), zap.Int("mutex", m.index))
		k.mu.Unlock()
		return
	}

	// The ceiling gate applies whether or not m itself is locked: a new
	// lock is admitted only when it would strictly raise the system
	// ceiling, or when the caller already holds the ceiling-setting
	// mutex (nested lock by the ceiling holder).
	if k.mx.systemCeiling <= c && k.mx.highestLocker() != t.idx {
		k.logger().Debug("mutex lock blocked on system ceiling",
			zap.Int("thread", t.idx), zap.Int("mutex", m.index),
			zap.Int("system_ceiling", k.mx.systemCeiling))
	}
	for k.mx.systemCeiling <= c && k.mx.highestLocker() != t.idx {
		tc.blocked = true
		tc.inSvc = true
		gen := tc.generation
		k.runSchedulerLocked()
		k.waitForTurnLocked(t.idx, gen)
		tc.inSvc = false
	}

	tc.blocked = false
	m.locked = true
	m.owner = t.idx
	if m.ceiling < k.mx.systemCeiling {
		k.mx.systemCeiling = m.ceiling
	}
	k.mu.Unlock()
}

// Unlock releases m, drops the caller's priority inheritance, and pends
// the scheduler.
func (t *Thread) Unlock(m *Mutex) {
	k := t.k
	k.mu.Lock()
	defer k.mu.Unlock()

	if !m.locked {
		k.logger().Warn("unlock of already-unlocked mutex", zap.Int("thread", t.idx), zap.Int("mutex", m.index))
		return
	}
	if m.owner != t.idx {
		k.logger().Warn("unlock by non-owner", zap.Int("thread", t.idx), zap.Int("mutex", m.index), zap.Int("owner", m.owner))
		k.runSchedulerLocked()
		return
	}

	m.locked = false
	m.owner = -1
	k.mx.recomputeCeiling()
	k.tcbs[t.idx].effPriority = k.tcbs[t.idx].priority
	k.runSchedulerLocked()
}

// Kill tears down the calling thread's slot and unwinds its goroutine.
// It never returns.
func (t *Thread) Kill() {
	t.k.killThread(t.idx, "explicit thread_kill")
	panic(killSignal{})
}
