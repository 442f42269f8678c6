package rtkernel

import "go.uber.org/zap"

// runSchedulerLocked selects and switches to the next thread to run. It
// is invoked by the tick handler, by the mutex lock/unlock paths, by
// WaitUntilNextPeriod and by ThreadKill — every point that can change
// which thread should be running — and runs to completion synchronously:
// there is only ever one call stack inside runSchedulerLocked at a time,
// because every caller already holds k.mu, so a switch can never be
// interrupted by another switch.
//
// Callers must hold k.mu.
func (k *Kernel) runSchedulerLocked() {
	k.ready.rebuild(k.tcbs)
	k.met.observeReadyWait(k.ready)

	if out := k.running; out >= 0 {
		t := k.tcbs[out]
		if t.state == StateRunning {
			t.state = StateRunnable
		}
	}

	cand := k.selectCandidateLocked()

	if cand == mainIndex {
		k.finishLocked(0)
		return
	}

	outgoing := k.running
	k.running = cand
	t := k.tcbs[cand]
	t.state = StateRunning
	t.effPriority = t.priority

	if owner := k.mx.highestLocker(); owner == cand {
		// cand inherits the system ceiling while it holds the mutex
		// that established it.
		t.effPriority = k.mx.systemCeiling
	}

	k.mpu.programThreadStacks(t.stack, k.aggregateArena())

	k.met.setRunning(cand, t.priority)
	k.met.setSystemCeiling(k.mx.systemCeiling)
	k.logger().Debug("scheduler: context switch",
		zap.Int("outgoing", outgoing),
		zap.Int("incoming", cand),
		zap.Int("system_ceiling", k.mx.systemCeiling),
	)

	k.cond.Broadcast()
}

// selectCandidateLocked scans ready from highest to lowest priority for
// the first non-empty slot; falls back to idle (if any TCB is waiting)
// or main; then applies the PCP gate.
func (k *Kernel) selectCandidateLocked() int {
	cand := -1
	for i := 0; i < MaxUserThreads; i++ {
		if k.ready.ready[i] != -1 {
			cand = i
			break
		}
	}

	if cand == -1 {
		if k.anyWaitingLocked() {
			cand = idleIndex
		} else {
			cand = mainIndex
		}
	}

	if cand < MaxUserThreads {
		t := k.tcbs[cand]
		if t.priority >= k.mx.systemCeiling && t.blocked {
			if owner := k.mx.highestLocker(); owner != -1 {
				cand = owner
			}
		}
	}

	return cand
}

func (k *Kernel) anyWaitingLocked() bool {
	for i := 0; i < MaxUserThreads; i++ {
		if k.ready.wait[i] != -1 {
			return true
		}
	}
	return false
}

// finishLocked ends the run with the given exit code: it is reached when
// the scheduler selects the fallback-main slot (every user thread has
// exited and nothing is waiting, code 0), when the main slot is killed
// (code 0), and on the abort paths (a fault that aborts the process, or
// a thread killed while holding a mutex, code -1). This is where
// SchedulerStart's blocking call actually returns.
func (k *Kernel) finishLocked(code int) {
	if k.started {
		k.started = false
		k.exitCode = code
		if k.stopTick != nil {
			close(k.stopTick)
			k.stopTick = nil
		}
		ch := k.exitCh
		k.exitCh = nil
		if ch != nil {
			ch <- code
		}
	}
	k.running = mainIndex
	k.met.setRunning(mainIndex, mainIndex)
	k.cond.Broadcast()
}
