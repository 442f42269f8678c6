package rtkernel

import "testing"

func TestSelectCandidateLockedPicksHighestReadyPriority(t *testing.T) {
	k := newTestKernel(t, 3)
	k.tcbs[2].state = StateRunnable
	k.tcbs[5].state = StateRunnable
	k.tcbs[9].state = StateRunnable
	k.ready.rebuild(k.tcbs)

	if got := k.selectCandidateLocked(); got != 2 {
		t.Errorf("selectCandidateLocked() = %d, want 2 (lowest numeric priority = highest priority)", got)
	}
}

func TestSelectCandidateLockedFallsBackToIdleWhenSomethingIsWaiting(t *testing.T) {
	k := newTestKernel(t, 1)
	k.tcbs[4].state = StateWaiting
	k.ready.rebuild(k.tcbs)

	if got := k.selectCandidateLocked(); got != idleIndex {
		t.Errorf("selectCandidateLocked() = %d, want idleIndex", got)
	}
}

func TestSelectCandidateLockedFallsBackToMainWhenNothingIsRunnableOrWaiting(t *testing.T) {
	k := newTestKernel(t, 1)
	k.ready.rebuild(k.tcbs)

	if got := k.selectCandidateLocked(); got != mainIndex {
		t.Errorf("selectCandidateLocked() = %d, want mainIndex", got)
	}
}

// TestSelectCandidateLockedHonorsSystemCeiling covers the PCP gate: a
// higher-priority thread blocked on a mutex must not preempt the lower-
// priority thread already holding it.
func TestSelectCandidateLockedHonorsSystemCeiling(t *testing.T) {
	k := newTestKernel(t, 2)
	k.tcbs[0].state = StateRunnable // high priority, blocked on the mutex
	k.tcbs[0].blocked = true
	k.tcbs[1].state = StateRunning // low priority, holds the mutex
	k.ready.rebuild(k.tcbs)

	m := k.mx.initMutex(0)
	m.locked = true
	m.owner = 1
	k.mx.systemCeiling = 0

	got := k.selectCandidateLocked()
	if got != 1 {
		t.Errorf("selectCandidateLocked() = %d, want 1 (the ceiling-inheriting lock holder)", got)
	}
}
