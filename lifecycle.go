package rtkernel

import "go.uber.org/zap"

// killThread tears down the slot at idx. For a user thread the TCB is
// reset to INIT, freeing the priority for reuse, and the scheduler is
// pended so it never again offers idx as a candidate. Killing the idle
// slot respawns a fresh idle thread in its place; killing the main slot
// is the process's normal exit. A thread that dies while still holding a
// mutex takes the whole process down: its holdings are not released, so
// the ceiling state can never become consistent again.
//
// The caller's goroutine is expected to unwind via killSignal immediately
// afterward (when self-directed); killThread itself only mutates state
// and pends the scheduler.
func (k *Kernel) killThread(idx int, reason string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if idx == mainIndex {
		k.finishLocked(0)
		return
	}

	t := k.tcbs[idx]
	if t.state == StateInit {
		return
	}

	if m := k.mx.ownedBy(idx); m != nil {
		k.logger().Error("thread terminated while holding a mutex, aborting",
			zap.Int("thread", idx), zap.Int("mutex", m.index), zap.String("reason", reason))
		k.finishLocked(-1)
		return
	}

	if idx == idleIndex {
		k.logger().Info("idle thread killed, respawning", zap.String("reason", reason))
		k.respawnIdleLocked()
		if k.started {
			k.runSchedulerLocked()
		}
		return
	}

	t.reset()
	k.userCount--

	k.logger().Info("thread_kill", zap.Int("thread", idx), zap.String("reason", reason))

	if k.started {
		k.runSchedulerLocked()
	}
}

// threadExit is runThread's normal-return path: a ThreadFunc that
// returns takes the same teardown as an explicit Kill, without needing
// to unwind a stack that has already unwound itself by returning. It is
// a no-op if the slot was already reset by a concurrent explicit Kill
// racing the same return.
func (k *Kernel) threadExit(idx int, generation uint64) {
	k.mu.Lock()
	if k.tcbs[idx].generation != generation {
		k.mu.Unlock()
		return
	}
	k.mu.Unlock()

	k.killThread(idx, "thread function returned")
}
