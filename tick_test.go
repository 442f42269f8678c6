package rtkernel

import "testing"

// TestTickAccountingBudgetAndPeriod drives onTick by hand through one
// full period of a C=2, T=4 thread: two ticks of runtime exhaust the
// budget and park the thread, the idle thread takes over, and the
// period rollover at tick four makes it runnable again with its
// accounting reset.
func TestTickAccountingBudgetAndPeriod(t *testing.T) {
	k := newTestKernel(t, 1)

	spin := func(th *Thread, arg any) {
		for {
			th.CheckPoint()
		}
	}
	if err := k.ThreadCreate(spin, 0, 2, 4, nil); err != nil {
		t.Fatal(err)
	}

	k.mu.Lock()
	k.started = true
	k.running = 0
	k.tcbs[0].state = StateRunning
	k.mu.Unlock()

	k.onTick()

	k.mu.Lock()
	if k.ticks != 1 {
		t.Errorf("ticks = %d, want 1", k.ticks)
	}
	if k.tcbs[0].duration != 1 || k.tcbs[0].state != StateRunning {
		t.Errorf("after tick 1: duration=%d state=%v, want 1/RUNNING", k.tcbs[0].duration, k.tcbs[0].state)
	}
	k.mu.Unlock()

	k.onTick()

	k.mu.Lock()
	if k.tcbs[0].state != StateWaiting {
		t.Errorf("after tick 2: state = %v, want WAITING (budget exhausted)", k.tcbs[0].state)
	}
	if k.running != idleIndex {
		t.Errorf("running = %d, want idleIndex while the only user thread waits", k.running)
	}
	k.mu.Unlock()

	k.onTick()
	k.onTick()

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.tcbs[0].state != StateRunning {
		t.Errorf("after tick 4: state = %v, want RUNNING (period rolled over)", k.tcbs[0].state)
	}
	if k.tcbs[0].periodCt != 0 || k.tcbs[0].duration != 0 {
		t.Errorf("period rollover must reset accounting, got periodCt=%d duration=%d", k.tcbs[0].periodCt, k.tcbs[0].duration)
	}
	if k.tcbs[0].totalTicks != 2 {
		t.Errorf("totalTicks = %d, want 2", k.tcbs[0].totalTicks)
	}
}
