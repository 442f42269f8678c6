package rtkernel

import "testing"

func TestHandleFaultKillsOffendingUserThread(t *testing.T) {
	k := newTestKernel(t, 1)
	noop := func(th *Thread, arg any) {}
	if err := k.ThreadCreate(noop, 0, 1, 100, nil); err != nil {
		t.Fatal(err)
	}
	win := k.tcbs[0].stack

	k.HandleFault(FaultInfo{
		Kind:   FaultDataAccess,
		PSP:    win.userBase + 4, // inside the window: not a stack overflow
		Thread: 0,
	})

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.tcbs[0].state != StateInit {
		t.Errorf("state = %v, want StateInit after fault kill", k.tcbs[0].state)
	}
}

func TestHandleFaultAbortsOnStackOverflow(t *testing.T) {
	k := newTestKernel(t, 1)
	noop := func(th *Thread, arg any) {}
	if err := k.ThreadCreate(noop, 0, 1, 100, nil); err != nil {
		t.Fatal(err)
	}
	win := k.tcbs[0].stack

	k.mu.Lock()
	k.started = true
	exitCh := make(chan int, 1)
	k.exitCh = exitCh
	k.mu.Unlock()

	k.HandleFault(FaultInfo{
		Kind:   FaultStacking,
		PSP:    win.userBase - 4, // below the thread's own window: overflow
		Thread: 0,
	})

	select {
	case code := <-exitCh:
		if code != -1 {
			t.Errorf("exit code = %d, want -1", code)
		}
	default:
		t.Fatalf("expected an exit code on stack overflow abort")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.started {
		t.Errorf("kernel should have aborted, but is still started")
	}
}
