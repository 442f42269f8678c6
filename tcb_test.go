package rtkernel

import "testing"

func TestTCBResetBumpsGenerationAndClearsState(t *testing.T) {
	tc := newTCB(2)
	tc.priority = 2
	tc.fn = func(*Thread, any) {}
	tc.state = StateRunning
	tc.generation = 5

	tc.reset()

	if tc.state != StateInit {
		t.Errorf("state = %v, want StateInit", tc.state)
	}
	if tc.fn != nil {
		t.Errorf("fn should be cleared")
	}
	if tc.generation != 6 {
		t.Errorf("generation = %d, want 6", tc.generation)
	}
	if tc.index != 2 {
		t.Errorf("reset must not change index, got %d", tc.index)
	}
}

func TestIsUserIndex(t *testing.T) {
	if !isUserIndex(0) || !isUserIndex(MaxUserThreads - 1) {
		t.Errorf("boundary user indices should report true")
	}
	if isUserIndex(idleIndex) || isUserIndex(mainIndex) || isUserIndex(-1) {
		t.Errorf("idle, main and negative indices must not report as user indices")
	}
}

func TestThreadStateString(t *testing.T) {
	cases := map[ThreadState]string{
		StateInit:     "INIT",
		StateWaiting:  "WAITING",
		StateRunnable: "RUNNABLE",
		StateRunning:  "RUNNING",
		ThreadState(99): "UNKNOWN",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
