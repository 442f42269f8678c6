package rtkernel

import "testing"

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	k := newTestKernel(t, 2)
	noop := func(th *Thread, arg any) {}
	if err := k.ThreadCreate(noop, 0, 3, 10, nil); err != nil {
		t.Fatal(err)
	}
	m := k.MutexInit(0)
	k.mu.Lock()
	m.locked = true
	m.owner = 0
	k.mx.recomputeCeiling()
	k.ticks = 42
	k.mu.Unlock()

	buf := make([]byte, k.SerializeSize())
	if err := k.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	k2 := newTestKernel(t, 2)
	if err := k2.Deserialize(buf); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	k2.mu.Lock()
	defer k2.mu.Unlock()
	if k2.ticks != 42 {
		t.Errorf("ticks = %d, want 42", k2.ticks)
	}
	if k2.tcbs[0].period != 10 || k2.tcbs[0].budget != 3 {
		t.Errorf("tcb[0] = {period: %d, budget: %d}, want {10, 3}", k2.tcbs[0].period, k2.tcbs[0].budget)
	}
	if !k2.mx.slots[0].locked || k2.mx.slots[0].owner != 0 {
		t.Errorf("mutex 0 = {locked: %v, owner: %d}, want {true, 0}", k2.mx.slots[0].locked, k2.mx.slots[0].owner)
	}
}

func TestDeserializeRejectsBadVersion(t *testing.T) {
	k := newTestKernel(t, 1)
	buf := make([]byte, k.SerializeSize())
	if err := k.Serialize(buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 0xFF
	if err := k.Deserialize(buf); err != ErrSerializeVersion {
		t.Errorf("err = %v, want ErrSerializeVersion", err)
	}
}

func TestSerializeRejectsUndersizedBuffer(t *testing.T) {
	k := newTestKernel(t, 1)
	buf := make([]byte, 4)
	if err := k.Serialize(buf); err != ErrSerializeBufferTooSmall {
		t.Errorf("err = %v, want ErrSerializeBufferTooSmall", err)
	}
}
