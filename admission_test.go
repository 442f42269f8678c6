package rtkernel

import "testing"

func TestLiuLaylandBoundTable(t *testing.T) {
	cases := []struct {
		n    int
		want float64
	}{
		{0, 0.000},
		{1, 1.000},
		{2, .8284},
		{3, .7798},
		{32, .7009},
		{100, .7009}, // clamps to the table's last entry
	}
	for _, c := range cases {
		if got := liuLaylandBound(c.n); got != c.want {
			t.Errorf("liuLaylandBound(%d) = %v, want %v", c.n, got, c.want)
		}
	}
}

func TestAdmitAcceptsWithinBound(t *testing.T) {
	// Two existing threads utilizing 0.3 each; a third at C=1,T=10 (u=0.1)
	// brings the sum to 0.7, under the 3-thread bound of .7798.
	res := admit([]float64{0.3, 0.3}, 1, 10)
	if !res.accepted {
		t.Fatalf("expected admission, got rejected: uSum=%v bound=%v", res.uSum, res.bound)
	}
	if res.n != 3 {
		t.Errorf("n = %d, want 3", res.n)
	}
}

func TestAdmitRejectsOverBound(t *testing.T) {
	res := admit([]float64{0.5, 0.4}, 1, 2) // uNew = 0.5, uSum = 1.4
	if res.accepted {
		t.Fatalf("expected rejection, got accepted: uSum=%v bound=%v", res.uSum, res.bound)
	}
}

func TestAdmitSingleThreadAlwaysFits(t *testing.T) {
	res := admit(nil, 1, 1) // u = 1.0, bound for n=1 is 1.0
	if !res.accepted {
		t.Fatalf("single full-utilization thread should be admitted, got uSum=%v bound=%v", res.uSum, res.bound)
	}
}
