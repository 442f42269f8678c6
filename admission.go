package rtkernel

// ubTable holds n*(2^(1/n) - 1) for n in [1,31], precomputed so the
// admission path never calls math.Pow. ubTable[0] is the n=0 sentinel
// (LL(0) = 0, unreachable in practice since ThreadCreate always
// evaluates at n >= 1).
var ubTable = [32]float64{
	0.000, 1.000, .8284, .7798, .7568,
	.7435, .7348, .7286, .7241, .7205,
	.7177, .7155, .7136, .7119, .7106,
	.7094, .7083, .7075, .7066, .7059,
	.7052, .7047, .7042, .7037, .7033,
	.7028, .7025, .7021, .7018, .7015,
	.7012, .7009,
}

// liuLaylandBound returns LL(n), the Liu-Layland sufficient schedulability
// bound for n independent periodic tasks under RMS. n is clamped to the
// table's domain; callers never exceed MaxUserThreads+1 == 15 in practice.
func liuLaylandBound(n int) float64 {
	if n < 0 {
		return 0
	}
	if n >= len(ubTable) {
		n = len(ubTable) - 1
	}
	return ubTable[n]
}

// admissionResult is the outcome of the utilization-bound test for one
// proposed thread, returned so callers (and tests) can see the
// utilization sum and bound that were actually compared.
type admissionResult struct {
	accepted bool
	uNew     float64
	uSum     float64
	bound    float64
	n        int
}

// admit decides whether adding a thread with the given budget and period
// to the given set of already-admitted thread utilizations would violate
// the Liu-Layland bound. The idle thread never reaches this function —
// ThreadCreate special-cases it.
func admit(existingUtilization []float64, c, t uint32) admissionResult {
	uNew := float64(c) / float64(t)
	uSum := uNew
	for _, u := range existingUtilization {
		uSum += u
	}
	n := len(existingUtilization) + 1
	bound := liuLaylandBound(n)
	return admissionResult{
		accepted: uSum <= bound,
		uNew:     uNew,
		uSum:     uSum,
		bound:    bound,
		n:        n,
	}
}
