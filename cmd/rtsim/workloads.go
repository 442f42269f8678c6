package main

import (
	"fmt"

	"github.com/user-none/go-rtkernel"
)

// workloadRegistry maps a threadSpec's Workload name to a ThreadFunc.
// These are demonstration bodies: each does a bounded amount of
// synthetic work per period and calls CheckPoint often enough to honor
// its own budget, then waits for the next period.
var workloadRegistry = map[string]rtkernel.ThreadFunc{
	"spin":     spinWorkload,
	"periodic": periodicWorkload,
}

func spinWorkload(t *rtkernel.Thread, arg any) {
	for {
		for i := 0; i < 1000; i++ {
			t.CheckPoint()
		}
		t.WaitUntilNextPeriod()
	}
}

func periodicWorkload(t *rtkernel.Thread, arg any) {
	name, _ := arg.(string)
	for {
		fmt.Printf("[%s] tick=%d priority=%d\n", name, t.ThreadTime(), t.GetPriority())
		t.CheckPoint()
		t.WaitUntilNextPeriod()
	}
}
