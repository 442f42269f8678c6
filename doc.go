// Package rtkernel implements the threading core of a preemptive,
// priority-driven real-time microkernel: thread lifecycle, a
// Rate-Monotonic Scheduler with a Priority-Ceiling Protocol mutex
// discipline, a periodic tick handler, and an MPU region programmer for
// per-thread stack isolation.
//
// The target is conceptually a single-core microcontroller with two
// stack pointers (one privileged, one unprivileged) and a hardware MPU;
// this package models that machine on top of the host's goroutine
// scheduler rather than real hardware. Threads run as ordinary
// goroutines, but only one is ever permitted to make progress at a
// time: a *Thread must call CheckPoint (or any of the blocking syscalls,
// which call it implicitly) at its own cooperative suspension points,
// the same way real firmware threads can only be interrupted at
// instruction boundaries. Go has no supported way to suspend a
// goroutine at an arbitrary program point, so preemption here is
// cooperative rather than instruction-granular; see DESIGN.md for the
// rationale.
package rtkernel
