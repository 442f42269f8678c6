package rtkernel

import "errors"

// Errors returned by the system-call surface. These never cross a thread
// boundary on their own — a contract violation kills the offending thread
// (or aborts the process) rather than propagating an error value, per the
// kernel's error-handling design. They're exposed so callers of the
// library-level API (ThreadInit, ThreadCreate, Serialize/Deserialize)
// can distinguish failure modes in tests and in cmd/rtsim.
var (
	// ErrStackTooLarge is returned by ThreadInit when the requested
	// stack_size would not fit in the configured user or kernel stack
	// arena.
	ErrStackTooLarge = errors.New("rtkernel: requested stack size exceeds stack arena")

	// ErrInvalidPeriod is returned by ThreadCreate when T == 0.
	ErrInvalidPeriod = errors.New("rtkernel: period must be non-zero")

	// ErrDuplicatePriority is returned by ThreadCreate when the requested
	// priority is already held by another non-INIT user thread.
	ErrDuplicatePriority = errors.New("rtkernel: priority already in use")

	// ErrNoCapacity is returned by ThreadCreate when all user thread
	// slots are occupied. (MutexInit reports a full mutex table by
	// returning nil, not an error.)
	ErrNoCapacity = errors.New("rtkernel: capacity exceeded")

	// ErrUtilizationBound is returned by ThreadCreate when accepting the
	// thread would push total utilization over the Liu-Layland bound for
	// the resulting thread count.
	ErrUtilizationBound = errors.New("rtkernel: utilization bound exceeded")

	// ErrInvalidPriorityRange is returned by ThreadCreate when the
	// requested priority is outside [0, MaxUserPriority].
	ErrInvalidPriorityRange = errors.New("rtkernel: priority out of range")

	// ErrSchedulerRunning is returned by ThreadCreate once SchedulerStart
	// has been called (the design is static-admission only), and by
	// ThreadInit on any call after the first.
	ErrSchedulerRunning = errors.New("rtkernel: scheduler already started")

	// ErrNotInitialized is returned by ThreadCreate when ThreadInit has
	// not yet been called. In that case MutexInit returns nil and
	// SchedulerStart returns -1 instead.
	ErrNotInitialized = errors.New("rtkernel: kernel not initialized")

	// ErrSerializeBufferTooSmall is returned when Serialize/Deserialize
	// are given a buffer too small to hold a full snapshot; they refuse
	// undersized buffers instead of silently truncating.
	ErrSerializeBufferTooSmall = errors.New("rtkernel: serialize buffer too small")

	// ErrSerializeVersion is returned by Deserialize when the snapshot
	// was produced by an incompatible kernel version.
	ErrSerializeVersion = errors.New("rtkernel: unsupported serialize version")

	// errInvalidRegionNumber, errRegionTooSmall and errMisalignedRegion
	// are the MPU programmer's three region-validation failure modes,
	// returned by enableRegion. They are programmer errors and never
	// surfaced past the kernel boundary: programThreadStacks discards
	// them without logging.
	errInvalidRegionNumber = errors.New("rtkernel: invalid mpu region number")
	errRegionTooSmall      = errors.New("rtkernel: mpu region smaller than minimum size")
	errMisalignedRegion    = errors.New("rtkernel: mpu region base misaligned to its size")
)
