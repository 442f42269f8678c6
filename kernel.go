package rtkernel

import (
	"sync"

	"go.uber.org/zap"
)

// Config configures ThreadInit.
type Config struct {
	// MaxThreads is the maximum number of user threads that will be
	// created. Must be <= MaxUserThreads (14).
	MaxThreads uint32
	// StackSize is the per-thread stack size in words; it is rounded up
	// to the next power-of-two byte count for both the unprivileged and
	// privileged stack windows.
	StackSize uint32
	// IdleFn runs when no other thread is runnable. If nil, the kernel
	// supplies a default idle loop.
	IdleFn ThreadFunc
	// ProtectionMode selects per-thread or kernel-only MPU programming.
	ProtectionMode ProtectionMode
	// MaxMutexes is the maximum number of mutexes that will be created.
	// Must be <= MaxMutexes32.
	MaxMutexes uint32

	// UserStackArenaBytes and KernelStackArenaBytes bound the total bytes
	// available to carve per-thread stacks out of, for the unprivileged
	// and privileged arenas respectively. ThreadInit rejects a StackSize
	// that would not fit one stack per TCB slot (all 16, including idle
	// and main, whatever MaxThreads is) in either arena.
	// Zero means "unbounded" (useful for tests that don't care about
	// the capacity check).
	UserStackArenaBytes   uint32
	KernelStackArenaBytes uint32

	// Logger receives structured diagnostics (admission decisions,
	// scheduling, PCP inheritance, faults). Optional; a nil Logger
	// disables structured logging.
	Logger *zap.Logger

	// Metrics receives Prometheus instrumentation hooks. Optional.
	Metrics *Metrics
}

// MaxMutexes32 is the hard cap on Config.MaxMutexes.
const MaxMutexes32 = 32

// Kernel is the complete threading-core state: the TCB table, ready/wait
// sets, mutex table and system ceiling are held here as one aggregate,
// mutated only while k.mu is held.
type Kernel struct {
	mu   sync.Mutex
	cond *sync.Cond

	cfg   Config
	ready readyWaitSets
	mx    mutexTable
	mpu   *mpuProgrammer

	tcbs [numSlots]*tcb

	running   int // index of the RUNNING tcb, or -1 before the first selection
	ticks     uint64
	userCount int
	nextGen   uint64

	initialized bool
	started     bool
	exitCode    int
	exitCh      chan int

	stopTick chan struct{}

	zlog *zap.Logger
	met  *Metrics
}

// New constructs a Kernel. ThreadInit must still be called before any
// thread or mutex can be created — New alone does not validate cfg.
func New() *Kernel {
	k := &Kernel{running: -1}
	k.cond = sync.NewCond(&k.mu)
	for i := range k.tcbs {
		k.tcbs[i] = newTCB(i)
	}
	return k
}

// stackWindowFor computes the simulated stack window for TCB index idx,
// given the configured per-thread stack size. Each thread's window is a
// disjoint, power-of-two-aligned slice of the arena.
func (k *Kernel) stackWindowFor(idx int) stackWindow {
	sizeBytes := uint32(1) << log2CeilAtLeastMin(k.cfg.StackSize*4)
	return stackWindow{
		userBase:   uint32(idx) * sizeBytes,
		userSize:   sizeBytes,
		kernelBase: uint32(idx) * sizeBytes,
		kernelSize: sizeBytes,
	}
}

// aggregateArena returns the union stack window used in KernelOnly
// protection mode, covering every configured thread slot.
func (k *Kernel) aggregateArena() stackWindow {
	sizeBytes := uint32(1) << log2CeilAtLeastMin(k.cfg.StackSize*4)
	total := sizeBytes * uint32(numSlots)
	return stackWindow{userBase: 0, userSize: total, kernelBase: 0, kernelSize: total}
}
