package rtkernel

import "go.uber.org/zap"

// FaultKind classifies a memory protection fault by the four low bits
// of a configurable fault status register, checked independently since
// more than one can be set at once.
type FaultKind uint8

const (
	FaultInstructionAccess FaultKind = 1 << iota
	FaultDataAccess
	FaultUnstacking
	FaultStacking
)

// FaultInfo is what a simulated MPU fault reports: which violation bits
// were set, the address involved (if any), and the stack pointer the
// fault occurred against.
type FaultInfo struct {
	Kind   FaultKind
	Addr   uint32
	AddrOK bool
	PSP    uint32
	Thread int
}

// HandleFault decides, given a fault observed against thread idx's
// unprivileged stack pointer, whether the process must abort outright
// (stack overflow, or a fault while idle/main is running) or whether
// only the offending thread is killed.
//
// The stack-overflow check (psp below the thread's stack window) runs
// before the idle/main check, because a stack overflow is unrecoverable
// regardless of which thread caused it — the exception frame may
// already have clobbered the adjacent stack's contents.
func (k *Kernel) HandleFault(info FaultInfo) {
	k.logFault(info)

	k.mu.Lock()
	win := k.tcbs[info.Thread].stack
	k.mu.Unlock()

	if info.PSP < win.userBase {
		k.logger().Error("stack overflow, aborting", zap.Int("thread", info.Thread), zap.Uint32("psp", info.PSP))
		k.abort(-1)
		return
	}

	if !isUserIndex(info.Thread) {
		k.logger().Error("memory fault in idle/main, aborting", zap.Int("thread", info.Thread))
		k.abort(-1)
		return
	}

	k.killThread(info.Thread, "memory protection fault")
}

func (k *Kernel) logFault(info FaultInfo) {
	l := k.logger()
	l.Warn("memory protection fault",
		zap.Int("thread", info.Thread),
		zap.Bool("stacking_error", info.Kind&FaultStacking != 0),
		zap.Bool("unstacking_error", info.Kind&FaultUnstacking != 0),
		zap.Bool("data_access_violation", info.Kind&FaultDataAccess != 0),
		zap.Bool("instruction_access_violation", info.Kind&FaultInstructionAccess != 0),
	)
	if info.AddrOK {
		l.Warn("faulting address", zap.Uint32("addr", info.Addr))
	}
}

// abort unconditionally stops the whole simulated process, independent
// of what any individual thread was doing.
func (k *Kernel) abort(code int) {
	k.mu.Lock()
	k.finishLocked(code)
	k.mu.Unlock()
}
