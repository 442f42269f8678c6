package rtkernel

// ProtectionMode selects how the MPU-equivalent stack windows (regions
// 6/7 of the eight-region layout) are programmed on each context switch.
type ProtectionMode uint8

const (
	// KernelOnly enables regions 6/7 over the aggregate kernel/user stack
	// ranges, without per-thread isolation.
	KernelOnly ProtectionMode = iota
	// PerThread enables regions 6/7 over just the running thread's own
	// unprivileged and privileged stack windows.
	PerThread
)

// minRegionSize is the MPU's minimum region size in bytes.
const minRegionSize = 32

// minRegionSizeLog2 is log2(minRegionSize); a region's sizeLog2 field
// must never be smaller than this.
const minRegionSizeLog2 uint8 = 5

// maxRegionNumber is the last programmable region; regions 6 and 7 are
// reserved for the running thread's stacks.
const maxRegionNumber = 7

const (
	regionUserStack   = 6
	regionKernelStack = 7
)

// region mirrors one MPU region programming: a power-of-two-sized,
// power-of-two-aligned window plus the access attributes that would be
// written into a real MPU's RASR register.
type region struct {
	number   uint32
	base     uint32
	sizeLog2 uint8
	execute  bool
	writable bool
	enabled  bool
}

// log2Ceil returns ceil(log2(n)): the smallest sizeLog2 such that
// 1<<sizeLog2 >= n. Used to round a requested byte count up to the
// nearest power-of-two region size.
func log2Ceil(n uint32) uint8 {
	var ret uint8
	for n > (uint32(1) << ret) {
		ret++
	}
	return ret
}

// stackWindow is the simulated memory range backing a thread's
// unprivileged ("user") and privileged ("kernel") stacks, used for MPU
// region programming and for the fault handler's stack-overflow check.
// base/sizeBytes describe each window as [base, base+sizeBytes).
type stackWindow struct {
	userBase, userSize     uint32
	kernelBase, kernelSize uint32
}

// mpuProgrammer computes and tracks the eight MPU regions: 0-5 are the
// fixed kernel/user text/rodata/data/bss/heap windows, programmed once
// at init; 6-7 track whichever thread is currently running.
type mpuProgrammer struct {
	regions [8]region
	mode    ProtectionMode
}

// fixedRegionSpec describes one of the six static regions (0-5)
// programmed at ThreadInit time, with a literal byte budget rounded up
// to a power of two.
type fixedRegionSpec struct {
	base      uint32
	sizeBytes uint32
	execute   bool
	writable  bool
}

func defaultFixedRegions() [6]fixedRegionSpec {
	return [6]fixedRegionSpec{
		{base: 0x00000000, sizeBytes: 16000, execute: true, writable: false},  // user text
		{base: 0x00100000, sizeBytes: 2000, execute: false, writable: false},  // user rodata
		{base: 0x00200000, sizeBytes: 1000, execute: false, writable: true},   // user data
		{base: 0x00300000, sizeBytes: 1000, execute: false, writable: true},   // user bss
		{base: 0x00400000, sizeBytes: 4000, execute: false, writable: true},   // user heap
		{base: 0x00500000, sizeBytes: 2000, execute: false, writable: true},   // default user stack
	}
}

func newMPUProgrammer(mode ProtectionMode) *mpuProgrammer {
	p := &mpuProgrammer{mode: mode}
	for i, spec := range defaultFixedRegions() {
		log2 := log2Ceil(spec.sizeBytes)
		if log2 < minRegionSizeLog2 {
			log2 = minRegionSizeLog2
		}
		p.regions[i] = region{
			number:   uint32(i),
			base:     spec.base,
			sizeLog2: log2,
			execute:  spec.execute,
			writable: spec.writable,
			enabled:  true,
		}
	}
	return p
}

// enableRegion validates and programs one region: region number range,
// alignment, and minimum size are all checked before the simulated
// registers are "written".
func (p *mpuProgrammer) enableRegion(number uint32, base uint32, sizeLog2 uint8, execute, writable bool) error {
	if number > maxRegionNumber {
		return errInvalidRegionNumber
	}
	if sizeLog2 < minRegionSizeLog2 {
		return errRegionTooSmall
	}
	if base&((1<<sizeLog2)-1) != 0 {
		return errMisalignedRegion
	}
	p.regions[number] = region{
		number:   number,
		base:     base,
		sizeLog2: sizeLog2,
		execute:  execute,
		writable: writable,
		enabled:  true,
	}
	return nil
}

func (p *mpuProgrammer) disableRegion(number uint32) {
	if number <= maxRegionNumber {
		p.regions[number].enabled = false
	}
}

// programThreadStacks programs regions 6/7 for the thread about to run:
// disable both, then re-enable over the selected thread's windows
// (PerThread) or the aggregate arena (KernelOnly).
func (p *mpuProgrammer) programThreadStacks(win stackWindow, arena stackWindow) {
	p.disableRegion(regionUserStack)
	p.disableRegion(regionKernelStack)

	if p.mode == KernelOnly {
		_ = p.enableRegion(regionUserStack, arena.userBase, log2CeilAtLeastMin(arena.userSize), false, true)
		_ = p.enableRegion(regionKernelStack, arena.kernelBase, log2CeilAtLeastMin(arena.kernelSize), false, true)
		return
	}
	_ = p.enableRegion(regionUserStack, win.userBase, log2CeilAtLeastMin(win.userSize), false, true)
	_ = p.enableRegion(regionKernelStack, win.kernelBase, log2CeilAtLeastMin(win.kernelSize), false, true)
}

func log2CeilAtLeastMin(n uint32) uint8 {
	l := log2Ceil(n)
	if l < minRegionSizeLog2 {
		l = minRegionSizeLog2
	}
	return l
}

// Regions returns a snapshot of all eight MPU regions, for tests that
// assert on containment.
func (p *mpuProgrammer) Regions() [8]region {
	return p.regions
}

// contains reports whether addr falls within an enabled region's window.
func (r region) contains(addr uint32) bool {
	if !r.enabled {
		return false
	}
	size := uint32(1) << r.sizeLog2
	return addr >= r.base && addr < r.base+size
}
