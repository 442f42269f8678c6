package rtkernel

import (
	"math"

	"github.com/google/uuid"
)

// noCeiling represents "+infinity" for systemCeiling: no mutex is
// currently locked, so no priority floor is in effect.
const noCeiling = math.MaxInt32

// Mutex is a Priority-Ceiling Protocol lock. Its ceiling is fixed at
// MutexInit time to the highest static priority of any thread permitted
// to lock it; holding it raises the owner's effective priority to that
// ceiling for the duration of the critical section.
//
// Mutex carries a uuid alongside its table index purely for log/metric
// correlation — the PCP algorithm itself only ever compares ceilings
// and indices.
type Mutex struct {
	index   int
	id      uuid.UUID
	ceiling int // max_prior: highest static priority allowed to lock this mutex
	locked  bool
	owner   int // TCB index of the current owner; valid only while locked
	seq     uint64
}

// ID returns the mutex's stable trace identifier.
func (m *Mutex) ID() uuid.UUID { return m.id }

// Ceiling returns the mutex's configured priority ceiling.
func (m *Mutex) Ceiling() int { return m.ceiling }

// mutexTable is the fixed-capacity array of PCP mutexes plus the derived
// systemCeiling.
type mutexTable struct {
	slots         []*Mutex // len == configured max_mutexes; nil entries are free
	nextSeq       uint64
	systemCeiling int
}

func newMutexTable(maxMutexes int) mutexTable {
	return mutexTable{
		slots:         make([]*Mutex, maxMutexes),
		systemCeiling: noCeiling,
	}
}

// initMutex allocates a new Mutex with the given ceiling, or nil if the
// table is full.
func (mt *mutexTable) initMutex(ceiling int) *Mutex {
	for i, s := range mt.slots {
		if s == nil {
			mt.nextSeq++
			m := &Mutex{
				index:   i,
				id:      uuid.New(),
				ceiling: ceiling,
				owner:   -1,
				seq:     mt.nextSeq,
			}
			mt.slots[i] = m
			return m
		}
	}
	return nil
}

// recomputeCeiling recalculates systemCeiling as the minimum ceiling
// among currently-locked mutexes, or noCeiling if none are locked. Called
// after every unlock.
func (mt *mutexTable) recomputeCeiling() {
	min := noCeiling
	for _, m := range mt.slots {
		if m != nil && m.locked && m.ceiling < min {
			min = m.ceiling
		}
	}
	mt.systemCeiling = min
}

// highestLocker returns the TCB index owning the locked mutex whose
// ceiling equals systemCeiling (the thread currently inheriting the
// system ceiling), or -1 if no mutex is locked.
func (mt *mutexTable) highestLocker() int {
	if mt.systemCeiling == noCeiling {
		return -1
	}
	for _, m := range mt.slots {
		if m != nil && m.locked && m.ceiling == mt.systemCeiling {
			return m.owner
		}
	}
	return -1
}

// ownedBy returns the first locked mutex owned by idx, or nil. Used by
// WaitUntilNextPeriod and ThreadKill to detect mutex-holding violations.
func (mt *mutexTable) ownedBy(idx int) *Mutex {
	for _, m := range mt.slots {
		if m != nil && m.locked && m.owner == idx {
			return m
		}
	}
	return nil
}
