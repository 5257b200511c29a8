package core

import (
	"sync"
	"sync/atomic"
)

// ID identifies a light-weight process. IDs are positive, never reused, and
// MainID is reserved for the thread that created the runtime.
type ID int32

const (
	// NoID means "no thread", e.g. Park without a thread to wake first.
	NoID ID = 0

	// MainID is the id of the initial thread.
	MainID ID = 1

	// firstSpawnID is the id handed to the first spawned thread.
	firstSpawnID ID = 2
)

// RunState is the coarse run-state marker of a thread. Non-negative values
// name the logical CPU the thread is running on.
type RunState int32

const (
	// Running is the marker of a thread that is current on CPU 0, the only
	// logical CPU of the runtime.
	Running RunState = 0

	// NotRunning marks a thread that exists but is not current.
	NotRunning RunState = -1

	// Exited marks a thread that called Exit. It is absorbing.
	Exited RunState = -2
)

func (s RunState) String() string {
	switch {
	case s == NotRunning:
		return "not_running"
	case s == Exited:
		return "exited"
	case s >= Running:
		return "running"
	default:
		return "unknown"
	}
}

// Status is the externally visible part of a control block. Callers may read
// it without synchronisation as a fast-path check; the generation counter
// tells whether the thread has been made current since an earlier read.
type Status struct {
	cpu        atomic.Int32
	generation atomic.Uint64
}

// RunState returns the current run-state marker.
func (s *Status) RunState() RunState {
	return RunState(s.cpu.Load())
}

// Generation returns how many times the thread has been made current.
func (s *Status) Generation() uint64 {
	return s.generation.Load()
}

// markRunning records that the thread became current. An exited thread is
// never resurrected.
func (s *Status) markRunning() {
	for {
		cur := s.cpu.Load()
		if RunState(cur) == Exited {
			return
		}
		if s.cpu.CompareAndSwap(cur, int32(Running)) {
			s.generation.Add(1)
			return
		}
	}
}

// markNotRunning records that the thread stopped being current.
func (s *Status) markNotRunning() {
	for {
		cur := s.cpu.Load()
		if RunState(cur) == Exited {
			return
		}
		if s.cpu.CompareAndSwap(cur, int32(NotRunning)) {
			return
		}
	}
}

func (s *Status) markExited() {
	s.cpu.Store(int32(Exited))
}

// ControlBlock is the per-thread record: identity, name, scheduler handle and
// status. Storage for it comes from a BlockAllocator and is handed to Spawn.
type ControlBlock struct {
	id     ID
	handle Handle
	status Status

	mu          sync.Mutex
	name        string
	nameSize    int
	parked      bool
	suspended   bool
	wakePending bool
	registered  bool

	// owned marks storage Spawn allocated itself; Exit returns it.
	owned bool
}

// ID returns the thread id, or NoID if the block was never spawned.
func (cb *ControlBlock) ID() ID {
	return cb.id
}

// Name returns the thread name; empty if none was set.
func (cb *ControlBlock) Name() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.name
}

// Status returns the externally visible status of the thread.
func (cb *ControlBlock) Status() *Status {
	return &cb.status
}

// Handle returns the scheduler handle owned by the block.
func (cb *ControlBlock) Handle() Handle {
	return cb.handle
}

// reset prepares recycled storage for a new thread.
func (cb *ControlBlock) reset(id ID) {
	cb.mu.Lock()
	cb.id = id
	cb.handle = nil
	cb.name = ""
	cb.nameSize = 0
	cb.parked = false
	cb.suspended = false
	cb.wakePending = false
	cb.registered = false
	cb.owned = false
	cb.mu.Unlock()
	cb.status.cpu.Store(int32(NotRunning))
	cb.status.generation.Store(0)
}

func (cb *ControlBlock) info() ThreadInfo {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return ThreadInfo{
		ID:         cb.id,
		Name:       cb.name,
		RunState:   cb.status.RunState(),
		Generation: cb.status.Generation(),
		Parked:     cb.parked,
		Suspended:  cb.suspended,
	}
}
