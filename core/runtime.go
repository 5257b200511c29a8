package core

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sys/cpu"
)

// cpuSlot holds the control block current on one logical CPU. The padding
// keeps the slot on its own cache line once there is one slot per CPU; the
// runtime has a single slot today.
type cpuSlot struct {
	_       cpu.CacheLinePad
	current atomic.Pointer[ControlBlock]
	_       cpu.CacheLinePad
}

// Runtime is the process-wide LWP state: the registry of live threads, the
// id allocator and the current-thread slot, bound to one Scheduler.
//
// The goroutine that calls NewRuntime becomes the main thread (MainID).
// Every other method must be called from a thread of this runtime, i.e. from
// the main goroutine or from an entry function passed to Spawn. The
// exceptions are Stats, Threads, Lookup and Ctl-style reads, which are safe
// from any goroutine.
type Runtime struct {
	NullExtensions

	id       string
	cfg      *Config
	sched    Scheduler
	registry *Registry
	ids      *idAllocator
	cpu0     cpuSlot
	main     ControlBlock
	names    nameBudget

	logger  Logger
	metrics Metrics

	spawned  atomic.Uint64
	exited   atomic.Uint64
	switches atomic.Uint64
}

// NewRuntime creates a runtime on top of s and adopts the calling goroutine
// as the main thread. A nil config means DefaultConfig.
func NewRuntime(cfg *Config, s Scheduler) (*Runtime, error) {
	if s == nil {
		return nil, fmt.Errorf("lwp: nil scheduler")
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("lwp: %w", err)
	}

	rt := &Runtime{
		id:       uuid.New().String(),
		cfg:      cfg,
		sched:    s,
		registry: NewRegistry(),
		ids:      newIDAllocator(),
		names:    nameBudget{limit: cfg.NameBudget},
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}

	rt.main.reset(MainID)
	s.SetHook(rt.switchHook)
	rt.main.handle = s.InitMainThread(&rt.main)
	rt.main.status.markRunning()
	rt.cpu0.current.Store(&rt.main)
	rt.registry.Insert(&rt.main)
	rt.metrics.RecordLiveThreads(rt.registry.Len())

	rt.logger.Debug("lwp runtime initialized", F("runtime", rt.id))
	return rt, nil
}

// ID returns the unique id of this runtime instance.
func (rt *Runtime) ID() string {
	return rt.id
}

// Config returns the effective configuration.
func (rt *Runtime) Config() Config {
	return *rt.cfg
}

// switchHook is the only writer of the current slot. It runs on the
// switching thread before control is transferred.
func (rt *Runtime) switchHook(prevCookie, nextCookie any) {
	prev, _ := prevCookie.(*ControlBlock)
	next, _ := nextCookie.(*ControlBlock)

	rt.cpu0.current.Store(next)
	if prev != nil {
		prev.status.markNotRunning()
	}
	if next != nil {
		next.status.markRunning()
	}
	rt.switches.Add(1)
	rt.metrics.RecordSwitch()
}

// CurrentBlock returns the control block of the running thread, or nil when
// a unit outside the runtime is running.
func (rt *Runtime) CurrentBlock() *ControlBlock {
	return rt.cpu0.current.Load()
}

// Self returns the id of the running thread, or NoID.
func (rt *Runtime) Self() ID {
	if cb := rt.CurrentBlock(); cb != nil {
		return cb.id
	}
	return NoID
}

// Ctl returns the status of the running thread for lock-free polling.
func (rt *Runtime) Ctl() *Status {
	if cb := rt.CurrentBlock(); cb != nil {
		return &cb.status
	}
	return nil
}

// Lookup returns the live control block with the given id, or nil.
func (rt *Runtime) Lookup(id ID) *ControlBlock {
	return rt.registry.Lookup(id)
}

// lookup is Lookup with the not-found error every id-addressed operation
// reports.
func (rt *Runtime) lookup(op string, id ID) (*ControlBlock, error) {
	cb := rt.registry.Lookup(id)
	if cb == nil {
		rt.logger.Debug("lwp lookup failed", F("op", op), F("lwp", id))
		return nil, fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return cb, nil
}

// AllocateBlock returns control-block storage for a later Spawn.
func (rt *Runtime) AllocateBlock() (*ControlBlock, error) {
	return rt.cfg.Blocks.Allocate()
}

// FreeBlock releases storage of a thread that has exited or was never
// spawned. Blocks that are still registered are left alone.
func (rt *Runtime) FreeBlock(cb *ControlBlock) {
	if cb == nil || cb == &rt.main {
		return
	}
	cb.mu.Lock()
	registered := cb.registered
	cb.mu.Unlock()
	if registered {
		rt.logger.Warn("lwp free of live control block ignored", F("lwp", cb.id))
		return
	}
	rt.cfg.Blocks.Free(cb)
}

// Threads returns a snapshot of the registered threads in spawn order.
func (rt *Runtime) Threads() []ThreadInfo {
	blocks := rt.registry.Snapshot()
	out := make([]ThreadInfo, 0, len(blocks))
	for _, cb := range blocks {
		out = append(out, cb.info())
	}
	return out
}

// Stats returns a snapshot of runtime counters.
func (rt *Runtime) Stats() RuntimeStats {
	return RuntimeStats{
		ID:       rt.id,
		Live:     rt.registry.Len(),
		Current:  rt.Self(),
		NextID:   rt.ids.Peek(),
		Spawned:  rt.spawned.Load(),
		Exited:   rt.exited.Load(),
		Switches: rt.switches.Load(),
	}
}
