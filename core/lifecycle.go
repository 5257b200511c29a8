package core

import (
	"fmt"
	"runtime/debug"
	"strings"
	"unicode/utf8"
)

// Spawn starts a new thread that runs entry(arg) on storage cb. A nil cb is
// allocated from the configured BlockAllocator and returned to it when the
// thread exits; storage passed in stays the caller's to free. A block that
// belongs to a live thread is rejected. The new thread becomes runnable but
// does not run until the caller reaches a switch point.
//
// If entry returns, the thread exits as if it had called Exit.
func (rt *Runtime) Spawn(entry func(arg any), arg any, cb *ControlBlock, stackSize int) (ID, error) {
	if entry == nil {
		return NoID, fmt.Errorf("spawn: nil entry")
	}
	owned := cb == nil
	if owned {
		var err error
		if cb, err = rt.AllocateBlock(); err != nil {
			rt.metrics.RecordSpawn(false)
			return NoID, fmt.Errorf("spawn: %w", err)
		}
	} else {
		cb.mu.Lock()
		live := cb.registered
		cb.mu.Unlock()
		if live {
			rt.metrics.RecordSpawn(false)
			return NoID, fmt.Errorf("spawn: control block of lwp %d is still live", cb.id)
		}
	}

	id := rt.ids.Next()
	cb.reset(id)
	cb.owned = owned

	h, err := rt.sched.Create(fmt.Sprintf("lwp-%d", id), cb, rt.trampoline(cb, entry, arg), stackSize)
	if err != nil {
		if owned {
			rt.cfg.Blocks.Free(cb)
		}
		rt.metrics.RecordSpawn(false)
		rt.logger.Warn("lwp spawn failed", F("lwp", id), F("error", err))
		return NoID, fmt.Errorf("spawn lwp %d: %w: %w", id, ErrResourceExhausted, err)
	}
	cb.handle = h
	rt.registry.Insert(cb)

	rt.spawned.Add(1)
	rt.metrics.RecordSpawn(true)
	rt.metrics.RecordLiveThreads(rt.registry.Len())
	rt.logger.Debug("lwp spawned", F("lwp", id), F("stack_size", stackSize))
	return id, nil
}

// trampoline wraps entry so that returning, or panicking, ends in Exit.
func (rt *Runtime) trampoline(cb *ControlBlock, entry func(arg any), arg any) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				rt.logger.Error("lwp panicked",
					F("lwp", cb.id), F("panic", r), F("stack", string(debug.Stack())))
				rt.Exit()
			}
		}()
		entry(arg)
		rt.Exit()
	}
}

// Exit terminates the calling thread: its status becomes Exited, it leaves
// the registry, and its scheduler handle is destroyed. Exit does not return.
func (rt *Runtime) Exit() {
	cb := rt.CurrentBlock()
	if cb == nil {
		rt.sched.ExitCurrent()
		return
	}

	cb.status.markExited()
	rt.registry.Remove(cb)

	cb.mu.Lock()
	rt.names.release(cb.nameSize)
	cb.nameSize = 0
	owned := cb.owned
	cb.mu.Unlock()

	rt.exited.Add(1)
	rt.metrics.RecordExit()
	rt.metrics.RecordLiveThreads(rt.registry.Len())
	rt.logger.Debug("lwp exited", F("lwp", cb.id))

	// Freed before the switch; the hook only marks it NotRunning.
	if owned {
		rt.cfg.Blocks.Free(cb)
	}
	rt.sched.ExitCurrent()
}

// SetName replaces the name of thread id. Names longer than NameMax-1 bytes
// are cut short at a character boundary; that is not an error.
func (rt *Runtime) SetName(id ID, name string) error {
	cb, err := rt.lookup("setname", id)
	if err != nil {
		return err
	}

	name = truncateName(name, rt.cfg.NameMax-1)
	size := len(name) + 1
	if !rt.names.reserve(size) {
		return fmt.Errorf("setname %d: %w", id, ErrOutOfMemory)
	}
	name = strings.Clone(name)

	cb.mu.Lock()
	oldSize := cb.nameSize
	cb.name = name
	cb.nameSize = size
	cb.mu.Unlock()

	rt.names.release(oldSize)
	return nil
}

// truncateName cuts s to at most max bytes without splitting a character.
func truncateName(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Yield lets other runnable threads run and returns once the caller is
// scheduled again. It always succeeds.
func (rt *Runtime) Yield() error {
	rt.sched.Yield()
	return nil
}
