package core

import (
	"sync"
	"sync/atomic"
)

// Registry is the ordered set of live control blocks. Blocks are appended on
// spawn and unlinked on exit; lookup is by id.
//
// The lock is only contended by observers (Stats, Threads); threads mutate
// the registry one at a time because only one of them runs at any instant.
type Registry struct {
	mu     sync.RWMutex
	blocks []*ControlBlock
	byID   map[ID]*ControlBlock
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		blocks: make([]*ControlBlock, 0, 16),
		byID:   make(map[ID]*ControlBlock),
	}
}

// Insert appends cb at the tail. Inserting an id twice replaces nothing and
// returns false.
func (r *Registry) Insert(cb *ControlBlock) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[cb.id]; ok {
		return false
	}
	r.blocks = append(r.blocks, cb)
	r.byID[cb.id] = cb
	cb.mu.Lock()
	cb.registered = true
	cb.mu.Unlock()
	return true
}

// Lookup returns the live block with the given id, or nil.
func (r *Registry) Lookup(id ID) *ControlBlock {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// Remove unlinks cb. It returns false if cb was not a member.
func (r *Registry) Remove(cb *ControlBlock) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byID[cb.id] != cb {
		return false
	}
	delete(r.byID, cb.id)
	for i, b := range r.blocks {
		if b == cb {
			copy(r.blocks[i:], r.blocks[i+1:])
			r.blocks[len(r.blocks)-1] = nil
			r.blocks = r.blocks[:len(r.blocks)-1]
			break
		}
	}
	cb.mu.Lock()
	cb.registered = false
	cb.mu.Unlock()
	return true
}

// Len returns the number of live blocks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blocks)
}

// Snapshot returns the live blocks in insertion order.
func (r *Registry) Snapshot() []*ControlBlock {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ControlBlock, len(r.blocks))
	copy(out, r.blocks)
	return out
}

// idAllocator hands out thread ids. It never goes backwards, so ids stay
// unique for the lifetime of the process even after their threads exit.
type idAllocator struct {
	last atomic.Int32
}

func newIDAllocator() *idAllocator {
	a := &idAllocator{}
	a.last.Store(int32(firstSpawnID - 1))
	return a
}

// Next returns a fresh id.
func (a *idAllocator) Next() ID {
	return ID(a.last.Add(1))
}

// Peek returns the id the next call to Next will return.
func (a *idAllocator) Peek() ID {
	return ID(a.last.Load() + 1)
}
