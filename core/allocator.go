package core

import (
	"fmt"
	"sync"
)

// FixedBlockAllocator recycles control blocks through a free list and
// refuses to hand out more than limit live blocks. A limit of 0 means
// unbounded.
type FixedBlockAllocator struct {
	mu    sync.Mutex
	free  []*ControlBlock
	live  int
	limit int
}

var _ BlockAllocator = (*FixedBlockAllocator)(nil)

// NewFixedBlockAllocator creates an allocator for at most limit live blocks.
func NewFixedBlockAllocator(limit int) *FixedBlockAllocator {
	return &FixedBlockAllocator{limit: limit}
}

// Allocate returns a block from the free list, or a new one.
func (a *FixedBlockAllocator) Allocate() (*ControlBlock, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.limit > 0 && a.live >= a.limit {
		return nil, fmt.Errorf("allocate control block (limit %d): %w", a.limit, ErrOutOfMemory)
	}
	a.live++

	if n := len(a.free); n > 0 {
		cb := a.free[n-1]
		a.free[n-1] = nil
		a.free = a.free[:n-1]
		return cb, nil
	}
	cb := &ControlBlock{}
	cb.reset(NoID)
	return cb, nil
}

// Free puts cb back on the free list.
func (a *FixedBlockAllocator) Free(cb *ControlBlock) {
	if cb == nil {
		return
	}
	cb.reset(NoID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.live > 0 {
		a.live--
	}
	a.free = append(a.free, cb)
}

// Live returns the number of blocks handed out and not yet freed.
func (a *FixedBlockAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// nameBudget accounts the bytes held by thread names. A limit of 0 means
// unbounded.
type nameBudget struct {
	mu    sync.Mutex
	used  int
	limit int
}

func (b *nameBudget) reserve(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.limit > 0 && b.used+n > b.limit {
		return false
	}
	b.used += n
	return true
}

func (b *nameBudget) release(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used -= n
	if b.used < 0 {
		b.used = 0
	}
}
