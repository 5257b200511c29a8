package sched

import "time"

// Thread is a runnable unit. It is backed by a goroutine that only runs
// while it holds the CPU token delivered on resume.
type Thread struct {
	name      string
	cookie    any
	stackSize int
	resume    chan struct{}

	// Guarded by Scheduler.mu.
	blocked  bool
	sleeping bool
	timedOut bool
	exited   bool
	queued   bool
	deadline time.Time
	index    int
}

func newThread(name string, cookie any, stackSize int) *Thread {
	return &Thread{
		name:      name,
		cookie:    cookie,
		stackSize: stackSize,
		resume:    make(chan struct{}, 1),
		index:     -1,
	}
}

// Name returns the name the thread was created with.
func (t *Thread) Name() string {
	return t.name
}

// Cookie returns the value passed to the switch hook for this thread.
func (t *Thread) Cookie() any {
	return t.cookie
}

// StackSize returns the stack size requested at creation.
func (t *Thread) StackSize() int {
	return t.stackSize
}

func (t *Thread) runnable() bool {
	return !t.blocked && !t.sleeping && !t.exited
}

func cookieOf(t *Thread) any {
	if t == nil {
		return nil
	}
	return t.cookie
}
