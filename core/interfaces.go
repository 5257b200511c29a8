package core

import "time"

// =============================================================================
// Scheduler: the primitives the runtime is built on
// =============================================================================

// Handle is the scheduler's opaque reference to a runnable unit. A control
// block owns exactly one handle from spawn until exit.
type Handle interface {
	// Name returns the name the unit was created with, for diagnostics.
	Name() string
}

// SwitchHook is invoked by the scheduler immediately before it transfers
// control, with the cookies of the previous and next units. A nil cookie
// means the unit does not belong to the runtime.
type SwitchHook func(prev, next any)

// Scheduler is the single-CPU cooperative scheduler the runtime maps threads
// onto. Only one unit executes at a time and control moves only inside Yield,
// SleepFor and ExitCurrent.
type Scheduler interface {
	// InitMainThread adopts the calling goroutine as the current unit.
	InitMainThread(cookie any) Handle

	// Create makes a new runnable unit that will call entry once it is first
	// scheduled. The cookie is passed back to the switch hook.
	Create(name string, cookie any, entry func(), stackSize int) (Handle, error)

	// Block marks h as not runnable. It takes effect at the next switch.
	Block(h Handle)

	// Wake makes h runnable again and interrupts a sleep in progress.
	Wake(h Handle)

	// ExitCurrent destroys the current unit and switches away. It does not
	// return.
	ExitCurrent()

	// SleepFor suspends the current unit for d. It reports true if the full
	// duration elapsed and false if a Wake cut the sleep short.
	SleepFor(d time.Duration) bool

	// Yield switches to another runnable unit, if any, and returns once the
	// current unit is scheduled again.
	Yield()

	// SetHook installs the switch hook.
	SetHook(hook SwitchHook)
}

// =============================================================================
// BlockAllocator: storage for control blocks
// =============================================================================

// BlockAllocator hands out fixed-size control-block storage.
type BlockAllocator interface {
	// Allocate returns zeroed storage or ErrOutOfMemory.
	Allocate() (*ControlBlock, error)

	// Free returns storage obtained from Allocate.
	Free(cb *ControlBlock)
}
