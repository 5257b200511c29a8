package lwp

import "github.com/Swind/go-lwp/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the lwp package for most use cases.

// ID identifies a light-weight process
type ID = core.ID

// Runtime is the LWP runtime bound to a scheduler
type Runtime = core.Runtime

// ControlBlock is the per-thread record
type ControlBlock = core.ControlBlock

// Status is the externally visible run-state and generation counter
type Status = core.Status

// RunState is the coarse run-state marker
type RunState = core.RunState

// Config holds runtime configuration
type Config = core.Config

// ThreadInfo and RuntimeStats are observability snapshots
type ThreadInfo = core.ThreadInfo
type RuntimeStats = core.RuntimeStats

// Well-known ids and run states
const (
	NoID   = core.NoID
	MainID = core.MainID

	Running    = core.Running
	NotRunning = core.NotRunning
	Exited     = core.Exited

	LegacyUnparkAllCount = core.LegacyUnparkAllCount
)

// Errors
var (
	ErrNotFound          = core.ErrNotFound
	ErrTimedOut          = core.ErrTimedOut
	ErrResourceExhausted = core.ErrResourceExhausted
	ErrOutOfMemory       = core.ErrOutOfMemory
	ErrUnsupported       = core.ErrUnsupported
	ErrNotSleeping       = core.ErrNotSleeping
)

// Configuration helpers
var (
	DefaultConfig  = core.DefaultConfig
	LoadConfig     = core.LoadConfig
	LoadConfigFile = core.LoadConfigFile
	Errno          = core.Errno
)
