package lwp

import (
	"sync"
	"time"

	"github.com/Swind/go-lwp/core"
	"github.com/Swind/go-lwp/sched"
)

// New creates a runtime on a fresh cooperative scheduler. The calling
// goroutine becomes the main thread.
func New(cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var logger core.Logger
	if cfg.Logger != nil {
		level, _ := core.ParseLevel(cfg.LogLevel)
		logger = core.NewLevelLogger(cfg.Logger, level)
	}
	s := sched.New(sched.Config{
		MaxThreads: cfg.MaxThreads,
		Logger:     logger,
	})
	return core.NewRuntime(cfg, s)
}

// =============================================================================
// Global Runtime Helper (Singleton)
// =============================================================================

var (
	globalRuntime *Runtime
	globalMu      sync.Mutex
)

// InitGlobalRuntime creates the process-wide runtime. The calling goroutine
// becomes its main thread. Later calls return the existing runtime.
func InitGlobalRuntime(cfg *Config) (*Runtime, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalRuntime != nil {
		return globalRuntime, nil
	}
	rt, err := New(cfg)
	if err != nil {
		return nil, err
	}
	globalRuntime = rt
	return rt, nil
}

// GetGlobalRuntime returns the process-wide runtime.
// It panics if InitGlobalRuntime has not been called.
func GetGlobalRuntime() *Runtime {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalRuntime == nil {
		panic("GlobalRuntime not initialized. Call InitGlobalRuntime() first.")
	}
	return globalRuntime
}

// ShutdownGlobalRuntime forgets the process-wide runtime so that a new one
// can be created. Threads of the old runtime stay where they are.
func ShutdownGlobalRuntime() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalRuntime = nil
}

// Self returns the id of the running thread of the global runtime.
func Self() ID {
	return GetGlobalRuntime().Self()
}

// Park parks the running thread of the global runtime.
func Park(deadline time.Time, wakeFirst ID) error {
	return GetGlobalRuntime().Park(deadline, wakeFirst)
}

// Unpark unparks a thread of the global runtime.
func Unpark(id ID) error {
	return GetGlobalRuntime().Unpark(id)
}

// Yield yields the running thread of the global runtime.
func Yield() error {
	return GetGlobalRuntime().Yield()
}
