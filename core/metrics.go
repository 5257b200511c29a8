package core

import "time"

// Park outcomes reported to Metrics.RecordPark.
const (
	ParkWoken        = "woken"
	ParkTimedOut     = "timed_out"
	ParkShortCircuit = "short_circuit"
)

// Metrics defines the interface for collecting runtime metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods are called on the running thread and must not block or call back
// into the runtime.
type Metrics interface {
	// RecordSpawn records a spawn attempt and whether it succeeded.
	RecordSpawn(ok bool)

	// RecordExit records a thread exit.
	RecordExit()

	// RecordPark records a completed park call.
	//
	// Parameters:
	// - outcome: one of ParkWoken, ParkTimedOut, ParkShortCircuit
	// - waited: how long the caller was parked
	RecordPark(outcome string, waited time.Duration)

	// RecordUnpark records an unpark and whether the target existed.
	RecordUnpark(found bool)

	// RecordSwitch records a context switch seen by the switch hook.
	RecordSwitch()

	// RecordLiveThreads records the number of registered threads.
	RecordLiveThreads(n int)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordSpawn is a no-op.
func (m *NilMetrics) RecordSpawn(ok bool) {}

// RecordExit is a no-op.
func (m *NilMetrics) RecordExit() {}

// RecordPark is a no-op.
func (m *NilMetrics) RecordPark(outcome string, waited time.Duration) {}

// RecordUnpark is a no-op.
func (m *NilMetrics) RecordUnpark(found bool) {}

// RecordSwitch is a no-op.
func (m *NilMetrics) RecordSwitch() {}

// RecordLiveThreads is a no-op.
func (m *NilMetrics) RecordLiveThreads(n int) {}
