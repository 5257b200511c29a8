package core

import (
	"fmt"
	"time"
)

// LegacyUnparkAllCount is what UnparkAll returns when called without a
// target list. It is not a count of woken threads.
const LegacyUnparkAllCount = 1024

// Park blocks the calling thread.
//
// If wakeFirst is not NoID it is unparked first; an unknown id is ignored.
// With a zero deadline the caller stays blocked until another thread calls
// Unpark or Continue on it. Otherwise it sleeps until deadline and returns
// ErrTimedOut if nothing woke it before then.
//
// A nil return does not mean that whatever the caller waits for has
// happened; callers re-check their own condition. An Unpark that reached the
// caller while it was not parked makes the next Park return immediately.
func (rt *Runtime) Park(deadline time.Time, wakeFirst ID) error {
	if wakeFirst != NoID {
		_ = rt.Unpark(wakeFirst)
	}

	cb := rt.CurrentBlock()
	if cb == nil {
		return fmt.Errorf("park: %w", ErrNotFound)
	}
	timed := !deadline.IsZero()

	cb.mu.Lock()
	if cb.wakePending {
		cb.wakePending = false
		cb.mu.Unlock()
		rt.metrics.RecordPark(ParkShortCircuit, 0)
		return nil
	}
	cb.parked = true
	if !timed {
		rt.sched.Block(cb.handle)
	}
	cb.mu.Unlock()

	start := time.Now()
	var err error
	if timed {
		if rt.sched.SleepFor(time.Until(deadline)) {
			err = ErrTimedOut
		}
	} else {
		rt.sched.Yield()
	}

	cb.mu.Lock()
	unparked := !cb.parked
	cb.parked = false
	cb.mu.Unlock()

	// An unpark that raced with the timer wins.
	if err != nil && unparked {
		err = nil
	}
	waited := time.Since(start)
	if err != nil {
		rt.metrics.RecordPark(ParkTimedOut, waited)
		rt.logger.Debug("lwp park timed out", F("lwp", cb.id), F("waited", waited))
		return fmt.Errorf("park %d: %w", cb.id, err)
	}
	rt.metrics.RecordPark(ParkWoken, waited)
	return nil
}

// ParkTimeout parks the calling thread for at most d.
func (rt *Runtime) ParkTimeout(d time.Duration, wakeFirst ID) error {
	return rt.Park(time.Now().Add(d), wakeFirst)
}

// Unpark makes thread id runnable again if it is parked. If it is not, the
// wake is remembered and its next Park returns at once. Unpark does not
// lift a suspension.
func (rt *Runtime) Unpark(id ID) error {
	cb, err := rt.lookup("unpark", id)
	if err != nil {
		rt.metrics.RecordUnpark(false)
		return err
	}

	cb.mu.Lock()
	if cb.parked {
		cb.parked = false
		if !cb.suspended {
			rt.sched.Wake(cb.handle)
		}
	} else {
		cb.wakePending = true
	}
	cb.mu.Unlock()

	rt.metrics.RecordUnpark(true)
	return nil
}

// UnparkAll unparks every id in ids and returns how many of them exist. A
// failed unpark does not stop the remaining ones. With a nil slice it wakes
// nothing and returns LegacyUnparkAllCount.
func (rt *Runtime) UnparkAll(ids []ID) int {
	if ids == nil {
		return LegacyUnparkAllCount
	}
	n := 0
	for _, id := range ids {
		if rt.Unpark(id) == nil {
			n++
		}
	}
	return n
}

// Suspend blocks thread id until Continue is called on it, independently of
// Park and Unpark. Suspending the calling thread switches away at once.
func (rt *Runtime) Suspend(id ID) error {
	cb, err := rt.lookup("suspend", id)
	if err != nil {
		return err
	}

	cb.mu.Lock()
	if !cb.suspended {
		cb.suspended = true
		rt.sched.Block(cb.handle)
	}
	cb.mu.Unlock()

	if cb == rt.CurrentBlock() {
		rt.sched.Yield()
	}
	return nil
}

// Continue lifts a suspension of thread id and makes it runnable. A thread
// parked without a deadline is released from its Park as well.
func (rt *Runtime) Continue(id ID) error {
	cb, err := rt.lookup("continue", id)
	if err != nil {
		return err
	}

	cb.mu.Lock()
	cb.suspended = false
	rt.sched.Wake(cb.handle)
	cb.mu.Unlock()
	return nil
}

// Wakeup interrupts a Park in progress in thread id. It returns
// ErrNotSleeping if the thread is not parked, and nil after waking a parked
// one. This differs from the classic _lwp_wakeup, which wakes the target
// unconditionally and always reports ENODEV; a thread that is not parked is
// left alone here and keeps no pending wake.
func (rt *Runtime) Wakeup(id ID) error {
	cb, err := rt.lookup("wakeup", id)
	if err != nil {
		return err
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.parked {
		return fmt.Errorf("wakeup %d: %w", id, ErrNotSleeping)
	}
	cb.parked = false
	if !cb.suspended {
		rt.sched.Wake(cb.handle)
	}
	return nil
}
