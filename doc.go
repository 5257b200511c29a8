// Package lwp maps the light-weight-process (LWP) threading contract onto a
// single-CPU cooperative scheduler.
//
// A user-space threading library written against the LWP calls (spawn,
// park, unpark, suspend, continue, exit, self, set-name) can run on top of a
// minimal, non-preemptive scheduler: only one thread executes at a time and
// switches happen only when a thread parks, sleeps, yields or exits.
//
// # Quick Start
//
// The goroutine that creates the runtime becomes the main thread (id 1):
//
//	rt, err := lwp.New(lwp.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	worker, _ := rt.Spawn(func(arg any) {
//		// runs when the main thread parks or yields
//		rt.Unpark(lwp.MainID)
//	}, nil, nil, 0)
//
//	rt.Park(time.Time{}, lwp.NoID) // returns after the worker unparks us
//
// # Key Concepts
//
// Control block: the per-thread record (id, name, scheduler handle, status).
// Blocks live in a Registry from spawn until exit; ids start at 2 and are
// never reused.
//
// Switch hook: called by the scheduler on every switch. It is the only
// writer of the "current thread" slot and bumps the generation counter of
// the thread being resumed.
//
// Park/Unpark: a blocking/waking pair with a weak contract. A nil return
// from Park does not prove that the awaited condition holds; callers
// re-check it, or compare generation counters.
//
// Suspend/Continue: a forced block that is independent of Park/Unpark and
// lasts until Continue.
//
// # Thread Safety
//
// Runtime methods are called from threads of the runtime, one at a time.
// Stats, Threads and the status returned by Ctl may be read from any
// goroutine, e.g. by the Prometheus snapshot poller.
package lwp
