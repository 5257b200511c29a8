package lwp_test

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	lwp "github.com/Swind/go-lwp"
)

// ExampleNew demonstrates spawning threads with only one import.
func ExampleNew() {
	cfg := lwp.DefaultConfig()
	cfg.LogLevel = "error"
	rt, err := lwp.New(cfg)
	if err != nil {
		panic(err)
	}

	for i := 1; i <= 3; i++ {
		_, _ = rt.Spawn(func(arg any) {
			fmt.Println("Thread", arg)
		}, i, nil, 0)
	}

	// Nothing runs until the main thread gives up the CPU.
	_ = rt.Yield()

	// Output:
	// Thread 1
	// Thread 2
	// Thread 3
}

// ExampleRuntime_Park demonstrates waiting for a condition with park/unpark.
func ExampleRuntime_Park() {
	cfg := lwp.DefaultConfig()
	cfg.LogLevel = "error"
	rt, _ := lwp.New(cfg)

	ready := false
	waiter, _ := rt.Spawn(func(any) {
		for !ready {
			_ = rt.Park(time.Time{}, lwp.NoID)
		}
		fmt.Println("Waiter saw ready")
	}, nil, nil, 0)

	_, _ = rt.Spawn(func(any) {
		fmt.Println("Setting ready")
		ready = true
		_ = rt.Unpark(waiter)
	}, nil, nil, 0)

	for rt.Stats().Live > 1 {
		_ = rt.Yield()
	}

	// Output:
	// Setting ready
	// Waiter saw ready
}

// ExampleRuntime_ParkTimeout demonstrates a timed park.
func ExampleRuntime_ParkTimeout() {
	cfg := lwp.DefaultConfig()
	cfg.LogLevel = "error"
	rt, _ := lwp.New(cfg)

	err := rt.ParkTimeout(5*time.Millisecond, lwp.NoID)
	fmt.Println(errors.Is(err, lwp.ErrTimedOut), lwp.Errno(err) == syscall.ETIMEDOUT)

	// Output:
	// true true
}
