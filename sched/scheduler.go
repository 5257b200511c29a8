package sched

import (
	"container/heap"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Swind/go-lwp/core"
)

// ErrTooManyThreads is returned by Create when MaxThreads units exist.
var ErrTooManyThreads = errors.New("sched: too many threads")

// Config holds configuration options for a Scheduler.
type Config struct {
	// MaxThreads caps the number of live units. 0 means no cap.
	MaxThreads int

	// Logger receives scheduler logs. Defaults to NoOpLogger.
	Logger core.Logger
}

// Scheduler runs threads one at a time on a single logical CPU. A thread
// keeps the CPU until it calls Yield, SleepFor or ExitCurrent; there is no
// preemption. Each thread is a goroutine parked on its resume channel, and
// a switch hands the single CPU token from one goroutine to the next.
//
// Block and Wake may be called from any goroutine; a Wake from outside the
// scheduler rouses an idle CPU.
type Scheduler struct {
	mu         sync.Mutex
	current    *Thread
	runq       runQueue
	sleepers   sleepHeap
	hook       core.SwitchHook
	live       int
	maxThreads int
	kick       chan struct{}
	logger     core.Logger

	switches atomic.Uint64
}

var _ core.Scheduler = (*Scheduler)(nil)

// New creates a scheduler. The caller adopts a main thread with
// InitMainThread before creating others.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = core.NewNoOpLogger()
	}
	s := &Scheduler{
		runq:       newRunQueue(),
		sleepers:   make(sleepHeap, 0),
		maxThreads: cfg.MaxThreads,
		kick:       make(chan struct{}, 1),
		logger:     logger,
	}
	heap.Init(&s.sleepers)
	return s
}

// SetHook installs the switch hook. It replaces any earlier hook.
func (s *Scheduler) SetHook(hook core.SwitchHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// InitMainThread makes the calling goroutine the current thread.
func (s *Scheduler) InitMainThread(cookie any) core.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		panic("sched: main thread already initialized")
	}
	t := newThread("main", cookie, 0)
	s.current = t
	s.live++
	return t
}

// Create makes a new runnable thread. entry runs on its own goroutine once
// the thread is first scheduled; when entry returns the thread exits.
func (s *Scheduler) Create(name string, cookie any, entry func(), stackSize int) (core.Handle, error) {
	if entry == nil {
		return nil, fmt.Errorf("sched: create %q: nil entry", name)
	}
	if stackSize < 0 {
		return nil, fmt.Errorf("sched: create %q: negative stack size %d", name, stackSize)
	}

	s.mu.Lock()
	if s.maxThreads > 0 && s.live >= s.maxThreads {
		s.mu.Unlock()
		return nil, fmt.Errorf("create %q (limit %d): %w", name, s.maxThreads, ErrTooManyThreads)
	}
	t := newThread(name, cookie, stackSize)
	s.live++
	s.runq.push(t)
	s.mu.Unlock()

	go s.trampoline(t, entry)

	s.logger.Debug("sched thread created", core.F("thread", name), core.F("stack_size", stackSize))
	return t, nil
}

func (s *Scheduler) trampoline(t *Thread, entry func()) {
	<-t.resume
	entry()
	s.ExitCurrent()
}

// Block marks h not runnable. A thread that blocks itself keeps running
// until its next Yield.
func (s *Scheduler) Block(h core.Handle) {
	t := h.(*Thread)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !t.exited {
		t.blocked = true
	}
}

// Wake makes h runnable and cuts a sleep in progress short.
func (s *Scheduler) Wake(h core.Handle) {
	t := h.(*Thread)
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.exited {
		return
	}
	t.blocked = false
	if t.sleeping {
		s.sleepers.remove(t)
		t.sleeping = false
		t.timedOut = false
	}
	if t != s.current && t.runnable() {
		s.runq.push(t)
	}
	s.kickLocked()
}

// Yield runs the next runnable thread, if any, and returns when the caller
// is scheduled again. A caller that blocked itself does not come back until
// it is woken.
func (s *Scheduler) Yield() {
	s.mu.Lock()
	prev := s.current
	if prev == nil {
		s.mu.Unlock()
		panic("sched: yield without a current thread")
	}
	s.switchFromLocked(prev)
}

// SleepFor takes the current thread off the CPU for d. It returns true if d
// elapsed and false if Wake interrupted the sleep.
func (s *Scheduler) SleepFor(d time.Duration) bool {
	s.mu.Lock()
	t := s.current
	if t == nil {
		s.mu.Unlock()
		panic("sched: sleep without a current thread")
	}
	t.sleeping = true
	t.timedOut = false
	t.deadline = time.Now().Add(d)
	heap.Push(&s.sleepers, t)
	s.switchFromLocked(t)

	s.mu.Lock()
	completed := t.timedOut
	t.timedOut = false
	s.mu.Unlock()
	return completed
}

// ExitCurrent destroys the current thread and switches away. It never
// returns; the thread's goroutine ends.
func (s *Scheduler) ExitCurrent() {
	s.mu.Lock()
	t := s.current
	if t == nil {
		s.mu.Unlock()
		runtime.Goexit()
	}
	t.exited = true
	t.blocked = false
	if t.sleeping {
		s.sleepers.remove(t)
		t.sleeping = false
	}
	s.live--

	next := s.pickLocked(t)
	s.switchLocked(t, next)
	s.mu.Unlock()

	s.logger.Debug("sched thread exited", core.F("thread", t.name))
	runtime.Goexit()
}

// switchFromLocked hands the CPU from prev to the next runnable thread and
// waits until prev is chosen again. It is entered with s.mu held and
// returns with it released.
func (s *Scheduler) switchFromLocked(prev *Thread) {
	next := s.pickLocked(prev)
	if next == prev {
		s.mu.Unlock()
		return
	}
	s.switchLocked(prev, next)
	s.mu.Unlock()
	<-prev.resume
}

// switchLocked makes next current, runs the hook and passes the CPU token.
func (s *Scheduler) switchLocked(prev, next *Thread) {
	s.current = next
	s.switches.Add(1)
	if s.hook != nil {
		s.hook(cookieOf(prev), cookieOf(next))
	}
	if next != nil {
		next.resume <- struct{}{}
	}
}

// pickLocked chooses the thread to run after prev. A runnable prev goes to
// the back of the queue. When nothing is runnable the CPU idles until a
// sleeper is due or a Wake arrives; s.mu is released while idling. It
// returns nil only when prev has exited and no other thread is left.
func (s *Scheduler) pickLocked(prev *Thread) *Thread {
	for {
		s.expireLocked(time.Now())
		if prev != nil && prev.runnable() {
			s.runq.push(prev)
		}
		if t := s.runq.pop(); t != nil {
			return t
		}
		if s.live == 0 {
			return nil
		}
		s.idleLocked()
	}
}

// expireLocked moves sleepers whose deadline passed back to the run queue.
func (s *Scheduler) expireLocked(now time.Time) {
	for {
		t := s.sleepers.Peek()
		if t == nil || t.deadline.After(now) {
			return
		}
		heap.Pop(&s.sleepers)
		t.sleeping = false
		t.timedOut = true
		if t != s.current && t.runnable() {
			s.runq.push(t)
		}
	}
}

func (s *Scheduler) idleLocked() {
	var timerC <-chan time.Time
	if t := s.sleepers.Peek(); t != nil {
		timer := time.NewTimer(time.Until(t.deadline))
		defer timer.Stop()
		timerC = timer.C
	}
	s.logger.Debug("sched idle", core.F("sleepers", s.sleepers.Len()))

	s.mu.Unlock()
	select {
	case <-timerC:
	case <-s.kick:
	}
	s.mu.Lock()
}

func (s *Scheduler) kickLocked() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Current returns the running thread, or nil.
func (s *Scheduler) Current() core.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current
}

// Stats returns a snapshot of scheduler state.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Live:     s.live,
		Runnable: s.runq.len(),
		Sleeping: s.sleepers.Len(),
		Switches: s.switches.Load(),
	}
}

// Stats represents scheduler observability state.
type Stats struct {
	Live     int
	Runnable int
	Sleeping int
	Switches uint64
}
