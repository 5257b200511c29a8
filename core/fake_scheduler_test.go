package core

import (
	"errors"
	"time"
)

type fakeHandle struct {
	name    string
	cookie  any
	blocked bool
	wakes   int
	exited  bool
}

func (h *fakeHandle) Name() string { return h.name }

// fakeScheduler records calls without switching anything. ExitCurrent
// returns, so Exit can be observed from the test goroutine.
type fakeScheduler struct {
	hook        SwitchHook
	main        *fakeHandle
	current     *fakeHandle
	created     []*fakeHandle
	createErr   error
	yields      int
	sleeps      []time.Duration
	sleepResult bool
}

var errFakeCreate = errors.New("fake: no threads left")

func (s *fakeScheduler) InitMainThread(cookie any) Handle {
	s.main = &fakeHandle{name: "main", cookie: cookie}
	s.current = s.main
	return s.main
}

func (s *fakeScheduler) Create(name string, cookie any, entry func(), stackSize int) (Handle, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	h := &fakeHandle{name: name, cookie: cookie}
	s.created = append(s.created, h)
	return h, nil
}

func (s *fakeScheduler) Block(h Handle) { h.(*fakeHandle).blocked = true }

func (s *fakeScheduler) Wake(h Handle) {
	fh := h.(*fakeHandle)
	fh.blocked = false
	fh.wakes++
}

func (s *fakeScheduler) ExitCurrent() { s.current.exited = true }

func (s *fakeScheduler) SleepFor(d time.Duration) bool {
	s.sleeps = append(s.sleeps, d)
	return s.sleepResult
}

func (s *fakeScheduler) Yield() { s.yields++ }

func (s *fakeScheduler) SetHook(hook SwitchHook) { s.hook = hook }

// switchTo drives the installed hook the way the scheduler would.
func (s *fakeScheduler) switchTo(next *fakeHandle) {
	prev := s.current
	s.current = next
	var prevCookie, nextCookie any
	if prev != nil {
		prevCookie = prev.cookie
	}
	if next != nil {
		nextCookie = next.cookie
	}
	s.hook(prevCookie, nextCookie)
}

func newFakeRuntime(cfg *Config) (*Runtime, *fakeScheduler) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Logger = NewNoOpLogger()
	s := &fakeScheduler{}
	rt, err := NewRuntime(cfg, s)
	if err != nil {
		panic(err)
	}
	return rt, s
}

func nopEntry(arg any) {}
