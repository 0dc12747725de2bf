package engine

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending continuation
type Timer interface {
	// Stop prevents the continuation from firing. It reports whether the
	// call stopped it.
	Stop() bool
}

// Scheduler runs feedback-delay continuations
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler uses the runtime timers
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler fires continuations only when the clock is advanced.
// Useful in tests to fast-forward feedback delays.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	s    *ManualScheduler
	due  time.Duration
	seq  int
	f    func()
	done bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{s: m, due: m.now + d, seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.s.removeLocked(t)
	return true
}

func (m *ManualScheduler) removeLocked(t *manualTimer) {
	for i, x := range m.timers {
		if x == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward by d and runs every continuation that
// became due, in due order. Continuations scheduled while firing run too if
// they fall within the new time. It returns the number fired.
func (m *ManualScheduler) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()

	fired := 0
	for {
		m.mu.Lock()
		sort.Slice(m.timers, func(i, j int) bool {
			if m.timers[i].due != m.timers[j].due {
				return m.timers[i].due < m.timers[j].due
			}
			return m.timers[i].seq < m.timers[j].seq
		})
		if len(m.timers) == 0 || m.timers[0].due > m.now {
			m.mu.Unlock()
			return fired
		}
		t := m.timers[0]
		m.timers = m.timers[1:]
		t.done = true
		m.mu.Unlock()

		t.f()
		fired++
	}
}

// Pending returns the number of continuations waiting to fire
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
