package engine

import (
	"testing"
	"time"
)

func TestManualSchedulerFiresInOrder(t *testing.T) {
	s := NewManualScheduler()
	var order []int
	s.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	s.AfterFunc(time.Second, func() { order = append(order, 1) })
	s.AfterFunc(5*time.Second, func() { order = append(order, 5) })

	if n := s.Advance(500 * time.Millisecond); n != 0 {
		t.Fatalf("Advance fired %d, want 0", n)
	}
	if n := s.Advance(2 * time.Second); n != 2 {
		t.Fatalf("Advance fired %d, want 2", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order = %v, want [1 2]", order)
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}
}

func TestManualSchedulerStop(t *testing.T) {
	s := NewManualScheduler()
	fired := false
	timer := s.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatal("Stop() = false on pending timer")
	}
	if timer.Stop() {
		t.Error("second Stop() = true")
	}
	s.Advance(time.Minute)
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestManualSchedulerChained(t *testing.T) {
	s := NewManualScheduler()
	count := 0
	s.AfterFunc(time.Second, func() {
		count++
		s.AfterFunc(time.Second, func() { count++ })
	})
	s.Advance(3 * time.Second)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
