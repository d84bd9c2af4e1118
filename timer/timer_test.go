package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManager_OneShotTimer(t *testing.T) {
	m := NewManager(time.Millisecond)
	defer m.Stop()

	var fired int32
	m.AddTimer(10*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&fired) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timer never fired")
		}
		time.Sleep(time.Millisecond)
	}

	// A one-shot task must not repeat.
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("one-shot timer fired %d times", got)
	}
}

func TestManager_RepeatingTimer(t *testing.T) {
	m := NewManager(time.Millisecond)
	defer m.Stop()

	var fired int32
	m.AddTimer(5*time.Millisecond, 5*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&fired) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("repeating timer fired only %d times", atomic.LoadInt32(&fired))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestManager_RemoveTimer(t *testing.T) {
	m := NewManager(time.Millisecond)
	defer m.Stop()

	var fired int32
	id := m.AddTimer(50*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})
	m.RemoveTimer(id)

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatal("removed timer still fired")
	}
}

func TestManager_StopDropsPendingTasks(t *testing.T) {
	m := NewManager(time.Millisecond)

	var fired int32
	m.AddTimer(50*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})

	m.Stop()
	m.Stop()

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatal("stopped manager still ran a pending task")
	}
}

func TestManager_IDsAreUnique(t *testing.T) {
	m := NewManager(time.Millisecond)
	defer m.Stop()

	seen := make(map[int64]bool)
	for i := 0; i < 10; i++ {
		id := m.AddTimer(time.Hour, 0, func() {})
		if seen[id] {
			t.Fatalf("duplicate timer id %d", id)
		}
		seen[id] = true
	}
}
