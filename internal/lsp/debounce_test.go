package lsp

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebounceTrigger_CoalescesRapidCalls(t *testing.T) {
	d := NewDebounceTrigger(20 * time.Millisecond)

	var calls atomic.Int32
	done := make(chan struct{})

	for i := 0; i < 5; i++ {
		d.Trigger("doc1", func() {
			calls.Add(1)
			close(done)
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("debounced call never fired")
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestDebounceTrigger_SeparateKeysIndependent(t *testing.T) {
	d := NewDebounceTrigger(10 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger("a", func() { calls.Add(1) })
	d.Trigger("b", func() { calls.Add(1) })

	time.Sleep(50 * time.Millisecond)

	if got := calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestDebounceTrigger_Cancel(t *testing.T) {
	d := NewDebounceTrigger(15 * time.Millisecond)

	var fired atomic.Bool
	d.Trigger("doc1", func() { fired.Store(true) })
	d.Cancel("doc1")

	time.Sleep(50 * time.Millisecond)

	if fired.Load() {
		t.Fatal("cancelled call fired anyway")
	}
}
