package watch

import (
	"sync"
	"testing"
	"time"
)

func TestSubscribeNotify(t *testing.T) {
	h := NewHub()

	ch1, unsub1 := h.Subscribe()
	ch2, unsub2 := h.Subscribe()
	defer unsub1()
	defer unsub2()

	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}

	h.Notify()

	for i, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive signal", i)
		}
	}
}

func TestNotifyCoalesces(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe()
	defer unsub()

	// Several notifies without draining must not block and must leave at
	// most one pending signal.
	for i := 0; i < 5; i++ {
		h.Notify()
	}

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single coalesced signal")
	default:
	}
}

func TestUnsubscribe(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe()

	unsub()
	if h.Len() != 0 {
		t.Fatalf("Len = %d after unsubscribe, want 0", h.Len())
	}

	// Channel is closed so a waiting consumer unblocks.
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed on unsubscribe")
	}

	// Second call is a no-op.
	unsub()

	// Notify after unsubscribe must not panic.
	h.Notify()
}

func TestConcurrentSubscribers(t *testing.T) {
	h := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, unsub := h.Subscribe()
			h.Notify()
			<-ch
			unsub()
		}()
	}
	wg.Wait()

	if h.Len() != 0 {
		t.Fatalf("Len = %d after all unsubscribed, want 0", h.Len())
	}
}
