package notify

import (
	"testing"
	"time"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	bus.Success("created")

	select {
	case n := <-ch:
		if n.Severity != SeveritySuccess || n.Message != "created" {
			t.Errorf("got %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("notification never arrived")
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	bus.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		// Well past the channel buffer; excess is dropped, not queued.
		for i := 0; i < 100; i++ {
			bus.Error("overflow")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func TestSeverityHelpers(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	bus.Info("i")
	bus.Warning("w")

	want := []Severity{SeverityInfo, SeverityWarning}
	for _, sev := range want {
		select {
		case n := <-ch:
			if n.Severity != sev {
				t.Errorf("severity = %q, want %q", n.Severity, sev)
			}
		case <-time.After(time.Second):
			t.Fatal("notification never arrived")
		}
	}
}
