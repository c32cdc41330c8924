package cmd

import (
	"os"
	"testing"
	"time"
)

func TestCancelOnInterrupt_CancelsStartedSession(t *testing.T) {
	interrupts := make(chan os.Signal, 1)
	started := make(chan string, 1)
	started <- "7f3a-session"

	cancelled := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		cancelOnInterrupt(interrupts, started, func(id string) error {
			cancelled <- id
			return nil
		})
		close(done)
	}()

	interrupts <- os.Interrupt
	<-done

	select {
	case id := <-cancelled:
		if id != "7f3a-session" {
			t.Errorf("cancelled session %q, want 7f3a-session", id)
		}
	default:
		t.Error("interrupt did not cancel the started session")
	}
}

func TestCancelOnInterrupt_NoopBeforeSessionStarts(t *testing.T) {
	interrupts := make(chan os.Signal, 1)
	started := make(chan string, 1)

	cancelled := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		cancelOnInterrupt(interrupts, started, func(id string) error {
			cancelled <- id
			return nil
		})
		close(done)
	}()

	interrupts <- os.Interrupt
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancelOnInterrupt did not return")
	}

	select {
	case id := <-cancelled:
		t.Errorf("cancelled %q with no session started", id)
	default:
	}
}
