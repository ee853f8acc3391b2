package engine

import (
	"testing"
	"time"
)

// TestWindowOpenedChannel verifies the opened channel closes on Open and is replaced on Shut
func TestWindowOpenedChannel(t *testing.T) {
	w := NewWindow()
	ch := w.Opened()
	select {
	case <-ch:
		t.Fatal("Expected new window to be shut")
	default:
	}

	w.Open()
	select {
	case <-ch:
	default:
		t.Fatal("Expected opened channel to close on Open")
	}
	if !w.IsOpen() {
		t.Error("Expected IsOpen true after Open")
	}

	w.Shut()
	select {
	case <-w.Opened():
		t.Error("Expected a fresh channel after Shut")
	default:
	}
	if w.IsOpen() {
		t.Error("Expected IsOpen false after Shut")
	}
}

// TestWindowDoWhenShut verifies checks are refused outside the window
func TestWindowDoWhenShut(t *testing.T) {
	w := NewWindow()
	ran := false
	if w.Do(func() { ran = true }) {
		t.Error("Expected Do to refuse on a shut window")
	}
	if ran {
		t.Error("Expected fn not to run")
	}

	w.Open()
	if !w.Do(func() { ran = true }) || !ran {
		t.Error("Expected Do to run fn on an open window")
	}
}

// TestWindowShutWaitsForChecks verifies Shut returns only after in-flight checks finish
func TestWindowShutWaitsForChecks(t *testing.T) {
	w := NewWindow()
	w.Open()

	entered := make(chan struct{})
	release := make(chan struct{})
	go w.Do(func() {
		close(entered)
		<-release
	})
	<-entered

	shut := make(chan struct{})
	go func() {
		w.Shut()
		close(shut)
	}()

	select {
	case <-shut:
		t.Fatal("Shut returned while a check was in flight")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	select {
	case <-shut:
	case <-time.After(time.Second):
		t.Fatal("Shut did not return after the check finished")
	}
}

// TestWindowRepeatedOpen verifies Open and Shut are idempotent
func TestWindowRepeatedOpen(t *testing.T) {
	w := NewWindow()
	w.Open()
	w.Open()
	w.Shut()
	w.Shut()
	w.Open()
	if !w.IsOpen() {
		t.Error("Expected window open after reopen")
	}
}
