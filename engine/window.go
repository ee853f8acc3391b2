package engine

import "sync"

// Window gates collision checks. While open, coordinators may test their cube against
// the crosshair under a read hold; Shut takes the write side so it returns only after
// every in-flight check has finished
type Window struct {
	hold sync.RWMutex

	mu     sync.Mutex
	open   bool
	opened chan struct{}
}

// NewWindow creates a shut window
func NewWindow() *Window {
	return &Window{opened: make(chan struct{})}
}

// Open lets collision checks proceed and wakes every waiter
func (w *Window) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.open {
		return
	}
	w.open = true
	close(w.opened)
}

// Shut stops new checks and waits for in-flight ones
func (w *Window) Shut() {
	w.hold.Lock()
	defer w.hold.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.open {
		return
	}
	w.open = false
	w.opened = make(chan struct{})
}

// Opened returns a channel closed when the window next opens
func (w *Window) Opened() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opened
}

// IsOpen reports the current state
func (w *Window) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Do runs fn under the read hold if the window is open. Returns false if shut
func (w *Window) Do(fn func()) bool {
	w.hold.RLock()
	defer w.hold.RUnlock()
	if !w.IsOpen() {
		return false
	}
	fn()
	return true
}
