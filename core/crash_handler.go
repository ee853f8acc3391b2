package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

var (
	crashMu      sync.RWMutex
	restoreHook  func()
	crashHandler func(r any) = HandleCrash
	crashOutput  io.Writer   = os.Stderr
)

// SetRestoreHook registers the terminal cleanup that runs before a crash report is printed
func SetRestoreHook(fn func()) {
	crashMu.Lock()
	defer crashMu.Unlock()
	restoreHook = fn
}

// SetCrashHandler replaces the handler used by Go for recovered panics
// Returns a function restoring the previous handler
func SetCrashHandler(fn func(r any)) (restore func()) {
	crashMu.Lock()
	prev := crashHandler
	crashHandler = fn
	crashMu.Unlock()

	return func() {
		crashMu.Lock()
		crashHandler = prev
		crashMu.Unlock()
	}
}

// HandleCrash is the unified panic handler that resets the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.RLock()
	hook := restoreHook
	out := crashOutput
	crashMu.RUnlock()

	// Restore terminal to sane state immediately
	if hook != nil {
		hook()
	}

	os.Stdout.Sync()

	var fault *Fault
	if err, ok := r.(error); ok && errors.As(err, &fault) {
		fmt.Fprintf(out, "\r\n\x1b[31mFATAL ERROR: %s\x1b[0m\r\n", fault.Error())
	} else {
		fmt.Fprintf(out, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	}
	fmt.Fprintf(out, "Stack Trace:\r\n%s\r\n", debug.Stack())

	os.Stderr.Sync()
	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				crashMu.RLock()
				handler := crashHandler
				crashMu.RUnlock()
				handler(r)
			}
		}()
		fn()
	}()
}
