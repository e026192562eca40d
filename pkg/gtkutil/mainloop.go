// Package gtkutil provides thin helpers over the GTK main loop and the
// glue between GStreamer-owned widgets and the gotk4 widget tree.
package gtkutil

import (
	"runtime"
	"time"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
)

var isInitialized bool

// InitMainThread locks the current goroutine to the OS thread for GTK
// operations. This must be called before any GTK operations.
func InitMainThread() {
	if !isInitialized {
		runtime.LockOSThread()
		isInitialized = true
	}
}

// IsMainThread returns true if called from the GTK main thread.
func IsMainThread() bool {
	// The main goroutine stays locked to the GTK thread for the process
	// lifetime, so initialization implies we are on it.
	return isInitialized
}

// RunOnMainThread executes a function on the GTK main thread.
// If already on the main thread, executes immediately.
// Otherwise, schedules the function via glib.IdleAdd.
func RunOnMainThread(fn func()) {
	if IsMainThread() {
		fn()
		return
	}

	glib.IdleAdd(func() bool {
		fn()
		return false // Remove the idle handler after execution
	})
}

// IdleAdd schedules fn for the next main-loop iteration.
func IdleAdd(fn func()) {
	glib.IdleAdd(func() bool {
		fn()
		return false
	})
}

// After schedules fn once d has elapsed and returns a cancel func. The
// callback runs on the main loop; cancel is safe to call after it fired.
func After(d time.Duration, fn func()) (cancel func()) {
	fired := false
	handle := glib.TimeoutAdd(uint(d.Milliseconds()), func() bool {
		fired = true
		fn()
		return false
	})
	return func() {
		if !fired {
			glib.SourceRemove(handle)
			fired = true
		}
	}
}

// Every schedules fn at a fixed interval until it returns false, and
// returns a cancel func.
func Every(d time.Duration, fn func() bool) (cancel func()) {
	stopped := false
	handle := glib.TimeoutAdd(uint(d.Milliseconds()), func() bool {
		if stopped {
			return false
		}
		if !fn() {
			stopped = true
			return false
		}
		return true
	})
	return func() {
		if !stopped {
			stopped = true
			glib.SourceRemove(handle)
		}
	}
}
