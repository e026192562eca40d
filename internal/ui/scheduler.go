package ui

import (
	"time"

	"stampcam/pkg/gtkutil"
)

// glibScheduler backs the capture session's deferred callbacks and its
// fallback timer with the GLib main loop.
type glibScheduler struct{}

func (glibScheduler) Idle(fn func()) {
	gtkutil.IdleAdd(fn)
}

func (glibScheduler) After(d time.Duration, fn func()) (cancel func()) {
	return gtkutil.After(d, fn)
}
