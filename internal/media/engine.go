// Package media drives the capture and playback pipelines. It owns the
// capture session state machine and the declarative graph builder; the
// engine itself (GStreamer) sits behind the interfaces in this file so the
// lifecycle logic stays engine-agnostic.
package media

import "time"

// Mode is the capture session's current activity.
type Mode int

const (
	ModeIdle Mode = iota
	ModePreview
	ModeRecord
)

func (m Mode) String() string {
	switch m {
	case ModePreview:
		return "preview"
	case ModeRecord:
		return "record"
	default:
		return "idle"
	}
}

// Prober answers whether a named engine element factory is installed.
type Prober interface {
	HasElement(factory string) bool
}

// Engine constructs pipelines from declarative descriptions.
type Engine interface {
	Prober

	// Launch builds a pipeline from a gst-launch style description.
	Launch(desc string) (Pipeline, error)

	// NewPlayer creates the persistent playback pipeline used by the
	// video browser.
	NewPlayer() (Player, error)
}

// Pipeline is the handle to one running capture graph. At most one exists
// at a time; the capture session owns it exclusively.
type Pipeline interface {
	// Play moves the graph to the playing state.
	Play() error

	// Stop forces the graph to the null state and releases its resources.
	Stop()

	// SendEOS posts an end-of-stream event into the graph so file-writing
	// stages can finalize. Returns false if the event was not accepted.
	SendEOS() bool

	// SetLocation binds a file-writing stage to its output path.
	SetLocation(element, path string) error

	// PullPhoto synchronously fetches the most recent encoded still frame
	// from the photo branch, waiting up to timeout.
	PullPhoto(timeout time.Duration) ([]byte, error)

	// Watch registers a handler for bus messages. Messages are delivered
	// on the application main loop.
	Watch(fn func(BusMessage))

	// Unwatch removes the bus handler.
	Unwatch()
}

// Player is the persistent playback pipeline behind the video browser.
type Player interface {
	// Load points the player at a new local file and starts playback
	// from the beginning.
	Load(path string) error

	Play()
	Pause()
	Stop()

	// Position reports the current playback position, if known.
	Position() (time.Duration, bool)

	// Duration reports the total stream duration, if known yet.
	Duration() (time.Duration, bool)

	// Seek jumps to the given position.
	Seek(pos time.Duration) bool

	Watch(fn func(BusMessage))
}

// BusMessage is an asynchronous notification from a running pipeline.
// Only the categories the application reacts to are modeled; everything
// else is logged and dropped inside the engine adapter.
type BusMessage interface {
	busMessage()
}

// BusError reports a fatal engine error on the running graph.
type BusError struct {
	Code    int
	Message string
	Debug   string
}

// BusEOS signals that no further data will flow through the graph.
type BusEOS struct{}

// BusDurationChanged signals that the stream duration became known or changed.
type BusDurationChanged struct{}

func (BusError) busMessage()           {}
func (BusEOS) busMessage()             {}
func (BusDurationChanged) busMessage() {}
