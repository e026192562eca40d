package ui

import (
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/rs/zerolog"
)

// embedder moves a sink-provided widget into a container box. Sinks create
// their own toplevel when left unparented, so embedding hides that foreign
// window, detaches the widget and appends it to the container. Embedding
// the same widget again is a no-op beyond making it visible.
type embedder struct {
	container *gtk.Box
	window    *gtk.Window
	current   gtk.Widgetter
	log       zerolog.Logger
}

func newEmbedder(container *gtk.Box, window *gtk.Window, log zerolog.Logger) *embedder {
	return &embedder{container: container, window: window, log: log}
}

func (e *embedder) embed(widget gtk.Widgetter) {
	if e.current != nil && sameObject(e.current, widget) {
		gtk.BaseWidget(widget).SetVisible(true)
		return
	}
	e.clear()

	w := gtk.BaseWidget(widget)
	if root, ok := w.Root().(*gtk.Window); ok && !sameObject(root, e.window) {
		// The sink realized its own toplevel before we got here.
		root.SetVisible(false)
	}
	if w.Parent() != nil {
		w.Unparent()
	}
	e.container.Append(widget)
	w.SetVisible(true)
	e.current = widget
	e.log.Debug().Msg("video widget embedded")
}

// clear detaches the currently embedded widget, if any.
func (e *embedder) clear() {
	if e.current == nil {
		return
	}
	e.container.Remove(e.current)
	e.current = nil
}

func sameObject(a, b coreglib.Objector) bool {
	return coreglib.BaseObject(a).Native() == coreglib.BaseObject(b).Native()
}
