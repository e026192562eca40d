package gtkutil

import (
	"errors"
	"unsafe"

	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/go-gst/go-gst/gst"
)

// ErrNoWidget is returned when a sink element does not expose a widget.
var ErrNoWidget = errors.New("element exposes no widget")

// SinkWidget extracts the embeddable display widget from a gtksink-style
// element. The element is owned by go-gst while the returned widget lives
// in the gotk4 object system, so the GObject pointer is re-wrapped across
// the two bindings; Take refs it, keeping the widget alive independently
// of the sample pipeline.
func SinkWidget(elem *gst.Element) (gtk.Widgetter, error) {
	if elem == nil {
		return nil, ErrNoWidget
	}

	val, err := elem.GetProperty("widget")
	if err != nil {
		return nil, err
	}

	gobj, ok := val.(interface{ Native() uintptr })
	if !ok || gobj.Native() == 0 {
		return nil, ErrNoWidget
	}

	obj := coreglib.Take(unsafe.Pointer(gobj.Native()))
	widget, ok := obj.Cast().(gtk.Widgetter)
	if !ok {
		return nil, ErrNoWidget
	}
	return widget, nil
}
