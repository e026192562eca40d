package ui

import (
	"path/filepath"

	"github.com/diamondburned/gotk4/pkg/gdkpixbuf/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/rs/zerolog"

	"stampcam/internal/library"
	"stampcam/internal/ui/layout"
)

// PhotosTab lists captured photos and previews the selected one, scaled to
// fit the pane while keeping its aspect ratio.
type PhotosTab struct {
	root  *gtk.Box
	list  *gtk.ListBox
	frame *gtk.Box
	image *gtk.Image

	dir     string
	names   []string
	current string

	log zerolog.Logger
}

func newPhotosTab(dir string, window *gtk.Window, log zerolog.Logger) *PhotosTab {
	t := &PhotosTab{
		dir: dir,
		log: log.With().Str("component", "photos_tab").Logger(),
	}

	t.list = gtk.NewListBox()
	t.list.ConnectRowSelected(t.onRowSelected)

	scroller := gtk.NewScrolledWindow()
	scroller.SetChild(t.list)
	scroller.SetSizeRequest(160, -1)

	t.image = gtk.NewImage()
	t.image.SetHExpand(true)
	t.image.SetVExpand(true)

	t.frame = gtk.NewBox(gtk.OrientationVertical, 0)
	t.frame.SetHExpand(true)
	t.frame.SetVExpand(true)
	t.frame.Append(t.image)

	t.root = gtk.NewBox(gtk.OrientationHorizontal, 0)
	t.root.Append(scroller)
	t.root.Append(t.frame)

	// Rescale the preview when the window is resized.
	window.NotifyProperty("default-width", t.rescale)
	window.NotifyProperty("default-height", t.rescale)

	return t
}

func (t *PhotosTab) Widget() gtk.Widgetter { return t.root }

// Refresh re-reads the photo directory and rebuilds the list.
func (t *PhotosTab) Refresh() {
	names, err := library.Photos(t.dir)
	if err != nil {
		t.log.Error().Err(err).Str("dir", t.dir).Msg("failed to list photos")
		return
	}
	t.names = names

	for row := t.list.RowAtIndex(0); row != nil; row = t.list.RowAtIndex(0) {
		t.list.Remove(row)
	}
	for _, name := range names {
		t.list.Append(gtk.NewLabel(name))
	}
	t.log.Debug().Int("count", len(names)).Msg("photo list refreshed")
}

func (t *PhotosTab) onRowSelected(row *gtk.ListBoxRow) {
	if row == nil {
		return
	}
	idx := row.Index()
	if idx < 0 || idx >= len(t.names) {
		return
	}
	t.current = filepath.Join(t.dir, t.names[idx])
	t.showCurrent()
}

// rescale redraws the current photo for the pane's present size.
func (t *PhotosTab) rescale() {
	if t.current != "" {
		t.showCurrent()
	}
}

func (t *PhotosTab) showCurrent() {
	pb, err := gdkpixbuf.NewPixbufFromFile(t.current)
	if err != nil {
		t.log.Error().Err(err).Str("path", t.current).Msg("failed to load photo")
		return
	}

	areaW := t.frame.AllocatedWidth()
	areaH := t.frame.AllocatedHeight()
	// Small photos are scaled up to the pane just like large ones are
	// scaled down; only an exact fit skips the resample.
	w, h := layout.Fit(areaW, areaH, pb.Width(), pb.Height())
	if w > 0 && h > 0 && (w != pb.Width() || h != pb.Height()) {
		pb = pb.ScaleSimple(w, h, gdkpixbuf.InterpBilinear)
	}
	t.image.SetFromPixbuf(pb)
}
