package ui

import (
	"time"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/go-gst/go-gst/gst"
	"github.com/rs/zerolog"

	"stampcam/internal/media"
	"stampcam/pkg/gtkutil"
)

// cameraCSS highlights the photo button for a moment after it is pressed.
const cameraCSS = `
button.snap-feedback {
	background: #3584e4;
}
`

const snapFeedback = 150 * time.Millisecond

// CameraTab shows the live preview with the exit, photo and record buttons
// beside it.
type CameraTab struct {
	root     *gtk.Box
	videoBox *gtk.Box

	exitBtn   *gtk.Button
	photoBtn  *gtk.Button
	recordBtn *gtk.Button

	session *media.Session
	embed   *embedder
	log     zerolog.Logger
}

func newCameraTab(session *media.Session, window *gtk.Window, quit func(), log zerolog.Logger) *CameraTab {
	t := &CameraTab{
		session: session,
		log:     log.With().Str("component", "camera_tab").Logger(),
	}

	t.videoBox = gtk.NewBox(gtk.OrientationVertical, 0)
	t.videoBox.SetHExpand(true)
	t.videoBox.SetVExpand(true)
	t.embed = newEmbedder(t.videoBox, window, t.log)

	t.exitBtn = gtk.NewButtonWithLabel("❌")
	t.exitBtn.ConnectClicked(quit)

	t.photoBtn = gtk.NewButtonWithLabel("📷")
	t.photoBtn.ConnectClicked(t.onPhoto)

	t.recordBtn = gtk.NewButtonWithLabel("⏺")
	t.recordBtn.ConnectClicked(t.onRecord)

	buttons := gtk.NewBox(gtk.OrientationVertical, 6)
	buttons.SetMarginTop(6)
	buttons.SetMarginBottom(6)
	buttons.SetMarginStart(6)
	buttons.SetMarginEnd(6)
	buttons.SetVAlign(gtk.AlignCenter)
	buttons.Append(t.exitBtn)
	buttons.Append(t.photoBtn)
	buttons.Append(t.recordBtn)

	t.root = gtk.NewBox(gtk.OrientationHorizontal, 0)
	t.root.Append(t.videoBox)
	t.root.Append(buttons)

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(cameraCSS)
	gtk.StyleContextAddProviderForDisplay(
		gdk.DisplayGetDefault(),
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)

	session.OnStarted(t.onPipelineStarted)
	session.OnModeChanged(t.onModeChanged)
	// A stopped graph's sink widget is dead; leave the box empty until the
	// next start re-embeds.
	session.OnStopped(t.embed.clear)

	return t
}

func (t *CameraTab) Widget() gtk.Widgetter { return t.root }

// onPipelineStarted embeds the display sink of the freshly started pipeline.
// It runs on the main loop, after the pipeline reached PLAYING.
func (t *CameraTab) onPipelineStarted(p media.Pipeline) {
	gp, ok := p.(interface {
		Element(name string) (*gst.Element, error)
	})
	if !ok {
		return
	}
	elem, err := gp.Element(media.DisplaySinkName)
	if err != nil {
		t.log.Debug().Err(err).Msg("display sink not embeddable, using its own window")
		return
	}
	widget, err := gtkutil.SinkWidget(elem)
	if err != nil {
		t.log.Debug().Err(err).Msg("display sink has no widget")
		return
	}
	t.embed.embed(widget)
}

// onModeChanged keeps the record button glyph in step with the session.
func (t *CameraTab) onModeChanged(m media.Mode) {
	if m == media.ModeRecord {
		t.recordBtn.SetLabel("⏹")
	} else {
		t.recordBtn.SetLabel("⏺")
	}
}

func (t *CameraTab) onPhoto() {
	t.photoBtn.AddCSSClass("snap-feedback")
	gtkutil.After(snapFeedback, func() {
		t.photoBtn.RemoveCSSClass("snap-feedback")
	})
	if _, err := t.session.CapturePhoto(); err != nil {
		t.log.Error().Err(err).Msg("photo capture failed")
	}
}

func (t *CameraTab) onRecord() {
	if err := t.session.ToggleRecord(); err != nil {
		t.log.Error().Err(err).Msg("record toggle failed")
	}
}
