package ui

import (
	"path/filepath"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/go-gst/go-gst/gst"
	"github.com/rs/zerolog"

	"stampcam/internal/config"
	"stampcam/internal/library"
	"stampcam/internal/media"
	"stampcam/pkg/gtkutil"
)

// VideosTab lists recorded clips and plays the selected one with a small
// transport: play/pause, a seek bar and an elapsed/total time label.
type VideosTab struct {
	root     *gtk.Box
	list     *gtk.ListBox
	videoBox *gtk.Box

	playBtn   *gtk.Button
	scale     *gtk.Scale
	timeLabel *gtk.Label

	eng    media.Engine
	player media.Player
	embed  *embedder

	dir      string
	names    []string
	progress media.Progress
	playing  bool

	cancelPoll func()
	log        zerolog.Logger
}

func newVideosTab(cfg *config.Config, eng media.Engine, window *gtk.Window, log zerolog.Logger) *VideosTab {
	t := &VideosTab{
		eng: eng,
		dir: cfg.Capture.VideoDir,
		log: log.With().Str("component", "videos_tab").Logger(),
	}

	t.list = gtk.NewListBox()
	t.list.ConnectRowSelected(t.onRowSelected)

	scroller := gtk.NewScrolledWindow()
	scroller.SetChild(t.list)
	scroller.SetSizeRequest(160, -1)

	t.videoBox = gtk.NewBox(gtk.OrientationVertical, 0)
	t.videoBox.SetHExpand(true)
	t.videoBox.SetVExpand(true)
	t.embed = newEmbedder(t.videoBox, window, t.log)

	t.playBtn = gtk.NewButtonWithLabel("▶")
	t.playBtn.ConnectClicked(t.onPlayPause)

	t.scale = gtk.NewScaleWithRange(gtk.OrientationHorizontal, 0, 100, 1)
	t.scale.SetHExpand(true)
	t.scale.SetDrawValue(false)
	t.scale.ConnectValueChanged(t.onScaleMoved)

	// The poll loop must not fight the user over the slider while a drag
	// is in flight, so seeking is bracketed by press and release.
	drag := gtk.NewGestureClick()
	drag.SetButton(1)
	drag.ConnectPressed(func(int, float64, float64) { t.progress.BeginSeek() })
	drag.ConnectReleased(func(int, float64, float64) { t.onSeekReleased() })
	t.scale.AddController(drag)

	t.timeLabel = gtk.NewLabel(idleClock())

	transport := gtk.NewBox(gtk.OrientationHorizontal, 6)
	transport.SetMarginTop(6)
	transport.SetMarginBottom(6)
	transport.SetMarginStart(6)
	transport.SetMarginEnd(6)
	transport.Append(t.playBtn)
	transport.Append(t.scale)
	transport.Append(t.timeLabel)

	right := gtk.NewBox(gtk.OrientationVertical, 0)
	right.SetHExpand(true)
	right.Append(t.videoBox)
	right.Append(transport)

	t.root = gtk.NewBox(gtk.OrientationHorizontal, 0)
	t.root.Append(scroller)
	t.root.Append(right)

	t.cancelPoll = gtkutil.Every(cfg.Playback.PollInterval, t.poll)

	return t
}

func (t *VideosTab) Widget() gtk.Widgetter { return t.root }

// Refresh re-reads the video directory and rebuilds the list.
func (t *VideosTab) Refresh() {
	names, err := library.Videos(t.dir)
	if err != nil {
		t.log.Error().Err(err).Str("dir", t.dir).Msg("failed to list videos")
		return
	}
	t.names = names

	for row := t.list.RowAtIndex(0); row != nil; row = t.list.RowAtIndex(0) {
		t.list.Remove(row)
	}
	for _, name := range names {
		t.list.Append(gtk.NewLabel(name))
	}
	t.log.Debug().Int("count", len(names)).Msg("video list refreshed")
}

// StopPlayback halts the player and resets the transport. Safe to call at
// any time, including before any clip was ever played.
func (t *VideosTab) StopPlayback() {
	if t.player != nil {
		t.player.Stop()
	}
	t.playing = false
	t.progress.Reset()
	t.playBtn.SetLabel("▶")
	t.scale.SetValue(0)
	t.timeLabel.SetLabel(idleClock())
}

func (t *VideosTab) onRowSelected(row *gtk.ListBoxRow) {
	if row == nil {
		return
	}
	idx := row.Index()
	if idx < 0 || idx >= len(t.names) {
		return
	}
	if !t.ensurePlayer() {
		return
	}

	path := filepath.Join(t.dir, t.names[idx])
	t.progress.Reset()
	t.scale.SetValue(0)
	t.timeLabel.SetLabel(idleClock())
	if err := t.player.Load(path); err != nil {
		t.log.Error().Err(err).Str("path", path).Msg("failed to load video")
		return
	}
	t.playing = true
	t.playBtn.SetLabel("⏸")
	t.log.Info().Str("path", path).Msg("playing video")
}

// ensurePlayer builds the persistent playback pipeline on first use and
// embeds its display widget.
func (t *VideosTab) ensurePlayer() bool {
	if t.player != nil {
		return true
	}
	player, err := t.eng.NewPlayer()
	if err != nil {
		t.log.Error().Err(err).Msg("failed to create player")
		return false
	}
	t.player = player
	t.player.Watch(t.onBusMessage)

	if vs, ok := player.(interface{ VideoSink() *gst.Element }); ok {
		if elem := vs.VideoSink(); elem != nil {
			if widget, err := gtkutil.SinkWidget(elem); err == nil {
				t.embed.embed(widget)
			}
		}
	}
	return true
}

func (t *VideosTab) onPlayPause() {
	if t.player == nil {
		return
	}
	if t.playing {
		t.player.Pause()
		t.playing = false
		t.playBtn.SetLabel("▶")
	} else {
		t.player.Play()
		t.playing = true
		t.playBtn.SetLabel("⏸")
	}
}

// onScaleMoved previews the drag target in the time label. Position is not
// changed until release.
func (t *VideosTab) onScaleMoved() {
	if !t.progress.Seeking() {
		return
	}
	if target, ok := t.progress.Target(t.scale.Value() / 100); ok {
		total, _ := t.progress.Duration()
		t.timeLabel.SetLabel(media.FormatClock(target) + " / " + media.FormatClock(total))
	}
}

func (t *VideosTab) onSeekReleased() {
	target, ok := t.progress.EndSeek(t.scale.Value() / 100)
	if !ok || t.player == nil {
		return
	}
	if !t.player.Seek(target) {
		t.log.Warn().Dur("target", target).Msg("seek rejected")
	}
}

// poll updates the slider and the time label from the player. It runs for
// the life of the tab and returns true to stay scheduled.
func (t *VideosTab) poll() bool {
	if t.player == nil || !t.playing {
		return true
	}
	if _, known := t.progress.Duration(); !known {
		if d, ok := t.player.Duration(); ok {
			t.progress.SetDuration(d)
		}
	}
	if !t.progress.Accept() {
		return true
	}
	pos, ok := t.player.Position()
	if !ok {
		return true
	}
	t.scale.SetValue(t.progress.Fraction(pos) * 100)
	total, _ := t.progress.Duration()
	t.timeLabel.SetLabel(media.FormatClock(pos) + " / " + media.FormatClock(total))
	return true
}

func (t *VideosTab) onBusMessage(msg media.BusMessage) {
	switch m := msg.(type) {
	case media.BusEOS:
		t.log.Debug().Msg("playback finished")
		t.StopPlayback()
	case media.BusError:
		t.log.Error().Int("code", m.Code).Str("message", m.Message).Msg("playback error")
		t.StopPlayback()
	case media.BusDurationChanged:
		if d, ok := t.player.Duration(); ok {
			t.progress.SetDuration(d)
		}
	}
}

func idleClock() string {
	return media.FormatClock(0) + " / " + media.FormatClock(0)
}
