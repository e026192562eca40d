// Package ui assembles the GTK application shell: one window with Camera,
// Photos and Videos pages, wired to the capture session and the media
// library.
package ui

import (
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/rs/zerolog"

	"stampcam/internal/config"
	"stampcam/internal/media"
	"stampcam/pkg/gtkutil"
)

const (
	appID         = "org.stampcam.Stampcam"
	windowTitle   = "Stampcam"
	defaultWidth  = 480
	defaultHeight = 320
)

// Notebook page order.
const (
	pageCamera = iota
	pagePhotos
	pageVideos
)

// App owns the GTK application and the top-level window.
type App struct {
	cfg  *config.Config
	eng  media.Engine
	caps media.Caps
	log  zerolog.Logger

	gtkApp   *gtk.Application
	window   *gtk.ApplicationWindow
	notebook *gtk.Notebook

	session *media.Session
	camera  *CameraTab
	photos  *PhotosTab
	videos  *VideosTab

	currentPage int
}

// New creates the application shell. The engine and capability set come
// from startup; nothing touches GTK until Run.
func New(cfg *config.Config, eng media.Engine, caps media.Caps, log zerolog.Logger) *App {
	return &App{
		cfg:  cfg,
		eng:  eng,
		caps: caps,
		log:  log.With().Str("component", "ui").Logger(),
	}
}

// Run enters the GTK main loop and blocks until the window closes.
func (a *App) Run(args []string) int {
	gtkutil.InitMainThread()

	a.gtkApp = gtk.NewApplication(appID, gio.ApplicationFlagsNone)
	a.gtkApp.ConnectActivate(a.activate)
	return a.gtkApp.Run(args)
}

func (a *App) activate() {
	a.window = gtk.NewApplicationWindow(a.gtkApp)
	a.window.SetTitle(windowTitle)
	a.window.SetDefaultSize(defaultWidth, defaultHeight)

	builder := media.NewBuilder(a.caps, a.cfg.Camera, a.cfg.Capture.BitrateKbps)
	a.session = media.NewSession(a.eng, builder, glibScheduler{}, media.SessionConfig{
		PhotoDir:            a.cfg.Capture.PhotoDir,
		VideoDir:            a.cfg.Capture.VideoDir,
		PhotoPullTimeout:    a.cfg.Capture.PhotoPullTimeout,
		StopFallbackTimeout: a.cfg.Capture.StopFallbackTimeout,
	}, a.log)

	a.camera = newCameraTab(a.session, &a.window.Window, a.quit, a.log)
	a.photos = newPhotosTab(a.cfg.Capture.PhotoDir, &a.window.Window, a.log)
	a.videos = newVideosTab(a.cfg, a.eng, &a.window.Window, a.log)

	a.notebook = gtk.NewNotebook()
	a.notebook.AppendPage(a.camera.Widget(), gtk.NewLabel("Camera"))
	a.notebook.AppendPage(a.photos.Widget(), gtk.NewLabel("Photos"))
	a.notebook.AppendPage(a.videos.Widget(), gtk.NewLabel("Videos"))
	a.notebook.ConnectSwitchPage(a.onSwitchPage)

	a.window.SetChild(a.notebook)
	a.window.ConnectCloseRequest(func() bool {
		a.shutdown()
		return false
	})
	a.window.Present()

	// Auto-start the live preview once the loop is running.
	gtkutil.IdleAdd(func() {
		if err := a.session.StartPreview(); err != nil {
			a.log.Error().Err(err).Msg("failed to start preview")
		}
	})
}

// onSwitchPage refreshes the listing of the page being entered and stops
// video playback when the Videos page is left.
func (a *App) onSwitchPage(_ gtk.Widgetter, pageNum uint) {
	leaving := a.currentPage
	a.currentPage = int(pageNum)

	if leaving == pageVideos && int(pageNum) != pageVideos {
		a.videos.StopPlayback()
	}

	switch int(pageNum) {
	case pagePhotos:
		a.photos.Refresh()
	case pageVideos:
		a.videos.Refresh()
	}
}

func (a *App) shutdown() {
	a.log.Debug().Msg("shutting down")
	a.videos.StopPlayback()
	a.session.Stop()
}

func (a *App) quit() {
	a.window.Close()
}
