package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-gst/go-gst/gst"

	"stampcam/internal/cli"
	"stampcam/internal/config"
	"stampcam/internal/library"
	"stampcam/internal/logging"
	"stampcam/internal/media"
	"stampcam/internal/ui"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	// GTK and GStreamer both expect to run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize config: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cli.NewRootCmd(version, commit, buildDate, runGUI)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGUI() int {
	cfg := config.Get()
	log := logging.New(logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		TimeFormat: time.RFC3339,
	})

	if err := library.EnsureDirs(cfg.Capture.PhotoDir, cfg.Capture.VideoDir); err != nil {
		log.Error().Err(err).Msg("failed to create capture directories")
		return 1
	}

	gst.Init(nil)

	eng := media.NewGstEngine(log)
	caps := media.Detect(eng, log)
	log.Info().
		Bool("embeddable_sink", caps.EmbeddableSink).
		Str("encoder", caps.Encoder).
		Str("device", cfg.Camera.Device).
		Msg("starting")

	app := ui.New(cfg, eng, caps, log)
	return app.Run([]string{os.Args[0]})
}
