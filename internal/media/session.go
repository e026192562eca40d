package media

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"stampcam/internal/library"
)

// ErrNoPipeline is returned by CapturePhoto when no capture graph is running.
var ErrNoPipeline = errors.New("no active pipeline")

// Scheduler abstracts the main-loop callback primitives the session needs:
// a deferred callback and a cancellable timer. The GLib implementation lives
// in the UI layer; tests drive the session with a synchronous fake.
type Scheduler interface {
	// Idle schedules fn to run on the next main-loop iteration.
	Idle(fn func())

	// After schedules fn once d has elapsed and returns a cancel func.
	After(d time.Duration, fn func()) (cancel func())
}

// SessionConfig carries the capture tunables and output locations.
type SessionConfig struct {
	PhotoDir string
	VideoDir string

	// PhotoPullTimeout bounds the synchronous still-frame pull.
	PhotoPullTimeout time.Duration

	// StopFallbackTimeout is the grace period between sending
	// end-of-stream into a recording graph and forcing it down.
	StopFallbackTimeout time.Duration
}

// Session owns at most one running capture pipeline and every transition
// between idle, preview and record. All methods must be called from the
// main loop; the engine reports back through the same loop, so no locking
// is involved.
type Session struct {
	eng     Engine
	builder *Builder
	sched   Scheduler
	cfg     SessionConfig
	log     zerolog.Logger
	now     func() time.Time

	mode           Mode
	pipe           Pipeline
	cancelFallback func()

	onStarted     func(Pipeline)
	onModeChanged func(Mode)
	onStopped     func()
}

// NewSession creates a capture session. The engine and scheduler are
// injected so the state machine can be exercised without GStreamer or GLib.
func NewSession(eng Engine, builder *Builder, sched Scheduler, cfg SessionConfig, log zerolog.Logger) *Session {
	return &Session{
		eng:     eng,
		builder: builder,
		sched:   sched,
		cfg:     cfg,
		log:     log.With().Str("component", "capture-session").Logger(),
		now:     time.Now,
	}
}

// OnStarted registers the hook invoked (via the scheduler, once the graph
// is running) after every successful start. The UI uses it to embed the
// display sink's widget.
func (s *Session) OnStarted(fn func(Pipeline)) { s.onStarted = fn }

// OnModeChanged registers the hook invoked after every mode transition.
func (s *Session) OnModeChanged(fn func(Mode)) { s.onModeChanged = fn }

// OnStopped registers the hook invoked after every pipeline teardown. The
// UI uses it to detach the embedded display widget of the dead graph.
func (s *Session) OnStopped(fn func()) { s.onStopped = fn }

// Mode returns the session's current mode.
func (s *Session) Mode() Mode { return s.mode }

// Pipeline returns the live pipeline handle, or nil when idle.
func (s *Session) Pipeline() Pipeline { return s.pipe }

// StartPreview tears down any running graph and starts the preview graph.
func (s *Session) StartPreview() error {
	s.Stop()

	s.log.Debug().Msg("starting preview pipeline")
	if err := s.launch(s.builder.Preview(), ModePreview, ""); err != nil {
		return err
	}
	s.log.Info().Msg("preview started")
	return nil
}

// ToggleRecord implements the single record action exposed to the UI: it
// starts a recording when none is running, and otherwise begins the
// graceful stop protocol (end-of-stream plus a forced-stop fallback timer).
func (s *Session) ToggleRecord() error {
	if s.mode != ModeRecord {
		return s.startRecord()
	}

	s.log.Debug().Dur("fallback", s.cfg.StopFallbackTimeout).Msg("stopping record: sending EOS")
	if s.pipe.SendEOS() {
		s.log.Info().Msg("EOS event sent")
	} else {
		s.log.Error().Msg("failed to send EOS event")
	}
	// A repeated stop press must not leave the earlier timer armed; the
	// stale one would outlive the EOS cancel and kill whatever records next.
	s.cancelFallbackTimer()
	s.cancelFallback = s.sched.After(s.cfg.StopFallbackTimeout, s.fallbackStop)
	return nil
}

func (s *Session) startRecord() error {
	s.Stop()

	path := library.VideoPath(s.cfg.VideoDir, s.now())
	s.log.Debug().Str("file", path).Msg("starting record pipeline")
	if err := s.launch(s.builder.Record(), ModeRecord, path); err != nil {
		return err
	}
	s.log.Info().Str("file", path).Msg("recording started")
	return nil
}

// launch builds, binds and runs one graph. On any failure the partially
// constructed pipeline is torn down and the session stays idle.
func (s *Session) launch(desc string, mode Mode, outputPath string) error {
	pipe, err := s.eng.Launch(desc)
	if err != nil {
		s.log.Error().Err(err).Msg("pipeline construction failed")
		return fmt.Errorf("pipeline construction failed: %w", err)
	}

	if outputPath != "" {
		if err := pipe.SetLocation(RecordSinkName, outputPath); err != nil {
			pipe.Stop()
			s.log.Error().Err(err).Msg("failed to bind output file")
			return fmt.Errorf("failed to bind output file: %w", err)
		}
	}

	pipe.Watch(s.handleBus)
	if err := pipe.Play(); err != nil {
		pipe.Unwatch()
		pipe.Stop()
		s.log.Error().Err(err).Msg("pipeline failed to start")
		return fmt.Errorf("pipeline failed to start: %w", err)
	}

	s.pipe = pipe
	s.setMode(mode)

	if s.onStarted != nil {
		// The display sink may not create its widget synchronously;
		// embedding is deferred to the next loop iteration.
		s.sched.Idle(func() {
			if s.pipe == pipe && s.onStarted != nil {
				s.onStarted(pipe)
			}
		})
	}
	return nil
}

// CapturePhoto pulls the most recent still frame from the running graph and
// writes it verbatim to a fresh photo file, returning the written path.
func (s *Session) CapturePhoto() (string, error) {
	if s.pipe == nil {
		s.log.Warn().Msg("cannot capture photo: no active pipeline")
		return "", ErrNoPipeline
	}

	data, err := s.pipe.PullPhoto(s.cfg.PhotoPullTimeout)
	if err != nil {
		s.log.Error().Err(err).Msg("no photo sample available")
		return "", fmt.Errorf("photo capture: %w", err)
	}

	path := library.PhotoPath(s.cfg.PhotoDir, s.now())
	if err := os.WriteFile(path, data, 0644); err != nil {
		s.log.Error().Err(err).Str("file", path).Msg("failed to write photo")
		return "", fmt.Errorf("photo capture: %w", err)
	}

	s.log.Info().Str("file", path).Msg("photo saved")
	return path, nil
}

// Stop forces any running graph to the null state, releases it and returns
// the session to idle. Any pending fallback timer dies with the graph it
// was armed for. Safe to call when already idle.
func (s *Session) Stop() {
	if s.pipe == nil {
		return
	}

	s.log.Debug().Stringer("mode", s.mode).Msg("stopping pipeline")
	s.cancelFallbackTimer()
	s.pipe.Unwatch()
	s.pipe.Stop()
	s.pipe = nil
	s.setMode(ModeIdle)
	if s.onStopped != nil {
		s.onStopped()
	}
}

func (s *Session) cancelFallbackTimer() {
	if s.cancelFallback != nil {
		s.cancelFallback()
		s.cancelFallback = nil
	}
}

// fallbackStop fires when a graceful record stop saw no end-of-stream in
// time: force the pipeline down and return to live preview. The
// file-writing stage does not always propagate EOS, so this path is
// expected, not exceptional.
func (s *Session) fallbackStop() {
	s.cancelFallback = nil
	if s.mode != ModeRecord {
		return
	}

	s.log.Warn().Msg("no EOS before fallback timeout; forcing pipeline stop and restarting preview")
	s.Stop()
	if err := s.StartPreview(); err != nil {
		s.log.Error().Err(err).Msg("failed to resume preview after forced stop")
	}
}

func (s *Session) handleBus(msg BusMessage) {
	switch m := msg.(type) {
	case BusError:
		s.log.Error().Int("code", m.Code).Str("debug", m.Debug).Msgf("bus error: %s", m.Message)
		s.Stop()
	case BusEOS:
		s.log.Debug().Msg("bus EOS received")
		s.Stop()
	default:
		// Diagnostic only; no state change.
		s.log.Trace().Msgf("bus message ignored: %T", msg)
	}
}

func (s *Session) setMode(mode Mode) {
	if s.mode == mode {
		return
	}
	s.mode = mode
	if s.onModeChanged != nil {
		s.onModeChanged(mode)
	}
}
