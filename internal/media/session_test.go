package media

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stampcam/internal/config"
)

type fakeScheduler struct {
	idles  []func()
	timers []*fakeTimer
}

type fakeTimer struct {
	d        time.Duration
	fn       func()
	canceled bool
}

func (s *fakeScheduler) Idle(fn func()) {
	s.idles = append(s.idles, fn)
}

func (s *fakeScheduler) After(d time.Duration, fn func()) func() {
	t := &fakeTimer{d: d, fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.canceled = true }
}

func (s *fakeScheduler) runIdles() {
	idles := s.idles
	s.idles = nil
	for _, fn := range idles {
		fn()
	}
}

// fireTimers runs every armed, uncanceled timer once.
func (s *fakeScheduler) fireTimers() {
	timers := s.timers
	s.timers = nil
	for _, t := range timers {
		if !t.canceled {
			t.fn()
		}
	}
}

type fakeEngine struct {
	launched   []*fakePipeline
	live       int
	maxLive    int
	launchErr  error
	photoData  []byte
	photoErr   error
	eosAccepts bool
}

func (e *fakeEngine) HasElement(string) bool { return true }

func (e *fakeEngine) Launch(desc string) (Pipeline, error) {
	if e.launchErr != nil {
		return nil, e.launchErr
	}
	p := &fakePipeline{eng: e, desc: desc}
	e.launched = append(e.launched, p)
	e.live++
	if e.live > e.maxLive {
		e.maxLive = e.live
	}
	return p, nil
}

func (e *fakeEngine) NewPlayer() (Player, error) { return nil, errors.New("not used") }

type fakePipeline struct {
	eng      *fakeEngine
	desc     string
	location string
	playing  bool
	stops    int
	eosSent  int
	bus      func(BusMessage)
}

func (p *fakePipeline) Play() error {
	p.playing = true
	return nil
}

func (p *fakePipeline) Stop() {
	if p.playing {
		p.eng.live--
	}
	p.playing = false
	p.stops++
}

func (p *fakePipeline) SendEOS() bool {
	p.eosSent++
	return p.eng.eosAccepts
}

func (p *fakePipeline) SetLocation(element, path string) error {
	p.location = path
	return nil
}

func (p *fakePipeline) PullPhoto(timeout time.Duration) ([]byte, error) {
	if p.eng.photoErr != nil {
		return nil, p.eng.photoErr
	}
	return p.eng.photoData, nil
}

func (p *fakePipeline) Watch(fn func(BusMessage)) { p.bus = fn }
func (p *fakePipeline) Unwatch()                  { p.bus = nil }

func newTestSession(t *testing.T) (*Session, *fakeEngine, *fakeScheduler) {
	t.Helper()
	eng := &fakeEngine{eosAccepts: true}
	sched := &fakeScheduler{}
	builder := NewBuilder(
		Caps{EmbeddableSink: true, Encoder: "x264enc"},
		config.CameraConfig{Device: "/dev/video0", Width: 1920, Height: 1080, Framerate: 30},
		8000,
	)
	cfg := SessionConfig{
		PhotoDir:            t.TempDir(),
		VideoDir:            t.TempDir(),
		PhotoPullTimeout:    time.Second,
		StopFallbackTimeout: 2 * time.Second,
	}
	return NewSession(eng, builder, sched, cfg, zerolog.Nop()), eng, sched
}

func TestStartSequencesKeepSingleHandle(t *testing.T) {
	s, eng, _ := newTestSession(t)

	if err := s.StartPreview(); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}
	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("ToggleRecord failed: %v", err)
	}
	if err := s.StartPreview(); err != nil {
		t.Fatalf("second StartPreview failed: %v", err)
	}
	s.Stop()

	if eng.maxLive != 1 {
		t.Errorf("expected at most 1 live pipeline, saw %d", eng.maxLive)
	}
	if eng.live != 0 {
		t.Errorf("expected 0 live pipelines after Stop, got %d", eng.live)
	}
	if s.Mode() != ModeIdle {
		t.Errorf("expected idle mode, got %s", s.Mode())
	}
}

func TestRecordThenPreviewTearsDownRecordGraph(t *testing.T) {
	s, eng, _ := newTestSession(t)

	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("ToggleRecord failed: %v", err)
	}
	record := eng.launched[0]
	if record.location == "" {
		t.Fatal("record graph was not bound to an output file")
	}
	if base := filepath.Base(record.location); !regexp.MustCompile(`^video_\d{8}_\d{6}\.mp4$`).MatchString(base) {
		t.Errorf("unexpected output file name: %s", base)
	}

	if err := s.StartPreview(); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}

	if record.stops == 0 {
		t.Error("record pipeline was not torn down")
	}
	if record.bus != nil {
		t.Error("record pipeline bus watch still attached")
	}
	if s.Mode() != ModePreview {
		t.Errorf("expected preview mode, got %s", s.Mode())
	}
}

func TestGracefulStopEOSWithinWindow(t *testing.T) {
	s, eng, sched := newTestSession(t)

	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("start record failed: %v", err)
	}
	record := eng.launched[0]

	// Second press: graceful stop.
	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("graceful stop failed: %v", err)
	}
	if record.eosSent != 1 {
		t.Fatalf("expected 1 EOS event, got %d", record.eosSent)
	}
	if len(sched.timers) != 1 {
		t.Fatalf("expected fallback timer armed, got %d timers", len(sched.timers))
	}

	// EOS arrives inside the fallback window.
	record.bus(BusEOS{})

	if s.Mode() != ModeIdle {
		t.Errorf("expected idle after EOS, got %s", s.Mode())
	}
	if record.stops != 1 {
		t.Errorf("expected exactly one stop, got %d", record.stops)
	}
	if !sched.timers[0].canceled {
		t.Error("fallback timer was not canceled")
	}

	// Even if the timer somehow fired it must not double-stop.
	sched.timers[0].fn()
	if record.stops != 1 {
		t.Errorf("fallback double-stopped the pipeline: %d stops", record.stops)
	}
}

func TestGracefulStopFallbackResumesPreview(t *testing.T) {
	s, eng, sched := newTestSession(t)

	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("start record failed: %v", err)
	}
	record := eng.launched[0]

	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("graceful stop failed: %v", err)
	}

	// No EOS ever arrives; the fallback fires.
	sched.fireTimers()

	if record.stops != 1 {
		t.Errorf("expected forced stop, got %d stops", record.stops)
	}
	if s.Mode() != ModePreview {
		t.Errorf("expected automatic preview resume, got %s", s.Mode())
	}
	if len(eng.launched) != 2 {
		t.Fatalf("expected a fresh preview pipeline, launched=%d", len(eng.launched))
	}
}

func TestCapturePhotoWithoutPipeline(t *testing.T) {
	s, _, _ := newTestSession(t)

	path, err := s.CapturePhoto()
	if !errors.Is(err, ErrNoPipeline) {
		t.Fatalf("expected ErrNoPipeline, got %v", err)
	}
	if path != "" {
		t.Errorf("expected no path, got %s", path)
	}

	entries, err := os.ReadDir(s.cfg.PhotoDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected zero files written, got %d", len(entries))
	}
}

func TestCapturePhotoWritesPulledBytes(t *testing.T) {
	s, eng, _ := newTestSession(t)
	eng.photoData = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02, 0x03}

	if err := s.StartPreview(); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}

	path, err := s.CapturePhoto()
	if err != nil {
		t.Fatalf("CapturePhoto failed: %v", err)
	}

	if base := filepath.Base(path); !regexp.MustCompile(`^photo_\d{8}_\d{6}\.jpg$`).MatchString(base) {
		t.Errorf("unexpected photo name: %s", base)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading photo failed: %v", err)
	}
	if string(written) != string(eng.photoData) {
		t.Error("written photo differs from pulled buffer")
	}

	entries, _ := os.ReadDir(s.cfg.PhotoDir)
	if len(entries) != 1 {
		t.Errorf("expected exactly one file, got %d", len(entries))
	}
}

func TestCapturePhotoPullTimeout(t *testing.T) {
	s, eng, _ := newTestSession(t)
	eng.photoErr = ErrPullTimeout

	if err := s.StartPreview(); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}

	if _, err := s.CapturePhoto(); !errors.Is(err, ErrPullTimeout) {
		t.Fatalf("expected pull timeout error, got %v", err)
	}

	entries, _ := os.ReadDir(s.cfg.PhotoDir)
	if len(entries) != 0 {
		t.Errorf("expected no files on timeout, got %d", len(entries))
	}
}

func TestConstructionFailureLeavesSessionIdle(t *testing.T) {
	s, eng, _ := newTestSession(t)
	eng.launchErr = errors.New("no such element")

	if err := s.StartPreview(); err == nil {
		t.Fatal("expected construction error")
	}
	if s.Mode() != ModeIdle {
		t.Errorf("expected idle after failed start, got %s", s.Mode())
	}
	if s.Pipeline() != nil {
		t.Error("expected no pipeline after failed start")
	}
}

func TestBusErrorStopsSession(t *testing.T) {
	s, eng, _ := newTestSession(t)

	if err := s.StartPreview(); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}
	eng.launched[0].bus(BusError{Message: "internal data stream error"})

	if s.Mode() != ModeIdle {
		t.Errorf("expected idle after bus error, got %s", s.Mode())
	}
	if eng.live != 0 {
		t.Errorf("expected pipeline released, live=%d", eng.live)
	}
}

func TestOnStartedHookDeferredToIdle(t *testing.T) {
	s, eng, sched := newTestSession(t)

	var started []Pipeline
	s.OnStarted(func(p Pipeline) { started = append(started, p) })

	if err := s.StartPreview(); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}
	if len(started) != 0 {
		t.Fatal("hook ran synchronously; embedding must be deferred")
	}

	sched.runIdles()
	if len(started) != 1 || started[0] != Pipeline(eng.launched[0]) {
		t.Fatalf("expected hook with live pipeline, got %v", started)
	}

	// A hook scheduled for an already-replaced pipeline must not fire.
	if err := s.StartPreview(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	s.Stop()
	sched.runIdles()
	if len(started) != 1 {
		t.Errorf("stale hook fired after teardown: %d calls", len(started))
	}
}

func TestRepeatedStopPressCancelsStaleFallbackTimer(t *testing.T) {
	s, eng, sched := newTestSession(t)

	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("start record failed: %v", err)
	}
	record := eng.launched[0]

	// Two stop presses inside the grace window arm the timer twice; only
	// the latest may stay live.
	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("first stop press failed: %v", err)
	}
	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("second stop press failed: %v", err)
	}
	if !sched.timers[0].canceled {
		t.Error("superseded fallback timer left armed")
	}

	// EOS lands, then the user records again before the old window passes.
	record.bus(BusEOS{})
	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("new record failed: %v", err)
	}
	next := eng.launched[1]

	sched.fireTimers()

	if s.Mode() != ModeRecord {
		t.Errorf("stale fallback timer killed the new recording: mode=%s", s.Mode())
	}
	if next.stops != 0 {
		t.Errorf("new recording was stopped %d times", next.stops)
	}
	if record.stops != 1 {
		t.Errorf("expected one stop of the old recording, got %d", record.stops)
	}
}

func TestStopCancelsFallbackTimer(t *testing.T) {
	s, eng, sched := newTestSession(t)

	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("start record failed: %v", err)
	}
	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("graceful stop failed: %v", err)
	}

	// A hard stop (window close, bus error) during the grace window must
	// disarm the timer; a recording started afterwards may not inherit it.
	s.Stop()
	if !sched.timers[0].canceled {
		t.Error("fallback timer survived Stop")
	}

	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("new record failed: %v", err)
	}
	sched.fireTimers()

	if s.Mode() != ModeRecord {
		t.Errorf("expected recording to survive, got %s", s.Mode())
	}
	if eng.launched[1].stops != 0 {
		t.Errorf("new recording was stopped %d times", eng.launched[1].stops)
	}
}

func TestStoppedHookFiresOnEveryTeardown(t *testing.T) {
	s, eng, _ := newTestSession(t)

	stops := 0
	s.OnStopped(func() { stops++ })

	s.Stop() // idle, nothing to tear down
	if stops != 0 {
		t.Fatalf("hook fired with no pipeline: %d", stops)
	}

	if err := s.StartPreview(); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}
	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("ToggleRecord failed: %v", err)
	}
	// The implicit preview teardown counts.
	if stops != 1 {
		t.Errorf("expected 1 teardown after record start, got %d", stops)
	}

	eng.launched[1].bus(BusError{Message: "internal data stream error"})
	if stops != 2 {
		t.Errorf("expected teardown on bus error, got %d", stops)
	}
}

func TestModeChangeHook(t *testing.T) {
	s, _, _ := newTestSession(t)

	var modes []Mode
	s.OnModeChanged(func(m Mode) { modes = append(modes, m) })

	if err := s.StartPreview(); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}
	if err := s.ToggleRecord(); err != nil {
		t.Fatalf("ToggleRecord failed: %v", err)
	}
	s.Stop()

	want := []Mode{ModePreview, ModeIdle, ModeRecord, ModeIdle}
	if len(modes) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, modes)
	}
	for i := range want {
		if modes[i] != want[i] {
			t.Fatalf("expected transitions %v, got %v", want, modes)
		}
	}
}
