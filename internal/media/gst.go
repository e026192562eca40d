package media

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gst/go-gst/gst"
	"github.com/go-gst/go-gst/gst/app"
	"github.com/rs/zerolog"
)

// ErrPullTimeout is returned when no still frame arrived within the bound.
var ErrPullTimeout = errors.New("no sample available before timeout")

// GstEngine is the GStreamer implementation of Engine. Construct it once,
// after gst.Init, on the main thread.
type GstEngine struct {
	log zerolog.Logger
}

// NewGstEngine wraps the process-wide GStreamer instance.
func NewGstEngine(log zerolog.Logger) *GstEngine {
	return &GstEngine{log: log.With().Str("component", "gst").Logger()}
}

// HasElement reports whether the named element factory is installed.
func (e *GstEngine) HasElement(factory string) bool {
	return gst.Find(factory) != nil
}

// Launch builds a capture pipeline from a gst-launch description.
func (e *GstEngine) Launch(desc string) (Pipeline, error) {
	e.log.Debug().Str("pipeline", desc).Msg("constructing pipeline")
	p, err := gst.NewPipelineFromString(desc)
	if err != nil {
		return nil, fmt.Errorf("parse launch: %w", err)
	}
	return &gstPipeline{pipeline: p, log: e.log}, nil
}

// NewPlayer creates the playbin-backed playback pipeline. When an
// embeddable video sink is available it is attached so the browser can
// embed the output; otherwise playbin picks its own sink.
func (e *GstEngine) NewPlayer() (Player, error) {
	playbin, err := gst.NewElement("playbin")
	if err != nil {
		return nil, fmt.Errorf("create playbin: %w", err)
	}

	pl := &gstPlayer{playbin: playbin, log: e.log}

	if sink, err := gst.NewElement(embedSinkFactory); err == nil {
		if err := playbin.SetProperty("video-sink", sink); err != nil {
			e.log.Warn().Err(err).Msg("failed to attach embeddable sink to playbin")
		} else {
			pl.videoSink = sink
		}
	}
	return pl, nil
}

type gstPipeline struct {
	pipeline *gst.Pipeline
	log      zerolog.Logger
	watching bool
}

func (p *gstPipeline) Play() error {
	return p.pipeline.SetState(gst.StatePlaying)
}

func (p *gstPipeline) Stop() {
	p.pipeline.BlockSetState(gst.StateNull)
}

func (p *gstPipeline) SendEOS() bool {
	return p.pipeline.SendEvent(gst.NewEOSEvent())
}

func (p *gstPipeline) SetLocation(element, path string) error {
	elem, err := p.pipeline.GetElementByName(element)
	if err != nil {
		return fmt.Errorf("no element %q in pipeline: %w", element, err)
	}
	return elem.SetProperty("location", path)
}

func (p *gstPipeline) PullPhoto(timeout time.Duration) ([]byte, error) {
	elem, err := p.pipeline.GetElementByName(PhotoSinkName)
	if err != nil {
		return nil, fmt.Errorf("no element %q in pipeline: %w", PhotoSinkName, err)
	}

	sink := app.SinkFromElement(elem)
	sample := sink.TryPullSample(gst.ClockTime(timeout.Nanoseconds()))
	if sample == nil {
		return nil, ErrPullTimeout
	}

	buf := sample.GetBuffer()
	if buf == nil {
		return nil, ErrPullTimeout
	}
	mapInfo := buf.Map(gst.MapRead)
	if mapInfo == nil {
		return nil, errors.New("failed to map sample buffer")
	}
	defer buf.Unmap()

	// The appsink hands back a reference-counted buffer; copy before the
	// sample is released.
	data := make([]byte, len(mapInfo.Bytes()))
	copy(data, mapInfo.Bytes())
	return data, nil
}

func (p *gstPipeline) Watch(fn func(BusMessage)) {
	if p.watching {
		return
	}
	p.watching = true
	p.pipeline.GetPipelineBus().AddWatch(func(msg *gst.Message) bool {
		if m := translateMessage(msg, p.log); m != nil {
			fn(m)
		}
		return true
	})
}

func (p *gstPipeline) Unwatch() {
	if !p.watching {
		return
	}
	p.watching = false
	p.pipeline.GetPipelineBus().RemoveWatch()
}

// Element returns a named stage of the running graph, for callers that
// need direct access (display sink widget extraction).
func (p *gstPipeline) Element(name string) (*gst.Element, error) {
	return p.pipeline.GetElementByName(name)
}

type gstPlayer struct {
	playbin   *gst.Element
	videoSink *gst.Element
	log       zerolog.Logger
	watching  bool
}

func (p *gstPlayer) Load(path string) error {
	p.playbin.BlockSetState(gst.StateNull)
	if err := p.playbin.SetProperty("uri", "file://"+path); err != nil {
		return fmt.Errorf("set playback uri: %w", err)
	}
	return p.playbin.SetState(gst.StatePlaying)
}

func (p *gstPlayer) Play() {
	if err := p.playbin.SetState(gst.StatePlaying); err != nil {
		p.log.Error().Err(err).Msg("failed to resume playback")
	}
}

func (p *gstPlayer) Pause() {
	if err := p.playbin.SetState(gst.StatePaused); err != nil {
		p.log.Error().Err(err).Msg("failed to pause playback")
	}
}

func (p *gstPlayer) Stop() {
	p.playbin.BlockSetState(gst.StateNull)
}

func (p *gstPlayer) Position() (time.Duration, bool) {
	ok, pos := p.playbin.QueryPosition(gst.FormatTime)
	if !ok || pos < 0 {
		return 0, false
	}
	return time.Duration(pos), true
}

func (p *gstPlayer) Duration() (time.Duration, bool) {
	ok, dur := p.playbin.QueryDuration(gst.FormatTime)
	if !ok || dur <= 0 {
		return 0, false
	}
	return time.Duration(dur), true
}

func (p *gstPlayer) Seek(pos time.Duration) bool {
	return p.playbin.Seek(
		1.0,
		gst.FormatTime,
		gst.SeekFlagFlush|gst.SeekFlagKeyUnit,
		gst.SeekTypeSet, int64(pos),
		gst.SeekTypeNone, -1,
	)
}

func (p *gstPlayer) Watch(fn func(BusMessage)) {
	if p.watching {
		return
	}
	p.watching = true
	p.playbin.GetBus().AddWatch(func(msg *gst.Message) bool {
		if m := translateMessage(msg, p.log); m != nil {
			fn(m)
		}
		return true
	})
}

// VideoSink exposes the playback display sink so the browser can embed its
// widget, when one was attached.
func (p *gstPlayer) VideoSink() *gst.Element {
	return p.videoSink
}

// translateMessage maps the engine bus message categories the application
// reacts to; everything else is logged at trace level and dropped.
func translateMessage(msg *gst.Message, log zerolog.Logger) BusMessage {
	switch msg.Type() {
	case gst.MessageError:
		gerr := msg.ParseError()
		return BusError{Message: gerr.Error(), Debug: gerr.DebugString()}
	case gst.MessageEOS:
		return BusEOS{}
	case gst.MessageDurationChanged:
		return BusDurationChanged{}
	default:
		// Stringifying a message is expensive; only do it when tracing.
		if log.GetLevel() <= zerolog.TraceLevel {
			log.Trace().Msgf("bus message: %s", msg)
		}
		return nil
	}
}
