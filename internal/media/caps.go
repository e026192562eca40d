package media

import "github.com/rs/zerolog"

// Element factory names probed at startup.
const (
	embedSinkFactory    = "gtksink"
	fallbackSinkFactory = "autovideosink"

	encoderX264     = "x264enc"
	encoderOpenH264 = "openh264enc"
)

// Caps is the process-wide capability set: which optional engine elements
// are installed. Detected once at startup and immutable afterwards.
type Caps struct {
	// EmbeddableSink reports whether the display sink can hand us a
	// widget to embed in our own window. Without it the fallback sink
	// opens its own top-level window.
	EmbeddableSink bool

	// Encoder is the H.264 encoder factory the record graph will use.
	Encoder string
}

// DisplaySink returns the display sink factory matching the capability set.
func (c Caps) DisplaySink() string {
	if c.EmbeddableSink {
		return embedSinkFactory
	}
	return fallbackSinkFactory
}

// Detect probes the engine for optional capabilities. Preference order for
// the encoder is x264enc then openh264enc; when neither is installed the
// x264enc identifier is kept anyway so the eventual graph-construction
// failure names the element that is missing instead of failing silently.
func Detect(p Prober, log zerolog.Logger) Caps {
	caps := Caps{Encoder: encoderX264}

	if p.HasElement(embedSinkFactory) {
		caps.EmbeddableSink = true
		log.Debug().Str("sink", embedSinkFactory).Msg("using embeddable video sink")
	} else {
		log.Warn().
			Str("fallback", fallbackSinkFactory).
			Msgf("%s not found; video preview will open its own window", embedSinkFactory)
	}

	switch {
	case p.HasElement(encoderX264):
		caps.Encoder = encoderX264
	case p.HasElement(encoderOpenH264):
		caps.Encoder = encoderOpenH264
	default:
		log.Error().Msg("no H.264 encoder found; recording will fail to start")
	}

	log.Debug().Str("encoder", caps.Encoder).Bool("embeddable_sink", caps.EmbeddableSink).
		Msg("engine capabilities detected")
	return caps
}
