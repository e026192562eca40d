package media

import (
	"fmt"
	"strings"

	"stampcam/internal/config"
)

// Stage names looked up on constructed graphs.
const (
	// DisplaySinkName is the display sink element; when the sink is
	// embeddable its widget is pulled out of the graph by name.
	DisplaySinkName = "video_sink"

	// PhotoSinkName is the pull-based single-buffer sink feeding still
	// capture.
	PhotoSinkName = "photo_sink"

	// RecordSinkName is the segment-aware file-writing sink; its output
	// location is bound after construction.
	RecordSinkName = "splitmux"
)

// Builder produces the declarative capture graph descriptions. Both graph
// shapes share one camera source fanned out by a tee into independently
// queued branches so a slow branch cannot stall the others.
type Builder struct {
	caps    Caps
	camera  config.CameraConfig
	bitrate int
}

// NewBuilder creates a graph builder for the given capability set and
// camera configuration.
func NewBuilder(caps Caps, camera config.CameraConfig, bitrateKbps int) *Builder {
	return &Builder{caps: caps, camera: camera, bitrate: bitrateKbps}
}

func (b *Builder) source() string {
	return fmt.Sprintf(
		"v4l2src device=%s ! image/jpeg,width=%d,height=%d,framerate=%d/1 ! jpegdec ! videoconvert ! tee name=t",
		b.camera.Device, b.camera.Width, b.camera.Height, b.camera.Framerate,
	)
}

const (
	crosshairOverlay = `textoverlay name=crosshair text="+" halignment=center valignment=center ` +
		`font-desc="Sans,48" color=0xFFFFFF draw-outline=true outline-color=0x000000`

	clockOverlay = `clockoverlay name=%s halignment=right valignment=bottom shaded-background=true ` +
		`font-desc="Sans,20" time-format="%%Y-%%m-%%d %%H:%%M:%%S"`

	elapsedOverlay = `timeoverlay name=%s halignment=left valignment=bottom shaded-background=true ` +
		`font-desc="Sans,20" time-mode=elapsed-running-time`
)

// Preview returns the two-branch preview graph: a scaled-down display
// branch with crosshair and clock overlays, and the still-capture branch.
func (b *Builder) Preview() string {
	display := fmt.Sprintf(
		"t. ! queue ! videoscale ! video/x-raw,width=480,height=270 ! %s ! %s ! videoconvert ! %s name=%s",
		crosshairOverlay,
		fmt.Sprintf(clockOverlay, "preview_clock"),
		b.caps.DisplaySink(), DisplaySinkName,
	)

	photo := fmt.Sprintf(
		"t. ! queue ! %s ! videoconvert ! jpegenc ! appsink name=%s max-buffers=1 drop=true",
		fmt.Sprintf(clockOverlay, "photo_clock"),
		PhotoSinkName,
	)

	return join(b.source(), display, photo)
}

// Record returns the three-branch record graph: the preview display branch
// gains an elapsed-recording-time overlay, the encode branch feeds the
// segment-writing sink, and the still-capture branch stays available so
// photos can be taken mid-recording. The output location is bound later
// via Pipeline.SetLocation since paths are not launch-syntax safe.
func (b *Builder) Record() string {
	display := fmt.Sprintf(
		"t. ! queue ! videoscale ! video/x-raw,width=480,height=270 ! %s ! %s ! %s ! videoconvert ! %s name=%s",
		crosshairOverlay,
		fmt.Sprintf(clockOverlay, "video_preview_clock"),
		fmt.Sprintf(elapsedOverlay, "video_preview_elapsed"),
		b.caps.DisplaySink(), DisplaySinkName,
	)

	encode := fmt.Sprintf(
		"t. ! queue ! %s ! %s ! videoconvert ! %s ! splitmuxsink name=%s",
		fmt.Sprintf(clockOverlay, "video_clock"),
		fmt.Sprintf(elapsedOverlay, "video_elapsed"),
		b.encoderStage(), RecordSinkName,
	)

	photo := fmt.Sprintf(
		"t. ! queue ! %s ! %s ! videoconvert ! jpegenc ! appsink name=%s max-buffers=1 drop=true",
		fmt.Sprintf(clockOverlay, "video_photo_clock"),
		fmt.Sprintf(elapsedOverlay, "video_photo_elapsed"),
		PhotoSinkName,
	)

	return join(b.source(), display, encode, photo)
}

// encoderStage renders the encode stage tuned for minimum latency. The two
// encoders disagree on property names and bitrate units, so each gets its
// own rendering; an unknown identifier (the degraded no-encoder fallback)
// is emitted bare and left to fail at construction.
func (b *Builder) encoderStage() string {
	switch b.caps.Encoder {
	case encoderX264:
		return fmt.Sprintf("x264enc speed-preset=ultrafast tune=zerolatency bitrate=%d key-int-max=30", b.bitrate)
	case encoderOpenH264:
		// openh264enc takes bits per second.
		return fmt.Sprintf("openh264enc bitrate=%d", b.bitrate*1000)
	default:
		return b.caps.Encoder
	}
}

func join(parts ...string) string {
	return strings.Join(parts, " ")
}
