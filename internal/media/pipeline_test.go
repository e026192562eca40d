package media

import (
	"strings"
	"testing"

	"stampcam/internal/config"
)

func testBuilder(caps Caps) *Builder {
	return NewBuilder(caps, config.CameraConfig{
		Device:    "/dev/video0",
		Width:     1920,
		Height:    1080,
		Framerate: 30,
	}, 8000)
}

func TestPreviewGraphShape(t *testing.T) {
	desc := testBuilder(Caps{EmbeddableSink: true, Encoder: "x264enc"}).Preview()

	for _, want := range []string{
		"v4l2src device=/dev/video0",
		"image/jpeg,width=1920,height=1080,framerate=30/1",
		"tee name=t",
		"gtksink name=video_sink",
		"appsink name=photo_sink max-buffers=1 drop=true",
		"videoscale ! video/x-raw,width=480,height=270",
		`textoverlay name=crosshair text="+"`,
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("preview graph missing %q:\n%s", want, desc)
		}
	}

	// Preview fans out into exactly two branches.
	if got := strings.Count(desc, "t. ! queue"); got != 2 {
		t.Errorf("expected 2 tee branches, got %d", got)
	}
	if strings.Contains(desc, "splitmuxsink") {
		t.Error("preview graph must not contain a record branch")
	}
	if strings.Contains(desc, "\n") {
		t.Error("graph description should be a single line")
	}
}

func TestRecordGraphShape(t *testing.T) {
	desc := testBuilder(Caps{EmbeddableSink: true, Encoder: "x264enc"}).Record()

	for _, want := range []string{
		"splitmuxsink name=splitmux",
		"x264enc speed-preset=ultrafast tune=zerolatency bitrate=8000",
		"appsink name=photo_sink max-buffers=1 drop=true",
		"time-mode=elapsed-running-time",
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("record graph missing %q:\n%s", want, desc)
		}
	}

	if got := strings.Count(desc, "t. ! queue"); got != 3 {
		t.Errorf("expected 3 tee branches, got %d", got)
	}
	// The output location is bound via SetLocation, never inlined.
	if strings.Contains(desc, "location=") {
		t.Error("record graph must not inline the output location")
	}
}

func TestRecordGraphOpenH264BitrateUnits(t *testing.T) {
	desc := testBuilder(Caps{Encoder: "openh264enc"}).Record()

	// openh264enc takes bits per second, not kbit/s.
	if !strings.Contains(desc, "openh264enc bitrate=8000000") {
		t.Errorf("expected openh264enc bitrate in bps:\n%s", desc)
	}
}

func TestFallbackSinkWhenNotEmbeddable(t *testing.T) {
	desc := testBuilder(Caps{EmbeddableSink: false, Encoder: "x264enc"}).Preview()

	if !strings.Contains(desc, "autovideosink name=video_sink") {
		t.Errorf("expected autovideosink fallback:\n%s", desc)
	}
	if strings.Contains(desc, "gtksink") {
		t.Error("embeddable sink used despite missing capability")
	}
}
