package media

import (
	"fmt"
	"time"
)

// Progress tracks playback position state for the video browser: the known
// duration and whether the user is currently dragging the seek control.
// While a drag is in progress, poll-driven updates are suppressed so the
// displayed position tracks the drag, not the engine.
type Progress struct {
	duration time.Duration
	known    bool
	seeking  bool
}

// Reset clears the tracker for a newly loaded file.
func (p *Progress) Reset() {
	p.duration = 0
	p.known = false
	p.seeking = false
}

// SetDuration records the stream duration once the engine reports it.
func (p *Progress) SetDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	p.duration = d
	p.known = true
}

// Duration returns the known duration.
func (p *Progress) Duration() (time.Duration, bool) {
	return p.duration, p.known
}

// Accept reports whether a polled position may be applied to the display.
func (p *Progress) Accept() bool {
	return p.known && !p.seeking
}

// Fraction converts a position into a 0..1 progress fraction.
func (p *Progress) Fraction(pos time.Duration) float64 {
	if !p.known || p.duration == 0 {
		return 0
	}
	return float64(pos) / float64(p.duration)
}

// BeginSeek marks the start of a user drag on the seek control.
func (p *Progress) BeginSeek() {
	p.seeking = true
}

// Seeking reports whether a drag is in progress.
func (p *Progress) Seeking() bool {
	return p.seeking
}

// Target converts a drag fraction into a stream position.
func (p *Progress) Target(fraction float64) (time.Duration, bool) {
	if !p.known {
		return 0, false
	}
	return time.Duration(fraction * float64(p.duration)), true
}

// EndSeek marks the end of a drag and returns the single position the
// release should seek to.
func (p *Progress) EndSeek(fraction float64) (time.Duration, bool) {
	p.seeking = false
	return p.Target(fraction)
}

// FormatClock renders a duration as HH:MM:SS for the transport label.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
