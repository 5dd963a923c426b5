// Package media implements playback positioning for audio and video evidence: seeking, clock formatting,
// transcript markers and detection overlays.
package media

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/evidenx/evidenx/internal/errors"
)

var ErrInvalidClock = errors.NewSentinel("invalid clock value")

// Player is the playback position of a media file in seconds. Duration is 0 until it is known.
type Player struct {
	Position float64
	Duration float64
}

// Seek moves to t clamped to the playable range.
func (p *Player) Seek(t float64) {
	p.Position = math.Max(0, t)
	if p.Duration > 0 {
		p.Position = math.Min(p.Position, p.Duration)
	}
}

// Skip seeks relative to the current position.
func (p *Player) Skip(delta float64) {
	p.Seek(p.Position + delta)
}

// Progress returns the played share in percent.
func (p *Player) Progress() float64 {
	if p.Duration <= 0 {
		return 0
	}
	return p.Position / p.Duration * 100
}

// ParseClock converts "HH:MM:SS" or "MM:SS" to seconds.
func ParseClock(clock string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 || len(parts) > 3 { //nolint:mnd // MM:SS or HH:MM:SS
		return 0, errors.Wrap(ErrInvalidClock, "split clock")
	}
	total := 0
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || (i > 0 && n >= 60) {
			return 0, errors.Wrap(ErrInvalidClock, "parse clock part")
		}
		total = total*60 + n //nolint:mnd // sexagesimal
	}
	return float64(total), nil
}

// FormatClock formats seconds as MM:SS, or H:MM:SS from one hour upwards.
func FormatClock(seconds float64) string {
	total := int(math.Max(0, math.Floor(seconds)))
	h := total / 3600 //nolint:mnd // seconds per hour
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// DefaultMarkerLimit is the number of transcript markers shown along the audio track.
const DefaultMarkerLimit = 8

var markerPattern = regexp.MustCompile(`\[(\d{1,2}):(\d{2})]`)

// Marker is a timestamp found in a transcript.
type Marker struct {
	Label   string
	Seconds float64
	Percent float64
}

// TranscriptMarkers returns the [mm:ss] timestamps of the transcript in order of appearance, at most limit of them.
// Percent is the marker position along a track of the given duration, 0 when the duration is unknown.
func TranscriptMarkers(transcript string, duration float64, limit int) []Marker {
	var markers []Marker
	for _, match := range markerPattern.FindAllStringSubmatch(transcript, -1) {
		if len(markers) >= limit {
			break
		}
		minutes, _ := strconv.Atoi(match[1])
		seconds, _ := strconv.Atoi(match[2])
		offset := float64(minutes*60 + seconds) //nolint:mnd // seconds per minute
		percent := 0.0
		if duration > 0 {
			percent = math.Min(offset/duration*100, 100) //nolint:mnd // percent
		}
		markers = append(markers, Marker{
			Label:   match[1] + ":" + match[2],
			Seconds: offset,
			Percent: percent,
		})
	}
	return markers
}

// DefaultWaveformBars is the number of bars in the audio waveform.
const DefaultWaveformBars = 50

// WaveformBars returns how many of n bars are drawn as played.
func WaveformBars(position, duration float64, n int) int {
	if duration <= 0 || n <= 0 {
		return 0
	}
	played := int(math.Floor(position / duration * float64(n)))
	return max(0, min(played, n))
}
