package media

import (
	"fmt"
	"strings"
)

// Kind is the requested output type
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Effect is an optional audio post-processing effect applied before encoding
type Effect string

const (
	EffectNone         Effect = "none"
	EffectVocalRemoval Effect = "vocal_removal"
	EffectBassBoost    Effect = "bass_boost"
	EffectNightcore    Effect = "nightcore"
)

// ValidBitrates are the accepted MP3 bitrates in kbps
var ValidBitrates = []int{64, 128, 192, 256, 320}

// ValidResolutions are the accepted video height tiers; 0 means "best"
var ValidResolutions = []int{360, 480, 720, 1080}

// TrimRange is an optional cut applied before any effect
type TrimRange struct {
	Start float64 // seconds
	End   float64 // seconds
}

// Request describes one conversion request. Created per HTTP call, never persisted.
type Request struct {
	URL     string
	Kind    Kind
	Bitrate int // kbps, audio only
	Height  int // pixels, video only; 0 means best available
	Trim    *TrimRange
	Effect  Effect
}

// Format is a single source stream reported by the extraction engine
type Format struct {
	ID        string
	Ext       string
	Protocol  string
	URL       string
	Width     int
	Height    int
	FPS       int
	Bitrate   int // kbps (audio bitrate for audio streams, total for muxed)
	HasAudio  bool
	HasVideo  bool
	FileSize  int64
}

// QualityLabel returns a human-readable quality label
func (f *Format) QualityLabel() string {
	if f.Height > 0 {
		return fmt.Sprintf("%dp", f.Height)
	}
	if f.Bitrate > 0 {
		return fmt.Sprintf("%dkbps", f.Bitrate)
	}
	return "unknown"
}

// Metadata is the resolver output for a source URL
type Metadata struct {
	Title       string   `json:"title"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Duration    float64  `json:"duration,omitempty"`
	DurationStr string   `json:"duration_str"`
	URL         string   `json:"url,omitempty"`
	Uploader    string   `json:"uploader,omitempty"`
	Formats     []Format `json:"-"`
}

// FormatDuration renders seconds as H:MM:SS, or MM:SS under an hour.
// Negative durations render as "Unknown"; callers pass a negative value
// when the source reported no duration at all. An actual zero is "0:00".
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		return "Unknown"
	}
	total := int(seconds)
	mins, secs := total/60, total%60
	hrs, mins := mins/60, mins%60
	if hrs > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hrs, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// maxFilenameLen caps sanitized titles, counted in runes so truncation
// never splits a multi-byte character
const maxFilenameLen = 100

// SanitizeFilename strips characters that are illegal in filenames
// and truncates overly long titles.
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|':
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if runes := []rune(cleaned); len(runes) > maxFilenameLen {
		cleaned = strings.TrimSpace(string(runes[:maxFilenameLen]))
	}
	if cleaned == "" {
		return "media"
	}
	return cleaned
}

// AttachmentName builds the Content-Disposition filename for an artifact:
// sanitized title plus a quality suffix and extension.
func AttachmentName(title string, req Request) string {
	base := SanitizeFilename(title)
	switch req.Kind {
	case KindVideo:
		if req.Height > 0 {
			return fmt.Sprintf("%s (%dp).mp4", base, req.Height)
		}
		return fmt.Sprintf("%s (best).mp4", base)
	default:
		return fmt.Sprintf("%s (%dkbps).mp3", base, req.Bitrate)
	}
}

// ValidBitrate reports whether b is an accepted MP3 bitrate
func ValidBitrate(b int) bool {
	for _, v := range ValidBitrates {
		if v == b {
			return true
		}
	}
	return false
}

// ValidResolution reports whether h is an accepted video height tier
func ValidResolution(h int) bool {
	for _, v := range ValidResolutions {
		if v == h {
			return true
		}
	}
	return false
}

// ParseEffect maps a download mode parameter to an Effect.
// "minus_one" is the public name for vocal removal.
func ParseEffect(mode string) (Effect, bool) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "standard":
		return EffectNone, true
	case "minus_one", "vocal_removal":
		return EffectVocalRemoval, true
	case "bass_boost":
		return EffectBassBoost, true
	case "nightcore":
		return EffectNightcore, true
	default:
		return EffectNone, false
	}
}
