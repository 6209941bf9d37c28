// Package transcode wraps the external transcoding capability that turns a
// fetched source stream into the final MP3/MP4 artifact.
package transcode

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vibestream/vibestream/internal/core/media"
)

// Defaults for the documented effect parameters
const (
	DefaultBassGainDB    = 10.0
	DefaultNightcoreRate = 1.25

	// baseSampleRate keeps nightcore resampling anchored to a fixed rate
	baseSampleRate = 44100
)

// Job describes one transcoding invocation
type Job struct {
	InputPath  string
	OutputPath string
	Kind       media.Kind
	Bitrate    int // kbps, audio
	Height     int // pixels, video; 0 keeps source size
	Trim       *media.TrimRange
	Effect     media.Effect

	// Effect tuning; zero values fall back to the documented defaults
	BassGainDB    float64
	NightcoreRate float64
}

// Transcoder runs a transcoding job. The real implementations invoke ffmpeg
// (system binary or embedded); tests substitute recording stubs.
type Transcoder interface {
	Name() string
	Available() bool
	Run(ctx context.Context, job Job) error
}

// BuildArgs assembles the ffmpeg argument list for a job. Trim bounds are
// input options: the seek happens on source timestamps, ahead of any filter.
// As output options they would cut post-filter time, which lands on the
// wrong source range once a rate-changing effect is in the chain.
func BuildArgs(job Job) ([]string, error) {
	args := []string{"-y", "-loglevel", "error", "-nostdin"}

	if job.Trim != nil {
		if job.Trim.Start >= job.Trim.End {
			return nil, fmt.Errorf("%w: start %.2f >= end %.2f",
				media.ErrInvalidRange, job.Trim.Start, job.Trim.End)
		}
		args = append(args,
			"-ss", formatSeconds(job.Trim.Start),
			"-to", formatSeconds(job.Trim.End),
		)
	}
	args = append(args, "-i", job.InputPath)

	switch job.Kind {
	case media.KindVideo:
		if job.Height > 0 {
			// -2 keeps the width even for the encoder while preserving aspect
			args = append(args, "-vf", fmt.Sprintf("scale=-2:%d", job.Height))
		}
		args = append(args,
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-c:a", "aac",
			"-b:a", "128k",
			"-movflags", "+faststart",
			"-f", "mp4",
		)
	default:
		if filter := AudioFilter(job); filter != "" {
			args = append(args, "-af", filter)
		}
		args = append(args,
			"-vn",
			"-acodec", "libmp3lame",
			"-ar", strconv.Itoa(baseSampleRate),
			"-b:a", fmt.Sprintf("%dk", job.Bitrate),
			"-f", "mp3",
		)
	}

	args = append(args, job.OutputPath)
	return args, nil
}

// AudioFilter renders the -af filter graph for the job's effect
func AudioFilter(job Job) string {
	switch job.Effect {
	case media.EffectVocalRemoval:
		// Center-channel cancellation: subtract each channel from the other
		return "pan=stereo|c0=c0-c1|c1=c1-c0"
	case media.EffectBassBoost:
		gain := job.BassGainDB
		if gain == 0 {
			gain = DefaultBassGainDB
		}
		return fmt.Sprintf("bass=g=%s", trimFloat(gain))
	case media.EffectNightcore:
		rate := job.NightcoreRate
		if rate == 0 {
			rate = DefaultNightcoreRate
		}
		return fmt.Sprintf("asetrate=%d*%s,aresample=%d",
			baseSampleRate, trimFloat(rate), baseSampleRate)
	default:
		return ""
	}
}

func formatSeconds(s float64) string {
	return trimFloat(s)
}

// trimFloat renders a float without trailing zeros (10 not 10.000000)
func trimFloat(v float64) string {
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		return out
	}
	return strings.TrimRight(strings.TrimRight(out, "0"), ".")
}
