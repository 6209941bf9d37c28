package transcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/vibestream/vibestream/internal/core/media"
)

func argsString(t *testing.T, job Job) string {
	t.Helper()
	args, err := BuildArgs(job)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	return strings.Join(args, " ")
}

func TestBuildArgsAudioStandard(t *testing.T) {
	got := argsString(t, Job{
		InputPath:  "in.m4a",
		OutputPath: "out.mp3",
		Kind:       media.KindAudio,
		Bitrate:    192,
	})

	for _, want := range []string{"-i in.m4a", "-acodec libmp3lame", "-b:a 192k", "-ar 44100", "-f mp3", "-vn"} {
		if !strings.Contains(got, want) {
			t.Errorf("args missing %q: %s", want, got)
		}
	}
	if strings.Contains(got, "-af") {
		t.Errorf("standard mode should carry no filter: %s", got)
	}
}

func TestBuildArgsEffects(t *testing.T) {
	tests := []struct {
		name   string
		job    Job
		filter string
	}{
		{
			name:   "Bass boost default gain",
			job:    Job{Kind: media.KindAudio, Bitrate: 192, Effect: media.EffectBassBoost},
			filter: "bass=g=10",
		},
		{
			name:   "Bass boost custom gain",
			job:    Job{Kind: media.KindAudio, Bitrate: 192, Effect: media.EffectBassBoost, BassGainDB: 6.5},
			filter: "bass=g=6.5",
		},
		{
			name:   "Nightcore default rate",
			job:    Job{Kind: media.KindAudio, Bitrate: 192, Effect: media.EffectNightcore},
			filter: "asetrate=44100*1.25,aresample=44100",
		},
		{
			name:   "Vocal removal cancels center channel",
			job:    Job{Kind: media.KindAudio, Bitrate: 192, Effect: media.EffectVocalRemoval},
			filter: "pan=stereo|c0=c0-c1|c1=c1-c0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AudioFilter(tt.job); got != tt.filter {
				t.Errorf("AudioFilter() = %q, want %q", got, tt.filter)
			}
		})
	}
}

func TestBuildArgsTrimCutsSource(t *testing.T) {
	// A 10-42.5s cut with nightcore must yield 32.5s of source sped up
	// (26s artifact). That only holds when the seek is an input option;
	// after -i, ffmpeg cuts post-filter time and drifts into the wrong
	// source range.
	tests := []struct {
		name string
		job  Job
	}{
		{
			name: "Nightcore",
			job: Job{
				InputPath:  "in.m4a",
				OutputPath: "out.mp3",
				Kind:       media.KindAudio,
				Bitrate:    128,
				Trim:       &media.TrimRange{Start: 10, End: 42.5},
				Effect:     media.EffectNightcore,
			},
		},
		{
			name: "No effect",
			job: Job{
				InputPath:  "in.m4a",
				OutputPath: "out.mp3",
				Kind:       media.KindAudio,
				Bitrate:    128,
				Trim:       &media.TrimRange{Start: 10, End: 42.5},
			},
		},
		{
			name: "Video",
			job: Job{
				InputPath:  "in.mp4",
				OutputPath: "out.mp4",
				Kind:       media.KindVideo,
				Height:     720,
				Trim:       &media.TrimRange{Start: 10, End: 42.5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := BuildArgs(tt.job)
			if err != nil {
				t.Fatalf("BuildArgs: %v", err)
			}

			joined := strings.Join(args, " ")
			ssIdx := strings.Index(joined, "-ss 10")
			toIdx := strings.Index(joined, "-to 42.5")
			inIdx := strings.Index(joined, "-i "+tt.job.InputPath)
			if ssIdx < 0 || toIdx < 0 || inIdx < 0 {
				t.Fatalf("expected trim and input flags, got: %s", joined)
			}
			if ssIdx > inIdx || toIdx > inIdx {
				t.Errorf("trim must be an input option, got: %s", joined)
			}
		})
	}
}

func TestBuildArgsTrimKeepsEffectFilter(t *testing.T) {
	got := argsString(t, Job{
		InputPath:  "in.m4a",
		OutputPath: "out.mp3",
		Kind:       media.KindAudio,
		Bitrate:    128,
		Trim:       &media.TrimRange{Start: 5, End: 30},
		Effect:     media.EffectNightcore,
	})
	if !strings.Contains(got, "-af asetrate=44100*1.25,aresample=44100") {
		t.Errorf("effect filter missing alongside trim: %s", got)
	}
}

func TestBuildArgsRejectsInvalidRange(t *testing.T) {
	tests := []struct {
		name string
		trim media.TrimRange
	}{
		{name: "Start equals end", trim: media.TrimRange{Start: 30, End: 30}},
		{name: "Start after end", trim: media.TrimRange{Start: 60, End: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildArgs(Job{
				Kind:    media.KindAudio,
				Bitrate: 192,
				Trim:    &tt.trim,
			})
			if !errors.Is(err, media.ErrInvalidRange) {
				t.Errorf("err = %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestBuildArgsVideo(t *testing.T) {
	got := argsString(t, Job{
		InputPath:  "in.mp4",
		OutputPath: "out.mp4",
		Kind:       media.KindVideo,
		Height:     720,
	})

	for _, want := range []string{"-vf scale=-2:720", "-c:v libx264", "-c:a aac", "-movflags +faststart", "-f mp4"} {
		if !strings.Contains(got, want) {
			t.Errorf("args missing %q: %s", want, got)
		}
	}
}

func TestBuildArgsVideoBestKeepsSourceSize(t *testing.T) {
	got := argsString(t, Job{
		InputPath:  "in.mp4",
		OutputPath: "out.mp4",
		Kind:       media.KindVideo,
	})
	if strings.Contains(got, "scale=") {
		t.Errorf("best-quality video should not be scaled: %s", got)
	}
}
