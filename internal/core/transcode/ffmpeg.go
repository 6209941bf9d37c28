package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/vibestream/vibestream/internal/core/media"
)

// FFmpeg runs jobs through the system ffmpeg binary
type FFmpeg struct {
	// Path is the ffmpeg binary path; empty means look up "ffmpeg" in PATH
	Path string
}

// NewFFmpeg returns a system-binary transcoder for the given path
func NewFFmpeg(path string) *FFmpeg {
	return &FFmpeg{Path: path}
}

func (f *FFmpeg) Name() string { return "ffmpeg" }

func (f *FFmpeg) binary() string {
	if f.Path != "" {
		return f.Path
	}
	return "ffmpeg"
}

// Available checks if ffmpeg is installed and reachable
func (f *FFmpeg) Available() bool {
	if f.Path != "" {
		info, err := os.Stat(f.Path)
		return err == nil && !info.IsDir()
	}
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Run executes the job and verifies the output file was produced
func (f *FFmpeg) Run(ctx context.Context, job Job) error {
	args, err := BuildArgs(job)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, f.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: transcoder deadline exceeded", media.ErrTimeout)
			}
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s", media.ErrTranscodeFailed,
			strings.TrimSpace(stderr.String()))
	}

	info, err := os.Stat(job.OutputPath)
	if err != nil {
		return fmt.Errorf("%w: output file not created", media.ErrTranscodeFailed)
	}
	if info.Size() < 1024 {
		log.Printf("[ffmpeg] WARNING: output file is suspiciously small (%d bytes)", info.Size())
	}
	return nil
}
