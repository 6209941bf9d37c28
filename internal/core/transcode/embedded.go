package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"codeberg.org/gruf/go-ffmpreg/ffmpreg"
	"codeberg.org/gruf/go-ffmpreg/wasm"
	"github.com/tetratelabs/wazero"

	"github.com/vibestream/vibestream/internal/core/media"
)

// Embedded runs jobs through the bundled WebAssembly ffmpeg build. It needs
// no binary on PATH, which keeps audio conversion working on hosts where the
// operator installed nothing, at the cost of speed.
//
// Video jobs are refused: the wasm build carries no H.264 encoder.
type Embedded struct{}

// NewEmbedded returns the embedded wasm transcoder
func NewEmbedded() *Embedded { return &Embedded{} }

func (e *Embedded) Name() string { return "ffmpeg (embedded)" }

// Available always reports true; the wasm module ships in the binary
func (e *Embedded) Available() bool { return true }

// Run executes the job inside the wasm runtime with the job's directories
// mounted read-write.
func (e *Embedded) Run(ctx context.Context, job Job) error {
	if job.Kind == media.KindVideo {
		return fmt.Errorf("%w: embedded transcoder cannot encode video", media.ErrTranscodeFailed)
	}

	args, err := BuildArgs(job)
	if err != nil {
		return err
	}

	inputDir, err := filepath.Abs(filepath.Dir(job.InputPath))
	if err != nil {
		return err
	}
	outputDir, err := filepath.Abs(filepath.Dir(job.OutputPath))
	if err != nil {
		return err
	}

	log.Printf("[transcode] using embedded ffmpeg")

	rc, err := ffmpreg.Ffmpeg(ctx, wasm.Args{
		Stdout: io.Discard,
		Stderr: io.Discard,
		Args:   args,
		Config: func(cfg wazero.ModuleConfig) wazero.ModuleConfig {
			return cfg.WithFSConfig(wazero.NewFSConfig().
				WithDirMount(inputDir, inputDir).
				WithDirMount(outputDir, outputDir))
		},
	})
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: transcoder deadline exceeded", media.ErrTimeout)
		}
		return fmt.Errorf("%w: %v", media.ErrTranscodeFailed, err)
	}
	if rc != 0 {
		return fmt.Errorf("%w: embedded ffmpeg exited with code %d", media.ErrTranscodeFailed, rc)
	}
	return nil
}
