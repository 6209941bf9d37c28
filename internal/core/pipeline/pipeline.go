// Package pipeline orchestrates the download/conversion request lifecycle:
// resolve metadata, fetch the best-matching source stream, transcode, and
// hand the artifact back for streaming. Temporary storage is scoped to the
// request and removed on every exit path.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vibestream/vibestream/internal/core/auth"
	"github.com/vibestream/vibestream/internal/core/extractor"
	"github.com/vibestream/vibestream/internal/core/media"
	"github.com/vibestream/vibestream/internal/core/transcode"
)

// Options tunes a Pipeline
type Options struct {
	// CookieFile is the configured cookie jar path (may not exist)
	CookieFile string

	// Timeout is the wall-clock ceiling per conversion
	Timeout time.Duration

	// Effect tuning passed through to the transcoder
	BassGainDB    float64
	NightcoreRate float64

	// TempRoot overrides the work directory parent (default: os.TempDir())
	TempRoot string
}

// Pipeline executes conversion requests against injectable capabilities
type Pipeline struct {
	engine extractor.Engine
	coder  transcode.Transcoder
	opts   Options
}

// New creates a pipeline over the given extraction and transcoding capabilities
func New(engine extractor.Engine, coder transcode.Transcoder, opts Options) *Pipeline {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}
	return &Pipeline{engine: engine, coder: coder, opts: opts}
}

// Artifact is a finished conversion result. Close removes its backing
// temporary directory; callers must Close on every path.
type Artifact struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64

	workDir string
}

// Close deletes the artifact's temporary directory
func (a *Artifact) Close() error {
	if a.workDir == "" {
		return nil
	}
	return os.RemoveAll(a.workDir)
}

// Analyze resolves metadata for a URL, walking the auth fallback chain when
// the source platform blocks an attempt.
func (p *Pipeline) Analyze(ctx context.Context, url string) (*media.Metadata, error) {
	var meta *media.Metadata
	err := p.withFallback(ctx, func(attemptCtx context.Context, authCtx auth.Context) error {
		m, err := p.engine.Probe(attemptCtx, url, authCtx)
		if err != nil {
			return err
		}
		meta = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// Convert runs the full request lifecycle and returns a streamable artifact
func (p *Pipeline) Convert(ctx context.Context, req media.Request) (*Artifact, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	workDir := filepath.Join(tempRoot(p.opts.TempRoot), "vibestream-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	handedOff := false
	defer func() {
		if !handedOff {
			os.RemoveAll(workDir)
		}
	}()

	var meta *media.Metadata
	var sourcePath string
	err := p.withFallback(ctx, func(attemptCtx context.Context, authCtx auth.Context) error {
		m, err := p.engine.Probe(attemptCtx, req.URL, authCtx)
		if err != nil {
			return err
		}

		selector, err := buildSelector(m.Formats, req)
		if err != nil {
			return err
		}

		path, err := p.engine.Fetch(attemptCtx, req.URL, selector, authCtx, workDir)
		if err != nil {
			return err
		}

		meta = m
		sourcePath = path
		return nil
	})
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(workDir, outputName(req))
	job := transcode.Job{
		InputPath:     sourcePath,
		OutputPath:    outPath,
		Kind:          req.Kind,
		Bitrate:       req.Bitrate,
		Height:        req.Height,
		Trim:          req.Trim,
		Effect:        req.Effect,
		BassGainDB:    p.opts.BassGainDB,
		NightcoreRate: p.opts.NightcoreRate,
	}
	if err := p.coder.Run(ctx, job); err != nil {
		return nil, err
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: artifact missing after transcode", media.ErrTranscodeFailed)
	}

	if req.Kind == media.KindAudio {
		if d, err := transcode.MP3Duration(outPath); err == nil {
			log.Printf("[pipeline] artifact ready: %s, %s", sizeLabel(info.Size()), d.Round(time.Second))
		}
	}

	handedOff = true
	return &Artifact{
		Path:        outPath,
		Filename:    media.AttachmentName(meta.Title, req),
		ContentType: contentType(req.Kind),
		Size:        info.Size(),
		workDir:     workDir,
	}, nil
}

// withFallback tries fn with each auth context in order. Only a blocked
// source advances to the next context; every other error propagates at once.
// Each context is attempted exactly once per request.
func (p *Pipeline) withFallback(ctx context.Context, fn func(context.Context, auth.Context) error) error {
	chain := auth.Chain(p.opts.CookieFile)

	var lastErr error
	for _, authCtx := range chain {
		err := fn(ctx, authCtx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, media.ErrSourceBlocked) {
			return err
		}
		log.Printf("[pipeline] attempt blocked with context %s", authCtx)
		lastErr = err
	}

	return fmt.Errorf("%w: all access strategies were rejected by the source platform. "+
		"Provision a cookie jar or retry later (last error: %v)",
		media.ErrSourceBlocked, lastErr)
}

func validate(req media.Request) error {
	if req.URL == "" {
		return fmt.Errorf("%w: missing url", media.ErrInvalidInput)
	}
	if req.Trim != nil {
		if req.Trim.Start < 0 {
			return fmt.Errorf("%w: negative start time", media.ErrInvalidInput)
		}
		if req.Trim.Start >= req.Trim.End {
			return fmt.Errorf("%w: start %.2f >= end %.2f",
				media.ErrInvalidRange, req.Trim.Start, req.Trim.End)
		}
	}

	switch req.Kind {
	case media.KindAudio:
		if !media.ValidBitrate(req.Bitrate) {
			return fmt.Errorf("%w: bitrate %d not in %v",
				media.ErrInvalidInput, req.Bitrate, media.ValidBitrates)
		}
	case media.KindVideo:
		if req.Height != 0 && !media.ValidResolution(req.Height) {
			return fmt.Errorf("%w: resolution %d not in %v",
				media.ErrInvalidInput, req.Height, media.ValidResolutions)
		}
		if req.Effect != media.EffectNone && req.Effect != "" {
			return fmt.Errorf("%w: audio effects do not apply to video output",
				media.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown output kind %q", media.ErrInvalidInput, req.Kind)
	}
	return nil
}

// buildSelector turns the probed format list into an engine format
// expression. When the probe reported no formats (some sites omit them in
// metadata-only mode) a generic best-match expression is used instead.
func buildSelector(formats []media.Format, req media.Request) (string, error) {
	if req.Kind == media.KindAudio {
		if f, ok := media.SelectAudioFormat(formats); ok {
			return f.ID, nil
		}
		return "bestaudio/best", nil
	}

	f, ok := media.SelectVideoFormat(formats, req.Height)
	if !ok {
		if req.Height > 0 {
			return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]/best",
				req.Height, req.Height), nil
		}
		return "bestvideo+bestaudio/best", nil
	}
	if f.HasVideo && !f.HasAudio {
		// Video-only stream: pair it with the best audio for muxing
		return f.ID + "+bestaudio/" + f.ID, nil
	}
	return f.ID, nil
}

func outputName(req media.Request) string {
	if req.Kind == media.KindVideo {
		return "out.mp4"
	}
	return "out.mp3"
}

func contentType(kind media.Kind) string {
	if kind == media.KindVideo {
		return "video/mp4"
	}
	return "audio/mpeg"
}

func tempRoot(override string) string {
	if override != "" {
		return override
	}
	return os.TempDir()
}

func sizeLabel(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
