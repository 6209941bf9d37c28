package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/vibestream/vibestream/internal/core/auth"
	"github.com/vibestream/vibestream/internal/core/media"
)

// probeTimeout bounds metadata-only invocations; fetches are bounded by the
// caller's conversion deadline instead.
const probeTimeout = 45 * time.Second

// YTDLP is the yt-dlp backed extraction engine
type YTDLP struct {
	// Path is the yt-dlp binary path; empty means look up "yt-dlp" in PATH
	Path string
}

// NewYTDLP returns a yt-dlp engine for the given binary path
func NewYTDLP(path string) *YTDLP {
	return &YTDLP{Path: path}
}

func (y *YTDLP) Name() string { return "yt-dlp" }

func (y *YTDLP) binary() string {
	if y.Path != "" {
		return y.Path
	}
	return "yt-dlp"
}

// Available reports whether the yt-dlp binary can be found
func (y *YTDLP) Available() bool {
	if y.Path != "" {
		info, err := os.Stat(y.Path)
		return err == nil && !info.IsDir()
	}
	_, err := exec.LookPath("yt-dlp")
	return err == nil
}

// ytdlpFormat mirrors the fields we read from yt-dlp's -J format entries
type ytdlpFormat struct {
	FormatID string  `json:"format_id"`
	ACodec   string  `json:"acodec"`
	VCodec   string  `json:"vcodec"`
	Ext      string  `json:"ext"`
	Protocol string  `json:"protocol"`
	URL      string  `json:"url"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FPS      float64 `json:"fps"`
	ABR      float64 `json:"abr"`
	TBR      float64 `json:"tbr"`
	Filesize float64 `json:"filesize"`
}

type ytdlpInfo struct {
	Title     string        `json:"title"`
	Uploader  string        `json:"uploader"`
	Thumbnail string        `json:"thumbnail"`
	// Duration is a pointer: live streams and some sites omit it entirely,
	// which is distinct from a zero-length clip
	Duration *float64      `json:"duration"`
	URL      string        `json:"url"`
	Formats  []ytdlpFormat `json:"formats"`
}

// Probe runs yt-dlp in metadata-only mode and maps the result
func (y *YTDLP) Probe(ctx context.Context, rawURL string, authCtx auth.Context) (*media.Metadata, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	args := []string{"-J", "--no-warnings", "--skip-download"}
	args = append(args, y.authArgs(authCtx)...)
	args = append(args, rawURL)

	cmd := exec.CommandContext(ctx, y.binary(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, classify(ctx, err, stderr.String())
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("%w: metadata parse: %v", media.ErrUnknown, err)
	}
	return mapInfo(info), nil
}

// mapInfo converts the yt-dlp json payload into the metadata model. An
// omitted duration (live streams, some sites) stays "Unknown"; an actual
// zero renders as 0:00.
func mapInfo(info ytdlpInfo) *media.Metadata {
	meta := &media.Metadata{
		Title:       info.Title,
		Thumbnail:   info.Thumbnail,
		DurationStr: "Unknown",
		URL:         info.URL,
		Uploader:    info.Uploader,
	}
	if info.Duration != nil {
		meta.Duration = *info.Duration
		meta.DurationStr = media.FormatDuration(*info.Duration)
	}
	if meta.Title == "" {
		meta.Title = "Unknown"
	}
	for _, f := range info.Formats {
		meta.Formats = append(meta.Formats, media.Format{
			ID:       f.FormatID,
			Ext:      f.Ext,
			Protocol: f.Protocol,
			URL:      f.URL,
			Width:    int(f.Width),
			Height:   int(f.Height),
			FPS:      int(f.FPS),
			Bitrate:  pickBitrate(f),
			HasAudio: f.ACodec != "none" && f.ACodec != "",
			HasVideo: f.VCodec != "none" && f.VCodec != "",
			FileSize: int64(f.Filesize),
		})
	}
	return meta
}

func pickBitrate(f ytdlpFormat) int {
	if f.ABR > 0 {
		return int(f.ABR)
	}
	return int(f.TBR)
}

// Fetch downloads the selected stream(s) into destDir and returns the file path
func (y *YTDLP) Fetch(ctx context.Context, rawURL, selector string, authCtx auth.Context, destDir string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}

	outTmpl := filepath.Join(destDir, "source.%(ext)s")
	args := []string{
		"-f", selector,
		"--no-warnings",
		"--no-playlist",
		"--no-cache-dir",
		"-o", outTmpl,
	}
	args = append(args, y.authArgs(authCtx)...)
	args = append(args, rawURL)

	cmd := exec.CommandContext(ctx, y.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", classify(ctx, err, stderr.String())
	}

	matches, err := filepath.Glob(filepath.Join(destDir, "source.*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("%w: downloaded file missing", media.ErrUnknown)
	}
	return matches[0], nil
}

// authArgs maps an auth context onto yt-dlp flags. Anonymous adds nothing,
// cookies pass the jar, mobile emulation switches the player client and UA.
func (y *YTDLP) authArgs(authCtx auth.Context) []string {
	switch authCtx.Mode {
	case auth.ModeCookies:
		return []string{"--cookies", authCtx.CookieFile}
	case auth.ModeMobile:
		return []string{
			"--extractor-args", "youtube:player_client=mweb;player_skip=webpage,configs",
			"--user-agent", auth.MobileUserAgent,
		}
	default:
		return nil
	}
}

func validateURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: not a valid http(s) url", media.ErrInvalidInput)
	}
	return nil
}

// classify maps yt-dlp failure output onto the error taxonomy. The tool
// reports everything on stderr as prose, so this is substring matching over
// the messages yt-dlp actually emits.
func classify(ctx context.Context, runErr error, stderr string) error {
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: extraction deadline exceeded", media.ErrTimeout)
		}
		return ctx.Err()
	}

	msg := strings.ToLower(stderr)
	detail := firstErrorLine(stderr)

	switch {
	case containsAny(msg,
		"sign in to confirm",
		"confirm you're not a bot",
		"http error 403",
		"http error 429",
		"captcha",
		"login required",
		"private video",
		"this content isn't available",
		"account cookies are no longer valid"):
		return fmt.Errorf("%w: %s", media.ErrSourceBlocked, detail)
	case containsAny(msg,
		"video unavailable",
		"has been removed",
		"does not exist",
		"http error 404",
		"unable to download webpage: http error 410"):
		return fmt.Errorf("%w: %s", media.ErrNotFound, detail)
	case containsAny(msg,
		"unsupported url",
		"no suitable extractor",
		"is not a valid url"):
		return fmt.Errorf("%w: %s", media.ErrUnsupported, detail)
	default:
		return fmt.Errorf("%w: %s (%v)", media.ErrUnknown, detail, runErr)
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// firstErrorLine pulls the first "ERROR:" line out of yt-dlp stderr, or the
// first non-empty line when none is tagged.
func firstErrorLine(stderr string) string {
	var fallback string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
		if fallback == "" {
			fallback = line
		}
	}
	if fallback == "" {
		return "extraction failed"
	}
	return fallback
}
