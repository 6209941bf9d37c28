// Package extractor wraps the external extraction capability that resolves
// metadata and fetches raw media streams from source platforms.
package extractor

import (
	"context"

	"github.com/vibestream/vibestream/internal/core/auth"
	"github.com/vibestream/vibestream/internal/core/media"
)

// Engine is the extraction capability. Implementations must be safe for
// concurrent use; the real engine shells out to yt-dlp, tests substitute
// deterministic stubs.
type Engine interface {
	// Name returns the engine name (e.g. "yt-dlp")
	Name() string

	// Available reports whether the engine's external tooling is usable
	Available() bool

	// Probe resolves metadata for a source URL without downloading the
	// payload. Errors are classified into the media sentinel taxonomy.
	Probe(ctx context.Context, url string, authCtx auth.Context) (*media.Metadata, error)

	// Fetch downloads the stream(s) matching selector into destDir and
	// returns the path of the downloaded file. selector is an engine
	// format expression (e.g. "bestaudio/best" or a format ID).
	Fetch(ctx context.Context, url, selector string, authCtx auth.Context, destDir string) (string, error)
}
