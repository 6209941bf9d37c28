package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vibestream/vibestream/internal/core/config"
	"github.com/vibestream/vibestream/internal/core/extractor"
	"github.com/vibestream/vibestream/internal/core/transcode"
	"github.com/vibestream/vibestream/internal/server"
)

var (
	servePort    int
	serveCookies string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the conversion API server",
	Long: `Start the HTTP server that analyzes source URLs and converts them
to MP3/MP4 artifacts.

Examples:
  vibestream serve                # Start on port 8080 (or the configured port)
  vibestream serve -p 9000        # Start on port 9000
  vibestream serve --cookies c.txt  # Use a cookie jar for blocked sources

API Endpoints:
  POST /analyze         # Resolve title/duration/thumbnail for a URL
  GET  /download        # Convert to MP3 (mode, bitrate, trim options)
  GET  /download-video  # Convert to MP4 (resolution option)
  GET  /health          # Engine and transcoder status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP listen port (default: 8080)")
	serveCmd.Flags().StringVar(&serveCookies, "cookies", "", "cookie jar file for blocked sources")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg := config.LoadOrDefault()

	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if serveCookies != "" {
		cfg.Tools.CookieFile = serveCookies
	}

	srv := server.New(cfg, buildEngine(cfg), buildTranscoder(cfg))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Stop(ctx)
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func buildEngine(cfg *config.Config) extractor.Engine {
	return extractor.NewYTDLP(cfg.Tools.YTDLPPath)
}

// buildTranscoder prefers the system ffmpeg and falls back to the embedded
// wasm build, which handles audio-only conversion.
func buildTranscoder(cfg *config.Config) transcode.Transcoder {
	system := transcode.NewFFmpeg(cfg.Tools.FFmpegPath)
	if system.Available() {
		return system
	}
	log.Printf("[cli] system ffmpeg not found, using embedded transcoder (audio only)")
	return transcode.NewEmbedded()
}
