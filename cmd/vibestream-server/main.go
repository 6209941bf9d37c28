package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibestream/vibestream/internal/core/config"
	"github.com/vibestream/vibestream/internal/core/extractor"
	"github.com/vibestream/vibestream/internal/core/transcode"
	"github.com/vibestream/vibestream/internal/core/version"
	"github.com/vibestream/vibestream/internal/server"
)

func main() {
	port := flag.Int("port", 0, "HTTP listen port (default: 8080)")
	cookies := flag.String("cookies", "", "cookie jar file for blocked sources")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vibestream-server %s\n", version.Version)
		return
	}

	cfg := config.LoadOrDefault()
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *cookies != "" {
		cfg.Tools.CookieFile = *cookies
	}

	engine := extractor.NewYTDLP(cfg.Tools.YTDLPPath)

	var coder transcode.Transcoder = transcode.NewFFmpeg(cfg.Tools.FFmpegPath)
	if !coder.Available() {
		log.Printf("system ffmpeg not found, using embedded transcoder (audio only)")
		coder = transcode.NewEmbedded()
	}

	srv := server.New(cfg, engine, coder)

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
		log.Fatalf("Server error: %v", err)
	}
}
