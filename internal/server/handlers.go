package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vibestream/vibestream/internal/core/auth"
	"github.com/vibestream/vibestream/internal/core/media"
	"github.com/vibestream/vibestream/internal/core/version"
)

// analyzeRequest is the POST /analyze body
type analyzeRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "vibestream",
		"version": version.Version,
	})
}

// engine status values reported by /health
const (
	engineOperational = "operational"
	engineLimited     = "limited"
	engineDown        = "down"
)

func (s *Server) handleHealth(c *gin.Context) {
	engineStatus := engineOperational
	switch {
	case !s.eng.Available():
		engineStatus = engineDown
	case !s.cookieJarReady():
		engineStatus = engineLimited
	}

	status := "ok"
	if s.cfg.Maintenance.Enabled {
		status = "maintenance"
	}

	resp := gin.H{
		"status":         status,
		"youtube_engine": engineStatus,
		"ffmpeg":         s.coder.Available(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}
	if s.cfg.Maintenance.Enabled && s.cfg.Maintenance.Message != "" {
		resp["message"] = s.cfg.Maintenance.Message
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) cookieJarReady() bool {
	return auth.CookiePath(s.cfg.Tools.CookieFile) != ""
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "url is required"})
		return
	}

	log.Printf("[server] analyze request received")

	meta, err := s.pipe.Analyze(c.Request.Context(), req.URL)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":        meta.Title,
		"thumbnail":    meta.Thumbnail,
		"duration":     meta.Duration,
		"duration_str": meta.DurationStr,
		"url":          meta.URL,
		"uploader":     meta.Uploader,
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "url query parameter is required"})
		return
	}

	effect, ok := media.ParseEffect(c.Query("mode"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "unsupported mode: use standard, minus_one, bass_boost or nightcore",
		})
		return
	}

	bitrate := s.cfg.Convert.DefaultBitrate
	if raw := c.Query("bitrate"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || !media.ValidBitrate(parsed) {
			c.JSON(http.StatusBadRequest, gin.H{
				"detail": fmt.Sprintf("bitrate must be one of %v", media.ValidBitrates),
			})
			return
		}
		bitrate = parsed
	}

	trim, err := parseTrim(c.Query("start_time"), c.Query("end_time"))
	if err != nil {
		writeError(c, err)
		return
	}

	s.convert(c, media.Request{
		URL:     url,
		Kind:    media.KindAudio,
		Bitrate: bitrate,
		Trim:    trim,
		Effect:  effect,
	})
}

func (s *Server) handleDownloadVideo(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "url query parameter is required"})
		return
	}

	height := 0
	if raw := strings.ToLower(c.DefaultQuery("resolution", "best")); raw != "best" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || !media.ValidResolution(parsed) {
			c.JSON(http.StatusBadRequest, gin.H{
				"detail": fmt.Sprintf("resolution must be best or one of %v", media.ValidResolutions),
			})
			return
		}
		height = parsed
	}

	s.convert(c, media.Request{
		URL:    url,
		Kind:   media.KindVideo,
		Height: height,
	})
}

// convert acquires a conversion slot, runs the pipeline, and streams the
// artifact. The artifact's temp directory is removed once the response is
// written (or abandoned).
func (s *Server) convert(c *gin.Context, req media.Request) {
	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"detail": "all conversion slots are busy, try again later",
		})
		return
	}

	log.Printf("[server] conversion request received (%s)", req.Kind)

	artifact, err := s.pipe.Convert(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	defer artifact.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Header("Content-Type", artifact.ContentType)
	c.Header("Content-Length", strconv.FormatInt(artifact.Size, 10))
	c.File(artifact.Path)

	log.Printf("[server] conversion streamed (%s)", req.Kind)
}

func parseTrim(startRaw, endRaw string) (*media.TrimRange, error) {
	if startRaw == "" && endRaw == "" {
		return nil, nil
	}

	start, err := strconv.ParseFloat(startRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: start_time must be seconds", media.ErrInvalidInput)
	}
	end, err := strconv.ParseFloat(endRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: end_time must be seconds", media.ErrInvalidInput)
	}
	return &media.TrimRange{Start: start, End: end}, nil
}

// writeError maps the error taxonomy onto HTTP statuses with a
// human-readable detail body
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, media.ErrInvalidInput), errors.Is(err, media.ErrInvalidRange),
		errors.Is(err, media.ErrUnsupported):
		status = http.StatusBadRequest
	case errors.Is(err, media.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, media.ErrSourceBlocked):
		status = http.StatusForbidden
	case errors.Is(err, media.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, media.ErrTimeout):
		status = http.StatusGatewayTimeout
	}

	log.Printf("[server] request failed: %d", status)
	c.JSON(status, gin.H{"detail": err.Error()})
}
