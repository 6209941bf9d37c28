// Package server exposes the conversion pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/vibestream/vibestream/internal/core/config"
	"github.com/vibestream/vibestream/internal/core/extractor"
	"github.com/vibestream/vibestream/internal/core/pipeline"
	"github.com/vibestream/vibestream/internal/core/ratelimit"
	"github.com/vibestream/vibestream/internal/core/transcode"
)

// Global smoothing in front of the per-client windows
const (
	globalRequestsPerSecond = 100
	globalBurst             = 200

	janitorInterval = 10 * time.Minute
)

// Server is the HTTP front for the conversion service
type Server struct {
	cfg   *config.Config
	pipe  *pipeline.Pipeline
	eng   extractor.Engine
	coder transcode.Transcoder

	downloadLimiter *ratelimit.Limiter
	analyzeLimiter  *ratelimit.Limiter
	global          *rate.Limiter

	// slots bounds concurrent conversions; a full channel means busy
	slots chan struct{}

	engine      *gin.Engine
	server      *http.Server
	stopJanitor chan struct{}
	startedAt   time.Time
}

// New assembles a server over the given capabilities. Tests pass stub
// engine/transcoder implementations; production wiring lives in the CLI.
func New(cfg *config.Config, eng extractor.Engine, coder transcode.Transcoder) *Server {
	pipe := pipeline.New(eng, coder, pipeline.Options{
		CookieFile:    cfg.Tools.CookieFile,
		Timeout:       cfg.Convert.Timeout.Std(),
		BassGainDB:    cfg.Convert.BassGainDB,
		NightcoreRate: cfg.Convert.NightcoreRate,
	})

	s := &Server{
		cfg:         cfg,
		pipe:        pipe,
		eng:         eng,
		coder:       coder,
		global:      rate.NewLimiter(rate.Limit(globalRequestsPerSecond), globalBurst),
		slots:       make(chan struct{}, cfg.Server.MaxConcurrent),
		stopJanitor: make(chan struct{}),
		startedAt:   time.Now(),
	}

	s.downloadLimiter, s.analyzeLimiter = s.buildLimiters()
	s.engine = s.buildRouter()
	return s
}

// buildLimiters creates the two admission windows, preferring Redis when
// configured and reachable, otherwise in-process maps.
func (s *Server) buildLimiters() (download, analyze *ratelimit.Limiter) {
	rl := s.cfg.RateLimit

	var store ratelimit.Store
	if rl.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		redisStore, err := ratelimit.NewRedisStore(ctx, rl.RedisAddr, rl.RedisPassword, rl.RedisDB)
		if err != nil {
			log.Printf("[server] redis not available, using in-memory rate limiting: %v", err)
		} else {
			log.Printf("[server] redis rate-limit store connected")
			store = redisStore
		}
	}

	if store == nil {
		mem := ratelimit.NewMemoryStore()
		go mem.Janitor(janitorInterval, rl.Window.Std(), s.stopJanitor)
		store = mem
	}

	// The analyze window always counts in-process: lookups are cheap and
	// their state is not worth persisting.
	analyzeStore := ratelimit.NewMemoryStore()
	go analyzeStore.Janitor(janitorInterval, rl.AnalyzeWindow.Std(), s.stopJanitor)

	download = ratelimit.New(store, rl.Ceiling, rl.Window.Std())
	analyze = ratelimit.New(analyzeStore, rl.AnalyzeCeiling, rl.AnalyzeWindow.Std())
	return download, analyze
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(s.loggingMiddleware())
	engine.Use(s.corsMiddleware())
	engine.Use(s.globalLimitMiddleware())

	engine.GET("/", s.handleRoot)
	engine.GET("/health", s.handleHealth)
	engine.POST("/analyze", s.rateLimitMiddleware(s.analyzeLimiter), s.handleAnalyze)
	engine.GET("/download", s.rateLimitMiddleware(s.downloadLimiter), s.handleDownload)
	engine.GET("/download-video", s.rateLimitMiddleware(s.downloadLimiter), s.handleDownloadVideo)

	return engine
}

// Router returns the HTTP handler; used directly by tests
func (s *Server) Router() http.Handler {
	return s.engine
}

// Start runs the HTTP listener until Stop or a listener error
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:     s.engine,
		ReadTimeout: 30 * time.Second,
		// No write timeout: conversions stream for minutes
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	s.logStartup()
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	close(s.stopJanitor)
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// logStartup reports tool status the way the operator expects on boot.
// No request data is ever logged.
func (s *Server) logStartup() {
	log.Printf("Starting vibestream server on port %d", s.cfg.Server.Port)

	if s.coder.Available() {
		log.Printf("[server] transcoder ready: %s", s.coder.Name())
	} else {
		log.Printf("[server] WARNING: %s not found, conversions will fail", s.coder.Name())
	}

	if s.eng.Available() {
		log.Printf("[server] extraction engine ready: %s", s.eng.Name())
	} else {
		log.Printf("[server] WARNING: %s not found, extraction will fail", s.eng.Name())
	}

	if s.cookieJarReady() {
		log.Printf("[server] cookie jar found, authenticated fallback enabled")
	} else {
		log.Printf("[server] no cookie jar, guest fallback only")
	}

	log.Printf("[server] rate limit: %d downloads per %s per client",
		s.downloadLimiter.Ceiling(), s.downloadLimiter.Window())
}
