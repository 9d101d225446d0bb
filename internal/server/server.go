// Package server exposes the coach over an authenticated JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/auth"
	"github.com/spigell/interview-coach/internal/blob"
	"github.com/spigell/interview-coach/internal/clock"
	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/review"
	"github.com/spigell/interview-coach/internal/scoring"
	"github.com/spigell/interview-coach/internal/store"
	"github.com/spigell/interview-coach/internal/verification"
)

const shutdownTimeout = 10 * time.Second

type RateConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type Config struct {
	Addr        string     `mapstructure:"addr"`
	Rate        RateConfig `mapstructure:"rate"`
	CORSOrigins []string   `mapstructure:"cors-origins"`
}

type Deps struct {
	Gateway store.Gateway
	Blobs   blob.Store
	Auth    auth.Validator
	Scores  scoring.Strategy
	Clock   clock.Clock
	Logger  *zap.Logger
}

type Server struct {
	cfg      Config
	engine   *gin.Engine
	gateway  store.Gateway
	blobs    blob.Store
	scores   scoring.Strategy
	pipeline *verification.Pipeline
	reviews  *review.Builder
	metrics  *Metrics
	clock    clock.Clock
	logger   *zap.Logger
}

func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Gateway == nil {
		return nil, errors.New("server needs a gateway")
	}
	if deps.Auth == nil {
		return nil, errors.New("server needs a token validator")
	}

	l := deps.Logger
	if l == nil {
		l = zap.NewNop()
	}
	c := deps.Clock
	if c == nil {
		c = clock.Real()
	}
	scores := deps.Scores
	if scores == nil {
		scores = scoring.Fixed(scoring.Baseline)
	}

	s := &Server{
		cfg:      cfg,
		gateway:  deps.Gateway,
		blobs:    deps.Blobs,
		scores:   scores,
		pipeline: verification.NewPipeline(resume.NewExtractor(scores, l)),
		reviews: review.NewBuilder(review.Deps{
			Source: deps.Gateway,
			Saver:  deps.Gateway,
			Scores: scores,
			Clock:  c,
			Logger: l,
		}),
		metrics: NewMetrics(),
		clock:   c,
		logger:  l,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLog(l), s.metrics.middleware(), cors(cfg.CORSOrigins))
	if cfg.Rate.Requests > 0 && cfg.Rate.Window > 0 {
		engine.Use(newRateLimiter(cfg.Rate.Requests, cfg.Rate.Window).middleware())
	}

	engine.GET("/healthz", func(c *gin.Context) { success(c, gin.H{"status": "ok"}) })
	engine.GET("/metrics", s.metrics.handler())

	api := engine.Group("/api/v1", authenticate(deps.Auth))
	s.routes(api)

	s.engine = engine
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down api server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	return nil
}
