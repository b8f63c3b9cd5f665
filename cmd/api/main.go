package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kassemshdy/aspire-library/internal/ai"
	"github.com/kassemshdy/aspire-library/internal/config"
	dbpkg "github.com/kassemshdy/aspire-library/internal/db"
	"github.com/kassemshdy/aspire-library/internal/infra/cache"
	"github.com/kassemshdy/aspire-library/internal/infra/imaging"
	"github.com/kassemshdy/aspire-library/internal/infra/storage"
	"github.com/kassemshdy/aspire-library/internal/logging"
	"github.com/kassemshdy/aspire-library/internal/metrics"
	"github.com/kassemshdy/aspire-library/internal/routes"
	"github.com/kassemshdy/aspire-library/internal/timezone"
	ucBook "github.com/kassemshdy/aspire-library/internal/usecase/book"
)

func main() {
	cfg := config.Load()

	log := logging.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	db := dbpkg.NewDB(cfg, log)

	var covers ucBook.CoverStore
	if cfg.StorageConfigured() {
		covers = storage.NewS3CoverStore(cfg)
	} else {
		log.Warn("S3 storage not configured, cover uploads disabled")
	}

	provider, closeAI := newAIProvider(cfg, log)
	defer closeAI()

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		DB:      db,
		Config:  cfg,
		Log:     log,
		Metrics: metrics.New(),
		Covers:  covers,
		Encoder: imaging.NewWebPEncoder(),
		AI:      provider,
		Now:     timezone.Clock(cfg.Timezone),
	})

	if err := run(r, cfg.Addr(), log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

// newAIProvider wraps the Anthropic client in a circuit breaker and, when
// Redis is reachable, a response cache.
func newAIProvider(cfg *config.Config, log *zap.Logger) (ai.TextGenerationProvider, func()) {
	if !cfg.AIConfigured() {
		log.Warn("AI_API_KEY missing or malformed, AI features disabled")
		return ai.Unconfigured{}, func() {}
	}

	var provider ai.TextGenerationProvider = ai.NewBreakerProvider(
		ai.NewAnthropicProvider(cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL),
		5, time.Minute, 30*time.Second,
	)

	if cfg.RedisURL == "" {
		return provider, func() {}
	}

	rc, err := cache.NewRedisCache(cfg.RedisURL, "library:")
	if err != nil {
		log.Warn("invalid REDIS_URL, AI cache disabled", zap.Error(err))
		return provider, func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		log.Warn("redis unreachable, AI cache disabled", zap.Error(err))
		_ = rc.Close()
		return provider, func() {}
	}

	log.Info("AI responses cached in redis", zap.Duration("ttl", cfg.AICacheTTL))
	return ai.NewCachedProvider(provider, rc, cfg.AICacheTTL, log), func() { _ = rc.Close() }
}

func run(handler http.Handler, addr string, log *zap.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Info("signal caught", zap.String("signal", s.String()))
		shutdown <- srv.Shutdown(ctx)
	}()

	log.Info("server running", zap.String("addr", addr))

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdown
}
