package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"factcheck/cache"
	"factcheck/config"
	"factcheck/handlers"
	"factcheck/metrics"
	"factcheck/middleware"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)
	metrics.Register()

	normalizer, analyzer, err := newServices(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := cache.InitRedis(ctx, cfg.RedisURL)
	if rdb != nil {
		defer rdb.Close()
	}

	handler := handlers.NewAnalyzerHandler(normalizer, analyzer, cfg.MaxMediaBytes, newLimiter(cfg, rdb))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(cfg, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"component": "http", "addr": srv.Addr}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.WithField("component", "http").Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newLimiter shares counts through redis when it is available. A
// non-positive RATE_LIMIT disables limiting.
func newLimiter(cfg *config.Config, rdb *redis.Client) middleware.Limiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	if rdb != nil {
		return middleware.NewRedisLimiter(cache.NewWindowCounter(rdb, "factcheck:ratelimit", cfg.RateWindow), cfg.RateLimit)
	}
	return middleware.NewMemoryLimiter(cfg.RateLimit, cfg.RateWindow)
}
