// cmd/query-engine/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"maintquery/internal/common/config"
	"maintquery/internal/common/database"
	"maintquery/internal/common/logger"
	"maintquery/internal/common/observability"
	"maintquery/internal/engine"
	"maintquery/internal/engine/cache"
	"maintquery/internal/engine/executor"
	"maintquery/internal/engine/extract"
	"maintquery/internal/engine/fallback"
	"maintquery/internal/engine/genai"
	"maintquery/internal/engine/intent"
	"maintquery/internal/engine/router"
	"maintquery/internal/engine/security"
	"maintquery/internal/engine/sqlgen"
	"maintquery/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting query engine...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry (optional) ---
	var redis *database.RedisClient
	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")
	} else {
		zapLog.Info("Redis disabled, answer cache is memory-only")
	}

	// --- Assemble the pipeline ---
	genaiClient := genai.NewClient(cfg.GenAI, log)

	deps := engine.Dependencies{
		Validator:  security.NewValidator(cfg.Engine.Security.AllowThreshold, log),
		Cache:      cache.NewService(cfg.Engine.Cache, redis, log),
		Extractor:  extract.NewExtractor(log),
		Classifier: intent.NewClassifier(log),
		Router:     router.NewRouter(cfg.Engine.Router, genaiClient.Healthy, log),
		Executor: executor.NewExecutor(
			pg.DB,
			time.Duration(cfg.Database.Postgres.QueryTimeout)*time.Millisecond,
			log,
		),
		Fallback:   fallback.NewService(log),
		Rules:      sqlgen.NewRuleBuilder(log),
		Generative: genaiClient,
	}

	eng := engine.New(deps, cfg.Engine.Fallback, log, obs)
	zapLog.Info("Query pipeline assembled")

	srv := server.New(cfg.Server, eng, log)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown error", zap.Error(err))
	}

	zapLog.Info("Query engine stopped gracefully")
}
