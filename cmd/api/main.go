package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	app "github.com/boostgram/transfer-service/internal/application/transfer"
	"github.com/boostgram/transfer-service/internal/bootstrap"
	"github.com/boostgram/transfer-service/internal/infrastructure/repository"
	"github.com/boostgram/transfer-service/internal/infrastructure/telegram"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}
	appID := parseIntEnv("TELEGRAM_APP_ID", 0)
	appHash := os.Getenv("TELEGRAM_APP_HASH")
	if appID == 0 || appHash == "" {
		logger.Fatal().Msg("TELEGRAM_APP_ID and TELEGRAM_APP_HASH are required")
	}

	port := getEnv("PORT", "8080")

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}

	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create pgx pool")
	}
	defer pool.Close()

	factory := telegram.NewFactory(telegram.Config{
		AppID:       appID,
		AppHash:     appHash,
		Session:     os.Getenv("TELEGRAM_SESSION"),
		SessionFile: os.Getenv("TELEGRAM_SESSION_FILE"),
	}, logger)

	server := bootstrap.NewHTTPServer(db, factory, logger)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	jobRepo := repository.NewTransferJobRepository(db)
	progressLog := repository.NewProgressLogRepository(pool)
	notifications := repository.NewNotificationRepository(db)

	worker := app.NewWorker(jobRepo, progressLog, notifications, factory, app.WorkerConfig{
		Workers:       parseWorkerCount(),
		PollInterval:  time.Duration(parseIntEnv("TRANSFER_POLL_SECONDS", 2)) * time.Second,
		LeaseDuration: time.Duration(parseIntEnv("TRANSFER_JOB_LEASE_SECONDS", 300)) * time.Second,
		Engine:        app.DefaultEngineConfig(),
	}, logger)
	worker.Start(workerCtx)

	go func() {
		if err := server.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("graceful shutdown failed")
	}
}

// parseWorkerCount caps the worker pool: every worker holds its own Telegram
// connection, and too many concurrent sessions invite flood bans.
func parseWorkerCount() int {
	workers := parseIntEnv("TRANSFER_WORKERS", 2)
	if workers <= 0 {
		return 2
	}
	if workers > 4 {
		return 4
	}
	return workers
}

func parseIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
