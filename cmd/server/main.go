package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Dhoini/personalized-gospels/config"
	"github.com/Dhoini/personalized-gospels/internal/app"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

func main() {
	// .env необязателен, переменные окружения имеют приоритет
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.INFO).Fatal("Failed to load configuration: %v", err)
	}

	log := logger.New(logger.ParseLevel(cfg.Logging.Level))
	defer func() { _ = log.Sync() }()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application: %v", err)
	}

	errCh := application.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Received signal %s", sig)
	case err := <-errCh:
		if err != nil {
			log.Errorw("Server stopped unexpectedly", "error", err)
		}
	}

	// консьюмер Kafka останавливается отменой контекста
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := application.Shutdown(ctxShutdown); err != nil {
		log.Errorw("Shutdown finished with errors", "error", err)
		return
	}
	log.Info("Server stopped gracefully")
}
