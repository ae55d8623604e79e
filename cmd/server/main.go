package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/gamenight/internal/config"
	"github.com/jason-s-yu/gamenight/internal/handlers"
	"github.com/jason-s-yu/gamenight/internal/storage"
	"github.com/jason-s-yu/gamenight/internal/tracker"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.Level())

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slots, closeSlots, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s storage: %v", cfg.StorageBackend, err)
	}
	defer closeSlots()
	logger.Infof("using %s storage", cfg.StorageBackend)

	tr := tracker.New(slots, logger, tracker.Options{
		ScoreboardRows: cfg.ScoreboardRows,
		MaxDice:        cfg.MaxDice,
		MaxRows:        cfg.MaxRows,
	})
	tr.Load(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handlers.NewRouter(logger, tr, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("graceful shutdown failed: %v", err)
	}
}
