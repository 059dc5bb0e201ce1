// Command devserver runs the chat endpoint as a plain HTTP server for local
// development, with /health and Prometheus /metrics alongside it.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"consultant-chat/handler"
	"consultant-chat/internal/bootstrap"
	"consultant-chat/internal/config"
	"consultant-chat/internal/metrics"
	"consultant-chat/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", "err", err)
	}

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	bootstrap.NewLogger(os.Stdout, cfg.LogLevel)

	recorder := metrics.New()
	h, err := bootstrap.Build(ctx, cfg, handler.WithObserver(recorder))
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg.HTTPAddress, server.NewRouter(h, recorder.Handler()))
	if err := server.Run(ctx, srv); err != nil {
		slog.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}
