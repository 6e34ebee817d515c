package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanqian/ragchat/internal/bootstrap"
	"github.com/yanqian/ragchat/internal/infra/config"
	"github.com/yanqian/ragchat/pkg/logger"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps, err := bootstrap.BuildDependencies(ctx, cfg, log)
	if err != nil {
		log.Error("failed to build dependencies", "error", err)
		os.Exit(1)
	}

	consumer := bootstrap.BuildConsumer(cfg, deps, log)
	app := bootstrap.NewWorker(log, consumer)

	if err := app.Run(ctx); err != nil {
		log.Error("worker exited with error", "error", err)
		os.Exit(1)
	}
}
