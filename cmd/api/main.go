package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanqian/ragchat/internal/bootstrap"
	"github.com/yanqian/ragchat/internal/infra/config"
	httpif "github.com/yanqian/ragchat/internal/interface/http"
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

	handler := bootstrap.BuildRouter(cfg, deps, log)
	server := httpif.NewRouter(cfg, handler)
	app := bootstrap.NewAPI(cfg, log, server)

	if err := app.Run(ctx); err != nil {
		log.Error("api server exited with error", "error", err)
		os.Exit(1)
	}
}
