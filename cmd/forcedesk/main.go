package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/forcelab-tw/forcedesk/internal/app"
	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application := app.New(cfg, logger)
	application.Run(ctx)
}
