package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"artemis/internal/app"
	"artemis/internal/config"
	"artemis/internal/logging"
)

// @title                       Artemis API
// @version                     1.0
// @description                 Facility form backend: password reset, accounts, form drafts and NIT lookup.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.MustLoad()

	log, err := logging.New(cfg.App.Env)
	if err != nil {
		panic("Failed to build logger: " + err.Error())
	}

	if err := run(cfg, log); err != nil {
		log.Error("[app] stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("[app] stopped")
	_ = log.Sync()
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}
