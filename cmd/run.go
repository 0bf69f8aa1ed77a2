package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jekabolt/ecomm-insights/app"
	"github.com/jekabolt/ecomm-insights/config"
	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/log"
	"github.com/spf13/cobra"
)

// setup loads the config and installs the configured logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load a config %v", err.Error())
	}
	logger := log.New(cfg.Logger, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// loadDataset opens the configured source and loads the dataset once.
func loadDataset(ctx context.Context, cfg *config.Config) (*dataset.Dataset, error) {
	src, closer, err := app.OpenSource(ctx, &cfg.Dataset)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer.Close()
	}
	ds, _, err := dataset.NewLoader(src).Load(ctx)
	return ds, err
}

func run(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := app.New(cfg)
	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("cannot start the application %v", err.Error())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	select {
	case s := <-sigCh:
		logger.With("signal", s.String()).Warn("signal received, exiting")
		a.Stop(ctx)
		logger.Info("application exited")
	case <-a.Done():
		logger.Error("application exited")
	}

	return nil
}
