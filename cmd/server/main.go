package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiryu-dev/penta/internal/adapters/webapi"
	"github.com/kiryu-dev/penta/internal/config"
	"github.com/kiryu-dev/penta/internal/transport/ws"
	"github.com/kiryu-dev/penta/internal/usecase/game"
	"github.com/kiryu-dev/penta/internal/usecase/hub"
	"github.com/kiryu-dev/penta/internal/usecase/synchronizer"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfgPath := flag.String("config", "./config.yml", "path to config")
	flag.Parse()
	cfg, err := config.New(*cfgPath)
	if err != nil {
		panic(err)
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger = logger.With(zap.String("server", cfg.Name))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	var (
		repo   = webapi.New()
		sync   = synchronizer.New(repo, cfg.Name, cfg.Servers, logger)
		game   = game.New(logger)
		hub    = hub.New(game, cfg.SyncPeriod, logger)
		server = ws.New(cfg.Name, cfg.Port, hub, sync, logger)
	)
	errGroup, ctx := errgroup.WithContext(ctx)
	errGroup.Go(func() error {
		select {
		case s := <-sigChan:
			cancel()
			return errors.Errorf("captured signal: %v", s)
		case <-ctx.Done():
			return nil
		}
	})
	errGroup.Go(func() error {
		return server.ListenAndServe(ctx)
	})
	if err := errGroup.Wait(); err != nil {
		logger.Info("gracefully shutting down the server: " + err.Error())
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
