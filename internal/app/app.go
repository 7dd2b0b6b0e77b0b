// Package app wires configuration, storage, the exchange gateway and the
// three loops into one runnable unit.
package app

import (
	"context"
	"errors"
	"fmt"

	"sarraf/internal/config"
	"sarraf/internal/logger"
	"sarraf/internal/scheduler"
	"sarraf/internal/store/gormstore"
	"sarraf/internal/tgbot"
	statushttp "sarraf/internal/transport/http"

	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	store      *gormstore.GormStore
	loops      []*scheduler.Loop
	statusHTTP *statushttp.Server
	bot        *tgbot.Bot

	// configPath enables hot reload of runtime settings when set.
	configPath string
}

// NewApp builds the application from config without starting anything.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// EnableConfigReload makes Run watch the given config file and apply
// runtime-safe settings on change.
func (a *App) EnableConfigReload(path string) {
	a.configPath = path
}

// Run starts every component and blocks until the context is canceled or
// one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.store.Close()

	group, ctx := errgroup.WithContext(ctx)

	if a.statusHTTP != nil {
		group.Go(func() error {
			if err := a.statusHTTP.Start(ctx); err != nil {
				return fmt.Errorf("status http server error: %w", err)
			}
			return nil
		})
	}

	if a.bot != nil {
		group.Go(func() error {
			err := a.bot.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	for _, loop := range a.loops {
		loop := loop
		group.Go(func() error {
			err := loop.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if a.configPath != "" {
		if err := config.Watch(ctx, a.configPath, func(fresh *config.Config) {
			logger.SetLevel(fresh.App.LogLevel)
		}); err != nil {
			logger.Warnf("config watch disabled: %v", err)
		}
	}

	logger.Infof("sarraf running: %d loops, http=%s, operator_bot=%v",
		len(a.loops), a.statusHTTP.Addr(), a.bot != nil)
	return group.Wait()
}
