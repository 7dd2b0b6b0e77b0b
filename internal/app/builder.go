package app

import (
	"context"
	"fmt"
	"time"

	"sarraf/internal/config"
	"sarraf/internal/executor"
	"sarraf/internal/gateway/exchange"
	"sarraf/internal/gateway/notifier"
	"sarraf/internal/gateway/wallex"
	"sarraf/internal/ingestor"
	"sarraf/internal/logger"
	"sarraf/internal/reaper"
	"sarraf/internal/scheduler"
	"sarraf/internal/store/gormstore"
	"sarraf/internal/tgbot"
	statushttp "sarraf/internal/transport/http"
)

// AppBuilder assembles the application graph. The *Fn fields exist so
// tests can substitute fakes without touching real venues or disks.
type AppBuilder struct {
	cfg *config.Config

	storeFn    func(*config.Config) (*gormstore.GormStore, error)
	exchangeFn func(*config.Config) exchange.Exchange
	notifierFn func(*config.Config) notifier.TextNotifier
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		storeFn:    buildStore,
		exchangeFn: buildExchange,
		notifierFn: buildNotifier,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func WithExchange(ex exchange.Exchange) AppBuilderOption {
	return func(b *AppBuilder) {
		b.exchangeFn = func(*config.Config) exchange.Exchange { return ex }
	}
}

func WithStore(st *gormstore.GormStore) AppBuilderOption {
	return func(b *AppBuilder) {
		b.storeFn = func(*config.Config) (*gormstore.GormStore, error) { return st, nil }
	}
}

func WithNotifier(n notifier.TextNotifier) AppBuilderOption {
	return func(b *AppBuilder) {
		b.notifierFn = func(*config.Config) notifier.TextNotifier { return n }
	}
}

func buildStore(cfg *config.Config) (*gormstore.GormStore, error) {
	return gormstore.NewGormStore(cfg.Store.Path)
}

func buildExchange(cfg *config.Config) exchange.Exchange {
	return wallex.New(wallex.Config{
		BaseURL:     cfg.Exchange.BaseURL,
		APIKey:      cfg.Exchange.APIKey,
		HTTPTimeout: time.Duration(cfg.Exchange.TimeoutSeconds) * time.Second,
	})
}

func buildNotifier(cfg *config.Config) notifier.TextNotifier {
	tg := cfg.Notify.Telegram
	if !tg.Enabled {
		return notifier.Noop{}
	}
	return notifier.NewTelegram(tg.BotToken, tg.ChatID)
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := b.cfg
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	st, err := b.storeFn(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store failed: %w", err)
	}

	ex := b.exchangeFn(cfg)

	// Order sizing is impossible without the precision catalog, so a
	// failure here aborts startup rather than limping along.
	precisions, err := ex.LoadMarketPrecisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("market precision bootstrap failed: %w", err)
	}
	logger.Infof("loaded precision rules for %d markets from %s", precisions.Len(), ex.Name())

	sources, err := cfg.LoadSources()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no signal sources configured")
	}

	textNotifier := b.notifierFn(cfg)

	ing := ingestor.New(sources, st, st,
		time.Duration(cfg.Ingestor.RequestTimeoutSeconds)*time.Second)
	exec := executor.New(st, st, ex, textNotifier, precisions,
		cfg.TradeAmountDecimal(), cfg.Trading.QuoteAsset, cfg.Executor.SellRetryAlertThreshold)
	rp := reaper.New(st, st, ex,
		time.Duration(cfg.Reaper.StaleTimeoutMinutes)*time.Minute)

	loops := []*scheduler.Loop{
		scheduler.NewLoop("ingestor", time.Duration(cfg.Ingestor.IntervalSeconds)*time.Second, ing.Poll),
		scheduler.NewLoop("executor", time.Duration(cfg.Executor.IntervalSeconds)*time.Second, exec.RunCycle),
		scheduler.NewLoop("reaper", time.Duration(cfg.Reaper.IntervalSeconds)*time.Second, rp.RunCycle),
	}

	statusHTTP, err := statushttp.NewServer(statushttp.ServerConfig{
		Addr:    cfg.App.HTTPAddr,
		Signals: st,
		Events:  st,
	})
	if err != nil {
		return nil, err
	}

	var bot *tgbot.Bot
	if cfg.Operator.Enabled {
		bot, err = tgbot.NewFromEnv(st, st)
		if err != nil {
			return nil, fmt.Errorf("operator bot setup failed: %w", err)
		}
	}

	return &App{
		cfg:        cfg,
		store:      st,
		loops:      loops,
		statusHTTP: statusHTTP,
		bot:        bot,
	}, nil
}
