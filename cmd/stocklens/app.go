package main

import (
	"context"
	"fmt"

	"github.com/raykavin/stocklens"
	"github.com/raykavin/stocklens/pkg/config"
	"github.com/raykavin/stocklens/pkg/core"
	"github.com/raykavin/stocklens/pkg/exchange"
	"github.com/raykavin/stocklens/pkg/exchange/yahoo"
	"github.com/raykavin/stocklens/pkg/logger"
	"github.com/raykavin/stocklens/pkg/logger/zerolog"
	"github.com/raykavin/stocklens/pkg/notification"
	"github.com/raykavin/stocklens/pkg/storage"
)

// app holds the components built from the configuration
type app struct {
	config   *config.Config
	log      logger.Logger
	analyzer *stocklens.Analyzer
	storage  *storage.StatusStorage
	telegram *notification.Telegram
}

type appOption func(*config.Config)

func withWindow(size int) appOption {
	return func(c *config.Config) {
		if size > 0 {
			c.Chart.Window = size
		}
	}
}

func newApp(_ context.Context, path string, options ...appOption) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	for _, option := range options {
		option(cfg)
	}

	log, err := zerolog.New(zerolog.Options{
		Level:      cfg.Log.Level,
		TimeLayout: cfg.Log.TimeFormat,
		Colored:    cfg.Log.Colored,
		JSON:       cfg.Log.JSON,
	})
	if err != nil {
		return nil, err
	}
	stocklens.DefaultLog = log

	feeder, err := buildFeeder(cfg, log)
	if err != nil {
		return nil, err
	}

	statuses, err := storage.NewStatusStorage(cfg.Storage.Path, cfg.Storage.History)
	if err != nil {
		return nil, err
	}

	a := &app{config: cfg, log: log, storage: statuses}

	indicators, err := cfg.IndicatorConfig()
	if err != nil {
		a.Close()
		return nil, err
	}

	analyzerOptions := []stocklens.Option{
		stocklens.WithLogger(log),
		stocklens.WithIndicators(indicators),
		stocklens.WithWindowSize(cfg.Chart.Window),
		stocklens.WithStorage(statuses),
	}

	if cfg.Telegram.Enabled {
		a.telegram, err = notification.NewTelegram(cfg.Telegram.Token, cfg.Telegram.Users,
			notification.WithHistory(statuses))
		if err != nil {
			a.Close()
			return nil, err
		}
		analyzerOptions = append(analyzerOptions, stocklens.WithNotifier(a.telegram))
	}

	if cfg.Mail.Enabled {
		analyzerOptions = append(analyzerOptions, stocklens.WithNotifier(notification.NewMail(notification.MailParams{
			SMTPServerPort:    cfg.Mail.Port,
			SMTPServerAddress: cfg.Mail.Server,
			To:                cfg.Mail.To,
			From:              cfg.Mail.From,
			Password:          cfg.Mail.Password,
			Timeout:           cfg.Mail.Timeout,
		})))
	}

	a.analyzer, err = stocklens.NewAnalyzer(feeder, analyzerOptions...)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// buildFeeder returns the configured history provider. A yahoo provider
// with a csv_dir falls back to the local files.
func buildFeeder(cfg *config.Config, log logger.Logger) (core.Feeder, error) {
	csvFeed := func() (*exchange.CSVFeed, error) {
		return exchange.NewCSVFeed(cfg.Provider.CSVDir, cfg.Provider.Lookback)
	}

	switch cfg.Provider.Kind {
	case config.ProviderCSV:
		return csvFeed()
	case config.ProviderYahoo:
		options := []yahoo.Option{
			yahoo.WithLookback(cfg.Provider.Lookback),
			yahoo.WithRetries(cfg.Provider.Retries),
			yahoo.WithTimeout(cfg.Provider.Timeout),
			yahoo.WithLogger(log),
		}
		if cfg.Provider.BaseURL != "" {
			options = append(options, yahoo.WithBaseURL(cfg.Provider.BaseURL))
		}

		client, err := yahoo.NewClient(options...)
		if err != nil {
			return nil, err
		}
		if cfg.Provider.CSVDir == "" {
			return client, nil
		}

		local, err := csvFeed()
		if err != nil {
			return nil, err
		}
		return exchange.NewFallback(log,
			exchange.Source{Name: config.ProviderYahoo, Feeder: client},
			exchange.Source{Name: config.ProviderCSV, Feeder: local},
		)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Kind)
	}
}

func (a *app) startNotifiers() {
	if a.telegram != nil {
		a.telegram.Start()
	}
}

// Close stops the notifiers and closes the status storage
func (a *app) Close() {
	if a.telegram != nil {
		a.telegram.Stop()
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.log.WithError(err).Error("failed to close status storage")
		}
	}
}
