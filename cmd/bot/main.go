// Command bot serves the Telegram webhook of the monitoring bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/monitoring-bot/internal/bot"
	"github.com/and161185/monitoring-bot/internal/buildinfo"
	"github.com/and161185/monitoring-bot/internal/config"
	"github.com/and161185/monitoring-bot/internal/prometheus"
	"github.com/and161185/monitoring-bot/internal/report"
	"github.com/and161185/monitoring-bot/internal/server"
	"github.com/and161185/monitoring-bot/internal/subscribers"
	"github.com/and161185/monitoring-bot/internal/telegram"
	"github.com/and161185/monitoring-bot/storage"
	"github.com/and161185/monitoring-bot/storage/file"
	"github.com/and161185/monitoring-bot/storage/inmemory"
	"github.com/and161185/monitoring-bot/storage/postgres"
	"github.com/and161185/monitoring-bot/storage/redis"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.NewBotConfig()
	defer cfg.Logger.Sync() //nolint:errcheck

	buildinfo.New(buildVersion, buildDate, buildCommit).Log(cfg.Logger)

	if err := run(ctx, cfg); err != nil {
		cfg.Logger.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.BotConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, closeStore, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	cfg.Logger.Infof("Bot config: Addr=%s, PrometheusURL=%s, AdminChatID=%s, SubscribersPath=%q, DatabaseDSN set=%t, Redis set=%t, Metrics=%d",
		cfg.Addr,
		cfg.PrometheusURL,
		cfg.AdminChatID,
		cfg.SubscribersPath,
		cfg.DatabaseDsn != "",
		cfg.RedisAddr != "",
		len(cfg.Metrics),
	)

	srv, err := newServer(cfg, store)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// newStorage picks the subscriber backend: PostgreSQL, then Redis, then the JSON
// file. An empty file path keeps subscribers in memory.
func newStorage(ctx context.Context, cfg *config.BotConfig) (storage.Storage, func(), error) {
	switch {
	case cfg.DatabaseDsn != "":
		st, err := postgres.NewPostgresStorage(ctx, cfg.DatabaseDsn)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres storage: %w", err)
		}
		return st, st.Close, nil

	case cfg.RedisAddr != "":
		st, err := redis.NewRedisStorage(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("redis storage: %w", err)
		}
		return st, func() { _ = st.Close() }, nil

	case cfg.SubscribersPath != "":
		return file.NewFileStorage(cfg.SubscribersPath), func() {}, nil

	default:
		cfg.Logger.Warn("no subscriber storage configured, subscriptions are kept in memory only")
		return inmemory.NewMemStorage(ctx), func() {}, nil
	}
}

func newServer(cfg *config.BotConfig, store storage.Storage) (*server.Server, error) {
	tg, err := telegram.NewClient(cfg.TelegramAPIURL, cfg.BotToken, cfg.SendTimeout)
	if err != nil {
		return nil, fmt.Errorf("telegram client: %w", err)
	}

	cfg.Logger.Infow("telegram bot authorized", "username", tg.Username())

	prom, err := prometheus.NewClient(cfg.PrometheusURL, cfg.QueryTimeout)
	if err != nil {
		return nil, err
	}

	aggregator := report.NewAggregator(cfg.Metrics, prom, cfg.Logger)
	registry := subscribers.NewRegistry(store, cfg.Logger)
	router := bot.NewRouter(tg, aggregator, registry, cfg.Logger)

	return server.NewServer(router, store, cfg), nil
}
