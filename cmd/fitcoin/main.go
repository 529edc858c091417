package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	_ "github.com/lib/pq"

	"github.com/fitcoin-app/fitcoin/internal/account"
	"github.com/fitcoin-app/fitcoin/internal/apperr"
	"github.com/fitcoin-app/fitcoin/internal/bot"
	"github.com/fitcoin-app/fitcoin/internal/catalog"
	"github.com/fitcoin-app/fitcoin/internal/chain"
	"github.com/fitcoin-app/fitcoin/internal/database"
	"github.com/fitcoin-app/fitcoin/internal/health"
	"github.com/fitcoin-app/fitcoin/internal/httpapi"
	"github.com/fitcoin-app/fitcoin/internal/lifecycle"
	"github.com/fitcoin-app/fitcoin/internal/market"
	"github.com/fitcoin-app/fitcoin/internal/ratelimit"
	"github.com/fitcoin-app/fitcoin/internal/session"
	"github.com/fitcoin-app/fitcoin/internal/tracker"
	"github.com/fitcoin-app/fitcoin/pkg/config"
	"github.com/fitcoin-app/fitcoin/pkg/logger"
	"github.com/fitcoin-app/fitcoin/pkg/metrics"
	appredis "github.com/fitcoin-app/fitcoin/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(*cfg)
	config.WatchLevel(v, logger.SetLevel)

	log.Info("starting fitcoin",
		slog.String("env", cfg.AppEnv),
		slog.String("addr", cfg.HTTP.Addr()),
	)

	kv, err := appredis.New(ctx, appredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = kv.Close() }()

	storage := session.NewRedisStorage(appredis.NewMetricsClient(kv), log)
	store := session.NewStore(storage, log)
	if err := store.Rehydrate(ctx); err != nil {
		return fmt.Errorf("rehydrate session: %w", err)
	}

	chainOpts := []chain.Option{}
	if cfg.Chain.LatencyMS > 0 {
		chainOpts = append(chainOpts, chain.WithLatency(time.Duration(cfg.Chain.LatencyMS)*time.Millisecond))
	}
	chainSvc := chain.NewSimulator(log, chainOpts...)

	interval, err := cfg.Tracker.ParseInterval()
	if err != nil {
		return fmt.Errorf("parse tracker interval: %w", err)
	}
	trk := tracker.New(store, chainSvc, log, tracker.WithInterval(interval))

	cat, db, err := buildCatalog(ctx, cfg.Catalog, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	acc := account.NewService(store, storage, chainSvc, log)
	mkt := market.NewService(store, cat, chainSvc, log)

	var limiter ratelimit.Limiter
	var rules *ratelimit.Rules
	if cfg.RateLimit.Enabled {
		rules = ratelimit.NewRules(cfg.RateLimit)
		limiter = ratelimit.NewAdaptiveLimiter(
			ratelimit.NewRedisLimiter(kv.Client, log),
			ratelimit.NewMemoryLimiter(log),
			log,
		)

		cleaner := ratelimit.NewCleaner(kv.Client, log, 10*time.Minute)
		go cleaner.Run(ctx)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("redis", health.NewRedisChecker(kv.Client))
	if db != nil {
		checker.AddCheck("catalog_db", health.NewDBChecker(db))
	}

	collector := metrics.NewSessionCollector(store)
	go collector.Run(ctx)

	handlers := httpapi.NewHandlers(store, trk, acc, mkt, checker, log)
	router := httpapi.NewRouter(handlers, limiter, rules, log)
	server := httpapi.NewServer(cfg.HTTP, router, log)

	shutdown := lifecycle.NewShutdown(log)

	if cfg.Telegram.Enabled && cfg.Telegram.Token != "" {
		errHandler := apperr.NewHandler(log, cfg.Sentry.Enabled)
		companion, err := bot.New(cfg.Telegram, store, trk, mkt, errHandler, log)
		if err != nil {
			return fmt.Errorf("start telegram bot: %w", err)
		}

		checker.AddCheck("telegram", health.NewTelegramChecker(companion.Telebot()))
		go companion.Start()
		shutdown.Register("telegram_bot", func(context.Context) error {
			companion.Stop()
			return nil
		})
	}

	shutdown.Register("tracker", func(shutdownCtx context.Context) error {
		if trk.State() != tracker.StateTracking {
			return nil
		}
		_, stopErr := trk.Stop(shutdownCtx)
		return stopErr
	})

	err = server.ListenAndServe(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if shutdownErr := shutdown.Execute(shutdownCtx); shutdownErr != nil {
		log.Error("shutdown finished with errors", slog.Any("error", shutdownErr))
	}

	log.Info("fitcoin stopped")
	return err
}

func buildCatalog(ctx context.Context, cfg config.CatalogConfig, log *slog.Logger) (catalog.Catalog, *sql.DB, error) {
	if cfg.Source != "postgres" {
		return catalog.NewMemory(), nil, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping catalog database: %w", err)
	}

	migrationsDir := cfg.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, migrationsDir); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("apply catalog migrations: %w", err)
	}

	return catalog.NewPostgres(db, log), db, nil
}
