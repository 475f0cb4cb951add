package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"flowershop/internal/api"
	"flowershop/internal/bot"
	"flowershop/internal/config"
	"flowershop/internal/dateparse"
	"flowershop/internal/dialog"
	"flowershop/internal/metrics"
	"flowershop/internal/store"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("FLOWERSHOP_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Fatal().Msg("set telegram.bot_token in config")
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	if cfg.Redis.Address != "" && cfg.Catalog.CacheTTLSeconds > 0 {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		db.UseRedisCache(rdb, cfg.CatalogCacheTTL())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = config.WatchCatalog(ctx, cfg.Catalog.ConfigPath, cfg.CatalogReloadInterval(), &logger, func(catalog *config.CatalogConfig) {
		if err := db.SyncCatalogFromConfig(ctx, catalog); err != nil {
			logger.Error().Err(err).Msg("catalog sync failed")
			return
		}
		logger.Info().Int("bouquets", len(catalog.Bouquets)).Msg("catalog synced")
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("load catalog error")
	}

	tg, err := bot.NewTelegramClient(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram authorization error")
	}

	sender := bot.NewSender(tg, cfg.Telegram.MessagesPerSecond, cfg.Telegram.MessageBurst)
	sessions := dialog.NewSessionStore(cfg.SessionTimeout())
	parser := dateparse.New(time.Local)
	machine := dialog.NewMachine(db, db, db, parser, bot.NewMediaResolver(cfg.Media.Dir), sender, sessions)

	b, err := bot.New(tg, machine, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create bot error")
	}

	if cfg.Backup.Enabled {
		backup := store.NewBackupService(cfg.Database.Path, cfg.Backup.Dir, cfg.BackupInterval(), cfg.BackupRetention(), &logger)
		go backup.Start(ctx)
	}

	apiServer := api.NewServer(db, &logger, cfg.API.APIKey)
	go func() {
		if err := apiServer.Start(ctx, cfg.API.Port); err != nil {
			logger.Error().Err(err).Msg("statistics API error")
		}
	}()

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Msg("flower shop bot started")
	b.Start(ctx)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
