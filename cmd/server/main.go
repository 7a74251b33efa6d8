package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "resume-formatter/internal/adapter/http"
	repo "resume-formatter/internal/adapter/repository"
	"resume-formatter/internal/config"
	"resume-formatter/internal/infrastructure/migration"
	"resume-formatter/internal/logger"
	"resume-formatter/internal/usecase"
	infra "resume-formatter/pkg/infrastructure"
	"resume-formatter/pkg/notify"
	"resume-formatter/pkg/payment"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "config.yaml", "path to the YAML config file")
	envFile := pflag.String("env-file", ".env", "dotenv file exported before the config is read")
	pflag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}
	logger.Init(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildStore(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("artifact store unavailable")
	}
	defer closeStore()

	renderer := infra.NewChromedpRenderer(cfg.Renderer, cfg.RenderTimeout())
	gateway := payment.NewGateway(cfg.Payment)
	if cfg.Payment.KeyID == "" || cfg.Payment.KeySecret == "" {
		logger.Warn().Msg("payment gateway credentials missing, every generate request will be rejected")
	}

	opts := []usecase.Option{usecase.WithDownloadPrefix(cfg.Server.DownloadPrefix)}
	if cfg.Mail.Enabled {
		opts = append(opts, usecase.WithNotifier(notify.NewMailer(cfg.Mail)))
	}
	processor := usecase.NewProcessor(gateway, renderer, store, opts...)

	h := httpadapter.NewHandler(processor, gateway, cfg.Payment)
	app := httpadapter.NewApp(h, cfg.Server.BodyLimitMB)

	go func() {
		logger.Info().Str("address", cfg.Server.Address).Msg("server listening")
		if err := app.Listen(cfg.Server.Address); err != nil {
			logger.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}

func buildStore(ctx context.Context, cfg config.StorageConfig) (usecase.ArtifactStore, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case "minio":
		s, err := repo.NewMinIOStore(ctx, cfg.MinIO)
		return s, noop, err
	case "postgres":
		pool, err := infra.NewArtifactsPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, noop, err
		}
		if err := migration.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return repo.NewPGStore(pool), pool.Close, nil
	default:
		s, err := repo.NewLocalStore(cfg.LocalDir)
		return s, noop, err
	}
}
