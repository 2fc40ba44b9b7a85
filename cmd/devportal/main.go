// Command devportal levanta la API OAuth del portal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/devportal/internal/config"
	"github.com/dropDatabas3/devportal/internal/http/server"
	"github.com/dropDatabas3/devportal/internal/jobs"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
	"github.com/dropDatabas3/devportal/internal/store"
)

func main() {
	var (
		flagConfig  = flag.String("config", "configs/config.yaml", "ruta al YAML de configuración (opcional)")
		flagEnvFile = flag.String("env-file", ".env", "archivo .env a cargar si existe")
	)
	flag.Parse()

	_ = godotenv.Load(*flagEnvFile)

	if err := run(*flagConfig); err != nil {
		fmt.Fprintf(os.Stderr, "devportal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ToContext(ctx, log)

	st, err := store.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("store close failed", logger.Err(err))
		}
	}()

	handler, err := server.BuildHandler(cfg, st, server.Options{})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(cfg, handler).Run(gctx)
	})
	if cfg.Sweep.Enabled {
		g.Go(func() error {
			return jobs.NewSweeper(st.AuthCodes, cfg.Sweep.Interval).Run(gctx)
		})
	}

	log.Info("devportal started",
		logger.String("env", cfg.App.Env),
		logger.String("addr", cfg.Server.Addr),
		logger.String("api_prefix", cfg.Server.APIPrefix),
		logger.String("frontend", cfg.FrontendURL()),
	)
	err = g.Wait()
	log.Info("devportal stopped")
	return err
}
