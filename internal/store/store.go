// Package store arma los repositorios según la configuración de drivers.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dropDatabas3/devportal/internal/cache"
	"github.com/dropDatabas3/devportal/internal/config"
	"github.com/dropDatabas3/devportal/internal/domain/repository"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
	"github.com/dropDatabas3/devportal/internal/store/cached"
	"github.com/dropDatabas3/devportal/internal/store/memory"
	"github.com/dropDatabas3/devportal/internal/store/pg"
	redisstore "github.com/dropDatabas3/devportal/internal/store/redis"
)

// Stores agrupa los puertos que consume el núcleo OAuth.
type Stores struct {
	Applications repository.ApplicationRepository
	Users        repository.UserRepository
	AuthCodes    repository.AuthCodeRepository

	// Redis queda disponible para el rate limiter cuando está configurado.
	Redis redis.UniversalClient
	// PG es el store Postgres cuando storage.driver=postgres (métricas del pool, migraciones).
	PG *pg.Store

	checks  map[string]func(context.Context) error
	closers []func() error
}

// Ping verifica todos los backends.
func (s *Stores) Ping(ctx context.Context) error {
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			return fmt.Errorf("store: %s: %w", name, err)
		}
	}
	return nil
}

// Checks retorna un health check por backend conectado ("redis", "postgres", "codes").
func (s *Stores) Checks() map[string]func(context.Context) error {
	out := make(map[string]func(context.Context) error, len(s.checks))
	for k, v := range s.checks {
		out[k] = v
	}
	return out
}

// Close libera conexiones en orden inverso.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func needsRedis(cfg *config.Config) bool {
	return cfg.CodesDriver() == config.DriverRedis ||
		cfg.Cache.Kind == config.DriverRedis ||
		(cfg.Rate.Enabled && cfg.Rate.Kind == config.DriverRedis)
}

// Build conecta los backends configurados.
func Build(ctx context.Context, cfg *config.Config) (*Stores, error) {
	log := logger.From(ctx).With(logger.Component("store"))
	s := &Stores{checks: make(map[string]func(context.Context) error)}

	if needsRedis(cfg) {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			DB:       cfg.Cache.Redis.DB,
			Password: cfg.Cache.Redis.Password,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("store: redis ping failed: %w", err)
		}
		s.Redis = rdb
		s.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		s.closers = append(s.closers, rdb.Close)
		log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Addr))
	}

	var pgStore *pg.Store
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		st, err := pg.Connect(ctx, pg.Config{
			DSN:             cfg.Storage.DSN,
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		pgStore = st
		s.PG = st
		s.Applications = st.Applications()
		s.Users = st.Users()
		s.checks["postgres"] = st.Ping
		s.closers = append(s.closers, st.Close)
		log.Info("postgres connected")

	case config.DriverMemory:
		reg := memory.NewRegistry()
		if cfg.Storage.SeedFile != "" {
			r, err := memory.LoadSeedFile(cfg.Storage.SeedFile)
			if err != nil {
				_ = s.Close()
				return nil, err
			}
			reg = r
		} else {
			log.Warn("memory registry without seed file: no applications registered")
		}
		s.Applications = reg
		s.Users = reg

	default:
		_ = s.Close()
		return nil, fmt.Errorf("store: unknown storage driver %q", cfg.Storage.Driver)
	}

	switch cfg.CodesDriver() {
	case config.DriverPostgres:
		if pgStore == nil {
			_ = s.Close()
			return nil, errors.New("store: postgres codes require postgres storage")
		}
		s.AuthCodes = pgStore.AuthCodes()
	case config.DriverRedis:
		s.AuthCodes = redisstore.NewAuthCodes(s.Redis, cfg.Codes.RedisPrefix, cfg.Codes.RedisGrace)
	case config.DriverMemory:
		s.AuthCodes = memory.NewAuthCodes()
	default:
		_ = s.Close()
		return nil, fmt.Errorf("store: unknown codes driver %q", cfg.CodesDriver())
	}

	s.checks["codes"] = s.AuthCodes.Ping

	if cfg.Cache.TTL > 0 {
		var c cache.Client
		if cfg.Cache.Kind == config.DriverRedis {
			c = cache.NewRedis(s.Redis, cfg.Cache.Redis.Prefix)
		} else {
			c = cache.NewMemory("")
			s.closers = append(s.closers, c.Close)
		}
		s.Applications = cached.NewApplications(s.Applications, c, cfg.Cache.TTL)
	}

	log.Info("stores ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("codes", cfg.CodesDriver()),
		zap.String("cache", cfg.Cache.Kind),
	)
	return s, nil
}
