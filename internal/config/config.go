// Package config carga la configuración del servicio: defaults, luego YAML
// (opcional), luego overrides por variables de entorno.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSame     = "same"

	// DefaultFrontendURL es el origen del portal en desarrollo.
	DefaultFrontendURL = "http://localhost:5173"

	minProdSecretLen = 32
)

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	DB       int    `yaml:"db" env:"DB"`
	Password string `yaml:"password" env:"PASSWORD"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
}

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env" env:"APP_ENV"`
		Name    string `yaml:"name" env:"APP_NAME"`
		Version string `yaml:"version" env:"APP_VERSION"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr" env:"SERVER_ADDR"`
		APIPrefix       string        `yaml:"api_prefix" env:"API_PREFIX"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
		// TrustProxy habilita X-Forwarded-For / X-Real-IP para la IP de cliente.
		TrustProxy bool `yaml:"trust_proxy" env:"SERVER_TRUST_PROXY"`
	} `yaml:"server"`

	Frontend struct {
		URL string `yaml:"url" env:"FRONTEND_URL"`
	} `yaml:"frontend"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver" env:"STORAGE_DRIVER"`
		DSN      string `yaml:"dsn" env:"STORAGE_DSN"`
		SeedFile string `yaml:"seed_file" env:"STORAGE_SEED_FILE"`
		Postgres struct {
			MaxConns        int32         `yaml:"max_conns" env:"PG_MAX_CONNS"`
			MinConns        int32         `yaml:"min_conns" env:"PG_MIN_CONNS"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"PG_CONN_MAX_LIFETIME"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Codes struct {
		// same | redis | memory
		Driver string        `yaml:"driver" env:"CODES_DRIVER"`
		TTL    time.Duration `yaml:"ttl" env:"CODES_TTL"`
		// RedisPrefix se antepone a las keys de codes (usa la conexión de cache.redis).
		RedisPrefix string `yaml:"redis_prefix" env:"CODES_REDIS_PREFIX"`
		// RedisGrace es cuánto sobrevive la key en Redis a expires_at.
		RedisGrace time.Duration `yaml:"redis_grace" env:"CODES_REDIS_GRACE"`
	} `yaml:"codes"`

	Cache struct {
		// memory | redis
		Kind  string        `yaml:"kind" env:"CACHE_KIND"`
		TTL   time.Duration `yaml:"ttl" env:"CACHE_TTL"`
		Redis RedisConfig   `yaml:"redis" envPrefix:"REDIS_"`
	} `yaml:"cache"`

	JWT struct {
		Secret    string        `yaml:"secret" env:"JWT_SECRET"`
		Issuer    string        `yaml:"issuer" env:"JWT_ISSUER"`
		AccessTTL time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL"`
	} `yaml:"jwt"`

	Rate struct {
		Enabled bool `yaml:"enabled" env:"RATE_ENABLED"`
		// memory | redis
		Kind        string        `yaml:"kind" env:"RATE_KIND"`
		Window      time.Duration `yaml:"window" env:"RATE_WINDOW"`
		MaxRequests int           `yaml:"max_requests" env:"RATE_MAX_REQUESTS"`
	} `yaml:"rate"`

	Sweep struct {
		Enabled  bool          `yaml:"enabled" env:"SWEEP_ENABLED"`
		Interval time.Duration `yaml:"interval" env:"SWEEP_INTERVAL"`
	} `yaml:"sweep"`

	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`
}

// Default devuelve la configuración base; YAML y env se aplican encima.
func Default() *Config {
	var c Config
	c.App.Env = EnvDev
	c.App.Name = "devportal"
	c.App.Version = "dev"
	c.Server.Addr = ":5000"
	c.Server.APIPrefix = "/api"
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 15 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Storage.Driver = DriverMemory
	c.Storage.Postgres.MaxConns = 10
	c.Storage.Postgres.ConnMaxLifetime = 30 * time.Minute
	c.Codes.Driver = DriverSame
	c.Codes.TTL = 10 * time.Minute
	c.Codes.RedisPrefix = "devportal:code:"
	c.Codes.RedisGrace = 15 * time.Minute
	c.Cache.Kind = DriverMemory
	c.Cache.TTL = 30 * time.Second
	c.Cache.Redis.Addr = "localhost:6379"
	c.Cache.Redis.Prefix = "devportal:"
	c.JWT.Issuer = "devportal"
	c.JWT.AccessTTL = 30 * 24 * time.Hour
	c.Rate.Enabled = true
	c.Rate.Kind = DriverMemory
	c.Rate.Window = 15 * time.Minute
	c.Rate.MaxRequests = 100
	c.Sweep.Enabled = true
	c.Sweep.Interval = time.Minute
	c.Log.Level = "info"
	return &c
}

// Load arma la configuración. path vacío o inexistente omite el YAML.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	c.normalize()
	return c, nil
}

func (c *Config) normalize() {
	c.App.Env = strings.ToLower(strings.TrimSpace(c.App.Env))
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Codes.Driver = strings.ToLower(strings.TrimSpace(c.Codes.Driver))
	c.Cache.Kind = strings.ToLower(strings.TrimSpace(c.Cache.Kind))
	c.Rate.Kind = strings.ToLower(strings.TrimSpace(c.Rate.Kind))
	c.Server.APIPrefix = strings.TrimRight(c.Server.APIPrefix, "/")
	if c.Server.APIPrefix != "" && !strings.HasPrefix(c.Server.APIPrefix, "/") {
		c.Server.APIPrefix = "/" + c.Server.APIPrefix
	}
}

// IsProd reporta si app.env es prod.
func (c *Config) IsProd() bool { return c.App.Env == EnvProd }

// FrontendURL devuelve el origen del portal: frontend.url si está seteado,
// si no el default de desarrollo (en prod es obligatorio, ver Validate).
func (c *Config) FrontendURL() string {
	if c.Frontend.URL != "" {
		return c.Frontend.URL
	}
	if c.IsProd() {
		return ""
	}
	return DefaultFrontendURL
}

// CodesDriver resuelve "same" al driver de storage.
func (c *Config) CodesDriver() string {
	if c.Codes.Driver == "" || c.Codes.Driver == DriverSame {
		return c.Storage.Driver
	}
	return c.Codes.Driver
}

// Validate chequea valores críticos antes de arrancar.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.JWT.Secret == "":
		errs = append(errs, errors.New("jwt.secret is required"))
	case c.IsProd() && len(c.JWT.Secret) < minProdSecretLen:
		errs = append(errs, fmt.Errorf("jwt.secret must be at least %d bytes in prod", minProdSecretLen))
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	switch c.Codes.Driver {
	case DriverSame, DriverMemory, DriverRedis, DriverPostgres:
		if c.Codes.Driver == DriverPostgres && c.Storage.Driver != DriverPostgres {
			errs = append(errs, errors.New("codes.driver postgres requires storage.driver postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown codes.driver %q", c.Codes.Driver))
	}

	switch c.Cache.Kind {
	case DriverMemory, DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown cache.kind %q", c.Cache.Kind))
	}

	if c.Rate.Enabled {
		switch c.Rate.Kind {
		case DriverMemory, DriverRedis:
		default:
			errs = append(errs, fmt.Errorf("unknown rate.kind %q", c.Rate.Kind))
		}
		if c.Rate.Window <= 0 || c.Rate.MaxRequests <= 0 {
			errs = append(errs, errors.New("rate.window and rate.max_requests must be positive"))
		}
	}

	if c.Codes.TTL <= 0 {
		errs = append(errs, errors.New("codes.ttl must be positive"))
	}
	if c.Codes.RedisGrace <= 0 {
		errs = append(errs, errors.New("codes.redis_grace must be positive"))
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, errors.New("jwt.access_ttl must be positive"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}
	if c.Sweep.Enabled && c.Sweep.Interval <= 0 {
		errs = append(errs, errors.New("sweep.interval must be positive"))
	}

	if fe := c.FrontendURL(); fe == "" {
		errs = append(errs, errors.New("frontend.url is required in prod"))
	} else if u, err := url.Parse(fe); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("frontend.url %q is not an absolute URL", fe))
	}

	return errors.Join(errs...)
}
