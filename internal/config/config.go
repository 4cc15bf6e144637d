package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // Practice zones must resolve in minimal images.

	"github.com/kelseyhightower/envconfig"
)

// Store selects where the practice data lives.
type Store string

const (
	StorePostgres Store = "postgres"
	StoreMemory   Store = "memory"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Praxis"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Store    Store  `envconfig:"STORE" default:"postgres"`
		Timezone string `envconfig:"TIMEZONE" default:"Europe/Istanbul"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"praxis"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
		CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
		MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	}

	// Auth is off when Secret is empty.
	Auth struct {
		Secret   string        `envconfig:"AUTH_SECRET"`
		TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"720h"`
	}

	// Supabase, when URL is set, replaces the local store as the source of
	// the dashboard and calendar.
	Supabase struct {
		URL     string        `envconfig:"SUPABASE_URL"`
		Key     string        `envconfig:"SUPABASE_KEY"`
		Timeout time.Duration `envconfig:"SUPABASE_TIMEOUT" default:"10s"`
	}

	Cache struct {
		Size int           `envconfig:"CACHE_SIZE" default:"128"`
		TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}
}

func (c *Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     c.DB.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SSLMode),
	}

	return u.String()
}

// Location returns the practice time zone that calendar days are read in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Port < 1 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d: must be between 1 and 65535", c.App.Port))
	}

	switch c.App.Store {
	case StorePostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			errs = append(errs, errors.New("postgres store needs DB_HOST and DB_NAME"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("invalid store %q: must be one of [postgres memory]", c.App.Store))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	if c.Supabase.URL != "" {
		if u, err := url.Parse(c.Supabase.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid SUPABASE_URL %q", c.Supabase.URL))
		}

		if c.Supabase.Key == "" {
			errs = append(errs, errors.New("SUPABASE_URL is set but SUPABASE_KEY is empty"))
		}
	}

	if c.Auth.Secret != "" && len(c.Auth.Secret) < 32 {
		errs = append(errs, errors.New("AUTH_SECRET must be at least 32 bytes"))
	}

	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("invalid CACHE_SIZE %d", c.Cache.Size))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", c.Log.Format))
	}

	return errors.Join(errs...)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
