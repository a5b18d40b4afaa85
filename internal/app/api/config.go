package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the Roopet processes.
type Config struct {
	Port              string        `env:"PORT" envDefault:"8080"`
	PostgresDSN       string        `env:"POSTGRES_DSN"`
	TemporalAddress   string        `env:"TEMPORAL_ADDRESS"`
	TemporalNamespace string        `env:"TEMPORAL_NAMESPACE"`
	TemporalDisabled  bool          `env:"TEMPORAL_DISABLED"`
	StoreTimeout      time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionPurgeEvery time.Duration `env:"SESSION_PURGE_INTERVAL" envDefault:"1h"`
	PasswordCost      int           `env:"PASSWORD_BCRYPT_COST" envDefault:"10"`
	PollInterval      time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	WatchPetCode      string        `env:"WATCH_PET_CODE"`
	PushWebhookURL    string        `env:"PUSH_WEBHOOK_URL"`
	PushTimeout       time.Duration `env:"PUSH_TIMEOUT" envDefault:"5s"`

	// IdempotencyRetention applies to the in-memory key store; zero keeps keys forever.
	IdempotencyRetention time.Duration `env:"IDEMPOTENCY_RETENTION" envDefault:"24h"`
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.PostgresDSN = strings.TrimSpace(cfg.PostgresDSN)
	cfg.PushWebhookURL = strings.TrimSpace(cfg.PushWebhookURL)
	cfg.WatchPetCode = strings.ToUpper(strings.TrimSpace(cfg.WatchPetCode))
	if strings.TrimSpace(cfg.TemporalAddress) == "" {
		cfg.TemporalAddress = client.DefaultHostPort
	}
	if strings.TrimSpace(cfg.TemporalNamespace) == "" {
		cfg.TemporalNamespace = client.DefaultNamespace
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the processes cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.SessionPurgeEvery <= 0 {
		errs = append(errs, errors.New("SESSION_PURGE_INTERVAL must be positive"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("POLL_INTERVAL must be positive"))
	}
	if c.IdempotencyRetention < 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_RETENTION must not be negative"))
	}
	if c.PasswordCost < 4 || c.PasswordCost > 31 {
		errs = append(errs, errors.New("PASSWORD_BCRYPT_COST must be between 4 and 31"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
