// Package config loads the server configuration: defaults, then an optional
// YAML file, then SPARKBYTES_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // campus zone lookups work without system tzdata

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendRTDB     = "rtdb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SPARKBYTES_"

// Config is the server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" env:"LISTEN"`
	// Environment is "production" or "development". It picks the log
	// encoder.
	Environment string `yaml:"environment" env:"ENV"`
	// BaseURL is the public address of the app, used in feed links.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`

	// Backend is one of rtdb, postgres or memory.
	Backend string `yaml:"backend" env:"BACKEND"`
	// FirebaseProject is the Firebase project id.
	FirebaseProject string `yaml:"firebase_project" env:"FIREBASE_PROJECT"`
	// DatabaseURL is the Realtime Database URL, eg
	// https://sparkbytes-default-rtdb.firebaseio.com
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	// CredentialsFile is a Google service account JSON file. If empty the
	// application default credentials are used.
	CredentialsFile string `yaml:"credentials_file" env:"CREDENTIALS_FILE"`
	PostgresURL     string `yaml:"postgres_url" env:"POSTGRES_URL"`

	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`

	// Domain is the email domain users must sign in with.
	Domain string `yaml:"domain" env:"DOMAIN"`
	// Timezone is the campus IANA time zone. Event dates entered without an
	// offset are read in it.
	Timezone string `yaml:"timezone" env:"TIMEZONE"`
	// GuardWait bounds how long page routes wait for the session.
	GuardWait time.Duration `yaml:"guard_wait" env:"GUARD_WAIT"`
	// AuditCron schedules the consistency audit. Empty disables it.
	AuditCron string `yaml:"audit_cron" env:"AUDIT_CRON"`

	// DevSecret switches authentication to locally minted HS256 tokens.
	// Not allowed in production.
	DevSecret string `yaml:"dev_secret" env:"DEV_SECRET"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Listen:      ":8080",
		Environment: "development",
		Backend:     BackendMemory,
		CORSOrigins: []string{"http://localhost:3000"},
		Domain:      "bu.edu",
		Timezone:    "America/New_York",
		GuardWait:   3 * time.Second,
		AuditCron:   "@hourly",
	}
}

// Load reads the configuration. path may be empty to skip the YAML file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings fit together.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRTDB:
		if c.DatabaseURL == "" {
			return fmt.Errorf("backend %s needs database_url", c.Backend)
		}
	case BackendPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("backend %s needs postgres_url", c.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.Production() && c.DevSecret != "" {
		return fmt.Errorf("dev_secret can't be used in production")
	}
	if c.DevSecret == "" && c.FirebaseProject == "" && c.Backend != BackendMemory {
		return fmt.Errorf("firebase_project is required unless dev_secret is set")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Production reports whether this is a production deployment.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// Location loads the campus time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
