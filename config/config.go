package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// WhatsApp configuration
	// PairPhoneNumber, when set, requests a pairing code for that number
	// instead of printing a QR code on first login.
	PairPhoneNumber string `envconfig:"PAIR_PHONE_NUMBER"`

	// Bot configuration
	CommandPrefix string `envconfig:"COMMAND_PREFIX" default:"!"`
	MaxInflight   int    `envconfig:"MAX_INFLIGHT" default:"64"`

	// Admin JIDs (comma separated WhatsApp user IDs) may run eco admin
	// commands. The owner may additionally run ecoreset.
	AdminJIDsRaw string   `envconfig:"ADMIN_JIDS"`
	AdminJIDs    []string `envconfig:"-"`
	OwnerJID     string   `envconfig:"OWNER_JID"`

	// Optional bcrypt hash; when set, ecoreset additionally requires the
	// owner password as a trailing argument.
	OwnerPasswordHash string `envconfig:"OWNER_PASSWORD_HASH"`

	// Command lock manager
	LockStaleAfter time.Duration `envconfig:"LOCK_STALE_AFTER" default:"2m"`

	// Per-operation timeout applied at the dispatcher
	OperationTimeout time.Duration `envconfig:"OPERATION_TIMEOUT" default:"15s"`

	// Rate limiting
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// Health server
	HealthAddr string `envconfig:"HEALTH_ADDR" default:":8080"`

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	for _, jid := range strings.Split(cfg.AdminJIDsRaw, ",") {
		jid = strings.TrimSpace(jid)
		if jid != "" {
			cfg.AdminJIDs = append(cfg.AdminJIDs, jid)
		}
	}
	// The owner is always an admin.
	if cfg.OwnerJID != "" && !cfg.IsAdmin(cfg.OwnerJID) {
		cfg.AdminJIDs = append(cfg.AdminJIDs, cfg.OwnerJID)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Environment != "test" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MaxInflight <= 0 {
		return fmt.Errorf("MAX_INFLIGHT must be > 0")
	}
	if c.CommandPrefix == "" {
		return fmt.Errorf("COMMAND_PREFIX must not be empty")
	}
	if c.LockStaleAfter <= 0 {
		return fmt.Errorf("LOCK_STALE_AFTER must be > 0")
	}
	return nil
}

// IsAdmin reports whether the given JID may run admin economy commands.
func (c *Config) IsAdmin(jid string) bool {
	for _, a := range c.AdminJIDs {
		if a == jid {
			return true
		}
	}
	return false
}

// IsOwner reports whether the given JID is the bot owner.
func (c *Config) IsOwner(jid string) bool {
	return c.OwnerJID != "" && c.OwnerJID == jid
}
