package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"nightlock/internal/core"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "NIGHTLOCK"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config represents the bot configuration
type Config struct {
	// Telegram
	BotToken    string `envconfig:"BOT_TOKEN" required:"true"`
	ChatID      int64  `envconfig:"CHAT_ID" required:"true"`
	AdminID     int64  `envconfig:"ADMIN_ID" required:"true"`
	PollTimeout int    `envconfig:"POLL_TIMEOUT" default:"60"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`

	// Webhook mode is enabled when WebhookURL is set
	WebhookURL    string `envconfig:"WEBHOOK_URL"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`

	// Schedule
	Timezone   string        `envconfig:"TIMEZONE" default:"Europe/Istanbul"`
	LockAt     string        `envconfig:"LOCK_AT" default:"23:00"`
	UnlockAt   string        `envconfig:"UNLOCK_AT" default:"07:00"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"10m"`

	// HTTP server for health, metrics and webhook
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port int    `envconfig:"PORT" default:"8080"`
}

// Load reads configuration from the environment. When envFile is set and
// exists, its variables are loaded first; variables already set win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("%w: bot token is required", ErrInvalidConfig)
	}

	if c.ChatID == 0 {
		return fmt.Errorf("%w: chat id is required", ErrInvalidConfig)
	}

	if c.AdminID <= 0 {
		return fmt.Errorf("%w: admin id must be a positive user id", ErrInvalidConfig)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid server port", ErrInvalidConfig)
	}

	if c.PollTimeout < 0 {
		return fmt.Errorf("%w: poll timeout cannot be negative", ErrInvalidConfig)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: session ttl must be positive", ErrInvalidConfig)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if _, err := c.DefaultSchedule(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Host == "" {
		c.Host = "0.0.0.0"
	}

	return nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

// DefaultSchedule parses LockAt and UnlockAt into the schedule used at startup
func (c *Config) DefaultSchedule() (core.ScheduleConfig, error) {
	lockHour, lockMinute, err := core.ParseClock(c.LockAt)
	if err != nil {
		return core.ScheduleConfig{}, fmt.Errorf("lock time: %w", err)
	}
	unlockHour, unlockMinute, err := core.ParseClock(c.UnlockAt)
	if err != nil {
		return core.ScheduleConfig{}, fmt.Errorf("unlock time: %w", err)
	}
	return core.ScheduleConfig{
		LockHour:     lockHour,
		LockMinute:   lockMinute,
		UnlockHour:   unlockHour,
		UnlockMinute: unlockMinute,
	}, nil
}

// IsAdmin checks if a user ID is the configured administrator
func (c *Config) IsAdmin(userID int64) bool {
	return userID == c.AdminID
}

// WebhookMode reports whether updates arrive by webhook instead of polling
func (c *Config) WebhookMode() bool {
	return c.WebhookURL != ""
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
