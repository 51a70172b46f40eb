package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/outlet-payroll/payroll"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Payroll  PayrollConfig
	Provider ProviderConfig
	Sync     SyncConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Path string
}

// PayrollConfig holds the engine parameters
type PayrollConfig struct {
	OvertimeThreshold time.Duration
	Timezone          string
}

// ProviderConfig points at the upstream shift report API
type ProviderConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type SyncConfig struct {
	Enabled      bool
	Interval     time.Duration
	LookbackDays int
	Outlets      []OutletRef
}

// OutletRef is one brand:outlet pair to sync.
type OutletRef struct {
	BrandID  string
	OutletID string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.Database = DatabaseConfig{
		Path: getEnv("DB_PATH", "payroll.db"),
	}

	// Payroll configuration
	threshold, err := time.ParseDuration(getEnv("OVERTIME_THRESHOLD", payroll.DefaultOvertimeThreshold.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid OVERTIME_THRESHOLD: %w", err)
	}

	config.Payroll = PayrollConfig{
		OvertimeThreshold: threshold,
		Timezone:          getEnv("PAYROLL_TIMEZONE", "UTC"),
	}

	// Provider configuration
	providerTimeout, err := time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "25s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}

	config.Provider = ProviderConfig{
		BaseURL: getEnv("PROVIDER_BASE_URL", ""),
		Token:   getEnv("PROVIDER_TOKEN", ""),
		Timeout: providerTimeout,
	}

	// Sync configuration
	syncEnabled, err := strconv.ParseBool(getEnv("SYNC_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_ENABLED: %w", err)
	}
	syncInterval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	lookback, err := strconv.Atoi(getEnv("SYNC_LOOKBACK_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_LOOKBACK_DAYS: %w", err)
	}
	outlets, err := parseOutlets(getEnvSlice("SYNC_OUTLETS"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_OUTLETS: %w", err)
	}

	config.Sync = SyncConfig{
		Enabled:      syncEnabled,
		Interval:     syncInterval,
		LookbackDays: lookback,
		Outlets:      outlets,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Payroll.OvertimeThreshold < 0 {
		return fmt.Errorf("OVERTIME_THRESHOLD must not be negative")
	}
	if _, err := payroll.LoadZone(c.Payroll.Timezone); err != nil {
		return fmt.Errorf("PAYROLL_TIMEZONE: %w", err)
	}
	if c.Sync.Enabled {
		if c.Provider.BaseURL == "" {
			return fmt.Errorf("PROVIDER_BASE_URL is required when SYNC_ENABLED")
		}
		if len(c.Sync.Outlets) == 0 {
			return fmt.Errorf("SYNC_OUTLETS is required when SYNC_ENABLED")
		}
		if c.Sync.Interval <= 0 {
			return fmt.Errorf("SYNC_INTERVAL must be positive")
		}
		if c.Sync.LookbackDays < 1 {
			return fmt.Errorf("SYNC_LOOKBACK_DAYS must be at least 1")
		}
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func parseOutlets(values []string) ([]OutletRef, error) {
	outlets := make([]OutletRef, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		brand, outlet, ok := strings.Cut(v, ":")
		if !ok || brand == "" || outlet == "" {
			return nil, fmt.Errorf("%q is not brand:outlet", v)
		}
		outlets = append(outlets, OutletRef{BrandID: brand, OutletID: outlet})
	}
	return outlets, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}
