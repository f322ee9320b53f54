// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string          `toml:"environment"`
	Storage     StorageConfig   `toml:"storage"`
	Feed        FeedConfig      `toml:"feed"`
	Mail        MailConfig      `toml:"mail"`
	Report      ReportConfig    `toml:"report"`
	Synthesis   SynthesisConfig `toml:"synthesis"`
	Logging     LoggingConfig   `toml:"logging"`
}

// StorageConfig holds paths for the two storage areas: the holdings workbook
// (read at cycle start, written at cycle end) and the data directory for
// JSON report archives and chart artifacts.
type StorageConfig struct {
	WorkbookPath string `toml:"workbook_path"` // input holdings workbook
	OutputPath   string `toml:"output_path"`   // updated workbook written each cycle
	DataPath     string `toml:"data_path"`     // reports/ and charts/ live here
	Versions     int    `toml:"versions"`      // report archive versions to keep
}

// FeedConfig holds market data feed configuration
type FeedConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	Exchange  string `toml:"exchange"` // default exchange suffix for bare symbols (e.g. "NSE")
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FeedConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// MailConfig holds SMTP transport configuration. Password resolution prefers
// the FOLIO_MAIL_PASSWORD environment variable over the config file.
type MailConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Sender   string `toml:"sender"`
	Receiver string `toml:"receiver"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Configured reports whether the transport has enough settings to attempt delivery.
func (c *MailConfig) Configured() bool {
	return c.Host != "" && c.Sender != "" && c.Receiver != ""
}

// ReportConfig holds reporting behavior configuration
type ReportConfig struct {
	AlertThresholdPct float64 `toml:"alert_threshold_percent"` // alert when |P&L %| exceeds this
	Schedule          string  `toml:"schedule"`                // cron expression for the schedule verb
	Charts            bool    `toml:"charts"`                  // render chart artifacts
}

// SynthesisConfig holds the seeded random-walk parameters used to backfill a
// performance history when none has been persisted yet. The defaults mirror
// the documented synthesis constants: 0.08% daily drift, 1.5% daily volatility.
type SynthesisConfig struct {
	Seed            int64   `toml:"seed"`
	DailyDrift      float64 `toml:"daily_drift"`
	DailyVolatility float64 `toml:"daily_volatility"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			WorkbookPath: "sample_portfolio.xlsx",
			OutputPath:   "updated_portfolio.xlsx",
			DataPath:     "data",
			Versions:     3,
		},
		Feed: FeedConfig{
			BaseURL:   "https://eodhd.com/api",
			Exchange:  "NSE",
			RateLimit: 10,
			Timeout:   "30s",
		},
		Mail: MailConfig{
			Port: 465,
		},
		Report: ReportConfig{
			AlertThresholdPct: 5.0,
			Schedule:          "0 5 * * *", // 5:00 AM daily
			Charts:            true,
		},
		Synthesis: SynthesisConfig{
			Seed:            42,
			DailyDrift:      0.0008,
			DailyVolatility: 0.015,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Outputs:    []string{"console", "file"},
			FilePath:   "./logs/folio.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if config.Report.AlertThresholdPct < 0 {
		return nil, fmt.Errorf("alert_threshold_percent must be non-negative, got %v", config.Report.AlertThresholdPct)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FOLIO_WORKBOOK"); path != "" {
		config.Storage.WorkbookPath = path
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Storage.DataPath = path
	}

	if key := os.Getenv("FOLIO_EODHD_API_KEY"); key != "" {
		config.Feed.APIKey = key
	} else if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.Feed.APIKey = key
	}

	if v := os.Getenv("FOLIO_MAIL_PASSWORD"); v != "" {
		config.Mail.Password = v
	}
	if v := os.Getenv("FOLIO_MAIL_SENDER"); v != "" {
		config.Mail.Sender = v
	}
	if v := os.Getenv("FOLIO_MAIL_RECEIVER"); v != "" {
		config.Mail.Receiver = v
	}

	if v := os.Getenv("FOLIO_ALERT_THRESHOLD"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			config.Report.AlertThresholdPct = t
		}
	}

	if v := os.Getenv("FOLIO_SCHEDULE"); v != "" {
		config.Report.Schedule = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
