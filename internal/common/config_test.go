package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Report.AlertThresholdPct != 5.0 {
		t.Errorf("alert threshold: got %v, want 5", cfg.Report.AlertThresholdPct)
	}
	if cfg.Report.Schedule != "0 5 * * *" {
		t.Errorf("schedule: got %q", cfg.Report.Schedule)
	}
	if cfg.Synthesis.Seed != 42 {
		t.Errorf("seed: got %d, want 42", cfg.Synthesis.Seed)
	}
	if cfg.Synthesis.DailyDrift != 0.0008 || cfg.Synthesis.DailyVolatility != 0.015 {
		t.Errorf("synthesis params: got %v/%v", cfg.Synthesis.DailyDrift, cfg.Synthesis.DailyVolatility)
	}
	if cfg.Feed.Exchange != "NSE" {
		t.Errorf("exchange: got %q, want NSE", cfg.Feed.Exchange)
	}
	if cfg.IsProduction() {
		t.Error("default config should not be production")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Report.AlertThresholdPct != 5.0 {
		t.Errorf("expected defaults, got threshold %v", cfg.Report.AlertThresholdPct)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.toml")
	content := `
environment = "production"

[storage]
workbook_path = "my_portfolio.xlsx"

[report]
alert_threshold_percent = 7.5

[synthesis]
seed = 1234
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("environment override not applied")
	}
	if cfg.Storage.WorkbookPath != "my_portfolio.xlsx" {
		t.Errorf("workbook: got %q", cfg.Storage.WorkbookPath)
	}
	if cfg.Report.AlertThresholdPct != 7.5 {
		t.Errorf("threshold: got %v, want 7.5", cfg.Report.AlertThresholdPct)
	}
	if cfg.Synthesis.Seed != 1234 {
		t.Errorf("seed: got %d, want 1234", cfg.Synthesis.Seed)
	}
	// Untouched sections keep their defaults.
	if cfg.Report.Schedule != "0 5 * * *" {
		t.Errorf("schedule should keep default, got %q", cfg.Report.Schedule)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_ENV", "production")
	t.Setenv("FOLIO_WORKBOOK", "env_portfolio.xlsx")
	t.Setenv("FOLIO_EODHD_API_KEY", "env-key")
	t.Setenv("FOLIO_ALERT_THRESHOLD", "12.5")
	t.Setenv("FOLIO_MAIL_PASSWORD", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("FOLIO_ENV not applied")
	}
	if cfg.Storage.WorkbookPath != "env_portfolio.xlsx" {
		t.Errorf("workbook: got %q", cfg.Storage.WorkbookPath)
	}
	if cfg.Feed.APIKey != "env-key" {
		t.Errorf("api key: got %q", cfg.Feed.APIKey)
	}
	if cfg.Report.AlertThresholdPct != 12.5 {
		t.Errorf("threshold: got %v, want 12.5", cfg.Report.AlertThresholdPct)
	}
	if cfg.Mail.Password != "secret" {
		t.Error("mail password not applied from env")
	}
}

func TestLoadConfig_RejectsNegativeThreshold(t *testing.T) {
	t.Setenv("FOLIO_ALERT_THRESHOLD", "-1")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for negative alert threshold")
	}
}

func TestMailConfig_Configured(t *testing.T) {
	tests := []struct {
		name string
		cfg  MailConfig
		want bool
	}{
		{"complete", MailConfig{Host: "smtp.example.com", Sender: "a@b.c", Receiver: "d@e.f"}, true},
		{"no host", MailConfig{Sender: "a@b.c", Receiver: "d@e.f"}, false},
		{"no sender", MailConfig{Host: "smtp.example.com", Receiver: "d@e.f"}, false},
		{"no receiver", MailConfig{Host: "smtp.example.com", Sender: "a@b.c"}, false},
		{"empty", MailConfig{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFeedConfig_GetTimeout(t *testing.T) {
	c := FeedConfig{Timeout: "10s"}
	if d := c.GetTimeout(); d.Seconds() != 10 {
		t.Errorf("timeout: got %v, want 10s", d)
	}

	bad := FeedConfig{Timeout: "garbage"}
	if d := bad.GetTimeout(); d.Seconds() != 30 {
		t.Errorf("bad timeout should fall back to 30s, got %v", d)
	}
}
