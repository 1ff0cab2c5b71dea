package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var envKeys = []string{
	"NARRATIVE_PROVIDER", "NARRATIVE_API_KEY", "OPENAI_API_KEY", "EMERGENT_LLM_KEY", "GEMINI_API_KEY",
	"NARRATIVE_BASE_URL", "AI_MODEL", "NARRATIVE_TIMEOUT_SECONDS", "CACHE_BACKEND", "CACHE_TTL_SECONDS",
	"CACHE_DIR", "INVESTORS_FILE", "MONGO_URL", "DB_NAME", "DATABASE_URL", "SQLITE_PATH", "BULK_CONCURRENCY",
	"CRON_BULK", "CRON_PURGE", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY", "CONFIG_PATH", "FORECASTER",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Narrative.Provider != ProviderOpenAI || cfg.Narrative.Model != "gpt-4o-mini" {
		t.Errorf("narrative = %+v", cfg.Narrative)
	}
	if cfg.Cache.Backend != BackendSQLite || cfg.Cache.TTLSeconds != 86400 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Bulk.Concurrency != 4 || cfg.Bulk.DefaultLimit != 10 || cfg.Schedule.BulkLimit != 1000 {
		t.Errorf("bulk = %+v schedule = %+v", cfg.Bulk, cfg.Schedule)
	}
	if cfg.Schedule.BulkCron != "0 0 2 * * *" || cfg.Schedule.PurgeCron != "0 30 3 * * *" {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
	if cfg.NotifyEnabled() {
		t.Error("notify must be off without telegram credentials")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
narrative:
  provider: gemini
  api_key: from-file
cache:
  backend: badger
  ttl_seconds: 60
bulk:
  concurrency: 2
`)
	t.Setenv("CACHE_TTL_SECONDS", "120")
	t.Setenv("BULK_CONCURRENCY", "not-a-number")
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Narrative.Model != "gemini-2.0-flash" || cfg.Narrative.BaseURL != "" {
		t.Errorf("gemini defaults = %+v", cfg.Narrative)
	}
	if cfg.Narrative.APIKey != "from-env" {
		t.Errorf("api key = %q, want env override", cfg.Narrative.APIKey)
	}
	if cfg.Cache.Backend != BackendBadger || cfg.Cache.TTLSeconds != 120 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Bulk.Concurrency != 2 {
		t.Errorf("concurrency = %d, unparseable env must be ignored", cfg.Bulk.Concurrency)
	}
}

func TestLoad_ShippedConfigSwitchesToGemini(t *testing.T) {
	clearEnv(t)
	t.Setenv("NARRATIVE_PROVIDER", ProviderGemini)
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Narrative.Provider != ProviderGemini || cfg.Narrative.Model != "gemini-2.0-flash" {
		t.Errorf("provider=%s model=%s, want gemini defaults", cfg.Narrative.Provider, cfg.Narrative.Model)
	}
	if cfg.Metrics.Forecaster != ForecasterTrend || cfg.Narrative.MaxRetries != 1 {
		t.Errorf("metrics=%+v max_retries=%d", cfg.Metrics, cfg.Narrative.MaxRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("shipped config must validate for gemini: %v", err)
	}
}

func TestValidate_GeminiRejectsOpenAIModel(t *testing.T) {
	clearEnv(t)
	t.Setenv("NARRATIVE_PROVIDER", ProviderGemini)
	t.Setenv("AI_MODEL", "gpt-4o-mini")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "not a Gemini model") {
		t.Errorf("err = %v, want Gemini model rejection", err)
	}
}

func TestLoad_MaxRetries(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"absent", "narrative:\n  provider: openai\n", 1},
		{"explicit zero", "narrative:\n  max_retries: 0\n", 0},
		{"explicit three", "narrative:\n  max_retries: 3\n", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load(writeConfig(t, tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Narrative.MaxRetries != tt.want {
				t.Errorf("max_retries = %d, want %d", cfg.Narrative.MaxRetries, tt.want)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("validate: %v", err)
			}
		})
	}
}

func TestLoad_APIKeyPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "openai")
	t.Setenv("EMERGENT_LLM_KEY", "emergent")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Narrative.APIKey != "openai" {
		t.Errorf("api key = %q, want openai", cfg.Narrative.APIKey)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	if _, err := Load(writeConfig(t, "narrative: [unterminated")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown provider", func(c *Config) { c.Narrative.Provider = "claude" }, "Provider"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "redis" }, "Backend"},
		{"zero concurrency", func(c *Config) { c.Bulk.Concurrency = 0 }, "Concurrency"},
		{"bad base url", func(c *Config) { c.Narrative.BaseURL = "not a url" }, "BaseURL"},
		{"telegram half set", func(c *Config) { c.Telegram.BotToken = "token" }, "set together"},
		{"file backend without dir", func(c *Config) { c.Cache.Backend = BackendFile; c.Cache.Dir = "" }, "cache.dir"},
		{"no source", func(c *Config) { c.Source.InvestorsFile = "" }, "source"},
		{"unknown forecaster", func(c *Config) { c.Metrics.Forecaster = "oracle" }, "Forecaster"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	if got := Path(""); got != DefaultPath {
		t.Errorf("Path() = %s", got)
	}
	t.Setenv("CONFIG_PATH", "/etc/pulse.yaml")
	if got := Path(""); got != "/etc/pulse.yaml" {
		t.Errorf("Path() = %s", got)
	}
	if got := Path("flag.yaml"); got != "flag.yaml" {
		t.Errorf("Path(flag) = %s", got)
	}
}
