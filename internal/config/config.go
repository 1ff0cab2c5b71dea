package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither the --config flag nor CONFIG_PATH names a file.
const DefaultPath = "configs/config.yaml"

// Narrative providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Growth forecasters.
const (
	ForecasterTrend  = "trend"
	ForecasterRandom = "random"
	ForecasterFixed  = "fixed"
)

// unsetRetries marks narrative.max_retries as absent from the file, so an explicit 0 survives defaults.
const unsetRetries = -1

// Cache backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config holds all application configuration.
type Config struct {
	Narrative struct {
		Provider       string `yaml:"provider" validate:"oneof=openai gemini"`
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url" validate:"omitempty,url"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gt=0"`
		MaxRetries     int    `yaml:"max_retries" validate:"gte=0,lte=5"`
	} `yaml:"narrative"`
	Cache struct {
		Backend    string `yaml:"backend" validate:"oneof=memory file sqlite badger"`
		TTLSeconds int    `yaml:"ttl_seconds" validate:"gt=0"`
		Dir        string `yaml:"dir"`
	} `yaml:"cache"`
	Source struct {
		InvestorsFile string `yaml:"investors_file"`
		MongoURL      string `yaml:"mongo_url"`
		MongoDatabase string `yaml:"mongo_database"`
		PostgresURL   string `yaml:"postgres_url"`
	} `yaml:"source"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" validate:"required"`
	} `yaml:"database"`
	Metrics struct {
		Forecaster       string  `yaml:"forecaster" validate:"oneof=trend random fixed"`
		ForecastSeed     int64   `yaml:"forecast_seed"`
		FixedGrowthPct   float64 `yaml:"fixed_growth_pct"`
		ForecastMonths   int     `yaml:"forecast_months" validate:"gte=0,lte=36"`
		AMCConcentration float64 `yaml:"amc_concentration" validate:"gte=0,lte=1"`
		MissedSIPDays    int     `yaml:"missed_sip_days" validate:"gte=0"`
	} `yaml:"metrics"` // zero cutoffs keep the built-in values
	Bulk struct {
		Concurrency  int `yaml:"concurrency" validate:"gte=1,lte=64"`
		DefaultLimit int `yaml:"default_limit" validate:"gte=1"`
	} `yaml:"bulk"`
	Schedule struct {
		BulkCron  string `yaml:"bulk_cron" validate:"required"`
		PurgeCron string `yaml:"purge_cron" validate:"required"`
		BulkLimit int    `yaml:"bulk_limit" validate:"gte=1"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Path resolves the config file location from the flag value, CONFIG_PATH, then DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Narrative.MaxRetries = unsetRetries

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Narrative.Provider, "NARRATIVE_PROVIDER")
	// First key found wins.
	for _, key := range []string{"NARRATIVE_API_KEY", "OPENAI_API_KEY", "EMERGENT_LLM_KEY", "GEMINI_API_KEY"} {
		if v := os.Getenv(key); v != "" {
			c.Narrative.APIKey = v
			break
		}
	}
	setString(&c.Narrative.BaseURL, "NARRATIVE_BASE_URL")
	setString(&c.Narrative.Model, "AI_MODEL")
	setInt(&c.Narrative.TimeoutSeconds, "NARRATIVE_TIMEOUT_SECONDS")

	setString(&c.Cache.Backend, "CACHE_BACKEND")
	setInt(&c.Cache.TTLSeconds, "CACHE_TTL_SECONDS")
	setString(&c.Cache.Dir, "CACHE_DIR")

	setString(&c.Source.InvestorsFile, "INVESTORS_FILE")
	setString(&c.Source.MongoURL, "MONGO_URL")
	setString(&c.Source.MongoDatabase, "DB_NAME")
	setString(&c.Source.PostgresURL, "DATABASE_URL")

	setString(&c.Metrics.Forecaster, "FORECASTER")

	setString(&c.Database.SQLitePath, "SQLITE_PATH")
	setInt(&c.Bulk.Concurrency, "BULK_CONCURRENCY")
	setString(&c.Schedule.BulkCron, "CRON_BULK")
	setString(&c.Schedule.PurgeCron, "CRON_PURGE")

	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.Proxy, "HTTPS_PROXY")
}

func (c *Config) applyDefaults() {
	if c.Narrative.Provider == "" {
		c.Narrative.Provider = ProviderOpenAI
	}
	if c.Narrative.BaseURL == "" && c.Narrative.Provider == ProviderOpenAI {
		c.Narrative.BaseURL = "https://api.openai.com/v1"
	}
	if c.Narrative.Model == "" {
		c.Narrative.Model = "gpt-4o-mini"
		if c.Narrative.Provider == ProviderGemini {
			c.Narrative.Model = "gemini-2.0-flash"
		}
	}
	if c.Narrative.TimeoutSeconds == 0 {
		c.Narrative.TimeoutSeconds = 30
	}
	if c.Narrative.MaxRetries == unsetRetries {
		c.Narrative.MaxRetries = 1
	}
	if c.Metrics.Forecaster == "" {
		c.Metrics.Forecaster = ForecasterTrend
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendSQLite
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 86400
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "data/cache"
	}
	if c.Source.InvestorsFile == "" {
		c.Source.InvestorsFile = "data/investors.json"
	}
	if c.Source.MongoDatabase == "" {
		c.Source.MongoDatabase = "portfolio_pulse"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/portfolio_pulse.db"
	}
	if c.Bulk.Concurrency == 0 {
		c.Bulk.Concurrency = 4
	}
	if c.Bulk.DefaultLimit == 0 {
		c.Bulk.DefaultLimit = 10
	}
	if c.Schedule.BulkCron == "" {
		c.Schedule.BulkCron = "0 0 2 * * *"
	}
	if c.Schedule.PurgeCron == "" {
		c.Schedule.PurgeCron = "0 30 3 * * *"
	}
	if c.Schedule.BulkLimit == 0 {
		c.Schedule.BulkLimit = 1000
	}
}

// Validate checks field constraints and the combinations they cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Narrative.Provider == ProviderGemini && !strings.HasPrefix(c.Narrative.Model, "gemini") {
		return fmt.Errorf("narrative.model %q is not a Gemini model; unset it or pick a gemini-* model", c.Narrative.Model)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Cache.Backend != BackendMemory && c.Cache.Backend != BackendSQLite && c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required for the %s backend", c.Cache.Backend)
	}
	if c.Source.MongoURL == "" && c.Source.PostgresURL == "" && c.Source.InvestorsFile == "" {
		return fmt.Errorf("one of source.mongo_url, source.postgres_url or source.investors_file is required")
	}
	return nil
}

// NotifyEnabled reports whether Telegram delivery is configured.
func (c *Config) NotifyEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
