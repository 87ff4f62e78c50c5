package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "NEWS_HARVEST_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Websites      []WebsiteProfile   `yaml:"websites"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// FetchConfig bounds retrieval work. Durations are expressed in seconds to
// keep the YAML plain.
type FetchConfig struct {
	UserAgent            string `yaml:"userAgent"`
	HTTPTimeoutSeconds   int    `yaml:"httpTimeoutSeconds"`
	RenderTimeoutSeconds int    `yaml:"renderTimeoutSeconds"`
	SourceTimeoutSeconds int    `yaml:"sourceTimeoutSeconds"`
	HostDelaySeconds     int    `yaml:"hostDelaySeconds"`
	MaxConcurrentSources int    `yaml:"maxConcurrentSources"`
	MaxBrowserSessions   int    `yaml:"maxBrowserSessions"`
	MaxArticlesDefault   int    `yaml:"maxArticlesDefault"`
}

// HTTPTimeout is the per-request limit for lightweight fetches.
func (f FetchConfig) HTTPTimeout() time.Duration {
	return time.Duration(f.HTTPTimeoutSeconds) * time.Second
}

// RenderTimeout is the per-navigation limit for rendered fetches.
func (f FetchConfig) RenderTimeout() time.Duration {
	return time.Duration(f.RenderTimeoutSeconds) * time.Second
}

// SourceTimeout is the overall limit for one source's attempt.
func (f FetchConfig) SourceTimeout() time.Duration {
	return time.Duration(f.SourceTimeoutSeconds) * time.Second
}

// HostDelay is the politeness interval between hits on one host.
func (f FetchConfig) HostDelay() time.Duration {
	return time.Duration(f.HostDelaySeconds) * time.Second
}

// SchedulerConfig defines recurring runs; zero interval means run-once.
type SchedulerConfig struct {
	IntervalMinutes int `yaml:"intervalMinutes"`
}

// Interval resolves the configured run cadence.
func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// WebsiteProfile is the static definition of one website's scraping rules.
type WebsiteProfile struct {
	ID                       string   `yaml:"id"`
	ArticleSelector          string   `yaml:"articleSelector"`
	TitleSelector            string   `yaml:"titleSelector"`
	URLSelector              string   `yaml:"urlSelector"`
	DateSelector             string   `yaml:"dateSelector"`
	DescriptionSelector      string   `yaml:"descriptionSelector"`
	TitleCleanPrefixes       []string `yaml:"titleCleanPrefixes"`
	TitleCleanPatterns       []string `yaml:"titleCleanPatterns"`
	MaxArticles              int      `yaml:"maxArticles"`
	SkipArticlesWithoutDates bool     `yaml:"skipArticlesWithoutDates"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Fetch: FetchConfig{
			UserAgent:            "NewsHarvest/1.0",
			HTTPTimeoutSeconds:   20,
			RenderTimeoutSeconds: 45,
			SourceTimeoutSeconds: 120,
			HostDelaySeconds:     2,
			MaxConcurrentSources: 4,
			MaxBrowserSessions:   2,
			MaxArticlesDefault:   25,
		},
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.HTTPTimeoutSeconds > 0 {
		base.Fetch.HTTPTimeoutSeconds = override.Fetch.HTTPTimeoutSeconds
	}
	if override.Fetch.RenderTimeoutSeconds > 0 {
		base.Fetch.RenderTimeoutSeconds = override.Fetch.RenderTimeoutSeconds
	}
	if override.Fetch.SourceTimeoutSeconds > 0 {
		base.Fetch.SourceTimeoutSeconds = override.Fetch.SourceTimeoutSeconds
	}
	if override.Fetch.HostDelaySeconds > 0 {
		base.Fetch.HostDelaySeconds = override.Fetch.HostDelaySeconds
	}
	if override.Fetch.MaxConcurrentSources > 0 {
		base.Fetch.MaxConcurrentSources = override.Fetch.MaxConcurrentSources
	}
	if override.Fetch.MaxBrowserSessions > 0 {
		base.Fetch.MaxBrowserSessions = override.Fetch.MaxBrowserSessions
	}
	if override.Fetch.MaxArticlesDefault > 0 {
		base.Fetch.MaxArticlesDefault = override.Fetch.MaxArticlesDefault
	}

	if override.Scheduler.IntervalMinutes > 0 {
		base.Scheduler = override.Scheduler
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Websites) > 0 {
		base.Websites = override.Websites
	}

	return base
}
