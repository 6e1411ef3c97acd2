package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Scraper     ScraperConfig   `toml:"scraper"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	LLM         LLMConfig       `toml:"llm"`
	Alerts      AlertsConfig    `toml:"alerts"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// ScraperConfig controls per-domain offer fetching
type ScraperConfig struct {
	UserAgent      string  `toml:"user_agent"`
	RequestTimeout string  `toml:"request_timeout"` // e.g. "30s", per-domain fetch timeout
	MaxConcurrency int     `toml:"max_concurrency"` // parallel domain fetches
	RatePerSecond  float64 `toml:"rate_per_second"` // request rate across all domains
	MaxSites       int     `toml:"max_sites"`       // cap on planned websites per run
}

// ClaudeConfig contains Anthropic Claude API settings
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini API settings
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider identifies which provider serves generation requests
const (
	LLMProviderGemini = "gemini"
	LLMProviderClaude = "claude"
)

type LLMConfig struct {
	DefaultProvider string `toml:"default_provider"` // "gemini" or "claude"
	Enabled         bool   `toml:"enabled"`          // false = rule-based analysis only
}

// AlertsConfig controls alert rule loading and delivery
type AlertsConfig struct {
	RulesDir   string `toml:"rules_dir"`   // Directory containing alert rule files (YAML)
	WebhookURL string `toml:"webhook_url"` // Optional webhook delivery target
}

// SchedulerConfig controls periodic tracked-product price checks
type SchedulerConfig struct {
	Enabled  bool             `toml:"enabled"`
	Schedule string           `toml:"schedule"` // Cron schedule format
	Products []TrackedProduct `toml:"products"`
}

// TrackedProduct is a (model, country) pair checked on the schedule
type TrackedProduct struct {
	Model   string `toml:"model"`
	Country string `toml:"country"`
}

// NewDefaultConfig returns configuration with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/priceagent.db",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout"},
		},
		Scraper: ScraperConfig{
			UserAgent:      "priceagent/1.0",
			RequestTimeout: "30s",
			MaxConcurrency: 4,
			RatePerSecond:  2.0,
			MaxSites:       8,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   4096,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     "2m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
			Enabled:         true,
		},
		Alerts: AlertsConfig{
			RulesDir: "./alerts",
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Schedule: "0 */6 * * *", // every 6 hours
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files; later files
// override earlier files, environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PRICEAGENT_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("PRICEAGENT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PRICEAGENT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("PRICEAGENT_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("PRICEAGENT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("PRICEAGENT_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("PRICEAGENT_LOG_OUTPUT"); output != "" {
		config.Logging.Output = strings.Split(output, ",")
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("PRICEAGENT_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("PRICEAGENT_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if provider := os.Getenv("PRICEAGENT_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}

	if webhook := os.Getenv("PRICEAGENT_ALERT_WEBHOOK_URL"); webhook != "" {
		config.Alerts.WebhookURL = webhook
	}
	if rulesDir := os.Getenv("PRICEAGENT_ALERT_RULES_DIR"); rulesDir != "" {
		config.Alerts.RulesDir = rulesDir
	}
}

// ScrapeTimeout parses the configured per-domain request timeout,
// falling back to 30 seconds on a malformed value.
func (c *ScraperConfig) ScrapeTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// IsProduction returns true when running with production environment settings
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
