package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "BLOG_SCRAPER_CONFIG"
	databaseEnv   = "BLOG_SCRAPER_DB"
	logLevelEnv   = "BLOG_SCRAPER_LOG_LEVEL"
	workersEnv    = "BLOG_SCRAPER_WORKERS"
	userAgentEnv  = "BLOG_SCRAPER_USER_AGENT"

	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Logging  LoggingConfig  `yaml:"logging"`
	Sources  []SourceConfig `yaml:"sources"`
}

// DatabaseConfig points at the SQLite file holding the posts table.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// HTTPConfig tunes outbound requests.
type HTTPConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	UserAgent       string        `yaml:"userAgent"`
	RequestInterval time.Duration `yaml:"requestInterval"`
}

// ScrapeConfig holds defaults for the scrape command.
type ScrapeConfig struct {
	Workers int `yaml:"workers"`
	Limit   int `yaml:"limit"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SourceConfig overrides the endpoints of a built-in source.
type SourceConfig struct {
	Key      string `yaml:"key"`
	BaseURL  string `yaml:"baseUrl"`
	FeedURL  string `yaml:"feedUrl"`
	Disabled bool   `yaml:"disabled"`
}

// Load reads an optional .env file, then the YAML file at path (or
// $BLOG_SCRAPER_CONFIG), merges it over the defaults and applies
// environment overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		fileCfg, err := Parse(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database path must be set")
	}
	if c.Scrape.Workers < 1 {
		return fmt.Errorf("scrape workers must be at least 1, got %d", c.Scrape.Workers)
	}
	if c.Scrape.Limit < 0 {
		return fmt.Errorf("scrape limit must not be negative, got %d", c.Scrape.Limit)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTP.Timeout)
	}
	for i, src := range c.Sources {
		if strings.TrimSpace(src.Key) == "" {
			return fmt.Errorf("sources[%d]: key must be set", i)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(databaseEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(userAgentEnv); v != "" {
		c.HTTP.UserAgent = v
	}

	if v := os.Getenv(workersEnv); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", workersEnv, err)
		}
		c.Scrape.Workers = workers
	}

	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}

	if override.HTTP.Timeout != 0 {
		base.HTTP.Timeout = override.HTTP.Timeout
	}
	if override.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = override.HTTP.UserAgent
	}
	if override.HTTP.RequestInterval != 0 {
		base.HTTP.RequestInterval = override.HTTP.RequestInterval
	}

	if override.Scrape.Workers != 0 {
		base.Scrape.Workers = override.Scrape.Workers
	}
	if override.Scrape.Limit != 0 {
		base.Scrape.Limit = override.Scrape.Limit
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: "blog_posts.db"},
		HTTP: HTTPConfig{
			Timeout:         10 * time.Second,
			UserAgent:       defaultUserAgent,
			RequestInterval: 500 * time.Millisecond,
		},
		Scrape:  ScrapeConfig{Workers: 4},
		Logging: LoggingConfig{Level: "info"},
	}
}
