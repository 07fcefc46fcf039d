package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"grocerytracker/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Scraping   ScrapingConfig   `yaml:"scraping"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Client     ClientConfig     `yaml:"client"`
	Controller ControllerConfig `yaml:"controller"`
	Exports    ExportConfig     `yaml:"exports"`
	Google     GoogleConfig     `yaml:"google"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

type AppConfig struct {
	Name         string `yaml:"name"`
	Environment  string `yaml:"environment"`
	Version      string `yaml:"version"`
	ItemsPerPage int    `yaml:"items_per_page"`
}

type ServerConfig struct {
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type CacheConfig struct {
	// TTLSeconds mirrors CACHE_TIMEOUT.
	TTLSeconds int `yaml:"ttl_seconds"`
}

type ScrapingConfig struct {
	Enabled             bool    `yaml:"enabled"`
	IntervalHours       int     `yaml:"interval_hours"`
	UseDemoData         bool    `yaml:"use_demo_data"`
	RequestDelaySeconds float64 `yaml:"request_delay_seconds"`
	MaxRetries          int     `yaml:"max_retries"`
	CatalogPath         string  `yaml:"catalog_path"`
	UserAgent           string  `yaml:"user_agent"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ClientConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type ControllerConfig struct {
	UpdateTimeoutSeconds    int `yaml:"update_timeout_seconds"`
	TimestampRefreshSeconds int `yaml:"timestamp_refresh_seconds"`
	UpdateCheckSeconds      int `yaml:"update_check_seconds"`
	StatusRefreshSeconds    int `yaml:"status_refresh_seconds"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// Load reads .env (when present), the YAML file at configPath (skipped when empty),
// then applies environment overrides and defaults.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		expandedData := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expandedData, config); err != nil {
			return nil, err
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Default returns the development configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{Name: "grocerytracker", Environment: "development", Version: "dev"},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Database: DatabaseConfig{Path: "grocery_prices.db"},
		Cache:    CacheConfig{TTLSeconds: models.DefaultCacheTTL},
		Scraping: ScrapingConfig{
			Enabled:             true,
			IntervalHours:       models.DefaultScrapeIntervalHours,
			UseDemoData:         true,
			RequestDelaySeconds: 2,
			MaxRetries:          3,
		},
		Logging: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Scraping.IntervalHours <= 0 {
		return errors.New("scraping interval must be positive")
	}
	if c.Scraping.MaxRetries < 0 {
		return errors.New("scraping max_retries must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == 0) {
		return errors.New("telegram requires both bot_token and chat_id")
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if err := envInt("PORT", &c.Server.Port); err != nil {
		return err
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if err := envBool("SCRAPING_ENABLED", &c.Scraping.Enabled); err != nil {
		return err
	}
	if err := envInt("SCRAPING_INTERVAL_HOURS", &c.Scraping.IntervalHours); err != nil {
		return err
	}
	if err := envBool("USE_DEMO_DATA", &c.Scraping.UseDemoData); err != nil {
		return err
	}
	if v := os.Getenv("REQUEST_DELAY_SECONDS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("REQUEST_DELAY_SECONDS: %w", err)
		}
		c.Scraping.RequestDelaySeconds = f
	}
	if err := envInt("MAX_RETRIES", &c.Scraping.MaxRetries); err != nil {
		return err
	}
	if err := envInt("ITEMS_PER_PAGE", &c.App.ItemsPerPage); err != nil {
		return err
	}
	if err := envInt("CACHE_TIMEOUT", &c.Cache.TTLSeconds); err != nil {
		return err
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Address = v
	}
	if v := os.Getenv("TRACKER_URL"); v != "" {
		c.Client.BaseURL = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.App.ItemsPerPage == 0 {
		c.App.ItemsPerPage = 25
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = models.DefaultCacheTTL
	}
	if c.Scraping.IntervalHours == 0 {
		c.Scraping.IntervalHours = models.DefaultScrapeIntervalHours
	}
	if c.Scraping.UserAgent == "" {
		c.Scraping.UserAgent = "grocerytracker/1.0 (+price comparison)"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = fmt.Sprintf("http://127.0.0.1:%d", c.Server.Port)
	}
	if c.Client.TimeoutSeconds == 0 {
		c.Client.TimeoutSeconds = 10
	}
	if c.Controller.UpdateTimeoutSeconds == 0 {
		c.Controller.UpdateTimeoutSeconds = 120
	}
	if c.Controller.TimestampRefreshSeconds == 0 {
		c.Controller.TimestampRefreshSeconds = 60
	}
	if c.Controller.UpdateCheckSeconds == 0 {
		c.Controller.UpdateCheckSeconds = 300
	}
	if c.Controller.StatusRefreshSeconds == 0 {
		c.Controller.StatusRefreshSeconds = 30
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Google.SheetName == "" {
		c.Google.SheetName = "Prices"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
}

// Addr is the listen address of the API server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func (c ScrapingConfig) Interval() time.Duration {
	return time.Duration(c.IntervalHours) * time.Hour
}

func (c ScrapingConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelaySeconds * float64(time.Second))
}

// Mode reports "demo" or "production".
func (c ScrapingConfig) Mode() string {
	if c.UseDemoData {
		return models.ModeDemo
	}
	return models.ModeProduction
}

func envInt(key string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	*dst = strings.EqualFold(v, "true") || v == "1"
	return nil
}
