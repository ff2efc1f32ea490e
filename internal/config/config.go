package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Data      DataConfig      `yaml:"data"`
	Redis     RedisConfig     `yaml:"redis"`
	PDF       PDFConfig       `yaml:"pdf"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// DataConfig locates the legacy flat-file document used as the fallback
// store behind the relational database.
type DataConfig struct {
	File       string `yaml:"file"`
	AutoBackup bool   `yaml:"auto_backup"`
}

// RedisConfig for the optional async notification queue
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PDFConfig controls the CV export renderer chain.
type PDFConfig struct {
	ChromePath      string `yaml:"chrome_path"`      // optional override, otherwise probed on PATH
	WkhtmltopdfPath string `yaml:"wkhtmltopdf_path"` // optional override, otherwise probed on PATH
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

type RateLimitConfig struct {
	ContactRPS   float64 `yaml:"contact_rps"`
	ContactBurst int     `yaml:"contact_burst"`
}

type LogConfig struct {
	Level         string `yaml:"level"`
	RetentionDays int    `yaml:"retention_days"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.overrideFromEnv()
	cfg.applyDefaults()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "academy.db",
		},
		Data: DataConfig{
			File:       "data.json",
			AutoBackup: true,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		PDF: PDFConfig{
			TimeoutSeconds: 60,
		},
		RateLimit: RateLimitConfig{
			ContactRPS:   0.2,
			ContactBurst: 5,
		},
		Log: LogConfig{
			Level:         "info",
			RetentionDays: 30,
		},
	}
}

func (c *Config) applyDefaults() {
	if c.PDF.TimeoutSeconds <= 0 {
		c.PDF.TimeoutSeconds = 60
	}
	if c.RateLimit.ContactRPS <= 0 {
		c.RateLimit.ContactRPS = 0.2
	}
	if c.RateLimit.ContactBurst <= 0 {
		c.RateLimit.ContactBurst = 5
	}
	if c.Log.RetentionDays <= 0 {
		c.Log.RetentionDays = 30
	}
	if c.Data.File == "" {
		c.Data.File = "data.json"
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if file := os.Getenv("DATA_FILE"); file != "" {
		c.Data.File = file
	}
	if chrome := os.Getenv("PDF_CHROME_PATH"); chrome != "" {
		c.PDF.ChromePath = chrome
	}
	if wk := os.Getenv("PDF_WKHTMLTOPDF_PATH"); wk != "" {
		c.PDF.WkhtmltopdfPath = wk
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	// Remove redis:// prefix
	url := strings.TrimPrefix(redisURL, "redis://")

	// Extract password if present
	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		// Password format: :password or user:password
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	// Extract db number if present
	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	// Remaining is host:port
	c.Redis.Addr = url
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
