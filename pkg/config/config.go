package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	applogger "MLChartist/pkg/logger"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"127.0.0.1"`
		Port            int           `yaml:"port" default:"5000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"1s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
		ChartRateLimit  struct {
			Enabled   bool    `yaml:"enabled" default:"true"`
			Burst     int     `yaml:"burst" default:"10"`
			PerSecond float64 `yaml:"per_second" default:"2"`
		} `yaml:"chart_rate_limit"`
	} `yaml:"server"`
	Log     applogger.Config `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Data struct {
		ReturnsPath     string `yaml:"returns_path" default:"data/returns.csv"`
		PredictionsPath string `yaml:"predictions_path" default:"data/predictions.csv"`
		CacheDir        string `yaml:"cache_dir" default:"data/cache"`
		Benchmark       string `yaml:"benchmark" default:"NDX"`
		WindowSize      int    `yaml:"window_size" default:"10"`
	} `yaml:"data"`
	Cache struct {
		TTL        time.Duration `yaml:"ttl"`
		MemorySize int           `yaml:"memory_size" default:"256"`
		Redis      struct {
			Enabled     bool          `yaml:"enabled"`
			Addr        string        `yaml:"addr" default:"localhost:6379"`
			Password    string        `yaml:"password"`
			DB          int           `yaml:"db"`
			PoolSize    int           `yaml:"pool_size" default:"10"`
			DialTimeout time.Duration `yaml:"dial_timeout" default:"3s"`
			Prefix      string        `yaml:"prefix" default:"mlchartist"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables,
// including those from a .env file in the working directory.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("RETURNS_PATH"); v != "" {
		c.Data.ReturnsPath = v
	}
	if v := os.Getenv("PREDICTIONS_PATH"); v != "" {
		c.Data.PredictionsPath = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		c.Data.CacheDir = v
	}
	if v := os.Getenv("BENCHMARK"); v != "" {
		c.Data.Benchmark = strings.ToUpper(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Data.ReturnsPath == "" {
		return fmt.Errorf("data.returns_path is required")
	}
	if c.Data.PredictionsPath == "" {
		return fmt.Errorf("data.predictions_path is required")
	}
	if c.Data.CacheDir == "" {
		return fmt.Errorf("data.cache_dir is required")
	}
	if c.Data.Benchmark == "" {
		return fmt.Errorf("data.benchmark is required")
	}
	if c.Data.WindowSize <= 0 {
		return fmt.Errorf("data.window_size must be positive, got %d", c.Data.WindowSize)
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	return nil
}
