// Package config loads scenegrid runtime configuration.
//
// Values come from .scenegrid.yaml, SCENEGRID_* environment variables and
// command-line flags bound by the CLI, in increasing priority. Nested keys
// map to environment variables with dots replaced by underscores, so
// cache.redis_url is read from SCENEGRID_CACHE_REDIS_URL.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of configuration environment variables.
const EnvPrefix = "SCENEGRID"

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Disabled    bool          `mapstructure:"disabled"`
	Dir         string        `mapstructure:"dir"`
	RedisURL    string        `mapstructure:"redis_url"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// ServeConfig holds settings of the HTTP render server.
type ServeConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// Config holds all runtime configuration.
type Config struct {
	Width   float64     `mapstructure:"width"`
	Height  float64     `mapstructure:"height"`
	Workers int         `mapstructure:"workers"`
	Verbose bool        `mapstructure:"verbose"`
	Cache   CacheConfig `mapstructure:"cache"`
	Serve   ServeConfig `mapstructure:"serve"`
}

// SetDefaults registers the built-in defaults with viper.
func SetDefaults() {
	viper.SetDefault("width", 800.0)
	viper.SetDefault("height", 600.0)
	viper.SetDefault("workers", 0)
	viper.SetDefault("verbose", false)
	viper.SetDefault("cache.disabled", false)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.redis_prefix", "scenegrid:")
	viper.SetDefault("cache.dial_timeout", 5*time.Second)
	viper.SetDefault("serve.addr", ":8080")
	viper.SetDefault("serve.read_timeout", 30*time.Second)
	viper.SetDefault("serve.write_timeout", 60*time.Second)
	viper.SetDefault("serve.max_body_bytes", int64(1<<20))
}

// Init points viper at the config file and environment. An empty path
// searches for .scenegrid.yaml in the working directory and then the home
// directory. A missing default file is not an error; a missing explicit
// file is.
func Init(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName(".scenegrid")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("config: size %vx%v is negative", c.Width, c.Height)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers %d is negative", c.Workers)
	}
	if c.Serve.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: serve.max_body_bytes must be positive")
	}
	return nil
}
