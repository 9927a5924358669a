package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Archive fetcher backends.
const (
	FetcherProxy   = "proxy"
	FetcherBrowser = "browser"
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	TelegramBotToken string        `mapstructure:"TELEGRAM_BOT_TOKEN"`
	HTTPListenAddr   string        `mapstructure:"HTTP_LISTEN_ADDR"`
	BadgerDBPath     string        `mapstructure:"BADGERDB_PATH"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	ArchiveFetcher   string        `mapstructure:"ARCHIVE_FETCHER"`
	ArchiveProxyURL  string        `mapstructure:"ARCHIVE_PROXY_URL"`
	ArchiveTimeout   time.Duration `mapstructure:"ARCHIVE_TIMEOUT"`
	ArchiveMaxBytes  int64         `mapstructure:"ARCHIVE_MAX_BYTES"`
	SeedDefaults     bool          `mapstructure:"SEED_DEFAULTS"`
}

var defaults = map[string]any{
	"TELEGRAM_BOT_TOKEN": "",
	"HTTP_LISTEN_ADDR":   "",
	"BADGERDB_PATH":      "./badger_data",
	"LOG_LEVEL":          "info",
	"ARCHIVE_FETCHER":    FetcherProxy,
	"ARCHIVE_PROXY_URL":  "https://api.allorigins.win/raw?url=",
	"ARCHIVE_TIMEOUT":    "30s",
	"ARCHIVE_MAX_BYTES":  10 << 20,
	"SEED_DEFAULTS":      true,
}

// LoadConfig reads configuration from path/config.yaml and the environment.
// Environment variables win over the file. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Every key needs a default so Unmarshal sees env-only values.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration can start the application.
func (c Config) Validate() error {
	if c.TelegramBotToken == "" && c.HTTPListenAddr == "" {
		return errors.New("neither TELEGRAM_BOT_TOKEN nor HTTP_LISTEN_ADDR is set")
	}
	if c.BadgerDBPath == "" {
		return errors.New("BADGERDB_PATH is empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.ArchiveFetcher {
	case FetcherProxy, FetcherBrowser:
	default:
		return fmt.Errorf("ARCHIVE_FETCHER must be %q or %q, got %q", FetcherProxy, FetcherBrowser, c.ArchiveFetcher)
	}
	if c.ArchiveTimeout <= 0 {
		return fmt.Errorf("ARCHIVE_TIMEOUT must be positive, got %s", c.ArchiveTimeout)
	}
	if c.ArchiveMaxBytes <= 0 {
		return fmt.Errorf("ARCHIVE_MAX_BYTES must be positive, got %d", c.ArchiveMaxBytes)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}
