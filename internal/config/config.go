// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"fmt"
	"runtime"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port         int `mapstructure:"port"`
	ScanInterval int `mapstructure:"scan_interval"`
	Database     struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Library struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"library"`
	Output struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"output"`
	Scan    ScanConfig `mapstructure:"scan"`
	Catalog struct {
		UnknownAuthor string `mapstructure:"unknown_author"`
	} `mapstructure:"catalog"`
	Watch struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"watch"`
}

// ScanConfig controls how archives are discovered and inspected.
type ScanConfig struct {
	Workers        int           `mapstructure:"workers"`
	MaxEntries     int           `mapstructure:"max_entries"`
	ArchiveTimeout time.Duration `mapstructure:"archive_timeout"`
	RarEnabled     bool          `mapstructure:"rar_enabled"`
	FollowSymlinks bool          `mapstructure:"follow_symlinks"`
	// CacheSize is how many archive page counts the server keeps between
	// scans. 0 disables the cache.
	CacheSize int `mapstructure:"cache_size"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ScanInterval, validation.Min(0)),
	); err != nil {
		return err
	}
	required := []struct {
		key   string
		value string
	}{
		{"database.path", c.Database.Path},
		{"library.path", c.Library.Path},
		{"output.path", c.Output.Path},
		{"catalog.unknown_author", c.Catalog.UnknownAuthor},
	}
	for _, r := range required {
		if err := validation.Validate(r.value, validation.Required); err != nil {
			return fmt.Errorf("%s: %w", r.key, err)
		}
	}
	return c.Scan.Validate()
}

// Validate validates the scan configuration.
func (c *ScanConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxEntries, validation.Min(0)),
		validation.Field(&c.ArchiveTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.CacheSize, validation.Min(0)),
	)
}

// Default returns a Config populated with the same defaults Load applies.
// Tests and library callers use it to avoid touching the filesystem.
func Default() *Config {
	cfg := &Config{
		Port:         8080,
		ScanInterval: 60,
	}
	cfg.Database.Path = "./catalog.db"
	cfg.Library.Path = "./manga"
	cfg.Output.Path = "manga_scan_results.json"
	cfg.Scan = ScanConfig{
		Workers:        runtime.NumCPU(),
		MaxEntries:     100000,
		ArchiveTimeout: 30 * time.Second,
		RarEnabled:     true,
		CacheSize:      10000,
	}
	cfg.Catalog.UnknownAuthor = "Unknown"
	return cfg
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	// A .env file is optional; values already in the environment win.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")    // or "yaml"
	v.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// e.g., MANGO_LIBRARY_PATH will override the `library.path` key.
	v.SetEnvPrefix("MANGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("port", def.Port)
	v.SetDefault("scan_interval", def.ScanInterval)
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("library.path", def.Library.Path)
	v.SetDefault("output.path", def.Output.Path)
	v.SetDefault("scan.workers", def.Scan.Workers)
	v.SetDefault("scan.max_entries", def.Scan.MaxEntries)
	v.SetDefault("scan.archive_timeout", def.Scan.ArchiveTimeout)
	v.SetDefault("scan.rar_enabled", def.Scan.RarEnabled)
	v.SetDefault("scan.follow_symlinks", def.Scan.FollowSymlinks)
	v.SetDefault("scan.cache_size", def.Scan.CacheSize)
	v.SetDefault("catalog.unknown_author", def.Catalog.UnknownAuthor)
	v.SetDefault("watch.enabled", def.Watch.Enabled)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Scan.Workers < 1 {
		config.Scan.Workers = 1
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
