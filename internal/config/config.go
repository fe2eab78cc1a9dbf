package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/penwyp/go-eld-planner/internal/core/constants"
	"github.com/spf13/viper"
)

// Trip source kinds
const (
	SourceAPI  = "api"
	SourceFile = "file"
)

// Defaults, with ~ expanded by Validate
const (
	DefaultAPIURL    = "http://localhost:8000"
	DefaultDataGlob  = "./trips/**/*.json"
	DefaultCacheDir  = "~/.go-eld-planner/cache"
	DefaultExportDir = "."
	DefaultLogFile   = "~/.go-eld-planner/logs/app.log"
	DefaultListen    = ":8080"
)

// EnvPrefix is prepended to every environment override, e.g. ELD_API_URL
const EnvPrefix = "ELD"

// Config is the resolved runtime configuration
type Config struct {
	// Trip data
	Source  string        `mapstructure:"source"`
	APIURL  string        `mapstructure:"api_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Data    []string      `mapstructure:"data"`

	// Cache
	CacheDir string        `mapstructure:"cache_dir"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Offline  bool          `mapstructure:"offline"`

	// Display
	Timezone string `mapstructure:"timezone"`
	Output   string `mapstructure:"output"`

	// Export
	ExportDir string `mapstructure:"export_dir"`

	// Server
	Listen   string        `mapstructure:"listen"`
	Debounce time.Duration `mapstructure:"debounce"`

	// System
	Debug       bool   `mapstructure:"debug"`
	LogFile     string `mapstructure:"log_file"`
	Concurrency int    `mapstructure:"concurrency"`
}

// SetDefaults registers every default on v so config files and env vars
// only need to name what they change.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source", SourceAPI)
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("data", []string{DefaultDataGlob})
	v.SetDefault("cache_dir", DefaultCacheDir)
	v.SetDefault("cache_ttl", time.Duration(constants.DefaultCacheTTLHours)*time.Hour)
	v.SetDefault("offline", false)
	v.SetDefault("timezone", "Local")
	v.SetDefault("output", "table")
	v.SetDefault("export_dir", DefaultExportDir)
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("debounce", 500*time.Millisecond)
	v.SetDefault("debug", false)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("concurrency", 0)
}

// Load reads an optional config file and the ELD_* environment into a
// validated Config. An empty file means $HOME/.go-eld-planner.yaml or
// ./.go-eld-planner.yaml if present.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".go-eld-planner")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fills defaults, expands paths and rejects unusable settings
func (c *Config) Validate() error {
	if c.Source == "" {
		c.Source = SourceAPI
	}
	c.Source = strings.ToLower(c.Source)
	switch c.Source {
	case SourceAPI, SourceFile:
	default:
		return fmt.Errorf("unknown source %q (want %s or %s)", c.Source, SourceAPI, SourceFile)
	}

	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if len(c.Data) == 0 {
		c.Data = []string{DefaultDataGlob}
	}
	for i, pattern := range c.Data {
		c.Data[i] = ExpandPath(pattern)
	}

	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	c.CacheDir = ExpandPath(c.CacheDir)
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Duration(constants.DefaultCacheTTLHours) * time.Hour
	}

	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.Output == "" {
		c.Output = "table"
	}
	if c.ExportDir == "" {
		c.ExportDir = DefaultExportDir
	}
	c.ExportDir = ExpandPath(c.ExportDir)

	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Debounce <= 0 {
		c.Debounce = 500 * time.Millisecond
	}

	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	c.LogFile = ExpandPath(c.LogFile)
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.NumCPU()
	}
	return nil
}

// LogLevel maps the debug switch onto a logger level
func (c *Config) LogLevel() string {
	if c.Debug {
		return "debug"
	}
	return "info"
}

// ExpandPath resolves a leading ~/ against the home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
