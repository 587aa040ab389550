package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultAPIURL is the local-development backend used when nothing else is set.
	DefaultAPIURL = "http://127.0.0.1:8000"
	// EnvAPIURL overrides the backend base URL.
	EnvAPIURL = "AUDITOR_API_URL"

	dirName  = ".auditor"
	fileName = "config.yaml"
)

// Config is the resolved client configuration.
type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // 0 = no timeout
	Locale         string        `mapstructure:"locale"`
	ListenAddr     string        `mapstructure:"listen_addr"`
	Log            LogConfig     `mapstructure:"log"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Paths are the config files consulted, in increasing precedence.
type Paths struct {
	Global string
	Local  string
}

// DefaultPaths resolves ~/.auditor/config.yaml and ./.auditor/config.yaml.
func DefaultPaths() Paths {
	var p Paths
	if home, _ := os.UserHomeDir(); home != "" {
		p.Global = filepath.Join(home, dirName, fileName)
	}
	if cwd, _ := os.Getwd(); cwd != "" {
		p.Local = filepath.Join(cwd, dirName, fileName)
	}
	return p
}

// DefaultLogFile is ~/.auditor/logs/auditor.log, or a temp-dir path without a home.
func DefaultLogFile() string {
	if home, _ := os.UserHomeDir(); home != "" {
		return filepath.Join(home, dirName, "logs", "auditor.log")
	}
	return filepath.Join(os.TempDir(), "auditor", "auditor.log")
}

// Load reads config from layered sources:
//  1. built-in defaults
//  2. ~/.auditor/config.yaml (global)
//  3. ./.auditor/config.yaml (repo-local, takes precedence)
//  4. AUDITOR_* environment variables (AUDITOR_API_URL, AUDITOR_REQUEST_TIMEOUT, ...)
//
// Missing files are silently ignored.
func Load() (Config, error) {
	return LoadPaths(DefaultPaths())
}

// LoadPaths is Load with explicit file locations.
func LoadPaths(paths Paths) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("request_timeout", "0s")
	v.SetDefault("locale", "tr-TR")
	v.SetDefault("listen_addr", "127.0.0.1:3000")
	v.SetDefault("log.file", DefaultLogFile())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	for _, path := range []string{paths.Global, paths.Local} {
		if err := mergeFile(v, path); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("AUDITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.APIURL = NormalizeAPIURL(cfg.APIURL)
	if cfg.RequestTimeout < 0 {
		return Config{}, fmt.Errorf("request_timeout must be >= 0, got %s", cfg.RequestTimeout)
	}
	return cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load config %s: %w", path, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// NormalizeAPIURL trims whitespace and trailing slashes, falling back to DefaultAPIURL.
func NormalizeAPIURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if u == "" {
		return DefaultAPIURL
	}
	return u
}
