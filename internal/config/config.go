// Package config handles the configuration directory, the config file and
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	gookit "github.com/gookit/config/v2"
	"github.com/gookit/config/v2/yaml"
)

const (
	// AppName is the application directory name.
	AppName = "stickylist"

	// ConfigFile is the optional settings file in the config directory.
	ConfigFile = "config.yml"

	// StoreFile is the file mirror driver's data file.
	StoreFile = "storage.json"

	// SQLiteFile is the sqlite mirror driver's database file.
	SQLiteFile = "storage.db"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// GoogleTokenFile is the stored Google OAuth token filename.
	GoogleTokenFile = "google_token.json"

	// DefaultBaseURL is the Sticky List API root.
	DefaultBaseURL = "https://sticky-list.onrender.com"

	// DefaultTimeout bounds every remote request.
	DefaultTimeout = 10 * time.Second
)

// Backends.
const (
	BackendStickyList  = "stickylist"
	BackendGoogleTasks = "googletasks"
)

// Mirror drivers.
const (
	MirrorFile   = "file"
	MirrorSQLite = "sqlite"
	MirrorRedis  = "redis"
	MirrorMemory = "memory"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Backend selects the remote collaborator.
	Backend string

	// BaseURL is the Sticky List API root.
	BaseURL string

	// Timeout bounds each remote request.
	Timeout time.Duration

	// Mirror selects the local store driver.
	Mirror string

	RedisAddr string
	RedisDB   int

	// SendAuthHeader attaches the session token as a bearer header.
	SendAuthHeader bool
}

// fileSettings mirrors config.yml. Unset keys keep their defaults.
type fileSettings struct {
	Backend        string `config:"backend"`
	BaseURL        string `config:"base_url"`
	Timeout        string `config:"timeout"`
	Mirror         string `config:"mirror"`
	RedisAddr      string `config:"redis_addr"`
	RedisDB        *int   `config:"redis_db"`
	SendAuthHeader *bool  `config:"send_auth_header"`
}

// envSettings are STICKYLIST_* overrides.
type envSettings struct {
	Backend        *string        `env:"BACKEND"`
	BaseURL        *string        `env:"BASE_URL"`
	Timeout        *time.Duration `env:"TIMEOUT"`
	Mirror         *string        `env:"MIRROR"`
	RedisAddr      *string        `env:"REDIS_ADDR"`
	RedisDB        *int           `env:"REDIS_DB"`
	SendAuthHeader *bool          `env:"SEND_AUTH_HEADER"`
}

// Default returns a Config with built-in settings for dir.
func Default(dir string) *Config {
	return &Config{
		Dir:            dir,
		Backend:        BackendStickyList,
		BaseURL:        DefaultBaseURL,
		Timeout:        DefaultTimeout,
		Mirror:         MirrorFile,
		RedisAddr:      "localhost:6379",
		SendAuthHeader: true,
	}
}

// New creates a Config for the default or specified config directory,
// applying config.yml and STICKYLIST_* environment overrides.
// If configDir is empty, uses XDG_CONFIG_HOME/stickylist or $HOME/.config/stickylist.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := Default(dir)

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile() error {
	path := c.ConfigPath()
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	loader := gookit.NewWithOptions(AppName, func(opt *gookit.Options) {
		opt.ParseEnv = true
		opt.DecoderConfig.TagName = "config"
	})
	loader.AddDriver(yaml.Driver)
	if err := loader.LoadFiles(path); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	var fs fileSettings
	if err := loader.BindStruct("", &fs); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	if fs.Backend != "" {
		c.Backend = fs.Backend
	}
	if fs.BaseURL != "" {
		c.BaseURL = fs.BaseURL
	}
	if fs.Timeout != "" {
		d, err := time.ParseDuration(fs.Timeout)
		if err != nil {
			return fmt.Errorf("invalid %s: timeout: %w", ConfigFile, err)
		}
		c.Timeout = d
	}
	if fs.Mirror != "" {
		c.Mirror = fs.Mirror
	}
	if fs.RedisAddr != "" {
		c.RedisAddr = fs.RedisAddr
	}
	if fs.RedisDB != nil {
		c.RedisDB = *fs.RedisDB
	}
	if fs.SendAuthHeader != nil {
		c.SendAuthHeader = *fs.SendAuthHeader
	}
	return nil
}

func (c *Config) loadEnv() error {
	var es envSettings
	if err := env.ParseWithOptions(&es, env.Options{Prefix: "STICKYLIST_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if es.Backend != nil {
		c.Backend = *es.Backend
	}
	if es.BaseURL != nil {
		c.BaseURL = *es.BaseURL
	}
	if es.Timeout != nil {
		c.Timeout = *es.Timeout
	}
	if es.Mirror != nil {
		c.Mirror = *es.Mirror
	}
	if es.RedisAddr != nil {
		c.RedisAddr = *es.RedisAddr
	}
	if es.RedisDB != nil {
		c.RedisDB = *es.RedisDB
	}
	if es.SendAuthHeader != nil {
		c.SendAuthHeader = *es.SendAuthHeader
	}
	return nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.Mirror = strings.ToLower(strings.TrimSpace(c.Mirror))
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")

	switch c.Backend {
	case BackendStickyList, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	switch c.Mirror {
	case MirrorFile, MirrorSQLite, MirrorRedis, MirrorMemory:
	default:
		return fmt.Errorf("unknown mirror driver: %s", c.Mirror)
	}
	if c.Backend == BackendStickyList && c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// StorePath returns the path of the file mirror driver's data file.
func (c *Config) StorePath() string {
	return filepath.Join(c.Dir, StoreFile)
}

// SQLitePath returns the path of the sqlite mirror driver's database.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.Dir, SQLiteFile)
}

// OAuthClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// GoogleTokenPath returns the path to the stored Google OAuth token file.
func (c *Config) GoogleTokenPath() string {
	return filepath.Join(c.Dir, GoogleTokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasGoogleToken checks if the Google token file exists.
func (c *Config) HasGoogleToken() bool {
	_, err := os.Stat(c.GoogleTokenPath())
	return err == nil
}
