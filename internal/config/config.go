// Package config loads server settings from defaults, an optional YAML file
// and PORTFOLIO_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	// Loads .env into the process environment before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dhashmi/portfolio/internal/document"
)

const envPrefix = "PORTFOLIO_"

// Config is the server configuration.
type Config struct {
	Addr          string        `koanf:"addr"`
	Mode          string        `koanf:"mode"`
	LogLevel      string        `koanf:"log_level"`
	ContentFile   string        `koanf:"content_file"`
	DocumentsDir  string        `koanf:"documents_dir"`
	DocumentsGlob string        `koanf:"documents_glob"`
	ViewportRatio float64       `koanf:"viewport_ratio"`
	MaxPageWidth  float64       `koanf:"max_page_width"`
	LoadTimeout   time.Duration `koanf:"load_timeout"`
	DatabasePath  string        `koanf:"database_path"`
	AdminUsername string        `koanf:"admin_username"`
	AdminPassword string        `koanf:"admin_password"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:          ":8080",
		Mode:          "release",
		LogLevel:      "info",
		DocumentsDir:  "public/documents",
		DocumentsGlob: document.DefaultGlob,
		ViewportRatio: document.DefaultViewportRatio,
		MaxPageWidth:  document.DefaultMaxWidth,
		LoadTimeout:   20 * time.Second,
	}
}

// Load reads path if it exists, then overlays environment variables
// (PORTFOLIO_DOCUMENTS_DIR -> documents_dir). PORT is honoured when
// PORTFOLIO_ADDR is unset.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if os.Getenv(envPrefix+"ADDR") == "" && !k.Exists("addr") {
		if port := os.Getenv("PORT"); port != "" {
			cfg.Addr = ":" + port
		}
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	switch c.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("invalid mode %q: must be one of debug, release, test", c.Mode))
	}
	if c.ViewportRatio <= 0 || c.ViewportRatio > 1 {
		errs = append(errs, fmt.Errorf("viewport_ratio must be in (0, 1], got %v", c.ViewportRatio))
	}
	if c.MaxPageWidth <= 0 {
		errs = append(errs, fmt.Errorf("max_page_width must be positive, got %v", c.MaxPageWidth))
	}
	if c.LoadTimeout < 0 {
		errs = append(errs, errors.New("load_timeout must be non-negative"))
	}
	if c.DatabasePath != "" && (c.AdminUsername == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("admin_username and admin_password must be set together"))
	}
	return errors.Join(errs...)
}

// Layout is the page layout derived from the configuration.
func (c *Config) Layout() document.Layout {
	return document.Layout{ViewportRatio: c.ViewportRatio, MaxWidth: c.MaxPageWidth}
}

// AnalyticsEnabled reports whether visits are recorded.
func (c *Config) AnalyticsEnabled() bool {
	return c.DatabasePath != ""
}
