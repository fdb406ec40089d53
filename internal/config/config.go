// Package config loads uisync settings from a TOML file with environment
// variable overrides.
//
// Precedence, lowest first: Default(), the TOML file, UISYNC_* variables.
//
//	[routes]
//	side = ["profile", "support", "transactions"]
//	swipe_disabled = ["slide", "welcome"]
//	menu = true
//
//	[toast]
//	position = "bottom"
//	duration = "4s"
//
//	[log]
//	level = "info"
//	format = "text"
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"

	"github.com/roach88/uisync/internal/reconcile"
	"github.com/roach88/uisync/internal/ui"
)

// EnvPrefix prefixes every environment override, e.g. UISYNC_LOG_LEVEL.
// Keys are derived from field names only; fields carry no envconfig tags
// because a tag also makes envconfig read the unprefixed name ($PATH).
const EnvPrefix = "UISYNC"

// Config holds all uisync configuration.
type Config struct {
	Routes  RoutesConfig  `toml:"routes"`
	Toast   ToastConfig   `toml:"toast"`
	I18n    I18nConfig    `toml:"i18n"`
	Console ConsoleConfig `toml:"console"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
	Journal JournalConfig `toml:"journal"`
}

// RoutesConfig holds the route tables used by the reconciler.
type RoutesConfig struct {
	// Side routes pop without a transition animation.
	Side []string `toml:"side"`
	// SwipeDisabled routes cannot open the side menu with a swipe.
	SwipeDisabled []string `toml:"swipe_disabled" split_words:"true"`
	// Menu enables the side menu lane.
	Menu bool `toml:"menu"`
}

// ToastConfig holds the options every toast is created with.
type ToastConfig struct {
	Position string        `toml:"position"`
	Duration time.Duration `toml:"duration"`
}

// I18nConfig selects the overlay label language.
type I18nConfig struct {
	Language     string   `toml:"language"`
	MessageFiles []string `toml:"message_files" split_words:"true"`
}

// ConsoleConfig tunes the console primitives used by simulate.
type ConsoleConfig struct {
	Settle time.Duration `toml:"settle"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds the metrics endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// JournalConfig holds the SQLite journal configuration.
// An empty path disables journaling.
type JournalConfig struct {
	Path string `toml:"path"`
}

var toastPositions = []string{"top", "center", "bottom"}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Routes: RoutesConfig{
			Side:          reconcile.DefaultSideRoutes().Names(),
			SwipeDisabled: reconcile.DefaultSwipeDisabledRoutes().Names(),
			Menu:          true,
		},
		Toast: ToastConfig{
			Position: "bottom",
			Duration: 4 * time.Second,
		},
		I18n: I18nConfig{
			Language: ui.DefaultLanguage,
		},
		Console: ConsoleConfig{
			Settle: 0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result. Unknown TOML keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error
	for _, name := range c.Routes.Side {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("routes.side: empty route name"))
		}
	}
	for _, name := range c.Routes.SwipeDisabled {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("routes.swipe_disabled: empty route name"))
		}
	}
	if !slices.Contains(toastPositions, c.Toast.Position) {
		errs = append(errs, fmt.Errorf("toast.position: %q is not one of %s", c.Toast.Position, strings.Join(toastPositions, ", ")))
	}
	if c.Toast.Duration <= 0 {
		errs = append(errs, fmt.Errorf("toast.duration: must be positive, got %s", c.Toast.Duration))
	}
	if _, err := language.Parse(c.I18n.Language); err != nil {
		errs = append(errs, fmt.Errorf("i18n.language: %w", err))
	}
	if c.Console.Settle < 0 {
		errs = append(errs, fmt.Errorf("console.settle: must not be negative, got %s", c.Console.Settle))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: %q is not one of text, json", c.Log.Format))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr: required when metrics are enabled"))
	}
	return errors.Join(errs...)
}

// ReconcileOptions converts the route tables into reconciler options.
// Empty lists stay empty rather than falling back to the defaults.
func (c *Config) ReconcileOptions() reconcile.Options {
	return reconcile.Options{
		SideRoutes:    reconcile.NewRouteSet(c.Routes.Side...),
		SwipeDisabled: reconcile.NewRouteSet(c.Routes.SwipeDisabled...),
		Menu:          c.Routes.Menu,
	}
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
