// Package config loads the optional dampen.yaml development configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mattdef/dampen-sub004/pkg/watch"
)

// FileName is the config file looked up in the project directory.
const FileName = "dampen.yaml"

// Config holds the dev-mode settings.
type Config struct {
	Watch WatchConfig `yaml:"watch"`
	Dev   DevConfig   `yaml:"dev"`
}

// WatchConfig selects what the file watcher observes.
type WatchConfig struct {
	Roots      []string `yaml:"roots"`
	Extensions []string `yaml:"extensions"`
	DebounceMs int      `yaml:"debounce_ms"`
}

// DevConfig configures the dev inspector endpoint.
type DevConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Inspector bool   `yaml:"inspector"`
}

// Default returns the configuration used when no dampen.yaml exists.
func Default() *Config {
	return &Config{
		Watch: WatchConfig{
			Roots:      []string{"."},
			Extensions: []string{".ui.json"},
		},
		Dev: DevConfig{
			Host:      "localhost",
			Port:      8090,
			Inspector: true,
		},
	}
}

// Load reads dampen.yaml from dir, falling back to defaults when absent.
// Unset fields keep their default values.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Watch.Roots) == 0 {
		cfg.Watch.Roots = []string{"."}
	}
	return cfg, nil
}

// DebounceWindow converts the configured window to a duration, zero meaning
// use the watcher default.
func (c *Config) DebounceWindow() time.Duration {
	if c.Watch.DebounceMs <= 0 {
		return watch.DefaultWindow
	}
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// Addr returns the inspector listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Dev.Host, c.Dev.Port)
}
