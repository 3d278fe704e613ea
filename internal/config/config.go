// Package config handles the client configuration and the ~/.tada directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dirName        = ".tada"
	configFileName = "config.yaml"

	DefaultAPIURL  = "http://localhost:5000/api"
	DefaultTimeout = 15 * time.Second
)

// Config models ~/.tada/config.yaml.
type Config struct {
	APIURL   string `yaml:"api_url"`
	Timeout  string `yaml:"timeout,omitempty"`
	DarkMode bool   `yaml:"dark_mode"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout.String(),
		LogLevel: "info",
	}
}

// Dir returns the client state directory. TADA_CONFIG_DIR overrides it so
// tests never touch the real home directory.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TADA_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Path returns the location of config.yaml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads config.yaml, falling back to defaults, then applies env overrides.
func Load() (*Config, error) {
	cfg := Default()
	p, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration back to disk.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFileName), b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ToggleDarkMode persists and returns the opposite of shown, the mode the
// caller is displaying with env overrides applied.
func ToggleDarkMode(shown bool) (bool, error) {
	on := !shown
	return on, SetDarkMode(on)
}

// SetDarkMode persists an explicit dark mode preference.
func SetDarkMode(on bool) error {
	cfg, err := loadFile()
	if err != nil {
		return err
	}
	cfg.DarkMode = on
	return Save(cfg)
}

// loadFile reads the file without env overrides so Save never persists them.
func loadFile() (*Config, error) {
	cfg := Default()
	p, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// RequestTimeout parses Timeout, falling back to DefaultTimeout.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Timeout))
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TADA_API_URL")); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TADA_DARK_MODE")); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.DarkMode = on
		}
	}
}

func (c *Config) normalize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
