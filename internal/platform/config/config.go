package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file looked up inside the data directory.
	FileName = "config.yaml"
	// DBFileName is the default database file inside the data directory.
	DBFileName = "study.db"
)

type LogConfig struct {
	Debug    bool   `yaml:"debug"`
	File     string `yaml:"file,omitempty"`
	MaxFiles int    `yaml:"max_files"`
}

type Config struct {
	DataDir        string    `yaml:"data_dir,omitempty"`
	DBPath         string    `yaml:"db_path,omitempty"`
	DefaultSubject string    `yaml:"default_subject"`
	DefaultMinutes int       `yaml:"default_minutes"`
	Presets        []int     `yaml:"presets"`
	DeletePolicy   string    `yaml:"delete_policy"`
	Alarm          bool      `yaml:"alarm"`
	Timezone       string    `yaml:"timezone,omitempty"`
	Log            LogConfig `yaml:"log"`
}

var deletePolicies = []string{"keep", "cascade", "archive"}

// Default returns the built-in configuration for a data directory.
func Default(dataDir string) Config {
	return Config{
		DataDir:        dataDir,
		DefaultSubject: "Study",
		DefaultMinutes: 25,
		Presets:        []int{15, 25, 50},
		DeletePolicy:   "keep",
		Alarm:          true,
		Log:            LogConfig{MaxFiles: 20},
	}
}

// New returns defaults rooted at dataDir with the database path resolved.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Default(dataDir)
	cfg.resolvePaths()
	return cfg, cfg.Validate()
}

func (c *Config) resolvePaths() {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, DBFileName)
	}
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.DefaultMinutes < 1 {
		return fmt.Errorf("default_minutes must be at least 1, got %d", c.DefaultMinutes)
	}
	for _, p := range c.Presets {
		if p < 1 {
			return fmt.Errorf("presets must be positive, got %d", p)
		}
	}
	if !slices.Contains(deletePolicies, c.DeletePolicy) {
		return fmt.Errorf("delete_policy must be one of %v, got %q", deletePolicies, c.DeletePolicy)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used for calendar days. Empty means the
// process local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadFromFile decodes path on top of base, so absent keys keep base values.
func LoadFromFile(path string, base Config) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
