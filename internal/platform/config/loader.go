package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const envPrefix = "STUDYTRACKER_"

// Overrides carries command-line flags; zero values mean "not set".
type Overrides struct {
	DataDir    string
	ConfigFile string
	DBPath     string
	Debug      bool
	DebugFile  string
}

// Loader resolves configuration with layered precedence:
// defaults, config file, .env, environment, flags.
type Loader struct {
	logger    *slog.Logger
	lookupEnv func(string) (string, bool)
	dotenv    string
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, lookupEnv: os.LookupEnv, dotenv: ".env"}
}

// WithEnv replaces the environment lookup; used by tests.
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	l.lookupEnv = lookup
	l.dotenv = ""
	return l
}

func (l *Loader) Load(o Overrides) (Config, error) {
	if l.dotenv != "" {
		if err := godotenv.Load(l.dotenv); err == nil {
			l.logger.Debug("loaded dotenv", slog.String("path", l.dotenv))
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("failed to load dotenv", slog.String("path", l.dotenv), slog.String("error", err.Error()))
		}
	}

	dataDir := firstNonEmpty(o.DataDir, l.env("DATA_DIR"))
	if dataDir == "" {
		var err error
		if dataDir, err = defaultDataDir(); err != nil {
			return Config{}, err
		}
	}
	cfg := Default(dataDir)

	path := firstNonEmpty(o.ConfigFile, l.env("CONFIG"), filepath.Join(dataDir, FileName))
	loaded, err := LoadFromFile(path, cfg)
	switch {
	case err == nil:
		l.logger.Debug("loaded config", slog.String("path", path))
		cfg = loaded
	case errors.Is(err, fs.ErrNotExist):
		if o.ConfigFile != "" {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		l.logger.Debug("no config file", slog.String("path", path))
	default:
		return Config{}, err
	}
	// The data dir chosen by flag or env wins over one written in the file.
	if o.DataDir != "" || l.env("DATA_DIR") != "" {
		cfg.DataDir = dataDir
	}

	if err := l.applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyOverrides(&cfg, o)
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (l *Loader) env(key string) string {
	v, ok := l.lookupEnv(envPrefix + key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func (l *Loader) applyEnv(cfg *Config) error {
	if v := l.env("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := l.env("DEFAULT_SUBJECT"); v != "" {
		cfg.DefaultSubject = v
	}
	if v := l.env("DELETE_POLICY"); v != "" {
		cfg.DeletePolicy = v
	}
	if v := l.env("TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := l.env("DEBUG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := l.env("DEFAULT_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sDEFAULT_MINUTES: %w", envPrefix, err)
		}
		cfg.DefaultMinutes = n
	}
	for key, target := range map[string]*bool{"ALARM": &cfg.Alarm, "DEBUG": &cfg.Log.Debug} {
		v := l.env(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*target = b
	}
	return nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if o.Debug {
		cfg.Log.Debug = true
	}
	if o.DebugFile != "" {
		cfg.Log.File = o.DebugFile
	}
}

// ConfigPath returns where `config init` writes the file for cfg.
func ConfigPath(cfg Config, o Overrides) string {
	if o.ConfigFile != "" {
		return o.ConfigFile
	}
	return filepath.Join(cfg.DataDir, FileName)
}

func defaultDataDir() (string, error) {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return filepath.Join(v, "studytracker"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "studytracker"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
