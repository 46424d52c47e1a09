package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Options control where debug logs go. Without Debug or File, logs are
// discarded so the CLI and TUI output stay clean.
type Options struct {
	Debug    bool
	File     string
	MaxFiles int
	// Dir overrides the OS state directory; used by tests.
	Dir string
}

// New builds the process logger and installs it as slog's default. The
// returned closer releases the log file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if !opts.Debug && opts.File == "" {
		logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
		slog.SetDefault(logger)
		return logger, nopCloser{}, nil
	}

	path := opts.File
	if path == "" {
		dir := opts.Dir
		if dir == "" {
			var err error
			dir, err = stateDir()
			if err != nil {
				return nil, nil, fmt.Errorf("resolve log dir: %w", err)
			}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		if opts.MaxFiles > 0 {
			if err := rotate(dir, opts.MaxFiles); err != nil {
				fmt.Fprintf(os.Stderr, "warning: log rotation failed: %v\n", err)
			}
		}
		path = filepath.Join(dir, uuid.NewString()+".log")
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
	logger.Info("debug logging initialized", slog.String("log_file", path))
	return logger, f, nil
}

// rotate keeps at most maxFiles-1 .log files so the new one fits the limit.
func rotate(dir string, maxFiles int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read log dir: %w", err)
	}
	type logFile struct {
		path    string
		modTime time.Time
	}
	var files []logFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(dir, entry.Name()), modTime: info.ModTime()})
	}
	if len(files) < maxFiles {
		return nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	for i := 0; i < len(files)-maxFiles+1; i++ {
		if err := os.Remove(files[i].path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: remove old log %s: %v\n", files[i].path, err)
		}
	}
	return nil
}

func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "studytracker"), nil
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(local, "studytracker", "logs"), nil
	default:
		state := os.Getenv("XDG_STATE_HOME")
		if state == "" {
			state = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(state, "studytracker"), nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
