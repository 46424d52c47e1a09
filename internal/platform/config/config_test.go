package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytracker/internal/platform/config"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestNewResolvesDatabasePath(t *testing.T) {
	t.Parallel()
	cfg, err := config.New("/tmp/study")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/study", "study.db"), cfg.DBPath)
	assert.Equal(t, "keep", cfg.DeletePolicy)
	assert.Equal(t, 25, cfg.DefaultMinutes)

	_, err = config.New("")
	assert.Error(t, err)
}

func TestLoaderPrecedence(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	file := config.Default(dir)
	file.DefaultMinutes = 40
	file.DeletePolicy = "cascade"
	file.DefaultSubject = "Reading"
	require.NoError(t, file.SaveToFile(filepath.Join(dir, config.FileName)))

	loader := config.NewLoader(nil).WithEnv(envMap(map[string]string{
		"STUDYTRACKER_DELETE_POLICY": "archive",
		"STUDYTRACKER_ALARM":         "false",
	}))
	cfg, err := loader.Load(config.Overrides{DataDir: dir, Debug: true})
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.DefaultMinutes, "file beats defaults")
	assert.Equal(t, "Reading", cfg.DefaultSubject)
	assert.Equal(t, "archive", cfg.DeletePolicy, "env beats file")
	assert.False(t, cfg.Alarm)
	assert.True(t, cfg.Log.Debug, "flag applied")
	assert.Equal(t, filepath.Join(dir, config.DBFileName), cfg.DBPath)
}

func TestLoaderMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.NewLoader(nil).WithEnv(envMap(nil)).Load(config.Overrides{DataDir: dir})
	require.NoError(t, err)
	assert.Equal(t, config.Default(dir).Presets, cfg.Presets)

	_, err = config.NewLoader(nil).WithEnv(envMap(nil)).Load(config.Overrides{
		DataDir:    dir,
		ConfigFile: filepath.Join(dir, "absent.yaml"),
	})
	assert.ErrorIs(t, err, os.ErrNotExist, "an explicit config file must exist")
}

func TestLoaderRejectsInvalidValues(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cases := map[string]map[string]string{
		"policy":   {"STUDYTRACKER_DELETE_POLICY": "shred"},
		"minutes":  {"STUDYTRACKER_DEFAULT_MINUTES": "0"},
		"nan":      {"STUDYTRACKER_DEFAULT_MINUTES": "ten"},
		"timezone": {"STUDYTRACKER_TIMEZONE": "Mars/Olympus"},
		"bool":     {"STUDYTRACKER_ALARM": "loud"},
	}
	for name, env := range cases {
		_, err := config.NewLoader(nil).WithEnv(envMap(env)).Load(config.Overrides{DataDir: dir})
		assert.Error(t, err, name)
	}
}

func TestLoadFromFileKeepsUnsetKeys(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_minutes: 50\n"), 0o644))

	cfg, err := config.LoadFromFile(path, config.Default("/data"))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.DefaultMinutes)
	assert.Equal(t, "Study", cfg.DefaultSubject)
	assert.True(t, cfg.Alarm)
}
