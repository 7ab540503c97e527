package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chemiclast/rasorite/internal/benchmark"
	"github.com/chemiclast/rasorite/internal/config"
	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps Load away from configuration files outside the test.
func isolate(t *testing.T) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("RASORITE_CONFIG", "")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rasorite.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	isolate(t)

	configPath := writeConfig(t, `
output = "chart.png"
normalize = true
max-ticks = 6
width = 640
height = 480
skip-invalid = true
cache = true
cache-db = "/tmp/rasorite/benchmarks.db"
cache-ttl = "2h"
log-level = "debug"
`)

	// Set environment variable to point to the test config file
	t.Setenv("RASORITE_CONFIG", configPath)

	cfg, err := config.Load([]string{"export.csv"})
	require.NoError(t, err)

	assert.Equal(t, "export.csv", cfg.Input)
	assert.Equal(t, "chart.png", cfg.Output)
	assert.True(t, cfg.Normalize)
	assert.Equal(t, 6, cfg.MaxTicks)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.True(t, cfg.SkipInvalid)
	assert.True(t, cfg.Cache)
	assert.Equal(t, "/tmp/rasorite/benchmarks.db", cfg.CacheDB)
	assert.Equal(t, 2*time.Hour, cfg.CacheTTL)
	assert.Equal(t, config.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, configPath, cfg.ConfigFile)

	cc := cfg.CacheConfig()
	assert.True(t, cc.Enabled)
	assert.Equal(t, cfg.CacheDB, cc.DBPath)
	assert.Equal(t, 2*time.Hour, cc.TTL)
}

func TestLoadDefaults(t *testing.T) {
	// Ensure no config file is used
	isolate(t)

	cfg, err := config.Load([]string{"export.csv"})
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultOutput, cfg.Output)
	assert.False(t, cfg.Normalize)
	assert.False(t, cfg.FetchBenchmark)
	assert.Equal(t, config.DefaultMaxTicks, cfg.MaxTicks)
	assert.Equal(t, config.DefaultWidth, cfg.Width)
	assert.Equal(t, config.DefaultHeight, cfg.Height)
	assert.Equal(t, benchmark.DefaultBaseURL, cfg.BenchmarkURL)
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
	assert.False(t, cfg.Cache)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
}

func TestFlagsOverrideFile(t *testing.T) {
	isolate(t)

	configPath := writeConfig(t, `
output = "chart.png"
max-ticks = 6
`)

	cfg, err := config.Load([]string{
		"--config", configPath,
		"-o", "other.svg",
		"--max-ticks", "4",
		"--fetch-benchmark",
		"--cookie", "abc",
		"export.csv",
	})
	require.NoError(t, err)

	assert.Equal(t, "other.svg", cfg.Output)
	assert.Equal(t, 4, cfg.MaxTicks)
	assert.True(t, cfg.FetchBenchmark)
	assert.Equal(t, "abc", cfg.Cookie)
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)

	configPath := writeConfig(t, `cookie = "from-file"`)
	t.Setenv("RASORITE_COOKIE", "from-env")
	t.Setenv("RASORITE_MAX_TICKS", "3")

	cfg, err := config.Load([]string{"export.csv"}, config.WithConfigFile(configPath))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Cookie)
	assert.Equal(t, 3, cfg.MaxTicks)
}

func TestWithEnvPrefix(t *testing.T) {
	isolate(t)
	t.Setenv("PLOT_WIDTH", "300")

	cfg, err := config.Load([]string{"export.csv"}, config.WithEnvPrefix("PLOT"))
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	isolate(t)

	configPath := writeConfig(t, `
This is not a valid TOML file
`)

	t.Setenv("RASORITE_CONFIG", configPath)

	_, err := config.Load([]string{"export.csv"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestLoadMissingConfigFile(t *testing.T) {
	isolate(t)

	_, err := config.Load([]string{"--config", filepath.Join(t.TempDir(), "none.toml"), "export.csv"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestInvalidLogLevel(t *testing.T) {
	isolate(t)

	configPath := writeConfig(t, `
log-level = "invalid"
`)

	t.Setenv("RASORITE_CONFIG", configPath)

	_, err := config.Load([]string{"export.csv"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestLogLevelFlag(t *testing.T) {
	isolate(t)

	cfg, err := config.Load([]string{"--log-level", "warning", "export.csv"})
	require.NoError(t, err)
	assert.Equal(t, config.LogLevelWarning, cfg.LogLevel, "Expected LogLevel to be set by flag")
}

func TestHelp(t *testing.T) {
	isolate(t)

	_, err := config.Load([]string{"--help"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestUnknownFlag(t *testing.T) {
	isolate(t)

	_, err := config.Load([]string{"--bogus", "export.csv"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrBindFlags))
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Input:    "export.csv",
			Output:   "plot.svg",
			MaxTicks: 10,
			Width:    100,
			Height:   100,
			LogLevel: config.LogLevelInfo,
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		code   errors.ErrorCode
	}{
		{"valid", func(*config.Config) {}, ""},
		{"no input", func(c *config.Config) { c.Input = "" }, errors.ErrMissingConfig},
		{"bad extension", func(c *config.Config) { c.Output = "plot.jpg" }, errors.ErrInvalidConfig},
		{"png upper case", func(c *config.Config) { c.Output = "PLOT.PNG" }, ""},
		{"zero ticks", func(c *config.Config) { c.MaxTicks = 0 }, errors.ErrInvalidConfig},
		{"zero width", func(c *config.Config) { c.Width = 0 }, errors.ErrInvalidConfig},
		{"negative timeout", func(c *config.Config) { c.Timeout = -time.Second }, errors.ErrInvalidConfig},
		{"bad level", func(c *config.Config) { c.LogLevel = "loud" }, errors.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestLogLevelIsValid(t *testing.T) {
	for _, l := range []config.LogLevel{config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarning, config.LogLevelError} {
		assert.True(t, l.IsValid(), l.String())
	}
	assert.False(t, config.LogLevel("trace").IsValid())
}
