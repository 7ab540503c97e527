// Package config loads command line settings layered over a TOML file and
// RASORITE_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chemiclast/rasorite/internal/benchmark"
	"github.com/chemiclast/rasorite/internal/cache"
	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName = "rasorite"

	DefaultEnvPrefix = "RASORITE"
	DefaultLogLevel  = LogLevelInfo
	DefaultOutput    = "plot.svg"
	DefaultMaxTicks  = 10
	DefaultWidth     = 1200
	DefaultHeight    = 800
	DefaultTimeout   = 30 * time.Second
)

type Config struct {
	Input          string        `mapstructure:"-"`
	Output         string        `mapstructure:"output"`
	Normalize      bool          `mapstructure:"normalize"`
	FetchBenchmark bool          `mapstructure:"fetch-benchmark"`
	MaxTicks       int           `mapstructure:"max-ticks"`
	Width          int           `mapstructure:"width"`
	Height         int           `mapstructure:"height"`
	SkipInvalid    bool          `mapstructure:"skip-invalid"`
	Cookie         string        `mapstructure:"cookie"`
	BenchmarkURL   string        `mapstructure:"benchmark-url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Cache          bool          `mapstructure:"cache"`
	CacheDB        string        `mapstructure:"cache-db"`
	CacheTTL       time.Duration `mapstructure:"cache-ttl"`
	LogLevel       LogLevel      `mapstructure:"log-level"`
	ConfigFile     string        `mapstructure:"config"`
}

// NewFlagSet declares every command line flag.
func NewFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringP("output", "o", DefaultOutput, "Output file (.svg or .png)")
	fs.BoolP("normalize", "n", false, "Plot the analytics series normalized over the benchmark")
	fs.Bool("fetch-benchmark", false, "Fetch the benchmark from the API instead of reading it from the export")
	fs.Int("max-ticks", DefaultMaxTicks, "Maximum number of ticks per axis")
	fs.Int("width", DefaultWidth, "Chart width in pixels")
	fs.Int("height", DefaultHeight, "Chart height in pixels")
	fs.Bool("skip-invalid", false, "Skip malformed records instead of failing")
	fs.String("cookie", "", "Session cookie for the benchmark API")
	fs.String("benchmark-url", benchmark.DefaultBaseURL, "Benchmark API endpoint")
	fs.Duration("timeout", DefaultTimeout, "Benchmark request timeout")
	fs.Bool("cache", false, "Cache fetched benchmarks on disk")
	fs.String("cache-db", cache.DefaultDBPath(), "Benchmark cache database")
	fs.Duration("cache-ttl", 24*time.Hour, "How long cached benchmarks are reused (0 = forever)")
	fs.String("log-level", string(DefaultLogLevel), "Log level (debug, info, warning, error)")
	fs.String("config", "", "Configuration file")

	return fs
}

// Load parses args and merges them over the environment, the configuration
// file and the defaults. The first positional argument is the export file.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	fs := NewFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, o); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.Input = fs.Arg(0)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readConfigFile loads the first configuration file found. An explicit path
// must exist; the search locations may be empty.
func readConfigFile(v *viper.Viper, o *options) error {
	errFactory := errors.New()

	path := o.configPath
	if path == "" {
		path = v.GetString("config")
	}

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			return nil
		}
		return errFactory.Wrap(errors.ErrReadConfig, err).WithMessage("Failed to read config file")
	}
	return nil
}

// Validate checks values that flags and files cannot constrain.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !c.LogLevel.IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel.String())
	}
	if c.Input == "" {
		return errFactory.New(errors.ErrMissingConfig).WithMessage("missing input file")
	}
	switch strings.ToLower(filepath.Ext(c.Output)) {
	case ".svg", ".png":
	default:
		return errFactory.WithData(errors.ErrInvalidConfig, "output must end in .svg or .png: "+c.Output)
	}
	if c.MaxTicks < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, "max-ticks must be positive")
	}
	if c.Width < 1 || c.Height < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, "width and height must be positive")
	}
	if c.Timeout < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "timeout must not be negative")
	}

	return c.CacheConfig().Validate()
}

// CacheConfig returns the benchmark cache settings.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		DBPath:  c.CacheDB,
		TTL:     c.CacheTTL,
		Enabled: c.Cache,
	}
}
