package api

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Flarenzy/whats-my-ip/internal/domain"
	"github.com/Flarenzy/whats-my-ip/internal/ipify"
)

const ConfigEnv = "WHATSMYIP_CONFIG"

type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Lookup       LookupConfig
	Log          LogConfig
}

type LookupConfig struct {
	URL string
	// Timeout of zero leaves lookups unbounded.
	Timeout              time.Duration
	RequireSuccessStatus bool
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration accepts seconds, fractions included, or a Go duration string.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var secs float64
	if err := value.Decode(&secs); err == nil {
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// fileConfig mirrors Config with YAML-friendly durations. Pointers tell
// unset keys apart from zero values.
type fileConfig struct {
	Port         string    `yaml:"port"`
	ReadTimeout  *Duration `yaml:"read_timeout"`
	WriteTimeout *Duration `yaml:"write_timeout"`
	Lookup       struct {
		URL                  string    `yaml:"url"`
		Timeout              *Duration `yaml:"timeout"`
		RequireSuccessStatus *bool     `yaml:"require_success_status"`
	} `yaml:"lookup"`
	Log LogConfig `yaml:"log"`
}

func DefaultConfig() Config {
	return Config{
		Port:         "4040",
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		Lookup: LookupConfig{
			URL: ipify.DefaultURL,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads the optional YAML file named by WHATSMYIP_CONFIG and then
// applies environment overrides.
func LoadConfig() (Config, error) {
	return LoadConfigFile(os.Getenv(ConfigEnv))
}

// LoadConfigFile is LoadConfig with an explicit file path. An empty path
// skips the file.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidConfig, path, err)
	}

	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.ReadTimeout != nil {
		c.ReadTimeout = time.Duration(*fc.ReadTimeout)
	}
	if fc.WriteTimeout != nil {
		c.WriteTimeout = time.Duration(*fc.WriteTimeout)
	}
	if fc.Lookup.URL != "" {
		c.Lookup.URL = fc.Lookup.URL
	}
	if fc.Lookup.Timeout != nil {
		c.Lookup.Timeout = time.Duration(*fc.Lookup.Timeout)
	}
	if fc.Lookup.RequireSuccessStatus != nil {
		c.Lookup.RequireSuccessStatus = *fc.Lookup.RequireSuccessStatus
	}
	if fc.Log.Level != "" {
		c.Log.Level = fc.Log.Level
	}
	if fc.Log.Format != "" {
		c.Log.Format = fc.Log.Format
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("LOOKUP_URL"); v != "" {
		c.Lookup.URL = v
	}
	if v := os.Getenv("LOOKUP_TIMEOUT"); v != "" {
		dur, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: LOOKUP_TIMEOUT: %v", domain.ErrInvalidConfig, err)
		}
		c.Lookup.Timeout = dur
	}
	if v := os.Getenv("LOOKUP_REQUIRE_SUCCESS_STATUS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: LOOKUP_REQUIRE_SUCCESS_STATUS: %v", domain.ErrInvalidConfig, err)
		}
		c.Lookup.RequireSuccessStatus = b
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Port); err != nil || p < 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("%w: port %q", domain.ErrInvalidConfig, c.Port))
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: negative server timeout", domain.ErrInvalidConfig))
	}
	if c.Lookup.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: negative lookup timeout", domain.ErrInvalidConfig))
	}
	if _, err := c.Log.level(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log format %q", domain.ErrInvalidConfig, c.Log.Format))
	}

	return errors.Join(errs...)
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", domain.ErrInvalidConfig, l.Level)
	}
	return level, nil
}
