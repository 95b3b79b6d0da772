// Package config layers the probe settings: built-in defaults, then an
// optional YAML file, then environment variables. Command-line flags are
// applied on top by the app package.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ptyonic/mcstatus/timefmt"
)

// Environment variables read by ApplyEnv.
const (
	EnvTimeFormat    = "TIME_FORMAT"
	EnvTimeZone      = "TIME_FORMAT_TIMEZONE"
	EnvServerAddress = "SERVER_ADDRESS"
	EnvStatusPath    = "STATUS_PATH"
	EnvStatePath     = "STATE_PATH"
	EnvProbeTimeout  = "PROBE_TIMEOUT"
	EnvMaxPlayers    = "MAX_PLAYERS"
	EnvLogDir        = "LOG_DIR"
	EnvLogLevel      = "LOG_LEVEL"
	EnvConfigFile    = "MCSTATUS_CONFIG"
)

const (
	DefaultServerAddress = "ptyonic.dev"
	DefaultStatusPath    = "status.txt"
	DefaultStatePath     = "state.json"
	DefaultProbeTimeout  = 5 * time.Second
	DefaultMaxPlayers    = 20
	DefaultLogLevel      = "warn"
)

// Config is the resolved set of settings for one run.
type Config struct {
	ServerAddress string        `yaml:"server_address"`
	StatusPath    string        `yaml:"status_path"`
	StatePath     string        `yaml:"state_path"`
	TimeFormat    string        `yaml:"time_format"`
	TimeZone      string        `yaml:"time_zone"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout"`
	MaxPlayers    int           `yaml:"max_players"`
	LogDir        string        `yaml:"log_dir"`
	LogLevel      string        `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ServerAddress: DefaultServerAddress,
		StatusPath:    DefaultStatusPath,
		StatePath:     DefaultStatePath,
		TimeFormat:    timefmt.DefaultPattern,
		TimeZone:      timefmt.DefaultZone,
		ProbeTimeout:  DefaultProbeTimeout,
		MaxPlayers:    DefaultMaxPlayers,
		LogLevel:      DefaultLogLevel,
	}
}

// LoadFile overlays the YAML document at path onto cfg. Keys missing from
// the document keep their current value. An empty path is a no-op.
func LoadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}

	return nil
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays every variable that is set and non-empty.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	stringVars := map[string]*string{
		EnvServerAddress: &cfg.ServerAddress,
		EnvStatusPath:    &cfg.StatusPath,
		EnvStatePath:     &cfg.StatePath,
		EnvTimeFormat:    &cfg.TimeFormat,
		EnvTimeZone:      &cfg.TimeZone,
		EnvLogDir:        &cfg.LogDir,
		EnvLogLevel:      &cfg.LogLevel,
	}
	for key, dst := range stringVars {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	if v, ok := get(EnvProbeTimeout); ok {
		d, err := ParseTimeout(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvProbeTimeout)
		}
		cfg.ProbeTimeout = d
	}

	if v, ok := get(EnvMaxPlayers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvMaxPlayers)
		}
		cfg.MaxPlayers = n
	}

	return nil
}

// ParseTimeout accepts a Go duration ("1500ms") or a number of seconds ("2.5").
func ParseTimeout(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return SecondsToDuration(secs), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Errorf("%q is neither seconds nor a duration", s)
	}
	return d, nil
}

// SecondsToDuration converts fractional seconds.
func SecondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

// Validate rejects settings the run cannot work with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServerAddress) == "" {
		return errors.New("server address must not be empty")
	}
	if c.StatePath == "" {
		return errors.New("state path must not be empty")
	}
	if c.ProbeTimeout <= 0 {
		return errors.Errorf("probe timeout must be positive, got %s", c.ProbeTimeout)
	}
	if c.MaxPlayers <= 0 {
		return errors.Errorf("max players must be positive, got %d", c.MaxPlayers)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid log level")
	}
	return nil
}

// Level returns the parsed log level, falling back to warn.
func (c Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.WarnLevel
	}
	return lvl
}
