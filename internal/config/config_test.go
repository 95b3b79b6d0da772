package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ptyonic/mcstatus/internal/config"
)

func envMap(m map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "ptyonic.dev", cfg.ServerAddress)
	assert.Equal(t, "status.txt", cfg.StatusPath)
	assert.Equal(t, "state.json", cfg.StatePath)
	assert.Equal(t, "%b%d %H:%M:%S %Z", cfg.TimeFormat)
	assert.Equal(t, "Europe/Berlin", cfg.TimeZone)
	assert.Equal(t, 5*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 20, cfg.MaxPlayers)
	assert.Empty(t, cfg.LogDir)
	assert.Equal(t, zapcore.WarnLevel, cfg.Level())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcstatus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_address: mc.example.com:25570
probe_timeout: 1500ms
max_players: 64
time_zone: UTC
`), 0o644))

	cfg := config.Default()
	require.NoError(t, config.LoadFile(&cfg, path))

	assert.Equal(t, "mc.example.com:25570", cfg.ServerAddress)
	assert.Equal(t, 1500*time.Millisecond, cfg.ProbeTimeout)
	assert.Equal(t, 64, cfg.MaxPlayers)
	assert.Equal(t, "UTC", cfg.TimeZone)
	// untouched keys keep their defaults
	assert.Equal(t, "state.json", cfg.StatePath)
	assert.Equal(t, "%b%d %H:%M:%S %Z", cfg.TimeFormat)
}

func TestLoadFile_Errors(t *testing.T) {
	cfg := config.Default()

	assert.NoError(t, config.LoadFile(&cfg, ""))

	err := config.LoadFile(&cfg, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("probe_timeout: [1, 2"), 0o644))
	err = config.LoadFile(&cfg, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestApplyEnv(t *testing.T) {
	cfg := config.Default()

	err := config.ApplyEnv(&cfg, envMap(map[string]string{
		config.EnvServerAddress: "10.0.0.5",
		config.EnvStatusPath:    "/var/www/status.txt",
		config.EnvStatePath:     "/var/lib/mcstatus/state.db",
		config.EnvTimeFormat:    "%H:%M",
		config.EnvTimeZone:      "America/New_York",
		config.EnvProbeTimeout:  "2.5",
		config.EnvMaxPlayers:    "8",
		config.EnvLogDir:        "/var/log/mcstatus",
		config.EnvLogLevel:      "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, config.Config{
		ServerAddress: "10.0.0.5",
		StatusPath:    "/var/www/status.txt",
		StatePath:     "/var/lib/mcstatus/state.db",
		TimeFormat:    "%H:%M",
		TimeZone:      "America/New_York",
		ProbeTimeout:  2500 * time.Millisecond,
		MaxPlayers:    8,
		LogDir:        "/var/log/mcstatus",
		LogLevel:      "debug",
	}, cfg)
}

func TestApplyEnv_EmptyValuesIgnored(t *testing.T) {
	cfg := config.Default()

	require.NoError(t, config.ApplyEnv(&cfg, envMap(map[string]string{
		config.EnvServerAddress: "   ",
		config.EnvProbeTimeout:  "",
	})))

	assert.Equal(t, config.Default(), cfg)
}

func TestApplyEnv_InvalidNumbers(t *testing.T) {
	tests := map[string]string{
		config.EnvProbeTimeout: "soon",
		config.EnvMaxPlayers:   "twenty",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			cfg := config.Default()
			err := config.ApplyEnv(&cfg, envMap(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestApplyEnv_ProcessEnvironment(t *testing.T) {
	t.Setenv(config.EnvStatePath, "from-env.json")

	cfg := config.Default()
	require.NoError(t, config.ApplyEnv(&cfg, nil))

	assert.Equal(t, "from-env.json", cfg.StatePath)
}

func TestPrecedence_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcstatus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("status_path: file.txt\nstate_path: file.json\n"), 0o644))

	cfg := config.Default()
	require.NoError(t, config.LoadFile(&cfg, path))
	require.NoError(t, config.ApplyEnv(&cfg, envMap(map[string]string{config.EnvStatusPath: "env.txt"})))

	assert.Equal(t, "env.txt", cfg.StatusPath)
	assert.Equal(t, "file.json", cfg.StatePath)
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{in: "5", want: 5 * time.Second},
		{in: "0.25", want: 250 * time.Millisecond},
		{in: "1500ms", want: 1500 * time.Millisecond},
		{in: "2m", want: 2 * time.Minute},
		{in: "fast", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := config.ParseTimeout(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *config.Config)
	}{
		{"empty server", func(c *config.Config) { c.ServerAddress = " " }},
		{"empty state path", func(c *config.Config) { c.StatePath = "" }},
		{"zero timeout", func(c *config.Config) { c.ProbeTimeout = 0 }},
		{"negative capacity", func(c *config.Config) { c.MaxPlayers = -1 }},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
