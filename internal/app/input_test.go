package app_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptyonic/mcstatus/internal/app"
	"github.com/ptyonic/mcstatus/internal/config"
)

func env(m map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestProcessUserInput_Defaults(t *testing.T) {
	cfg, err := app.ProcessUserInput(nil, env(nil))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg.Config)
	assert.False(t, cfg.UseIPv4)
	assert.False(t, cfg.UseIPv6)
	assert.Equal(t, "status.txt", cfg.PrinterConfig.StatusPath)
}

func TestProcessUserInput_Flags(t *testing.T) {
	cfg, err := app.ProcessUserInput([]string{
		"play.example.com:25570",
		"-4",
		"-t", "2.5",
		"-status", "/tmp/status.txt",
		"-state", "/tmp/state.db",
		"-time-format", "%H:%M",
		"-tz", "UTC",
		"-max-players", "50",
		"-log-level", "debug",
		"-j", "-pretty", "-q",
	}, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "play.example.com:25570", cfg.ServerAddress)
	assert.True(t, cfg.UseIPv4)
	assert.Equal(t, 2500*time.Millisecond, cfg.ProbeTimeout)
	assert.Equal(t, "/tmp/status.txt", cfg.StatusPath)
	assert.Equal(t, "/tmp/state.db", cfg.StatePath)
	assert.Equal(t, "%H:%M", cfg.TimeFormat)
	assert.Equal(t, "UTC", cfg.TimeZone)
	assert.Equal(t, 50, cfg.MaxPlayers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.PrinterConfig.OutputJSON)
	assert.True(t, cfg.PrinterConfig.PrettyJSON)
	assert.True(t, cfg.PrinterConfig.Quiet)
	assert.Equal(t, "/tmp/status.txt", cfg.PrinterConfig.StatusPath)
}

func TestProcessUserInput_Precedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "mcstatus.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server_address: from-file.example
status_path: file-status.txt
state_path: file-state.json
time_zone: Asia/Tokyo
max_players: 30
`), 0o644))

	lookup := env(map[string]string{
		config.EnvConfigFile:    file,
		config.EnvStatePath:     "env-state.json",
		config.EnvTimeZone:      "America/Chicago",
		config.EnvMaxPlayers:    "40",
		config.EnvServerAddress: "from-env.example",
	})

	cfg, err := app.ProcessUserInput([]string{"-tz", "UTC", "from-args.example"}, lookup)
	require.NoError(t, err)

	assert.Equal(t, file, cfg.ConfigFile)
	assert.Equal(t, "file-status.txt", cfg.StatusPath, "file beats defaults")
	assert.Equal(t, "env-state.json", cfg.StatePath, "env beats file")
	assert.Equal(t, 40, cfg.MaxPlayers, "env beats file")
	assert.Equal(t, "UTC", cfg.TimeZone, "flag beats env")
	assert.Equal(t, "from-args.example", cfg.ServerAddress, "argument beats env")
}

func TestProcessUserInput_ConfigFlagBeatsEnv(t *testing.T) {
	dir := t.TempDir()
	fromFlag := filepath.Join(dir, "flag.yaml")
	require.NoError(t, os.WriteFile(fromFlag, []byte("status_path: flag.txt\n"), 0o644))

	cfg, err := app.ProcessUserInput([]string{"-config", fromFlag}, env(map[string]string{
		config.EnvConfigFile: filepath.Join(dir, "missing.yaml"),
	}))
	require.NoError(t, err)

	assert.Equal(t, "flag.txt", cfg.StatusPath)
}

func TestProcessUserInput_ControlFlow(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"version", []string{"-v"}, app.ErrVersionRequested},
		{"update check", []string{"-u"}, app.ErrUpdateCheckRequested},
		{"help", []string{"-h"}, app.ErrUsageRequested},
		{"unknown flag", []string{"-nope"}, app.ErrUsageRequested},
		{"too many arguments", []string{"a.example", "b.example"}, app.ErrUsageRequested},
		{"both ip versions", []string{"-4", "-6"}, app.ErrUsageRequested},
		{"missing flag value", []string{"-status"}, app.ErrUsageRequested},
		{"flag instead of value", []string{"-status", "-j"}, app.ErrUsageRequested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.ProcessUserInput(tt.args, env(nil))
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestProcessUserInput_InvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		lookup map[string]string
	}{
		{name: "zero timeout flag", args: []string{"-t", "0"}},
		{name: "negative max players", args: []string{"-max-players", "-5"}},
		{name: "bad env timeout", lookup: map[string]string{config.EnvProbeTimeout: "later"}},
		{name: "bad log level", args: []string{"-log-level", "loud"}},
		{name: "missing explicit config file", args: []string{"-config", "/does/not/exist.yaml"}},
		{name: "empty server argument", args: []string{"  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.ProcessUserInput(tt.args, env(tt.lookup))
			require.Error(t, err)
			assert.False(t, errors.Is(err, app.ErrUsageRequested), "got %v", err)
		})
	}
}
