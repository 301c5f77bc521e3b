package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshcore-dev/companion-ui/internal/config"
	"github.com/meshcore-dev/companion-ui/internal/ui"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_MatchesUIDefaults(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	want := ui.DefaultOptions()
	got := cfg.UIOptions(want.Version, want.BuildDate)
	assert.Equal(t, want, got)
	assert.Equal(t, logrus.WarnLevel, cfg.LogLevel())
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := writeConfig(t, `
ui:
  auto_off_ms: 0
  eink: true
keypad:
  enabled: false
power:
  auto_shutdown_millivolts: 3300
log:
  level: debug
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(0), cfg.UI.AutoOffMS)
	assert.True(t, cfg.UI.EInk)
	assert.Equal(t, 3000, int(cfg.UI.BootScreenMS), "unset keys keep their defaults")
	assert.False(t, cfg.Keypad.Enabled)
	assert.Equal(t, 5, cfg.Keypad.PollIntervalMS)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel())

	opts := cfg.UIOptions("v1.0.0", "today")
	assert.Equal(t, 3300, opts.AutoShutdownMillivolts)
	assert.False(t, opts.KeypadEnabled)
	assert.Equal(t, "v1.0.0", opts.Version)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		invalid bool
	}{
		{name: "bad yaml", body: "ui: [unclosed"},
		{name: "recent list too big", body: "ui:\n  recent_list_size: 99\n", invalid: true},
		{name: "unknown log level", body: "log:\n  level: chatty\n", invalid: true},
		{name: "tiny display", body: "display:\n  width: 10\n", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, config.ErrInvalid))
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
