// Package config loads the simulator and UI configuration: built-in defaults
// overlaid with an optional YAML file, then validated.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/meshcore-dev/companion-ui/internal/keys"
	"github.com/meshcore-dev/companion-ui/internal/ui"
	"github.com/meshcore-dev/companion-ui/internal/validate"
)

// ErrInvalid wraps every validation failure returned by Load and Validate.
var ErrInvalid = errors.New("invalid configuration")

type UI struct {
	AutoOffMS         int64 `yaml:"auto_off_ms" validate:"gte=0"`
	BootScreenMS      int64 `yaml:"boot_screen_ms" validate:"gte=0"`
	LongPressRescueMS int64 `yaml:"long_press_rescue_ms" validate:"gte=0"`
	RecentListSize    int   `yaml:"recent_list_size" validate:"gte=1,lte=16"`
	SensorsPage       bool  `yaml:"sensors_page"`
	EInk              bool  `yaml:"eink"`
}

type Keypad struct {
	Enabled        bool `yaml:"enabled"`
	PollIntervalMS int  `yaml:"poll_interval_ms" validate:"gte=1,lte=1000"`
}

type Power struct {
	AutoShutdownMillivolts int   `yaml:"auto_shutdown_millivolts" validate:"gte=0,lte=5000"`
	BatteryCheckMS         int64 `yaml:"battery_check_ms" validate:"gte=100"`
	ShutdownDrainMS        int64 `yaml:"shutdown_drain_ms" validate:"gte=0,lte=10000"`
}

type LED struct {
	Enabled bool `yaml:"enabled"`
}

type Display struct {
	Width  int `yaml:"width" validate:"gte=64,lte=480"`
	Height int `yaml:"height" validate:"gte=32,lte=320"`
}

type Log struct {
	Level string `yaml:"level" validate:"oneof=trace debug info warn error"`
	File  string `yaml:"file"`
}

// Config is the full configuration file.
type Config struct {
	UI      UI      `yaml:"ui"`
	Keypad  Keypad  `yaml:"keypad"`
	Power   Power   `yaml:"power"`
	LED     LED     `yaml:"led"`
	Display Display `yaml:"display"`
	Log     Log     `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		UI: UI{
			AutoOffMS:         15000,
			BootScreenMS:      3000,
			LongPressRescueMS: 8000,
			RecentListSize:    4,
			SensorsPage:       true,
		},
		Keypad: Keypad{
			Enabled:        true,
			PollIntervalMS: keys.DefaultPollIntervalMS,
		},
		Power: Power{
			BatteryCheckMS:  8000,
			ShutdownDrainMS: 2500,
		},
		LED:     LED{Enabled: true},
		Display: Display{Width: 128, Height: 64},
		Log:     Log{Level: "warn"},
	}
}

// Load overlays the YAML file at path on the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	logrus.Debug("Loading config file from: ", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// LogLevel parses Log.Level, defaulting to warn.
func (c Config) LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

// UIOptions maps the configuration onto controller options.
func (c Config) UIOptions(version, buildDate string) ui.Options {
	return ui.Options{
		AutoOffMS:              c.UI.AutoOffMS,
		BootScreenMS:           c.UI.BootScreenMS,
		RescueWindowMS:         c.UI.LongPressRescueMS,
		RecentListSize:         c.UI.RecentListSize,
		SensorsPage:            c.UI.SensorsPage,
		EInk:                   c.UI.EInk,
		KeypadEnabled:          c.Keypad.Enabled,
		KeypadPollMS:           c.Keypad.PollIntervalMS,
		AutoShutdownMillivolts: c.Power.AutoShutdownMillivolts,
		BatteryCheckMS:         c.Power.BatteryCheckMS,
		ShutdownDrainMS:        c.Power.ShutdownDrainMS,
		LED:                    c.LED.Enabled,
		Version:                version,
		BuildDate:              buildDate,
	}
}
