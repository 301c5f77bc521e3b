// Package sensors defines the sensor manager the UI queries for telemetry and
// named settings, along with an in-memory implementation.
package sensors

import (
	"github.com/sirupsen/logrus"

	"github.com/meshcore-dev/companion-ui/internal/telemetry"
)

// PermissionsAll asks a manager for every reading it has.
const PermissionsAll uint8 = 0xFF

// SettingGPS is the setting that switches the location receiver on ("1") or off ("0").
const SettingGPS = "gps"

// Manager exposes named settings and a pull-based telemetry query.
type Manager interface {
	NumSettings() int
	SettingName(i int) string
	SettingValue(i int) string
	SetSettingValue(name, value string) bool
	// QuerySensors appends the readings allowed by permissions to out.
	QuerySensors(permissions uint8, out *telemetry.Buffer) bool
}

// Reading is one simulated sensor value.
type Reading struct {
	Channel uint8
	Type    telemetry.Type
	Value   float64
}

// Location is a simulated GPS fix.
type Location struct {
	Lat, Lon, Alt float64
}

type setting struct {
	name, value string
}

// SimManager serves fixed readings. A GPS fix is only reported while the gps
// setting is "1".
type SimManager struct {
	settings []setting
	readings []Reading
	location *Location
}

// NewSimManager creates a manager; a non-nil location adds the gps setting.
func NewSimManager(readings []Reading, location *Location) *SimManager {
	m := &SimManager{readings: readings, location: location}
	if location != nil {
		m.settings = append(m.settings, setting{name: SettingGPS, value: "0"})
	}
	return m
}

func (m *SimManager) NumSettings() int { return len(m.settings) }

func (m *SimManager) SettingName(i int) string {
	if i < 0 || i >= len(m.settings) {
		return ""
	}
	return m.settings[i].name
}

func (m *SimManager) SettingValue(i int) string {
	if i < 0 || i >= len(m.settings) {
		return ""
	}
	return m.settings[i].value
}

func (m *SimManager) SetSettingValue(name, value string) bool {
	for i := range m.settings {
		if m.settings[i].name == name {
			logrus.Debugf("sensors: %s=%s", name, value)
			m.settings[i].value = value
			return true
		}
	}
	return false
}

// Setting returns the value of a named setting.
func (m *SimManager) Setting(name string) (string, bool) {
	for _, s := range m.settings {
		if s.name == name {
			return s.value, true
		}
	}
	return "", false
}

func (m *SimManager) QuerySensors(_ uint8, out *telemetry.Buffer) bool {
	for _, r := range m.readings {
		if !out.Add(r.Channel, r.Type, r.Value) {
			logrus.Debugf("sensors: dropped %s reading on channel %d", r.Type.Name(), r.Channel)
		}
	}
	if v, _ := m.Setting(SettingGPS); v == "1" && m.location != nil {
		out.AddGPS(telemetry.ChannelSelf, m.location.Lat, m.location.Lon, m.location.Alt)
	}
	return true
}
