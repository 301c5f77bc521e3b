// Package scenario describes scripted simulator sessions: the seed data for a
// simulated node, an optional configuration overlay and timed input steps. It
// loads them from JSON or YAML files, finds them on disk and replays them
// against a headless controller.
package scenario

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/meshcore-dev/companion-ui/internal/config"
	"github.com/meshcore-dev/companion-ui/internal/keys"
	"github.com/meshcore-dev/companion-ui/internal/telemetry"
	"github.com/meshcore-dev/companion-ui/internal/ui"
	"github.com/meshcore-dev/companion-ui/internal/validate"
)

var (
	// ErrUnknownFormat is returned for files that are neither JSON nor YAML.
	ErrUnknownFormat = errors.New("unknown scenario format")
	// ErrInvalid wraps every validation failure of a scenario.
	ErrInvalid = errors.New("invalid scenario")
)

// Contact is a stored contact. Flood contacts have no learned route.
type Contact struct {
	Name  string `json:"name"            yaml:"name"            validate:"required,max=31"`
	Flood bool   `json:"flood,omitempty" yaml:"flood,omitempty"`
}

type Channel struct {
	Name string `json:"name" yaml:"name" validate:"required,max=31"`
	PSK  string `json:"psk"  yaml:"psk"  validate:"channel_psk"`
}

// Advert is a node heard AgeSecs before the scenario starts.
type Advert struct {
	Name    string `json:"name"     yaml:"name"     validate:"required,max=31"`
	Hops    uint8  `json:"hops"     yaml:"hops"     validate:"lte=64"`
	AgeSecs uint32 `json:"age_secs" yaml:"age_secs"`
}

// Sensor is a fixed reading. Type is a telemetry type name such as
// "temperature" or "humidity".
type Sensor struct {
	Channel uint8   `json:"channel" yaml:"channel" validate:"gte=1"`
	Type    string  `json:"type"    yaml:"type"    validate:"required"`
	Value   float64 `json:"value"   yaml:"value"`
}

type Location struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
	Alt float64 `json:"alt" yaml:"alt"`
}

// Node seeds the simulated mesh node and board.
type Node struct {
	Name      string    `json:"name,omitempty"       yaml:"name,omitempty"       validate:"omitempty,max=31"`
	BLEPin    uint32    `json:"ble_pin,omitempty"    yaml:"ble_pin,omitempty"    validate:"lte=999999"`
	Connected bool      `json:"connected,omitempty"  yaml:"connected,omitempty"`
	BatteryMV uint16    `json:"battery_mv,omitempty" yaml:"battery_mv,omitempty" validate:"lte=5000"`
	Contacts  []Contact `json:"contacts,omitempty"   yaml:"contacts,omitempty"   validate:"dive"`
	Channels  []Channel `json:"channels,omitempty"   yaml:"channels,omitempty"   validate:"dive"`
	Adverts   []Advert  `json:"adverts,omitempty"    yaml:"adverts,omitempty"    validate:"dive"`
	Sensors   []Sensor  `json:"sensors,omitempty"    yaml:"sensors,omitempty"    validate:"dive"`
	GPS       *Location `json:"gps,omitempty"        yaml:"gps,omitempty"`
}

// Message is an inbound message delivered to the controller.
type Message struct {
	From   string `json:"from"             yaml:"from"             validate:"required,max=31"`
	Text   string `json:"text"             yaml:"text"             validate:"required"`
	Hops   uint8  `json:"hops,omitempty"   yaml:"hops,omitempty"   validate:"lte=64"`
	Direct bool   `json:"direct,omitempty" yaml:"direct,omitempty"`
}

// Step is one scripted input, applied on the first tick at or after At.
type Step struct {
	At        int64    `json:"at"                   yaml:"at"                   validate:"gte=0"`
	Button    string   `json:"button,omitempty"     yaml:"button,omitempty"     validate:"omitempty,oneof=click double double-click triple triple-click long long-press"`
	Type      string   `json:"type,omitempty"       yaml:"type,omitempty"`
	Bytes     []int    `json:"bytes,omitempty"      yaml:"bytes,omitempty"      validate:"dive,gte=0,lte=255"`
	Message   *Message `json:"message,omitempty"    yaml:"message,omitempty"`
	Release   bool     `json:"release,omitempty"    yaml:"release,omitempty"`
	BatteryMV uint16   `json:"battery_mv,omitempty" yaml:"battery_mv,omitempty" validate:"lte=5000"`
}

// Scenario is a complete scripted session.
type Scenario struct {
	Name        string         `json:"name"                  yaml:"name"                  validate:"required"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Node        Node           `json:"node"                  yaml:"node"`
	Config      map[string]any `json:"config,omitempty"      yaml:"config,omitempty"`
	Steps       []Step         `json:"steps,omitempty"       yaml:"steps,omitempty"       validate:"dive"`

	// Until is the simulated time the replay stops at; 0 runs until
	// tailMS after the last step.
	Until int64 `json:"until,omitempty" yaml:"until,omitempty" validate:"gte=0"`
}

// Validate checks field constraints and the values validator tags cannot express.
func (s Scenario) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	for _, r := range s.Node.Sensors {
		t, ok := telemetry.ParseType(r.Type)
		if !ok {
			return fmt.Errorf("%w: unknown sensor type %q", ErrInvalid, r.Type)
		}
		if t == telemetry.TypeGPS {
			return fmt.Errorf("%w: gps readings come from node.gps", ErrInvalid)
		}
	}
	for i, st := range s.Steps {
		if i > 0 && st.At < s.Steps[i-1].At {
			return fmt.Errorf("%w: step %d at %dms is before step %d", ErrInvalid, i, st.At, i-1)
		}
		if st.Button != "" {
			if _, ok := keys.ParseGesture(st.Button); !ok {
				return fmt.Errorf("%w: step %d: unknown button %q", ErrInvalid, i, st.Button)
			}
		}
	}
	if s.Until > 0 && len(s.Steps) > 0 && s.Until < s.Steps[len(s.Steps)-1].At {
		return fmt.Errorf("%w: until %dms ends before the last step", ErrInvalid, s.Until)
	}
	return nil
}

// Apply overlays the scenario's config section on base.
func (s Scenario) Apply(base config.Config) (config.Config, error) {
	if len(s.Config) == 0 {
		return base, nil
	}
	data, err := yaml.Marshal(s.Config)
	if err != nil {
		return config.Config{}, fmt.Errorf("scenario %s: encode config: %w", s.Name, err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config.Config{}, fmt.Errorf("scenario %s: config: %w", s.Name, err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return cfg, nil
}

// End is the simulated time a replay runs to.
func (s Scenario) End() int64 {
	if s.Until > 0 {
		return s.Until
	}
	var last int64
	if n := len(s.Steps); n > 0 {
		last = s.Steps[n-1].At
	}
	return last + tailMS
}

// Default is the session the simulator starts with when no scenario is given.
func Default() Scenario {
	return Scenario{
		Name:        "default",
		Description: "two contacts, the public channel and a few recent adverts",
		Node: Node{
			Contacts: []Contact{{Name: "alice"}, {Name: "bob", Flood: true}},
			Channels: []Channel{{Name: "Public", PSK: ui.DefaultChannelPSK}},
			Adverts: []Advert{
				{Name: "alice", Hops: 0, AgeSecs: 45},
				{Name: "relay-7", Hops: 2, AgeSecs: 600},
			},
			Sensors: []Sensor{{Channel: 2, Type: "temperature", Value: 19.5}},
			GPS:     &Location{Lat: 52.52, Lon: 13.405, Alt: 34},
		},
	}
}
