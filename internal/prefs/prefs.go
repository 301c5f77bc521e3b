package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/meshcore-dev/companion-ui/internal/validate"
)

// DefaultPath is where the CLI keeps node preferences unless told otherwise.
const DefaultPath = "~/.companion-ui/prefs.json"

// NodePrefs are the persisted node settings the UI displays.
type NodePrefs struct {
	NodeName   string  `json:"node_name" validate:"required,max=31"`
	Freq       float64 `json:"freq" validate:"gte=137,lte=1020"`
	BW         float64 `json:"bw" validate:"lora_bw"`
	SF         uint8   `json:"sf" validate:"gte=5,lte=12"`
	CR         uint8   `json:"cr" validate:"gte=5,lte=8"`
	TxPowerDBm int8    `json:"tx_power_dbm" validate:"gte=-9,lte=30"`
	DeviceID   string  `json:"device_id,omitempty" validate:"omitempty,uuid4"`
}

// Default returns factory settings for a fresh node.
func Default() NodePrefs {
	id := uuid.NewString()
	return NodePrefs{
		NodeName:   "node-" + id[:8],
		Freq:       869.525,
		BW:         250,
		SF:         11,
		CR:         5,
		TxPowerDBm: 22,
		DeviceID:   id,
	}
}

// Store handles the loading and saving of the preferences file.
type Store struct {
	Path string `validate:"required,filepath"`
	Data NodePrefs
}

// NewStore creates a Store, loading the file at path when it exists.
func NewStore(path string) (*Store, error) {
	expandedPath, err := expandTilde(path)
	if err != nil {
		return nil, err
	}

	s := &Store{Path: expandedPath, Data: Default()}
	if err := s.Load(); err != nil {
		// If the file doesn't exist, we can ignore the error.
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

// NewOrExistingStore returns the existing store if the file exists, or creates
// one and writes factory settings to disk immediately.
func NewOrExistingStore(path string) (*Store, error) {
	expandedPath, err := expandTilde(path)
	if err != nil {
		return nil, err
	}

	_, statErr := os.Stat(expandedPath)
	s, err := NewStore(path)
	if err != nil {
		return nil, err
	}
	if errors.Is(statErr, os.ErrNotExist) {
		if err := s.Save(); err != nil {
			return nil, err
		}
	} else if statErr != nil {
		return nil, statErr
	}
	return s, nil
}

// Load reads the file, then validates and self-heals what it can.
func (s *Store) Load() error {
	logrus.Debug("Loading prefs file from: ", s.Path)
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return err
	}

	loaded := Default()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse %s: %w", s.Path, err)
	}
	s.Data = loaded

	if err := validate.Struct(s.Data); err != nil {
		if s.heal() {
			if err := s.Save(); err != nil {
				return err
			}
		}
	}
	return nil
}

// heal replaces invalid fields with factory values and reports whether anything changed.
func (s *Store) heal() bool {
	def := Default()
	changed := false
	fix := func(field, tag string, value any, reset func()) {
		if validate.Var(value, tag) != nil {
			logrus.Warnf("Invalid %s found in prefs; resetting.", field)
			reset()
			changed = true
		}
	}
	fix("device_id", "required,uuid4", s.Data.DeviceID, func() { s.Data.DeviceID = def.DeviceID })
	fix("node_name", "required,max=31", s.Data.NodeName, func() { s.Data.NodeName = def.NodeName })
	fix("freq", "gte=137,lte=1020", s.Data.Freq, func() { s.Data.Freq = def.Freq })
	fix("bw", "lora_bw", s.Data.BW, func() { s.Data.BW = def.BW })
	fix("sf", "gte=5,lte=12", s.Data.SF, func() { s.Data.SF = def.SF })
	fix("cr", "gte=5,lte=8", s.Data.CR, func() { s.Data.CR = def.CR })
	fix("tx_power_dbm", "gte=-9,lte=30", s.Data.TxPowerDBm, func() { s.Data.TxPowerDBm = def.TxPowerDBm })
	return changed
}

// SetRadio validates and applies new radio parameters.
func (s *Store) SetRadio(freq, bw float64, sf, cr uint8, tx int8) error {
	next := s.Data
	next.Freq, next.BW, next.SF, next.CR, next.TxPowerDBm = freq, bw, sf, cr, tx
	if err := validate.Struct(next); err != nil {
		return fmt.Errorf("invalid radio settings: %w", err)
	}
	s.Data = next
	return nil
}

// SetNodeName validates and applies a new node name.
func (s *Store) SetNodeName(name string) error {
	if err := validate.Var(name, "required,max=31"); err != nil {
		return fmt.Errorf("invalid node name %q: %w", name, err)
	}
	s.Data.NodeName = name
	return nil
}

// Save writes the preferences to the file.
func (s *Store) Save() error {
	logrus.Debug("Saving prefs file to: ", s.Path)
	// Ensure parent directory exists.
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.Data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.Path, data, 0o600)
}

// expandTilde expands the tilde in a path to the user's home directory.
func expandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}
