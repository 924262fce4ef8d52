package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// ErrTag marks invalid option combinations, caught before processing.
const ErrTag = ftag.Kind("config")

// Config holds the conversion settings, threaded through every stage
// as a read-only value.
type Config struct {
	MinPitch         uint8  `json:"minPitch"`
	MaxPitch         uint8  `json:"maxPitch"`
	MinVelocity      uint8  `json:"minVelocity"`
	MaxEventsPerFunc int    `json:"maxEventsPerFunc"`
	NotesPerValue    int    `json:"notesPerValue"`
	Repeat           bool   `json:"repeat"`
	StructureVersion int    `json:"structureVersion"`
	BaseAddress      uint32 `json:"baseAddress"`
	Output           string `json:"output,omitempty"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		MinPitch:         27,
		MaxPitch:         111,
		MinVelocity:      31,
		MaxEventsPerFunc: 2048,
		NotesPerValue:    8,
		Repeat:           false,
		StructureVersion: 0,
		BaseAddress:      0,
		Output:           "-",
	}
}

// PitchRange returns the number of pitches inside the configured bounds.
func (c *Config) PitchRange() int {
	return int(c.MaxPitch) - int(c.MinPitch) + 1
}

// GroupCount returns how many pitch groups the range partitions into.
// The last group is zero-padded when NotesPerValue does not divide
// the range evenly.
func (c *Config) GroupCount() int {
	return (c.PitchRange() + c.NotesPerValue - 1) / c.NotesPerValue
}

// Validate checks option combinations once, before any processing
func (c *Config) Validate() error {
	if c.MaxPitch > 127 {
		return fault.New(fmt.Sprintf("max-pitch %d exceeds 127", c.MaxPitch), ftag.With(ErrTag))
	}
	if c.MinPitch > c.MaxPitch {
		return fault.New(fmt.Sprintf("min-pitch %d exceeds max-pitch %d", c.MinPitch, c.MaxPitch), ftag.With(ErrTag))
	}
	if c.MinVelocity > 127 {
		return fault.New(fmt.Sprintf("min-velocity %d exceeds 127", c.MinVelocity), ftag.With(ErrTag))
	}
	if c.MaxEventsPerFunc < 1 {
		return fault.New(fmt.Sprintf("max-events-per-func must be positive, got %d", c.MaxEventsPerFunc), ftag.With(ErrTag))
	}
	// The value width reserves 7 group bits and at least 9 delta bits.
	if c.NotesPerValue < 1 || c.NotesPerValue > 16 {
		return fault.New(fmt.Sprintf("notes-per-value must be between 1 and 16, got %d", c.NotesPerValue), ftag.With(ErrTag))
	}
	if c.Output == "" {
		return fault.New("output destination is empty", ftag.With(ErrTag))
	}
	return nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midi2struct"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fault.Wrap(err, fmsg.With("could not read config file"), ftag.With(ErrTag))
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fault.Wrap(err, fmsg.With("could not parse config file"), ftag.With(ErrTag))
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
