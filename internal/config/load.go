package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the settings file at path, applies it over DefaultSettings,
// validates the result, and returns the snapshot. Unknown keys are rejected
// so typos fail at startup rather than silently falling back to defaults.
func Load(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings %q: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return s, fmt.Errorf("parse settings %q: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("settings %q: %w", path, err)
	}
	return s, nil
}
