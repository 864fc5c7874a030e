package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// LoadFile parses a Settings document from a YAML file and validates
// it.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("settings.LoadFile: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates a Settings document from raw YAML.
func LoadBytes(data []byte) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings.LoadBytes: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, vaulterr.Wrap(vaulterr.KindSettings, "settings.LoadBytes", err)
	}
	return s, nil
}
