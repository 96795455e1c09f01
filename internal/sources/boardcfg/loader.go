// Package boardcfg loads the status board channel map from board.yaml.
package boardcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config maps platform keys to the channel carrying that platform's status.
type Config struct {
	Channels map[string]string `yaml:"channels"`
}

// Loader handles loading and parsing of board.yaml
type Loader struct {
	filePath string
}

// NewLoader creates a new board config loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the board file. A missing file is not an error;
// the board simply starts with no channels configured.
func (l *Loader) Load() (Config, error) {
	data, err := os.ReadFile(l.filePath)
	if os.IsNotExist(err) {
		return Config{Channels: map[string]string{}}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read board file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse board yaml: %w", err)
	}
	if config.Channels == nil {
		config.Channels = map[string]string{}
	}
	return config, nil
}
