package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JamWare/Funamboard/sim"
)

// LoadTuning returns the default simulation tuning, overridden by the YAML
// file at path when path is non-empty. Fields absent from the file keep their
// defaults.
func LoadTuning(path string) (sim.Tuning, error) {
	tun := sim.DefaultTuning()
	if path == "" {
		return tun, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return tun, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(b, &tun); err != nil {
		return tun, fmt.Errorf("parse tuning file: %w", err)
	}
	return tun, nil
}
