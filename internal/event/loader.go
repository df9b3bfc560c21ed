package event

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/pipewright/internal/result"
)

// descriptor is the YAML wire format of an event file.
type descriptor struct {
	Kind         string   `yaml:"kind"`
	Branch       string   `yaml:"branch"`
	ChangedPaths []string `yaml:"changed_paths"`
}

// Load reads an event descriptor from a YAML file and returns the
// normalized, validated Event.
func Load(path string) (*Event, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading event descriptor: %v", result.ErrInvalidDocument, err)
	}
	return Parse(raw)
}

// Parse decodes an event descriptor from raw YAML.
func Parse(raw []byte) (*Event, error) {
	var d descriptor
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: decoding event descriptor: %v", result.ErrInvalidDocument, err)
	}

	ev := &Event{
		Kind:         Kind(d.Kind),
		Branch:       d.Branch,
		ChangedPaths: d.ChangedPaths,
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}
