package app

import (
	"errors"

	"github.com/specialistvlad/pipewright/internal/logstore"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string // hcl document file or directory
	EventPath    string // yaml event descriptor
	WorkDir      string // working directory handed to the step executor

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	Workers         int

	// Step-log retention bounds; zero means the package defaults.
	LogRetentionEntries int
	LogRetentionBytes   int
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.EventPath == "" {
		return nil, errors.New("EventPath is a required configuration field and cannot be empty")
	}

	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	if cfg.LogRetentionEntries <= 0 {
		cfg.LogRetentionEntries = logstore.DefaultMaxEntries
	}
	if cfg.LogRetentionBytes <= 0 {
		cfg.LogRetentionBytes = logstore.DefaultMaxEntryBytes
	}

	return &cfg, nil
}
