package config

import (
	"time"

	"verifbench/internal/agent"
)

// Fallback values applied by Normalize.
const (
	DefaultWorkers         = 4
	DefaultEvidenceTimeout = 5 * time.Minute
	DefaultOutputDir       = "results"
)

// Normalize fills absent optional fields with defaults.
func Normalize(cfg *Config) {
	if cfg.Defaults.MaxRounds == 0 {
		cfg.Defaults.MaxRounds = agent.DefaultMaxRounds
	}
	if cfg.Defaults.Workers == 0 {
		cfg.Defaults.Workers = DefaultWorkers
	}
	if cfg.Evidence.Timeout == 0 {
		cfg.Evidence.Timeout = Duration(DefaultEvidenceTimeout)
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	for i := range cfg.Models {
		if cfg.Models[i].Protocol == "" {
			cfg.Models[i].Protocol = ProtocolChat
		}
	}
}
