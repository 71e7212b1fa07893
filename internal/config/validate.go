package config

import (
	"fmt"
	"strings"
)

// Issue captures a validation problem in a config.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error returns a readable message for validation failures.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("config validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}

// Validate checks a normalized config for correctness.
func Validate(cfg *Config) error {
	collector := &issueCollector{}

	if cfg.Version == 0 {
		collector.add("version", "is required")
	} else if cfg.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	if len(cfg.Models) == 0 {
		collector.add("models", "must include at least one entry")
	}
	seenNames := map[string]struct{}{}
	for i, model := range cfg.Models {
		prefix := fmt.Sprintf("models[%d]", i)
		name := strings.TrimSpace(model.Name)
		if name == "" {
			collector.add(prefix+".name", "is required")
		} else if _, exists := seenNames[name]; exists {
			collector.add(prefix+".name", fmt.Sprintf("duplicate model %q", name))
		} else {
			seenNames[name] = struct{}{}
		}
		if model.Protocol != ProtocolChat && model.Protocol != ProtocolResponses {
			collector.add(prefix+".protocol", fmt.Sprintf("must be %q or %q", ProtocolChat, ProtocolResponses))
		}
		if strings.TrimSpace(model.BaseURL) == "" {
			collector.add(prefix+".base_url", "is required")
		}
		if strings.TrimSpace(model.APIKeyEnv) == "" {
			collector.add(prefix+".api_key_env", "is required")
		}
	}

	if strings.TrimSpace(cfg.Evidence.BaseURL) == "" {
		collector.add("evidence.base_url", "is required")
	}
	if cfg.Evidence.Timeout < 0 {
		collector.add("evidence.timeout", "must not be negative")
	}

	if cfg.Defaults.MaxRounds < 1 {
		collector.add("defaults.max_rounds", "must be at least 1")
	}
	if cfg.Defaults.Temperature < 0 || cfg.Defaults.Temperature > 2 {
		collector.add("defaults.temperature", "must be between 0 and 2")
	}
	if cfg.Defaults.Workers < 1 {
		collector.add("defaults.workers", "must be at least 1")
	}

	return collector.result()
}
