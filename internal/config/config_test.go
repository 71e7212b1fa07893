package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
version: 1
models:
  - name: acme/fast-1
    protocol: chat
    base_url: https://llm.acme.test/v1
    api_key_env: ACME_API_KEY
  - name: beta/deep-2
    protocol: responses
    base_url: https://beta.test/v1
    api_key_env: BETA_API_KEY
evidence:
  base_url: https://evidence.test
  api_key_env: EVIDENCE_API_KEY
  timeout: 3m
defaults:
  max_rounds: 20
  temperature: 0.3
  workers: 2
output:
  dir: out
  database_path: out/runs.duckdb
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Models) != 2 || cfg.Models[1].Protocol != ProtocolResponses {
		t.Fatalf("unexpected models %+v", cfg.Models)
	}
	if cfg.Evidence.Timeout.Std() != 3*time.Minute {
		t.Fatalf("unexpected evidence timeout %v", cfg.Evidence.Timeout)
	}
	if cfg.Defaults.MaxRounds != 20 || cfg.Defaults.Workers != 2 {
		t.Fatalf("unexpected defaults %+v", cfg.Defaults)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
version: 1
models:
  - name: acme/fast-1
    base_url: https://llm.acme.test/v1
    api_key_env: ACME_API_KEY
evidence:
  base_url: https://evidence.test
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Models[0].Protocol != ProtocolChat {
		t.Fatalf("protocol must default to chat, got %q", cfg.Models[0].Protocol)
	}
	if cfg.Defaults.MaxRounds != 30 || cfg.Defaults.Workers != DefaultWorkers {
		t.Fatalf("unexpected defaults %+v", cfg.Defaults)
	}
	if cfg.Evidence.Timeout.Std() != DefaultEvidenceTimeout {
		t.Fatalf("unexpected evidence timeout %v", cfg.Evidence.Timeout)
	}
	if cfg.Output.Dir != DefaultOutputDir {
		t.Fatalf("unexpected output dir %q", cfg.Output.Dir)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, "version: 1\nmodelz: []\n"))
	if err == nil || !strings.Contains(err.Error(), "modelz") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestValidateCollectsIssues(t *testing.T) {
	_, err := Load(writeConfig(t, `
version: 2
models:
  - name: ""
    protocol: telepathy
    base_url: ""
    api_key_env: ""
  - name: dup
    base_url: https://a.test
    api_key_env: A
  - name: dup
    base_url: https://b.test
    api_key_env: B
evidence:
  base_url: ""
defaults:
  temperature: 3.5
`))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := make([]string, 0, len(validation.Issues))
	for _, issue := range validation.Issues {
		fields = append(fields, issue.Field)
	}
	joined := strings.Join(fields, " ")
	for _, want := range []string{
		"version",
		"models[0].name",
		"models[0].protocol",
		"models[0].base_url",
		"models[0].api_key_env",
		"models[2].name",
		"evidence.base_url",
		"defaults.temperature",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing issue for %s in %v", want, fields)
		}
	}
}
