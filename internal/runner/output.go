package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// resultsFileName is the per-run results file inside the run directory.
const resultsFileName = "results.json"

// OutputPaths locates the artifacts of one run on disk.
type OutputPaths struct {
	baseDir string
	runID   string
}

// NewOutputPaths builds output paths for a run.
func NewOutputPaths(baseDir, runID string) (OutputPaths, error) {
	if baseDir == "" {
		return OutputPaths{}, fmt.Errorf("output directory is required")
	}
	if runID == "" {
		return OutputPaths{}, fmt.Errorf("run id is required")
	}
	return OutputPaths{baseDir: baseDir, runID: runID}, nil
}

// RunDir returns the directory holding this run's artifacts.
func (p OutputPaths) RunDir() string {
	return filepath.Join(p.baseDir, p.runID)
}

// ResultsPath returns the results file path.
func (p OutputPaths) ResultsPath() string {
	return filepath.Join(p.RunDir(), resultsFileName)
}

// WriteResults persists run results as pretty JSON under the output dir.
func WriteResults(results Results, outputDir string) (OutputPaths, error) {
	paths, err := NewOutputPaths(outputDir, results.RunID)
	if err != nil {
		return OutputPaths{}, err
	}
	if err := os.MkdirAll(paths.RunDir(), 0o755); err != nil {
		return OutputPaths{}, fmt.Errorf("create output dir: %w", err)
	}
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return OutputPaths{}, fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(paths.ResultsPath(), payload, 0o644); err != nil {
		return OutputPaths{}, fmt.Errorf("write results: %w", err)
	}
	return paths, nil
}

// ReadResults loads a previously written results file.
func ReadResults(path string) (Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Results{}, fmt.Errorf("read results: %w", err)
	}
	var results Results
	if err := json.Unmarshal(data, &results); err != nil {
		return Results{}, fmt.Errorf("parse results: %w", err)
	}
	return results, nil
}
