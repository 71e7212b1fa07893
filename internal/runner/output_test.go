package runner

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"verifbench/internal/agent"
)

func TestWriteAndReadResults(t *testing.T) {
	results := Results{
		RunID:     "20260101T000000Z-abcdef",
		StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Records: []RunRecord{
			{Model: "m1", CaseID: "a", Status: agent.StatusCompleted, FinalAnswer: "42 [@v:1]", Score: scorePtr(100)},
			{Model: "m1", CaseID: "b", Status: agent.StatusFailed, Error: "boom"},
		},
	}
	results.Summary = buildSummary(results.Records)

	dir := t.TempDir()
	paths, err := WriteResults(results, dir)
	if err != nil {
		t.Fatalf("write results: %v", err)
	}
	if !strings.HasSuffix(paths.ResultsPath(), "results.json") {
		t.Fatalf("unexpected results path %s", paths.ResultsPath())
	}

	loaded, err := ReadResults(paths.ResultsPath())
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	if loaded.RunID != results.RunID || len(loaded.Records) != 2 {
		t.Fatalf("round trip lost data: %+v", loaded)
	}
	if !loaded.Records[0].Scored() || loaded.Records[1].Scored() {
		t.Fatalf("score presence must survive the round trip")
	}
}

func TestWriteResultsRequiresDir(t *testing.T) {
	if _, err := WriteResults(Results{RunID: "x"}, ""); err == nil {
		t.Fatalf("expected error for empty output dir")
	}
}

func TestRunIDFormat(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 30, 45, 0, time.UTC)
	id, err := NewRunIDWithRand(now, bytes.NewReader([]byte{1, 2, 3, 4, 5, 6}))
	if err != nil {
		t.Fatalf("new run id: %v", err)
	}
	if id != "20260824T123045Z-010203040506" {
		t.Fatalf("unexpected run id %s", id)
	}
}

func TestRunIDRequiresReader(t *testing.T) {
	if _, err := NewRunIDWithRand(time.Now(), nil); err == nil {
		t.Fatalf("expected error for nil reader")
	}
}
