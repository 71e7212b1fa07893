package report

import (
	"strings"
	"testing"

	"verifbench/internal/agent"
	"verifbench/internal/runner"
	"verifbench/internal/score"
)

func sampleResults() runner.Results {
	full := score.Result{TotalScore: 100, AnswerCorrect: 1.0, CitationCreated: true, CitationInText: true}
	zero := score.Result{TotalScore: 0}
	results := runner.Results{
		RunID: "20260101T000000Z-abcdef",
		Records: []runner.RunRecord{
			{Model: "acme/fast-1", CaseID: "case-a", Status: agent.StatusCompleted, Rounds: 2, ToolCalls: 3, Score: &full},
			{Model: "acme/fast-1", CaseID: "case-b", Status: agent.StatusCompleted, Rounds: 1, Score: &zero},
			{Model: "acme/fast-1", CaseID: "case-c", Status: agent.StatusFailed, Error: "connection refused"},
		},
		Summary: runner.Summary{
			RunsTotal:  3,
			RunsScored: 2,
			RunsFailed: 1,
			Models: []runner.ModelSummary{
				{Model: "acme/fast-1", Cases: 3, Scored: 2, Failed: 1, MeanScore: 50, FullCredit: 1},
			},
		},
	}
	return results
}

func TestRenderSummaryTable(t *testing.T) {
	output := Render(sampleResults(), true)
	for _, want := range []string{
		"20260101T000000Z-abcdef",
		"3 runs, 2 scored, 1 failed",
		"MODEL",
		"acme/fast-1",
		"50.0",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("missing %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\x1b[") {
		t.Fatalf("noColor output must not contain escape codes:\n%q", output)
	}
}

func TestRenderRecordsListsEveryRun(t *testing.T) {
	output := RenderRecords(sampleResults(), true)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), output)
	}
	if !strings.Contains(lines[0], "score=100") {
		t.Fatalf("missing score on first line: %s", lines[0])
	}
	if !strings.Contains(lines[2], "connection refused") {
		t.Fatalf("failed run must show its error: %s", lines[2])
	}
}
