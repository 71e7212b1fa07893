package runner

import (
	"time"

	"verifbench/internal/agent"
	"verifbench/internal/score"
)

// RunRecord is the persisted outcome of one (model, case) run.
type RunRecord struct {
	Model           string        `json:"model"`
	CaseID          string        `json:"case_id"`
	Category        string        `json:"category"`
	Status          agent.Status  `json:"status"`
	FinalAnswer     string        `json:"final_answer"`
	Rounds          int           `json:"rounds"`
	ToolCalls       int           `json:"tool_calls"`
	Usage           agent.Usage   `json:"usage"`
	DurationSeconds float64       `json:"duration_seconds"`
	Turns           []agent.Turn  `json:"turns"`
	Score           *score.Result `json:"score,omitempty"`
	Error           string        `json:"error,omitempty"`
}

// Scored reports whether the record carries a score. Failed runs are
// recorded but never scored.
func (r RunRecord) Scored() bool {
	return r.Score != nil
}

// Results is the full output of one benchmark run.
type Results struct {
	RunID      string      `json:"run_id"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Records    []RunRecord `json:"records"`
	Summary    Summary     `json:"summary"`
}

// Summary aggregates records, excluding failed runs from score statistics.
type Summary struct {
	RunsTotal  int            `json:"runs_total"`
	RunsScored int            `json:"runs_scored"`
	RunsFailed int            `json:"runs_failed"`
	Models     []ModelSummary `json:"models"`
}

// ModelSummary aggregates one model's scored runs.
type ModelSummary struct {
	Model      string  `json:"model"`
	Cases      int     `json:"cases"`
	Scored     int     `json:"scored"`
	Failed     int     `json:"failed"`
	MeanScore  float64 `json:"mean_score"`
	FullCredit int     `json:"full_credit"`
}
