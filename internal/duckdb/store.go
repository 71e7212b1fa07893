package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"verifbench/internal/runner"
)

// InsertResults persists one run and all of its records. Records carry a
// canonical-JSON transcript plus its fingerprint so identical transcripts are
// detectable across runs.
func InsertResults(ctx context.Context, db *sql.DB, results runner.Results) error {
	if db == nil {
		return errors.New("duckdb: db is nil")
	}
	if results.RunID == "" {
		return errors.New("duckdb: run id is required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, finished_at, runs_total, runs_scored, runs_failed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, now())`,
		results.RunID,
		results.StartedAt,
		results.FinishedAt,
		results.Summary.RunsTotal,
		results.Summary.RunsScored,
		results.Summary.RunsFailed,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, record := range results.Records {
		if err := insertRecord(ctx, tx, results.RunID, record); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, runID string, record runner.RunRecord) error {
	transcript, err := CanonicalJSON(record.Turns)
	if err != nil {
		return fmt.Errorf("canonicalize transcript %s/%s: %w", record.Model, record.CaseID, err)
	}
	var totalScore, answerCorrect, citationCreated, citationInText, typeMatch interface{}
	if record.Score != nil {
		totalScore = record.Score.TotalScore
		answerCorrect = record.Score.AnswerCorrect
		citationCreated = record.Score.CitationCreated
		citationInText = record.Score.CitationInText
		typeMatch = string(record.Score.EvidenceTypeMatch)
	}
	var recordErr interface{}
	if record.Error != "" {
		recordErr = record.Error
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO run_records (
		   record_id, run_id, model, case_id, category, status, final_answer,
		   rounds, tool_calls, input_tokens, output_tokens, duration_seconds,
		   total_score, answer_correct, citation_created, citation_in_text,
		   evidence_type_match, transcript, transcript_key, error, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, now())`,
		uuid.NewString(),
		runID,
		record.Model,
		record.CaseID,
		record.Category,
		string(record.Status),
		record.FinalAnswer,
		record.Rounds,
		record.ToolCalls,
		record.Usage.InputTokens,
		record.Usage.OutputTokens,
		record.DurationSeconds,
		totalScore,
		answerCorrect,
		citationCreated,
		citationInText,
		typeMatch,
		string(transcript),
		fingerprintBytes(transcript),
		recordErr,
	); err != nil {
		return fmt.Errorf("insert record %s/%s: %w", record.Model, record.CaseID, err)
	}
	return nil
}

// ModelAggregate is one model's stored score statistics.
type ModelAggregate struct {
	Model     string
	Scored    int
	Failed    int
	MeanScore float64
}

// ModelAggregates computes per-model statistics for one stored run. Failed
// records are counted but excluded from the mean.
func ModelAggregates(ctx context.Context, db *sql.DB, runID string) ([]ModelAggregate, error) {
	if db == nil {
		return nil, errors.New("duckdb: db is nil")
	}
	rows, err := db.QueryContext(ctx,
		`SELECT model,
		        count(total_score),
		        count(*) - count(total_score),
		        coalesce(avg(total_score), 0)
		 FROM run_records
		 WHERE run_id = ?
		 GROUP BY model
		 ORDER BY model`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	defer rows.Close()

	var aggregates []ModelAggregate
	for rows.Next() {
		var aggregate ModelAggregate
		if err := rows.Scan(&aggregate.Model, &aggregate.Scored, &aggregate.Failed, &aggregate.MeanScore); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		aggregates = append(aggregates, aggregate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregates: %w", err)
	}
	return aggregates, nil
}
