package runner

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verifbench/internal/agent"
	"verifbench/internal/caseset"
	"verifbench/internal/config"
	"verifbench/internal/score"
	"verifbench/internal/tools"
)

// ProviderFactory builds a provider adapter for one model. It is called once
// per run so adapters that hold continuation state start fresh.
type ProviderFactory func(model config.ModelConfig) (agent.Provider, error)

// Options configure a benchmark run over the model×case matrix.
type Options struct {
	Models       []config.ModelConfig
	Cases        []caseset.TestCase
	Registry     *tools.Registry
	Providers    ProviderFactory
	SystemPrompt string
	MaxRounds    int
	Temperature  float64
	Workers      int

	Logger        zerolog.Logger
	Verbose       bool
	VerboseWriter io.Writer
	NoColor       bool
	Tracer        trace.Tracer
}

// runJob is one (model, case) unit of work.
type runJob struct {
	index    int
	model    config.ModelConfig
	testCase caseset.TestCase
}

// Run executes every (model, case) pair through a bounded worker pool, scores
// the completed runs, and returns the aggregated results. Record order
// follows the matrix order regardless of completion order.
func Run(ctx context.Context, opts Options) (Results, error) {
	if len(opts.Models) == 0 {
		return Results{}, fmt.Errorf("at least one model is required")
	}
	if len(opts.Cases) == 0 {
		return Results{}, fmt.Errorf("at least one case is required")
	}
	if opts.Registry == nil {
		return Results{}, fmt.Errorf("tool registry is required")
	}
	if opts.Providers == nil {
		return Results{}, fmt.Errorf("provider factory is required")
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("verifbench/runner")
	}

	runID, err := NewRunID()
	if err != nil {
		return Results{}, err
	}
	results := Results{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		Records:   make([]RunRecord, len(opts.Models)*len(opts.Cases)),
	}
	opts.Logger.Info().Str("run_id", runID).
		Int("models", len(opts.Models)).Int("cases", len(opts.Cases)).Int("workers", workers).
		Msg("run started")

	jobs := make(chan runJob)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results.Records[job.index] = executeRun(ctx, opts, job)
			}
		}()
	}

	index := 0
	for _, model := range opts.Models {
		for _, testCase := range opts.Cases {
			jobs <- runJob{index: index, model: model, testCase: testCase}
			index++
		}
	}
	close(jobs)
	wg.Wait()

	results.FinishedAt = time.Now().UTC()
	results.Summary = buildSummary(results.Records)
	opts.Logger.Info().Str("run_id", runID).
		Int("scored", results.Summary.RunsScored).Int("failed", results.Summary.RunsFailed).
		Msg("run finished")
	return results, nil
}

// executeRun drives one session to completion and grades it. Failures are
// captured in the record; they never abort the matrix.
func executeRun(ctx context.Context, opts Options, job runJob) RunRecord {
	ctx, span := opts.Tracer.Start(ctx, "benchmark.run", trace.WithAttributes(
		attribute.String("model", job.model.Name),
		attribute.String("case_id", job.testCase.ID),
	))
	defer span.End()

	logVerbose(opts.Verbose, opts.VerboseWriter, opts.NoColor, styleRun,
		"Run model=%s case=%s category=%s", job.model.Name, job.testCase.ID, job.testCase.Category)

	record := RunRecord{
		Model:    job.model.Name,
		CaseID:   job.testCase.ID,
		Category: job.testCase.Category,
	}

	provider, err := opts.Providers(job.model)
	if err != nil {
		record.Status = agent.StatusFailed
		record.Error = err.Error()
		logVerbose(opts.Verbose, opts.VerboseWriter, opts.NoColor, styleError,
			"Run model=%s case=%s provider error=%v", job.model.Name, job.testCase.ID, err)
		return record
	}

	session, err := agent.NewSession(agent.SessionConfig{
		Model:        job.model.Name,
		SystemPrompt: opts.SystemPrompt,
		Question:     buildCasePrompt(job.testCase),
		MaxRounds:    opts.MaxRounds,
		Temperature:  opts.Temperature,
	})
	if err != nil {
		record.Status = agent.StatusFailed
		record.Error = err.Error()
		return record
	}

	logger := opts.Logger.With().Str("model", job.model.Name).Str("case_id", job.testCase.ID).Logger()
	runErr := agent.Run(ctx, session, provider, opts.Registry, agent.RunOptions{Logger: &logger})

	record.Status = session.Status
	record.FinalAnswer = session.FinalAnswer
	record.Rounds = session.Rounds
	record.ToolCalls = session.ToolCallCount()
	record.Usage = session.Usage
	record.DurationSeconds = session.Duration.Seconds()
	record.Turns = session.Turns

	if runErr != nil {
		record.Error = runErr.Error()
		logVerbose(opts.Verbose, opts.VerboseWriter, opts.NoColor, styleError,
			"Run model=%s case=%s failed error=%v", job.model.Name, job.testCase.ID, runErr)
		return record
	}

	graded := score.Grade(job.testCase, session.FinalAnswer, session.Turns)
	record.Score = &graded
	logVerbose(opts.Verbose, opts.VerboseWriter, opts.NoColor, styleScore,
		"Score model=%s case=%s total=%d answer=%.2f rounds=%d tokens=%d",
		job.model.Name, job.testCase.ID, graded.TotalScore, graded.AnswerCorrect,
		session.Rounds, session.Usage.Total())
	return record
}
