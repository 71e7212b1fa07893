package agent

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"verifbench/internal/tools"
)

// RunOptions configure a session run.
type RunOptions struct {
	Logger *zerolog.Logger
}

// Run drives the session state machine to a terminal status: it repeatedly
// calls the provider, dispatches returned tool calls through the registry,
// appends results to the conversation, and decides termination.
//
// Tool calls within one round execute sequentially in the order the provider
// emitted them; tool handlers assume exclusive control of a transient
// browser-backed context, so concurrent dispatch would corrupt it.
func Run(ctx context.Context, session *Session, provider Provider, registry *tools.Registry, opts RunOptions) error {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	session.StartedAt = time.Now()
	defer func() {
		session.Duration = time.Since(session.StartedAt)
	}()

	for {
		output, err := provider.Send(ctx, SendRequest{
			Model:       session.Model,
			Items:       session.Conversation,
			Tools:       registry.Definitions(),
			Temperature: session.Temperature,
		})
		if err != nil {
			session.Status = StatusFailed
			session.Err = err
			logger.Error().Err(err).Int("rounds", session.Rounds).Msg("provider call failed")
			return err
		}
		session.Usage.Add(output.Usage)

		text := output.Text
		calls := output.ToolCalls
		if len(calls) == 0 {
			// The extractor runs only when the structured channel is empty;
			// structured and embedded sources are never merged.
			recovered, cleaned := ExtractEmbeddedCalls(text)
			if len(recovered) > 0 {
				calls = recovered
				text = cleaned
				logger.Debug().Int("recovered", len(recovered)).Msg("recovered tool calls from assistant text")
			}
		}

		turn := Turn{
			Index:     len(session.Turns),
			Text:      text,
			Reasoning: output.Reasoning,
			Usage:     output.Usage,
		}

		if len(calls) == 0 {
			session.Conversation = append(session.Conversation, AssistantItem(text, output.Reasoning))
			session.Turns = append(session.Turns, turn)
			session.Rounds++
			session.FinalAnswer = text
			session.Status = StatusCompleted
			return nil
		}

		if text != "" {
			session.Conversation = append(session.Conversation, AssistantItem(text, output.Reasoning))
		}
		for _, call := range calls {
			session.Conversation = append(session.Conversation, ToolCallItem(call))
			result := registry.Execute(ctx, call.Name, call.Args)
			session.Conversation = append(session.Conversation, ToolResultItem(call.ID, result))
			turn.ToolCalls = append(turn.ToolCalls, ToolCallRecord{
				Name:       call.Name,
				Arguments:  call.Args.JSON(),
				ResultText: result.Output,
				DurationMs: result.Duration.Milliseconds(),
			})
			logger.Debug().Str("tool", call.Name).Dur("duration", result.Duration).Bool("error", result.Error != "").Msg("tool call executed")
		}
		session.Turns = append(session.Turns, turn)
		session.Rounds++

		if session.Rounds >= session.MaxRounds {
			session.Status = StatusMaxRounds
			session.FinalAnswer = PlaceholderAnswer
			logger.Warn().Int("rounds", session.Rounds).Msg("round budget exhausted")
			return nil
		}
	}
}
