package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"verifbench/internal/tools"
)

// DefaultMaxRounds caps provider round trips per session. It is a step
// budget, not a timer: a slow model is not penalized, a looping one is.
const DefaultMaxRounds = 30

// PlaceholderAnswer stands in for the final answer when the round budget is
// exhausted; the scoring gate forces such runs to zero.
const PlaceholderAnswer = "[no final answer: round budget exhausted]"

// Status is the terminal state of a session.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusMaxRounds Status = "max-rounds-exceeded"
	StatusFailed    Status = "failed"
)

// SendRequest is the canonical request handed to a provider adapter.
type SendRequest struct {
	Model       string
	Items       []Item
	Tools       []tools.Definition
	Temperature float64
}

// Provider translates the canonical conversation to one backend's wire
// format and back.
type Provider interface {
	Send(ctx context.Context, req SendRequest) (TurnOutput, error)
}

// SessionConfig captures the inputs needed to start a session.
type SessionConfig struct {
	Model        string
	SystemPrompt string
	Question     string
	MaxRounds    int
	Temperature  float64
}

// Session is one full run of one (model, case) pair. It exclusively owns its
// conversation, turn log, and counters for its lifetime; the conversation is
// appended to, never mutated or reordered.
type Session struct {
	Model        string
	Temperature  float64
	MaxRounds    int
	Conversation []Item
	Turns        []Turn
	Usage        Usage
	Rounds       int
	Status       Status
	FinalAnswer  string
	Err          error
	StartedAt    time.Time
	Duration     time.Duration
}

// NewSession seeds a session with the system prompt and the case question.
func NewSession(cfg SessionConfig) (*Session, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(cfg.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	conversation := make([]Item, 0, 2)
	if strings.TrimSpace(cfg.SystemPrompt) != "" {
		conversation = append(conversation, SystemItem(cfg.SystemPrompt))
	}
	conversation = append(conversation, UserItem(cfg.Question))
	return &Session{
		Model:        model,
		Temperature:  cfg.Temperature,
		MaxRounds:    maxRounds,
		Conversation: conversation,
		Status:       StatusRunning,
	}, nil
}

// ToolCallCount returns the number of executed tool calls across all turns.
func (s *Session) ToolCallCount() int {
	count := 0
	for _, turn := range s.Turns {
		count += len(turn.ToolCalls)
	}
	return count
}
