package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"verifbench/internal/tools"
)

// scriptedProvider replays a fixed sequence of turn outputs.
type scriptedProvider struct {
	outputs  []TurnOutput
	err      error
	requests []SendRequest
}

func (p *scriptedProvider) Send(ctx context.Context, req SendRequest) (TurnOutput, error) {
	p.requests = append(p.requests, req)
	if len(p.outputs) == 0 {
		if p.err != nil {
			return TurnOutput{}, p.err
		}
		return TurnOutput{}, fmt.Errorf("script exhausted")
	}
	output := p.outputs[0]
	p.outputs = p.outputs[1:]
	return output, nil
}

// newTestRegistry builds a registry with a single echoing tool.
func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry(tools.Limits{})
	err := registry.Register(tools.Definition{Name: "web_fetch"}, func(ctx context.Context, args tools.CallArgs) (string, error) {
		url, err := args.RequiredString("url")
		if err != nil {
			return "", err
		}
		return `{"success":true,"content":"fetched ` + url + `"}`, nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return registry
}

func newTestSession(t *testing.T, maxRounds int) *Session {
	t.Helper()
	session, err := NewSession(SessionConfig{
		Model:        "test-model",
		SystemPrompt: "collect evidence",
		Question:     "what is the uptime?",
		MaxRounds:    maxRounds,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

// TestRunCompletesOnTextOnly verifies the text-only terminal transition.
func TestRunCompletesOnTextOnly(t *testing.T) {
	provider := &scriptedProvider{outputs: []TurnOutput{
		{Text: "Uptime is 99.95% [@v:1]", Usage: Usage{InputTokens: 10, OutputTokens: 5}},
	}}
	session := newTestSession(t, 0)
	if err := Run(context.Background(), session, provider, newTestRegistry(t), RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if session.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", session.Status)
	}
	if session.FinalAnswer != "Uptime is 99.95% [@v:1]" {
		t.Fatalf("unexpected final answer %q", session.FinalAnswer)
	}
	if session.Rounds != 1 || len(session.Turns) != 1 {
		t.Fatalf("expected one round, got rounds=%d turns=%d", session.Rounds, len(session.Turns))
	}
	if session.Usage.InputTokens != 10 || session.Usage.OutputTokens != 5 {
		t.Fatalf("unexpected usage %+v", session.Usage)
	}
	if err := CheckPairing(session.Conversation); err != nil {
		t.Fatalf("pairing: %v", err)
	}
}

// TestRunDispatchesToolsSequentially verifies tool rounds: calls execute in
// emission order and results are appended before the next provider call.
func TestRunDispatchesToolsSequentially(t *testing.T) {
	provider := &scriptedProvider{outputs: []TurnOutput{
		{
			Text: "Let me check two pages.",
			ToolCalls: []ToolCall{
				{ID: "call-1", Name: "web_fetch", Args: tools.CallArgs{"url": json.RawMessage(`"https://a.test"`)}},
				{ID: "call-2", Name: "web_fetch", Args: tools.CallArgs{"url": json.RawMessage(`"https://b.test"`)}},
			},
			Usage: Usage{InputTokens: 20, OutputTokens: 8},
		},
		{Text: "Found it.", Usage: Usage{InputTokens: 30, OutputTokens: 4}},
	}}
	session := newTestSession(t, 0)
	if err := Run(context.Background(), session, provider, newTestRegistry(t), RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if session.Status != StatusCompleted || session.Rounds != 2 {
		t.Fatalf("unexpected terminal state: %s rounds=%d", session.Status, session.Rounds)
	}
	if session.Usage.InputTokens != 50 || session.Usage.OutputTokens != 12 {
		t.Fatalf("usage must sum across rounds: %+v", session.Usage)
	}
	if err := CheckPairing(session.Conversation); err != nil {
		t.Fatalf("pairing: %v", err)
	}
	first := session.Turns[0]
	if len(first.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool call records, got %d", len(first.ToolCalls))
	}
	if !strings.Contains(first.ToolCalls[0].ResultText, "https://a.test") ||
		!strings.Contains(first.ToolCalls[1].ResultText, "https://b.test") {
		t.Fatalf("results must follow emission order: %+v", first.ToolCalls)
	}
	// The second provider call must see the tool results in the conversation.
	lastReq := provider.requests[1]
	if err := CheckPairing(lastReq.Items); err != nil {
		t.Fatalf("resubmitted conversation pairing: %v", err)
	}
}

// TestRunUnknownToolContinues verifies unknown tools degrade to error results
// without terminating the session.
func TestRunUnknownToolContinues(t *testing.T) {
	provider := &scriptedProvider{outputs: []TurnOutput{
		{ToolCalls: []ToolCall{{ID: "call-1", Name: "no_such_tool", Args: tools.CallArgs{}}}},
		{Text: "giving up"},
	}}
	session := newTestSession(t, 0)
	if err := Run(context.Background(), session, provider, newTestRegistry(t), RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if session.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", session.Status)
	}
	record := session.Turns[0].ToolCalls[0]
	if !strings.Contains(record.ResultText, `unknown tool "no_such_tool"`) {
		t.Fatalf("unexpected result %q", record.ResultText)
	}
}

// TestRunProviderFailure verifies transport errors end the session as failed.
func TestRunProviderFailure(t *testing.T) {
	provider := &scriptedProvider{err: fmt.Errorf("rate limited")}
	session := newTestSession(t, 0)
	if err := Run(context.Background(), session, provider, newTestRegistry(t), RunOptions{}); err == nil {
		t.Fatalf("expected error")
	}
	if session.Status != StatusFailed || session.Err == nil {
		t.Fatalf("expected failed status, got %s err=%v", session.Status, session.Err)
	}
}

// TestRunMaxRounds verifies the step budget produces the placeholder answer.
func TestRunMaxRounds(t *testing.T) {
	outputs := make([]TurnOutput, 0, 3)
	for i := 0; i < 3; i++ {
		outputs = append(outputs, TurnOutput{ToolCalls: []ToolCall{{
			ID: fmt.Sprintf("call-%d", i), Name: "web_fetch",
			Args: tools.CallArgs{"url": json.RawMessage(`"https://loop.test"`)},
		}}})
	}
	provider := &scriptedProvider{outputs: outputs}
	session := newTestSession(t, 3)
	if err := Run(context.Background(), session, provider, newTestRegistry(t), RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if session.Status != StatusMaxRounds {
		t.Fatalf("expected max-rounds-exceeded, got %s", session.Status)
	}
	if session.Rounds != 3 {
		t.Fatalf("expected 3 rounds, got %d", session.Rounds)
	}
	if session.FinalAnswer != PlaceholderAnswer {
		t.Fatalf("expected placeholder answer, got %q", session.FinalAnswer)
	}
}

// TestRunEngagesFallbackExtractor verifies text-embedded tool calls are
// recovered and executed when the structured channel is empty.
func TestRunEngagesFallbackExtractor(t *testing.T) {
	embedded := "Fetching.\n<|tool_calls_section_begin|>\n```json\n" +
		`[{"name":"web_fetch","arguments":{"url":"https://embedded.test"}}]` +
		"\n```\n<|tool_calls_section_end|>"
	provider := &scriptedProvider{outputs: []TurnOutput{
		{Text: embedded},
		{Text: "done"},
	}}
	session := newTestSession(t, 0)
	if err := Run(context.Background(), session, provider, newTestRegistry(t), RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	first := session.Turns[0]
	if len(first.ToolCalls) != 1 || first.ToolCalls[0].Name != "web_fetch" {
		t.Fatalf("expected recovered call, got %+v", first.ToolCalls)
	}
	if first.Text != "Fetching." {
		t.Fatalf("sentinels and payload must be stripped, got %q", first.Text)
	}
	if !strings.Contains(first.ToolCalls[0].ResultText, "https://embedded.test") {
		t.Fatalf("recovered call was not executed: %+v", first.ToolCalls[0])
	}
}
