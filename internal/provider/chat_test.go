package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"verifbench/internal/agent"
	"verifbench/internal/tools"
)

// fakeDoer replays scripted HTTP responses and records request bodies.
type fakeDoer struct {
	responses []*http.Response
	errs      []error
	requests  []*http.Request
	bodies    [][]byte
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		f.bodies = append(f.bodies, body)
	} else {
		f.bodies = append(f.bodies, nil)
	}
	index := len(f.requests) - 1
	if index < len(f.errs) && f.errs[index] != nil {
		return nil, f.errs[index]
	}
	if index >= len(f.responses) {
		return nil, fmt.Errorf("unexpected request %d", index)
	}
	return f.responses[index], nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func chatReply(t *testing.T, body string) *http.Response {
	t.Helper()
	return jsonResponse(http.StatusOK, body)
}

// sampleConversation builds a conversation with an interleaved tool round.
func sampleConversation() []agent.Item {
	return []agent.Item{
		agent.SystemItem("collect evidence"),
		agent.UserItem("what is the uptime?"),
		agent.AssistantItem("Checking two pages.", ""),
		agent.ToolCallItem(agent.ToolCall{ID: "call-1", Name: "web_fetch", Args: tools.CallArgs{"url": json.RawMessage(`"https://a.test"`)}}),
		agent.ToolResultItem("call-1", tools.CallResult{Tool: "web_fetch", Output: `{"content":"page a"}`}),
		agent.ToolCallItem(agent.ToolCall{ID: "call-2", Name: "web_fetch", Args: tools.CallArgs{"url": json.RawMessage(`"https://b.test"`)}}),
		agent.ToolResultItem("call-2", tools.CallResult{Tool: "web_fetch", Output: `{"content":"page b"}`}),
	}
}

// TestChatAdapterRoundTrip verifies the wire translation preserves message
// order and tool pairing: consecutive calls coalesce into one assistant
// message and their results follow as tool messages.
func TestChatAdapterRoundTrip(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{chatReply(t,
		`{"choices":[{"message":{"content":"Uptime is 99.95%"}}],"usage":{"prompt_tokens":40,"completion_tokens":9}}`,
	)}}
	adapter, err := NewChatAdapter(ChatConfig{BaseURL: "https://llm.test/v1", APIKey: "key", Client: doer})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	registry := tools.NewRegistry(tools.Limits{})

	output, err := adapter.Send(context.Background(), agent.SendRequest{
		Model:       "test-model",
		Items:       sampleConversation(),
		Tools:       registry.Definitions(),
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if output.Text != "Uptime is 99.95%" {
		t.Fatalf("unexpected text %q", output.Text)
	}
	if output.Usage.InputTokens != 40 || output.Usage.OutputTokens != 9 {
		t.Fatalf("unexpected usage %+v", output.Usage)
	}
	if got := doer.requests[0].URL.String(); got != "https://llm.test/v1/chat/completions" {
		t.Fatalf("unexpected endpoint %s", got)
	}
	if got := doer.requests[0].Header.Get("Authorization"); got != "Bearer key" {
		t.Fatalf("unexpected auth header %q", got)
	}

	var wire chatRequest
	if err := json.Unmarshal(doer.bodies[0], &wire); err != nil {
		t.Fatalf("decode wire request: %v", err)
	}
	if len(wire.Messages) != 5 {
		t.Fatalf("expected 5 wire messages, got %d", len(wire.Messages))
	}
	roles := make([]string, 0, len(wire.Messages))
	for _, msg := range wire.Messages {
		roles = append(roles, msg.Role)
	}
	want := []string{"system", "user", "assistant", "tool", "tool"}
	for i, role := range want {
		if roles[i] != role {
			t.Fatalf("message %d: expected role %s, got %s (all: %v)", i, role, roles[i], roles)
		}
	}
	assistant := wire.Messages[2]
	if assistant.Content != "Checking two pages." || len(assistant.ToolCalls) != 2 {
		t.Fatalf("tool calls must coalesce into the assistant message: %+v", assistant)
	}
	if assistant.ToolCalls[0].ID != "call-1" || assistant.ToolCalls[1].ID != "call-2" {
		t.Fatalf("tool call order lost: %+v", assistant.ToolCalls)
	}
	if wire.Messages[3].ToolCallID != "call-1" || wire.Messages[4].ToolCallID != "call-2" {
		t.Fatalf("tool results must pair by id in order: %+v", wire.Messages[3:])
	}
}

// TestChatAdapterParsesToolCalls verifies structured tool calls decode into
// canonical form, with malformed arguments degrading to empty args.
func TestChatAdapterParsesToolCalls(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{chatReply(t,
		`{"choices":[{"message":{"content":"","tool_calls":[
			{"id":"call-1","type":"function","function":{"name":"verifaible_web_search","arguments":"{\"query\":\"uptime 2024\"}"}},
			{"id":"call-2","type":"function","function":{"name":"web_fetch","arguments":"{broken"}}
		]}}],"usage":{"prompt_tokens":12,"completion_tokens":6}}`,
	)}}
	adapter, err := NewChatAdapter(ChatConfig{BaseURL: "https://llm.test/v1", APIKey: "key", Client: doer})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	output, err := adapter.Send(context.Background(), agent.SendRequest{
		Model: "test-model",
		Items: []agent.Item{agent.UserItem("question")},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(output.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(output.ToolCalls))
	}
	query, err := output.ToolCalls[0].Args.RequiredString("query")
	if err != nil || query != "uptime 2024" {
		t.Fatalf("unexpected query: %q %v", query, err)
	}
	if len(output.ToolCalls[1].Args) != 0 {
		t.Fatalf("malformed arguments must degrade to empty args: %+v", output.ToolCalls[1].Args)
	}
}

// TestChatAdapterReasoningFallback verifies both reasoning field spellings.
func TestChatAdapterReasoningFallback(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{chatReply(t,
		`{"choices":[{"message":{"content":"done","reasoning_content":"thought about it"}}]}`,
	)}}
	adapter, err := NewChatAdapter(ChatConfig{BaseURL: "https://llm.test/v1", APIKey: "key", Client: doer})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	output, err := adapter.Send(context.Background(), agent.SendRequest{
		Model: "test-model",
		Items: []agent.Item{agent.UserItem("question")},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if output.Reasoning != "thought about it" {
		t.Fatalf("unexpected reasoning %q", output.Reasoning)
	}
}

// TestChatAdapterRetriesServerErrors verifies a 500 then 429 are retried and
// a later success is transparent.
func TestChatAdapterRetriesServerErrors(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(http.StatusInternalServerError, `{"error":"boom"}`),
		jsonResponse(http.StatusTooManyRequests, `{"error":"slow down"}`),
		chatReply(t, `{"choices":[{"message":{"content":"recovered"}}]}`),
	}}
	adapter, err := NewChatAdapter(ChatConfig{BaseURL: "https://llm.test/v1", APIKey: "key", Client: doer, RetryDelay: time.Microsecond})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	output, err := adapter.Send(context.Background(), agent.SendRequest{
		Model: "test-model",
		Items: []agent.Item{agent.UserItem("question")},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if output.Text != "recovered" || len(doer.requests) != 3 {
		t.Fatalf("expected success after 3 attempts, got %q after %d", output.Text, len(doer.requests))
	}
}

// TestChatAdapterExhaustsRetries verifies the 5-attempt ceiling and the
// typed exhaustion error.
func TestChatAdapterExhaustsRetries(t *testing.T) {
	responses := make([]*http.Response, 0, maxAttempts)
	for i := 0; i < maxAttempts; i++ {
		responses = append(responses, jsonResponse(http.StatusBadGateway, "upstream down"))
	}
	doer := &fakeDoer{responses: responses}
	adapter, err := NewChatAdapter(ChatConfig{BaseURL: "https://llm.test/v1", APIKey: "key", Client: doer, RetryDelay: time.Microsecond})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	_, err = adapter.Send(context.Background(), agent.SendRequest{
		Model: "test-model",
		Items: []agent.Item{agent.UserItem("question")},
	})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if len(doer.requests) != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, len(doer.requests))
	}
}

// TestChatAdapterClientErrorNotRetried verifies a 400 fails immediately.
func TestChatAdapterClientErrorNotRetried(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(http.StatusBadRequest, `{"error":"bad model"}`),
	}}
	adapter, err := NewChatAdapter(ChatConfig{BaseURL: "https://llm.test/v1", APIKey: "key", Client: doer})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	_, err = adapter.Send(context.Background(), agent.SendRequest{
		Model: "test-model",
		Items: []agent.Item{agent.UserItem("question")},
	})
	var transport *TransportError
	if !errors.As(err, &transport) || transport.Status != http.StatusBadRequest {
		t.Fatalf("expected immediate 400 transport error, got %v", err)
	}
	if len(doer.requests) != 1 {
		t.Fatalf("client errors must not retry, got %d attempts", len(doer.requests))
	}
}
