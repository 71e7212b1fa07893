package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"verifbench/internal/agent"
	"verifbench/internal/tools"
)

// HTTPDoer abstracts HTTP clients used by provider adapters.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// newDefaultClient builds the traced HTTP client adapters fall back to.
func newDefaultClient() HTTPDoer {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// ChatConfig configures a chat-completions adapter.
type ChatConfig struct {
	BaseURL    string
	APIKey     string
	Client     HTTPDoer
	RetryDelay time.Duration
}

// ChatAdapter implements agent.Provider against a chat-completions endpoint.
// Every Send resubmits the full conversation; the endpoint holds no state.
type ChatAdapter struct {
	baseURL    string
	apiKey     string
	client     HTTPDoer
	retryDelay time.Duration
}

// NewChatAdapter constructs a chat-completions adapter.
func NewChatAdapter(cfg ChatConfig) (*ChatAdapter, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	client := cfg.Client
	if client == nil {
		client = newDefaultClient()
	}
	return &ChatAdapter{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		client:     client,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Send translates the request to the chat-completions wire format, posts it
// with bounded retries, and translates the reply back.
func (a *ChatAdapter) Send(ctx context.Context, req agent.SendRequest) (agent.TurnOutput, error) {
	messages, err := buildChatMessages(req.Items)
	if err != nil {
		return agent.TurnOutput{}, err
	}
	body := chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if len(req.Tools) > 0 {
		body.Tools = buildChatTools(req.Tools)
		body.ToolChoice = "auto"
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return agent.TurnOutput{}, fmt.Errorf("marshal request: %w", err)
	}
	return withRetries(ctx, a.retryDelay, func(ctx context.Context) (agent.TurnOutput, error) {
		return a.post(ctx, payload)
	})
}

// post performs a single chat-completions round trip.
func (a *ChatAdapter) post(ctx context.Context, payload []byte) (agent.TurnOutput, error) {
	endpoint := a.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return agent.TurnOutput{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return agent.TurnOutput{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return agent.TurnOutput{}, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return agent.TurnOutput{}, &TransportError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", strings.TrimSpace(string(raw))),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return agent.TurnOutput{}, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return agent.TurnOutput{}, fmt.Errorf("response has no choices")
	}
	message := parsed.Choices[0].Message

	output := agent.TurnOutput{
		Text:      message.Content,
		Reasoning: message.Reasoning,
		Usage: agent.Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		},
	}
	if output.Reasoning == "" {
		output.Reasoning = message.ReasoningContent
	}
	for _, call := range message.ToolCalls {
		output.ToolCalls = append(output.ToolCalls, decodeWireToolCall(call))
	}
	return output, nil
}

// decodeWireToolCall converts a wire tool call to the canonical form. Malformed
// argument payloads degrade to empty args so the registry reports the missing
// fields in the tool result instead of the run aborting.
func decodeWireToolCall(call chatToolCall) agent.ToolCall {
	args, err := tools.ParseCallArgs(call.Function.Arguments)
	if err != nil {
		args = tools.CallArgs{}
	}
	return agent.ToolCall{
		ID:   call.ID,
		Name: call.Function.Name,
		Args: args,
	}
}
