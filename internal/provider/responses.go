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

	"verifbench/internal/agent"
	"verifbench/internal/tools"
)

// ResponsesConfig configures a responses-style adapter.
type ResponsesConfig struct {
	BaseURL    string
	APIKey     string
	Client     HTTPDoer
	RetryDelay time.Duration
}

// ResponsesAdapter implements agent.Provider against a responses-style
// endpoint. After the first successful call it sends only the items appended
// since, linked to the server-held state with previous_response_id. The
// continuation state binds one adapter instance to one session.
type ResponsesAdapter struct {
	baseURL    string
	apiKey     string
	client     HTTPDoer
	retryDelay time.Duration

	lastResponseID string
	sentItems      int
	serverCallIDs  map[string]bool
}

// NewResponsesAdapter constructs a responses-style adapter.
func NewResponsesAdapter(cfg ResponsesConfig) (*ResponsesAdapter, error) {
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
	return &ResponsesAdapter{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		client:        client,
		retryDelay:    cfg.RetryDelay,
		serverCallIDs: map[string]bool{},
	}, nil
}

// responsesRequest is the JSON payload sent to a responses-style endpoint.
type responsesRequest struct {
	Model              string               `json:"model"`
	Input              []responsesInputItem `json:"input"`
	Instructions       string               `json:"instructions,omitempty"`
	Tools              []responsesTool      `json:"tools,omitempty"`
	Temperature        float64              `json:"temperature,omitempty"`
	PreviousResponseID string               `json:"previous_response_id,omitempty"`
}

// responsesInputItem is one typed input item. Message fields and function
// call fields are mutually exclusive, discriminated by Type.
type responsesInputItem struct {
	Type      string `json:"type"`
	Role      string `json:"role,omitempty"`
	Content   string `json:"content,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`
}

// responsesTool describes a function tool for a responses-style endpoint.
type responsesTool struct {
	Type        string        `json:"type"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Parameters  *tools.Schema `json:"parameters,omitempty"`
}

// responsesReply is the JSON payload returned by a responses-style endpoint.
type responsesReply struct {
	ID     string                `json:"id"`
	Output []responsesOutputItem `json:"output"`
	Usage  responsesUsage        `json:"usage"`
}

// responsesOutputItem is one typed output item: an assistant message, a
// reasoning summary, or a function call.
type responsesOutputItem struct {
	Type      string                 `json:"type"`
	Content   []responsesContentPart `json:"content,omitempty"`
	Summary   []responsesContentPart `json:"summary,omitempty"`
	CallID    string                 `json:"call_id,omitempty"`
	Name      string                 `json:"name,omitempty"`
	Arguments string                 `json:"arguments,omitempty"`
}

type responsesContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responsesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Send translates the request to the responses wire format, posts it with
// bounded retries, and translates the reply back. Continuation bookkeeping
// advances only after a successful round trip.
func (a *ResponsesAdapter) Send(ctx context.Context, req agent.SendRequest) (agent.TurnOutput, error) {
	items := req.Items
	instructions := ""
	if a.lastResponseID != "" {
		if a.sentItems > len(items) {
			return agent.TurnOutput{}, fmt.Errorf("conversation shrank below continuation point")
		}
		items = a.continuationDelta(items[a.sentItems:])
	} else if len(items) > 0 {
		// The leading system item rides in the instructions field on the
		// first call; server-held state carries it forward afterwards.
		if text, ok := items[0].Content.(agent.Text); ok && items[0].Role == agent.RoleSystem {
			instructions = text.Text
			items = items[1:]
		}
	}

	input, err := buildResponsesInput(items)
	if err != nil {
		return agent.TurnOutput{}, err
	}
	body := responsesRequest{
		Model:              req.Model,
		Input:              input,
		Instructions:       instructions,
		Temperature:        req.Temperature,
		PreviousResponseID: a.lastResponseID,
	}
	if len(req.Tools) > 0 {
		body.Tools = buildResponsesTools(req.Tools)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return agent.TurnOutput{}, fmt.Errorf("marshal request: %w", err)
	}

	var responseID string
	output, err := withRetries(ctx, a.retryDelay, func(ctx context.Context) (agent.TurnOutput, error) {
		out, id, err := a.post(ctx, payload)
		responseID = id
		return out, err
	})
	if err != nil {
		return agent.TurnOutput{}, err
	}
	a.lastResponseID = responseID
	a.sentItems = len(req.Items)
	for _, call := range output.ToolCalls {
		a.serverCallIDs[call.ID] = true
	}
	return output, nil
}

// continuationDelta drops appended items the server-held state already
// contains: assistant messages and tool calls the server itself issued.
// Calls recovered from assistant text carry locally generated ids the server
// never saw, so those are still sent alongside every function_call_output.
func (a *ResponsesAdapter) continuationDelta(items []agent.Item) []agent.Item {
	delta := make([]agent.Item, 0, len(items))
	for _, item := range items {
		switch content := item.Content.(type) {
		case agent.Message:
			continue
		case agent.ToolCall:
			if a.serverCallIDs[content.ID] {
				continue
			}
		}
		delta = append(delta, item)
	}
	return delta
}

// post performs a single responses round trip.
func (a *ResponsesAdapter) post(ctx context.Context, payload []byte) (agent.TurnOutput, string, error) {
	endpoint := a.baseURL + "/responses"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return agent.TurnOutput{}, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return agent.TurnOutput{}, "", &TransportError{Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return agent.TurnOutput{}, "", &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return agent.TurnOutput{}, "", &TransportError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", strings.TrimSpace(string(raw))),
		}
	}

	var parsed responsesReply
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return agent.TurnOutput{}, "", fmt.Errorf("decode response: %w", err)
	}

	output := agent.TurnOutput{
		Usage: agent.Usage{
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
		},
	}
	for _, item := range parsed.Output {
		switch item.Type {
		case "message":
			for _, part := range item.Content {
				if part.Type == "output_text" {
					output.Text += part.Text
				}
			}
		case "reasoning":
			for _, part := range item.Summary {
				output.Reasoning += part.Text
			}
		case "function_call":
			args, err := tools.ParseCallArgs(item.Arguments)
			if err != nil {
				args = tools.CallArgs{}
			}
			output.ToolCalls = append(output.ToolCalls, agent.ToolCall{
				ID:   item.CallID,
				Name: item.Name,
				Args: args,
			})
		}
	}
	return output, parsed.ID, nil
}

// buildResponsesInput converts canonical items into responses input items.
func buildResponsesInput(items []agent.Item) ([]responsesInputItem, error) {
	input := make([]responsesInputItem, 0, len(items))
	for index, item := range items {
		switch content := item.Content.(type) {
		case agent.Text:
			input = append(input, responsesInputItem{
				Type:    "message",
				Role:    item.Role,
				Content: content.Text,
			})
		case agent.Message:
			input = append(input, responsesInputItem{
				Type:    "message",
				Role:    agent.RoleAssistant,
				Content: content.Text,
			})
		case agent.ToolCall:
			if content.ID == "" {
				return nil, fmt.Errorf("item %d: tool call id is required", index)
			}
			input = append(input, responsesInputItem{
				Type:      "function_call",
				CallID:    content.ID,
				Name:      content.Name,
				Arguments: content.Args.JSON(),
			})
		case agent.ToolResult:
			input = append(input, responsesInputItem{
				Type:   "function_call_output",
				CallID: content.CallID,
				Output: content.Result.Output,
			})
		default:
			return nil, fmt.Errorf("item %d: unsupported content type %T", index, item.Content)
		}
	}
	return input, nil
}

// buildResponsesTools converts tool definitions into responses payloads.
func buildResponsesTools(defs []tools.Definition) []responsesTool {
	payload := make([]responsesTool, 0, len(defs))
	for _, def := range defs {
		params := def.Parameters
		if params == nil {
			params = &tools.Schema{Type: "object"}
		}
		payload = append(payload, responsesTool{
			Type:        "function",
			Name:        def.Name,
			Description: def.Description,
			Parameters:  params,
		})
	}
	return payload
}
