package provider

import (
	"fmt"

	"verifbench/internal/agent"
	"verifbench/internal/tools"
)

// chatRequest is the JSON payload sent to a chat-completions endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []chatTool    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// chatMessage represents a single chat-completions message.
type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// chatTool describes a function tool for a chat-completions endpoint.
type chatTool struct {
	Type     string                 `json:"type"`
	Function chatFunctionDefinition `json:"function"`
}

// chatFunctionDefinition describes a tool's function signature.
type chatFunctionDefinition struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Parameters  *tools.Schema `json:"parameters,omitempty"`
}

// chatToolCall represents a tool call carried in an assistant message.
type chatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function chatFunctionCall `json:"function"`
}

// chatFunctionCall describes the name and arguments of a tool call.
type chatFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// chatResponse is the JSON payload returned by a chat-completions endpoint.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message chatResponseMessage `json:"message"`
}

// chatResponseMessage carries the assistant reply. Reasoning-capable backends
// disagree on the field name, so both spellings are read.
type chatResponseMessage struct {
	Content          string         `json:"content"`
	Reasoning        string         `json:"reasoning"`
	ReasoningContent string         `json:"reasoning_content"`
	ToolCalls        []chatToolCall `json:"tool_calls"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// buildChatMessages converts the canonical conversation into chat-completions
// messages. Consecutive tool-call items after an assistant message coalesce
// into that message's tool_calls array, with the paired tool results emitted
// after it, preserving conversation order.
func buildChatMessages(items []agent.Item) ([]chatMessage, error) {
	messages := make([]chatMessage, 0, len(items))
	var assistant *chatMessage
	var results []chatMessage

	flush := func() {
		if assistant != nil {
			messages = append(messages, *assistant)
			assistant = nil
		}
		messages = append(messages, results...)
		results = nil
	}

	for index, item := range items {
		switch content := item.Content.(type) {
		case agent.Text:
			flush()
			messages = append(messages, chatMessage{Role: item.Role, Content: content.Text})
		case agent.Message:
			flush()
			assistant = &chatMessage{Role: agent.RoleAssistant, Content: content.Text}
		case agent.ToolCall:
			if content.ID == "" {
				return nil, fmt.Errorf("item %d: tool call id is required", index)
			}
			if assistant == nil {
				assistant = &chatMessage{Role: agent.RoleAssistant}
			}
			assistant.ToolCalls = append(assistant.ToolCalls, chatToolCall{
				ID:   content.ID,
				Type: "function",
				Function: chatFunctionCall{
					Name:      content.Name,
					Arguments: content.Args.JSON(),
				},
			})
		case agent.ToolResult:
			results = append(results, chatMessage{
				Role:       "tool",
				Content:    content.Result.Output,
				ToolCallID: content.CallID,
			})
		default:
			return nil, fmt.Errorf("item %d: unsupported content type %T", index, item.Content)
		}
	}
	flush()
	return messages, nil
}

// buildChatTools converts tool definitions into chat-completions payloads.
func buildChatTools(defs []tools.Definition) []chatTool {
	payload := make([]chatTool, 0, len(defs))
	for _, def := range defs {
		params := def.Parameters
		if params == nil {
			params = &tools.Schema{Type: "object"}
		}
		payload = append(payload, chatTool{
			Type: "function",
			Function: chatFunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  params,
			},
		})
	}
	return payload
}
