package agent

import (
	"fmt"

	"verifbench/internal/tools"
)

// Canonical conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Content is the tagged variant carried by a conversation item. Adapters
// handle every kind exhaustively when translating to a wire format.
type Content interface {
	conversationContent()
}

// Text is plain message text for system and user items.
type Text struct {
	Text string
}

// Message is an assistant reply. Reasoning is preserved verbatim for later
// distillation and is never used in scoring.
type Message struct {
	Text      string
	Reasoning string
}

// ToolCall is a tool invocation emitted by the model.
type ToolCall struct {
	ID   string
	Name string
	Args tools.CallArgs
}

// ToolResult is the recorded output of one tool invocation.
type ToolResult struct {
	CallID string
	Result tools.CallResult
}

func (Text) conversationContent()       {}
func (Message) conversationContent()    {}
func (ToolCall) conversationContent()   {}
func (ToolResult) conversationContent() {}

// Item is one entry in the canonical conversation.
type Item struct {
	Role    string
	Content Content
}

// SystemItem builds a system message item.
func SystemItem(text string) Item {
	return Item{Role: RoleSystem, Content: Text{Text: text}}
}

// UserItem builds a user message item.
func UserItem(text string) Item {
	return Item{Role: RoleUser, Content: Text{Text: text}}
}

// AssistantItem builds an assistant message item.
func AssistantItem(text, reasoning string) Item {
	return Item{Role: RoleAssistant, Content: Message{Text: text, Reasoning: reasoning}}
}

// ToolCallItem builds an assistant tool-call item.
func ToolCallItem(call ToolCall) Item {
	return Item{Role: RoleAssistant, Content: call}
}

// ToolResultItem builds a tool-result item.
func ToolResultItem(callID string, result tools.CallResult) Item {
	return Item{Role: RoleTool, Content: ToolResult{CallID: callID, Result: result}}
}

// CheckPairing verifies the conversation invariant: every tool call is
// followed, before the next assistant message, by exactly one tool result
// with a matching id.
func CheckPairing(items []Item) error {
	pending := ""
	for index, item := range items {
		switch content := item.Content.(type) {
		case ToolCall:
			if pending != "" {
				return fmt.Errorf("item %d: tool call %s before result for %s", index, content.ID, pending)
			}
			pending = content.ID
		case ToolResult:
			if pending == "" {
				return fmt.Errorf("item %d: tool result %s without a call", index, content.CallID)
			}
			if content.CallID != pending {
				return fmt.Errorf("item %d: tool result %s does not match call %s", index, content.CallID, pending)
			}
			pending = ""
		case Message:
			if pending != "" {
				return fmt.Errorf("item %d: assistant message before result for %s", index, pending)
			}
		}
	}
	if pending != "" {
		return fmt.Errorf("tool call %s has no result", pending)
	}
	return nil
}
