package agent

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"verifbench/internal/tools"
)

// sentinelTokens are provider-specific literal markers that signal a tool
// call embedded in assistant text instead of the structured channel.
var sentinelTokens = []string{
	"<|tool_calls_section_begin|>",
	"<|tool_calls_section_end|>",
	"<|tool_call_begin|>",
	"<|tool_call_end|>",
	"<|tool_call_argument_begin|>",
	"<tool_call>",
	"</tool_call>",
	"[TOOL_CALLS]",
}

// fencedBlockPattern matches fenced code blocks, optionally tagged json.
var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// embeddedCall is the JSON shape models use for text-embedded tool calls.
// Arguments may be a JSON object or a JSON-encoded string.
type embeddedCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ExtractEmbeddedCalls recovers tool calls a non-compliant provider embedded
// as literal text. It returns the recovered calls and the visible answer text
// with the call payload and sentinel tokens stripped. It is idempotent and
// side-effect-free: on any parse failure it returns no calls and the original
// text unchanged.
func ExtractEmbeddedCalls(text string) ([]ToolCall, string) {
	if !containsSentinel(text) {
		return nil, text
	}

	for _, match := range fencedBlockPattern.FindAllStringSubmatch(text, -1) {
		calls := parseCallPayload(match[1])
		if len(calls) > 0 {
			cleaned := strings.Replace(text, match[0], "", 1)
			return calls, stripSentinels(cleaned)
		}
	}

	// No fenced block parsed; scan backward from the trailing sentinel for
	// the last balanced bracket pair and try that substring. When the payload
	// follows the only sentinel, scan backward from the end of the text.
	for _, end := range []int{lastSentinelIndex(text), len(text)} {
		payload := balancedPayloadBefore(text, end)
		if payload == "" {
			continue
		}
		calls := parseCallPayload(payload)
		if len(calls) > 0 {
			cleaned := strings.Replace(text, payload, "", 1)
			return calls, stripSentinels(cleaned)
		}
	}

	return nil, text
}

// containsSentinel reports whether any sentinel token appears in text.
func containsSentinel(text string) bool {
	return firstSentinelIndex(text) >= 0
}

// firstSentinelIndex returns the earliest sentinel position, or -1.
func firstSentinelIndex(text string) int {
	first := -1
	for _, token := range sentinelTokens {
		if index := strings.Index(text, token); index >= 0 && (first < 0 || index < first) {
			first = index
		}
	}
	return first
}

// lastSentinelIndex returns the latest sentinel position, or -1.
func lastSentinelIndex(text string) int {
	last := -1
	for _, token := range sentinelTokens {
		if index := strings.LastIndex(text, token); index > last {
			last = index
		}
	}
	return last
}

// stripSentinels removes all sentinel tokens and trims the result.
func stripSentinels(text string) string {
	for _, token := range sentinelTokens {
		text = strings.ReplaceAll(text, token, "")
	}
	return strings.TrimSpace(text)
}

// parseCallPayload parses a JSON array or object of embedded calls. Each
// recovered call gets a freshly generated id; the provider did not supply one.
func parseCallPayload(payload string) []ToolCall {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil
	}
	var entries []embeddedCall
	if strings.HasPrefix(payload, "[") {
		if err := json.Unmarshal([]byte(payload), &entries); err != nil {
			return nil
		}
	} else {
		var single embeddedCall
		if err := json.Unmarshal([]byte(payload), &single); err != nil {
			return nil
		}
		entries = []embeddedCall{single}
	}

	calls := make([]ToolCall, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Name) == "" {
			return nil
		}
		args, ok := decodeEmbeddedArguments(entry.Arguments)
		if !ok {
			return nil
		}
		calls = append(calls, ToolCall{
			ID:   "recovered-" + uuid.NewString(),
			Name: entry.Name,
			Args: args,
		})
	}
	return calls
}

// decodeEmbeddedArguments accepts an arguments object or a JSON-encoded
// string containing an object.
func decodeEmbeddedArguments(raw json.RawMessage) (tools.CallArgs, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return tools.CallArgs{}, true
	}
	if strings.HasPrefix(trimmed, "\"") {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, false
		}
		args, err := tools.ParseCallArgs(encoded)
		if err != nil {
			return nil, false
		}
		return args, true
	}
	var args tools.CallArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, false
	}
	if args == nil {
		args = tools.CallArgs{}
	}
	return args, true
}

// balancedPayloadBefore scans backward from position end for the last
// balanced bracket pair, tracking nesting depth, and returns the enclosed
// substring. Returns "" when no balanced pair is found.
func balancedPayloadBefore(text string, end int) string {
	if end < 0 || end > len(text) {
		end = len(text)
	}
	closing := -1
	for i := end - 1; i >= 0; i-- {
		if text[i] == '}' || text[i] == ']' {
			closing = i
			break
		}
	}
	if closing < 0 {
		return ""
	}
	depth := 0
	for i := closing; i >= 0; i-- {
		switch text[i] {
		case '}', ']':
			depth++
		case '{', '[':
			depth--
			if depth == 0 {
				return text[i : closing+1]
			}
		}
	}
	return ""
}
