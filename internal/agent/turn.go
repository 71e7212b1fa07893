package agent

// Usage counts tokens exchanged in one provider round.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates another round's usage into the receiver.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Total returns the combined token count.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// ToolCallRecord captures one executed tool call within a turn.
type ToolCallRecord struct {
	Name       string `json:"name"`
	Arguments  string `json:"arguments"`
	ResultText string `json:"result_text"`
	DurationMs int64  `json:"duration_ms"`
}

// Turn is one request/response round with the provider. Turns are appended
// to the session's turn log once the provider response is received and are
// never edited afterward.
type Turn struct {
	Index     int              `json:"index"`
	Text      string           `json:"text"`
	Reasoning string           `json:"reasoning,omitempty"`
	ToolCalls []ToolCallRecord `json:"tool_calls,omitempty"`
	Usage     Usage            `json:"usage"`
}

// TurnOutput is the canonical result of one provider call.
type TurnOutput struct {
	Text      string
	Reasoning string
	ToolCalls []ToolCall
	Usage     Usage
}
