package tools

import "time"

// truncationMarker marks truncated output.
const truncationMarker = "\n... [truncated]"

// DefaultMaxOutputBytes caps recorded tool output to bound conversation growth.
const DefaultMaxOutputBytes = 32 * 1024

// Limits configure output size caps for tool execution.
type Limits struct {
	MaxOutputBytes int
}

// CallResult captures a tool execution outcome.
type CallResult struct {
	Tool        string        `json:"tool"`
	Output      string        `json:"output"`
	OutputBytes int           `json:"output_bytes"`
	Truncated   bool          `json:"truncated"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
}

// truncateOutput enforces the output byte cap, appending the marker when cut.
func truncateOutput(output string, maxBytes int) (string, bool) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxOutputBytes
	}
	if len(output) <= maxBytes {
		return output, false
	}
	return output[:maxBytes] + truncationMarker, true
}
