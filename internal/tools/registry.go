package tools

import (
	"context"
	"fmt"
	"time"
)

// Handler executes one tool call and returns its output text.
type Handler func(ctx context.Context, args CallArgs) (string, error)

// Definition describes a callable tool exposed to the agent.
type Definition struct {
	Name        string
	Description string
	Parameters  *Schema
}

// Registry is an explicit catalogue of tool definitions and handlers.
// It is constructed per run and passed into the session; there is no
// process-wide tool state.
type Registry struct {
	defs     []Definition
	handlers map[string]Handler
	limits   Limits
	clock    func() time.Time
}

// NewRegistry creates an empty registry with the given limits.
func NewRegistry(limits Limits) *Registry {
	return &Registry{
		handlers: map[string]Handler{},
		limits:   limits,
		clock:    time.Now,
	}
}

// Register adds a tool definition and its handler.
func (r *Registry) Register(def Definition, handler Handler) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if handler == nil {
		return fmt.Errorf("tool %s: handler is required", def.Name)
	}
	if _, exists := r.handlers[def.Name]; exists {
		return fmt.Errorf("tool %s is already registered", def.Name)
	}
	r.defs = append(r.defs, def)
	r.handlers[def.Name] = handler
	return nil
}

// Definitions returns the registered tool definitions in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, len(r.defs))
	copy(defs, r.defs)
	return defs
}

// Execute dispatches a tool call by name. Unknown tools and handler errors
// produce synthetic error results instead of aborting the session, so the
// failure stays visible in the transcript.
func (r *Registry) Execute(ctx context.Context, name string, args CallArgs) CallResult {
	handler, ok := r.handlers[name]
	if !ok {
		return r.errorResult(name, fmt.Sprintf("unknown tool %q", name))
	}
	started := r.clock()
	output, err := handler(ctx, args)
	finished := r.clock()
	if err != nil {
		result := r.errorResult(name, err.Error())
		result.StartedAt = started
		result.FinishedAt = finished
		result.Duration = finished.Sub(started)
		return result
	}
	output, truncated := truncateOutput(output, r.limits.MaxOutputBytes)
	return CallResult{
		Tool:        name,
		Output:      output,
		OutputBytes: len(output),
		Truncated:   truncated,
		StartedAt:   started,
		FinishedAt:  finished,
		Duration:    finished.Sub(started),
	}
}

// errorResult constructs a tool result describing a tool execution error.
func (r *Registry) errorResult(name, message string) CallResult {
	now := r.clock()
	output, truncated := truncateOutput("error: "+message, r.limits.MaxOutputBytes)
	return CallResult{
		Tool:        name,
		Output:      output,
		OutputBytes: len(output),
		Truncated:   truncated,
		StartedAt:   now,
		FinishedAt:  now,
		Duration:    0,
		Error:       message,
	}
}
