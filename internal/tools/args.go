package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CallArgs holds decoded JSON arguments for a tool call.
type CallArgs map[string]json.RawMessage

// ParseCallArgs decodes a JSON object payload into CallArgs.
func ParseCallArgs(payload string) (CallArgs, error) {
	if strings.TrimSpace(payload) == "" {
		return CallArgs{}, nil
	}
	var args CallArgs
	if err := json.Unmarshal([]byte(payload), &args); err != nil {
		return nil, fmt.Errorf("parse tool arguments: %w", err)
	}
	if args == nil {
		args = CallArgs{}
	}
	return args, nil
}

// JSON returns the arguments serialized as a JSON object.
func (args CallArgs) JSON() string {
	if len(args) == 0 {
		return "{}"
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(payload)
}

// RequiredString returns a required string argument.
func (args CallArgs) RequiredString(key string) (string, error) {
	value, ok, err := args.OptionalString(key)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

// OptionalString returns an optional string argument with a presence flag.
func (args CallArgs) OptionalString(key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok {
		return "", false, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false, fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(value), true, nil
}

// OptionalInt returns an optional integer argument.
func (args CallArgs) OptionalInt(key string) (*int, error) {
	raw, ok := args[key]
	if !ok {
		return nil, nil
	}
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &value, nil
}

// OptionalBool returns an optional boolean argument.
func (args CallArgs) OptionalBool(key string) (*bool, error) {
	raw, ok := args[key]
	if !ok {
		return nil, nil
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%s must be a boolean", key)
	}
	return &value, nil
}
