package tools

// Schema describes the JSON schema for tool parameters.
type Schema struct {
	Type                 string            `json:"type,omitempty"`
	Description          string            `json:"description,omitempty"`
	Enum                 []string          `json:"enum,omitempty"`
	Properties           map[string]Schema `json:"properties,omitempty"`
	Items                *Schema           `json:"items,omitempty"`
	Required             []string          `json:"required,omitempty"`
	AdditionalProperties *bool             `json:"additionalProperties,omitempty"`
}

// BoolPointer returns a pointer to the provided bool value.
func BoolPointer(value bool) *bool {
	return &value
}

// ObjectSchema builds a schema for a JSON object.
func ObjectSchema(properties map[string]Schema, required []string) Schema {
	return Schema{
		Type:                 "object",
		Properties:           properties,
		Required:             required,
		AdditionalProperties: BoolPointer(false),
	}
}

// StringSchema builds a schema for a JSON string.
func StringSchema(description string) Schema {
	return Schema{Type: "string", Description: description}
}

// EnumSchema builds a schema for a string restricted to fixed values.
func EnumSchema(description string, values ...string) Schema {
	return Schema{Type: "string", Description: description, Enum: values}
}

// IntegerSchema builds a schema for a JSON integer.
func IntegerSchema(description string) Schema {
	return Schema{Type: "integer", Description: description}
}

// BooleanSchema builds a schema for a JSON boolean.
func BooleanSchema(description string) Schema {
	return Schema{Type: "boolean", Description: description}
}
