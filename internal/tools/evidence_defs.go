package tools

import "context"

// Tool names exposed by the evidence service.
const (
	ToolWebSearch       = "verifaible_web_search"
	ToolWebFetch        = "web_fetch"
	ToolAnalyzePage     = "analyze_page"
	ToolTestActionSteps = "test_action_steps"
	ToolVideoTranscript = "video_transcript"
	ToolCite            = "verifaible_cite"
)

// EvidenceTypes are the citation record kinds the evidence service accepts.
var EvidenceTypes = []string{"text", "table", "image", "video", "pdf"}

// NewEvidenceRegistry builds a registry exposing the six evidence-service
// tools backed by the given client.
func NewEvidenceRegistry(client *EvidenceClient, limits Limits) (*Registry, error) {
	registry := NewRegistry(limits)
	for _, tool := range evidenceToolDefinitions() {
		def := tool
		handler := func(ctx context.Context, args CallArgs) (string, error) {
			for _, key := range def.required {
				if _, err := args.RequiredString(key); err != nil {
					return "", err
				}
			}
			return client.Call(ctx, def.def.Name, args)
		}
		if err := registry.Register(def.def, handler); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// evidenceTool pairs a definition with the string arguments that must be
// present before the call is forwarded to the remote service.
type evidenceTool struct {
	def      Definition
	required []string
}

func evidenceToolDefinitions() []evidenceTool {
	return []evidenceTool{
		{
			def: Definition{
				Name:        ToolWebSearch,
				Description: "Search the web and return ranked results with snippets.",
				Parameters: schemaPointer(ObjectSchema(map[string]Schema{
					"query":          StringSchema("Search query"),
					"max_results":    IntegerSchema("Maximum number of results, at most 10"),
					"search_depth":   EnumSchema("Search depth", "basic", "advanced"),
					"include_answer": BooleanSchema("Include a synthesized answer"),
				}, []string{"query"})),
			},
			required: []string{"query"},
		},
		{
			def: Definition{
				Name:        ToolWebFetch,
				Description: "Fetch a page and return its readable content.",
				Parameters: schemaPointer(ObjectSchema(map[string]Schema{
					"url": StringSchema("Page URL"),
				}, []string{"url"})),
			},
			required: []string{"url"},
		},
		{
			def: Definition{
				Name:        ToolAnalyzePage,
				Description: "Analyze a page or PDF: network requests, global objects, interactive elements, tables, accessibility summary, or paginated PDF text.",
				Parameters: schemaPointer(ObjectSchema(map[string]Schema{
					"url":          StringSchema("Page or PDF URL"),
					"action_steps": StringSchema("Serialized browser actions to run before analysis"),
				}, []string{"url"})),
			},
			required: []string{"url"},
		},
		{
			def: Definition{
				Name:        ToolTestActionSteps,
				Description: "Replay a full action sequence against a fresh page context and verify the target state. Every invocation is stateless: no state persists between calls.",
				Parameters: schemaPointer(ObjectSchema(map[string]Schema{
					"url":              StringSchema("Starting page URL"),
					"action_steps":     StringSchema("Serialized list of browser actions (exec_js, click, type, scroll, select, wait), each with a wait delay"),
					"verify_type":      EnumSchema("Verification payload kind", "text", "table", "image"),
					"anchor":           StringSchema("Text anchor for verification"),
					"row_anchor":       StringSchema("Table row anchor for verification"),
					"element_selector": StringSchema("CSS selector for element verification"),
				}, []string{"url", "action_steps", "verify_type"})),
			},
			required: []string{"url", "action_steps", "verify_type"},
		},
		{
			def: Definition{
				Name:        ToolVideoTranscript,
				Description: "Retrieve the timestamped transcript of a video.",
				Parameters: schemaPointer(ObjectSchema(map[string]Schema{
					"url": StringSchema("Video URL"),
				}, []string{"url"})),
			},
			required: []string{"url"},
		},
		{
			def: Definition{
				Name:        ToolCite,
				Description: "Create a persisted, source-anchored citation record for a claim.",
				Parameters: schemaPointer(ObjectSchema(map[string]Schema{
					"claim":            StringSchema("The claim the evidence supports"),
					"source_url":       StringSchema("Source page URL"),
					"quoted_text":      StringSchema("Verbatim quote from the source"),
					"anchor":           StringSchema("Locator anchor within the source"),
					"evidence_type":    EnumSchema("Evidence kind", EvidenceTypes...),
					"row_anchor":       StringSchema("Table row anchor"),
					"element_selector": StringSchema("CSS selector for image evidence"),
					"timestamp":        StringSchema("Video timestamp"),
					"page_number":      IntegerSchema("PDF page number"),
					"action_steps":     StringSchema("Serialized browser actions that reach the evidence"),
				}, []string{"claim", "source_url", "quoted_text", "evidence_type"})),
			},
			required: []string{"claim", "source_url", "quoted_text", "evidence_type"},
		},
	}
}

func schemaPointer(schema Schema) *Schema {
	return &schema
}
