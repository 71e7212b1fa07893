package runner

import (
	"fmt"

	"verifbench/internal/caseset"
)

// DefaultSystemPrompt instructs the agent to collect verifiable evidence and
// cite it before answering.
const DefaultSystemPrompt = `You are a research agent that answers questions about live web pages.
Use the available tools to gather evidence from the source page. Before giving
your final answer, create a citation for the decisive evidence with the
verifaible_cite tool, then reference it in your answer with its [@v:N] marker.
Answer concisely with the exact values requested.`

// buildCasePrompt renders the user message for one test case.
func buildCasePrompt(testCase caseset.TestCase) string {
	return fmt.Sprintf("Source: %s\n\nQuestion: %s", testCase.URL, testCase.Question)
}
