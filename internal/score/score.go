// Package score grades a completed benchmark run against its test case. It is
// a pure function of the recorded transcript and can re-score stored runs
// offline.
package score

import (
	"regexp"
	"strings"

	"verifbench/internal/agent"
	"verifbench/internal/caseset"
	"verifbench/internal/tools"
)

// Dimension weights.
const (
	weightAnswer       = 40
	weightCitation     = 25
	weightInText       = 15
	weightEvidenceType = 20
)

// TypeMatch is the three-valued outcome of the evidence-type dimension.
type TypeMatch string

const (
	TypeMatchYes     TypeMatch = "match"
	TypeMatchNo      TypeMatch = "mismatch"
	TypeMatchUnknown TypeMatch = "unknown"
)

// Result is the graded outcome of one run.
type Result struct {
	AnswerCorrect     float64   `json:"answer_correct"`
	CitationCreated   bool      `json:"citation_created"`
	CitationInText    bool      `json:"citation_in_text"`
	EvidenceTypeMatch TypeMatch `json:"evidence_type_match"`
	TotalScore        int       `json:"total_score"`
	Details           Details   `json:"details"`
}

// Details records the grading inputs for audit.
type Details struct {
	ExpectedKeys  []string `json:"expected_keys"`
	MatchedKeys   []string `json:"matched_keys"`
	ExpectedType  string   `json:"expected_evidence_type,omitempty"`
	ActualType    string   `json:"actual_evidence_type,omitempty"`
	CitationCalls int      `json:"citation_calls"`
}

// citationMarkerPattern matches the in-text reference marker form.
var citationMarkerPattern = regexp.MustCompile(`\[@v:\d+\]`)

// citationCall is one citation-tool invocation lifted from the turn log.
type citationCall struct {
	claim        string
	quotedText   string
	evidenceType string
	resultText   string
}

// Grade scores a finished run: the final answer text and the ordered turn log
// against the case's expected answer and evidence type.
func Grade(testCase caseset.TestCase, finalAnswer string, turns []agent.Turn) Result {
	citations := collectCitationCalls(turns)

	expectedKeys := extractKeys(testCase.Expected)
	candidate := buildCandidateText(finalAnswer, citations)
	matchedKeys := make([]string, 0, len(expectedKeys))
	for _, key := range expectedKeys {
		if keyPresent(candidate, key) {
			matchedKeys = append(matchedKeys, key)
		}
	}
	answerCorrect := 0.0
	if len(expectedKeys) > 0 {
		answerCorrect = float64(len(matchedKeys)) / float64(len(expectedKeys))
	}

	created := citationCreated(citations)
	inText := citationMarkerPattern.MatchString(finalAnswer)

	expectedType := expectedEvidenceType(testCase)
	actualType := actualEvidenceType(citations)
	typeMatch := matchEvidenceType(expectedType, actualType, len(citations) > 0)

	result := Result{
		AnswerCorrect:     answerCorrect,
		CitationCreated:   created,
		CitationInText:    inText,
		EvidenceTypeMatch: typeMatch,
		Details: Details{
			ExpectedKeys:  expectedKeys,
			MatchedKeys:   matchedKeys,
			ExpectedType:  expectedType,
			ActualType:    actualType,
			CitationCalls: len(citations),
		},
	}
	result.TotalScore = totalScore(result)
	return result
}

// totalScore applies the all-or-nothing gate: a partially correct answer or a
// missing citation zeroes the whole score.
func totalScore(result Result) int {
	if result.AnswerCorrect < 1.0 || !result.CitationCreated {
		return 0
	}
	score := weightAnswer + weightCitation
	if result.CitationInText {
		score += weightInText
	}
	if result.EvidenceTypeMatch != TypeMatchNo {
		score += weightEvidenceType
	}
	return score
}

// collectCitationCalls lifts citation-tool invocations from the turn log in
// execution order. Malformed argument payloads contribute empty fields rather
// than dropping the call.
func collectCitationCalls(turns []agent.Turn) []citationCall {
	var calls []citationCall
	for _, turn := range turns {
		for _, record := range turn.ToolCalls {
			if record.Name != tools.ToolCite {
				continue
			}
			call := citationCall{resultText: record.ResultText}
			if args, err := tools.ParseCallArgs(record.Arguments); err == nil {
				call.claim, _, _ = args.OptionalString("claim")
				call.quotedText, _, _ = args.OptionalString("quoted_text")
				call.evidenceType, _, _ = args.OptionalString("evidence_type")
			}
			calls = append(calls, call)
		}
	}
	return calls
}

// buildCandidateText combines the final answer with every citation claim and
// quote, so evidence embedded in a tool call counts toward correctness.
func buildCandidateText(finalAnswer string, citations []citationCall) string {
	parts := make([]string, 0, 1+2*len(citations))
	parts = append(parts, finalAnswer)
	for _, call := range citations {
		parts = append(parts, call.claim, call.quotedText)
	}
	return normalizeWhitespace(strings.Join(parts, " "))
}

// citationCreated reports whether any citation call produced a persisted
// record: the result names an evidence id and is not a tool-level error.
func citationCreated(citations []citationCall) bool {
	for _, call := range citations {
		if strings.HasPrefix(call.resultText, "error:") {
			continue
		}
		if strings.Contains(call.resultText, "evidence_id") {
			return true
		}
	}
	return false
}

// expectedEvidenceType resolves the expected type: explicit case field first,
// then category inference. Empty means unknown.
func expectedEvidenceType(testCase caseset.TestCase) string {
	if testCase.EvidenceType != "" {
		return testCase.EvidenceType
	}
	switch {
	case testCase.Category == caseset.CategoryText:
		return "text"
	case testCase.Category == caseset.CategoryTable:
		return "table"
	case strings.HasPrefix(testCase.Category, caseset.CategoryVideo):
		return "video"
	default:
		return ""
	}
}

// actualEvidenceType reads the evidence_type argument of the last citation
// call; absent arguments default to text.
func actualEvidenceType(citations []citationCall) string {
	if len(citations) == 0 {
		return ""
	}
	last := citations[len(citations)-1]
	if last.evidenceType == "" {
		return "text"
	}
	return last.evidenceType
}

// matchEvidenceType resolves the evidence-type dimension. Expected types may
// be a pipe-separated set; match is set membership. No expectation is
// vacuously satisfied; an expectation with no citation call fails explicitly.
func matchEvidenceType(expected, actual string, hasCitation bool) TypeMatch {
	if expected == "" {
		return TypeMatchUnknown
	}
	if !hasCitation {
		return TypeMatchNo
	}
	for _, accepted := range strings.Split(expected, "|") {
		if strings.TrimSpace(accepted) == actual {
			return TypeMatchYes
		}
	}
	return TypeMatchNo
}
