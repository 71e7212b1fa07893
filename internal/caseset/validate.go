package caseset

import (
	"fmt"
	"net/url"
	"strings"

	"verifbench/internal/tools"
)

// Issue captures a validation problem in a case set.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error returns a readable message for validation failures.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("case set validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}

var validCategories = map[string]struct{}{
	CategoryText:       {},
	CategoryTable:      {},
	CategoryDynamic:    {},
	CategoryDynamicPDF: {},
	CategoryVideo:      {},
}

// Normalize trims whitespace and validates a case set.
func Normalize(set Set) (Set, error) {
	collector := &issueCollector{}
	if set.Version == 0 {
		collector.add("version", "is required")
	} else if set.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", set.Version))
	}
	if len(set.Cases) == 0 {
		collector.add("cases", "must include at least one entry")
	}

	seenIDs := map[string]struct{}{}
	for i, testCase := range set.Cases {
		prefix := fmt.Sprintf("cases[%d]", i)

		testCase.ID = strings.TrimSpace(testCase.ID)
		if testCase.ID == "" {
			collector.add(prefix+".id", "is required")
		} else if _, exists := seenIDs[testCase.ID]; exists {
			collector.add(prefix+".id", fmt.Sprintf("duplicate id %q", testCase.ID))
		} else {
			seenIDs[testCase.ID] = struct{}{}
		}

		testCase.Category = strings.TrimSpace(testCase.Category)
		if testCase.Category == "" {
			collector.add(prefix+".category", "is required")
		} else if _, ok := validCategories[testCase.Category]; !ok {
			collector.add(prefix+".category", fmt.Sprintf("unknown category %q", testCase.Category))
		}

		testCase.URL = strings.TrimSpace(testCase.URL)
		if testCase.URL == "" {
			collector.add(prefix+".url", "is required")
		} else if parsed, err := url.Parse(testCase.URL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			collector.add(prefix+".url", fmt.Sprintf("invalid url %q", testCase.URL))
		}

		testCase.Question = strings.TrimSpace(testCase.Question)
		if testCase.Question == "" {
			collector.add(prefix+".question", "is required")
		}

		testCase.Expected = strings.TrimSpace(testCase.Expected)
		if testCase.Expected == "" {
			collector.add(prefix+".expected_answer", "is required")
		}

		testCase.EvidenceType = strings.TrimSpace(testCase.EvidenceType)
		if testCase.EvidenceType != "" {
			for _, value := range strings.Split(testCase.EvidenceType, "|") {
				if !validEvidenceType(strings.TrimSpace(value)) {
					collector.add(prefix+".evidence_type", fmt.Sprintf("unknown evidence type %q", value))
				}
			}
		}

		set.Cases[i] = testCase
	}

	if err := collector.result(); err != nil {
		return Set{}, err
	}
	return set, nil
}

func validEvidenceType(value string) bool {
	for _, known := range tools.EvidenceTypes {
		if value == known {
			return true
		}
	}
	return false
}
