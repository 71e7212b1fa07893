package score

import (
	"regexp"
	"strings"
)

// listSeparators mark a multi-item expected answer. Both full-width forms
// appear in authored case sets.
var listSeparators = []string{"、", "；"}

// numericTokenPattern extracts signed decimal tokens from an expected answer.
// Thousands-grouped forms match as a single token so "1,234" yields one key,
// not the fragments "1" and "234".
var numericTokenPattern = regexp.MustCompile(`[+-]?\d{1,3}(?:,\d{3})+(?:\.\d+)?|[+-]?\d+(?:\.\d+)?`)

// whitespaceRunPattern collapses whitespace runs during normalization.
var whitespaceRunPattern = regexp.MustCompile(`\s+`)

// extractKeys derives the key values an answer must contain: list items when
// a list separator is present, otherwise every numeric token, otherwise the
// whole trimmed string.
func extractKeys(expected string) []string {
	expected = strings.TrimSpace(expected)
	if expected == "" {
		return nil
	}
	for _, separator := range listSeparators {
		if !strings.Contains(expected, separator) {
			continue
		}
		var keys []string
		for _, item := range strings.Split(expected, separator) {
			if item = strings.TrimSpace(item); item != "" {
				keys = append(keys, item)
			}
		}
		return keys
	}
	if numbers := numericTokenPattern.FindAllString(expected, -1); len(numbers) > 0 {
		keys := make([]string, len(numbers))
		for i, number := range numbers {
			keys[i] = strings.ReplaceAll(number, ",", "")
		}
		return keys
	}
	return []string{expected}
}

// keyPresent tests one key against the normalized candidate text. Numeric
// keys use boundary matching only; a plain substring test would let "91"
// match inside "910".
func keyPresent(candidate, key string) bool {
	key = normalizeWhitespace(key)
	if key == "" {
		return false
	}
	if numericTokenPattern.FindString(key) == key {
		return numericKeyPresent(candidate, key)
	}
	return strings.Contains(candidate, key)
}

// numericKeyPresent matches a numeric key with thousands separators stripped
// and digit boundaries enforced, so "91" does not match inside "910" or
// "7.91".
func numericKeyPresent(candidate, key string) bool {
	stripped := strings.ReplaceAll(candidate, ",", "")
	unsigned := strings.ReplaceAll(strings.TrimLeft(key, "+-"), ",", "")
	pattern, err := regexp.Compile(`(?:^|[^0-9.+-])[+-]?` + regexp.QuoteMeta(unsigned) + `(?:$|[^0-9.])`)
	if err != nil {
		return false
	}
	return pattern.MatchString(stripped)
}

// normalizeWhitespace collapses whitespace runs to single spaces and trims.
func normalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRunPattern.ReplaceAllString(text, " "))
}
