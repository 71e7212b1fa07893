package runner

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// Run identifiers sort chronologically: a UTC second-resolution timestamp
// followed by a random hex suffix that disambiguates concurrent runs.
const runIDTimeLayout = "20060102T150405Z"

const runIDSuffixBytes = 6

// NewRunID returns a fresh run identifier.
func NewRunID() (string, error) {
	return NewRunIDWithRand(time.Now(), rand.Reader)
}

// NewRunIDWithRand builds a run identifier from an explicit clock reading and
// entropy source, for tests.
func NewRunIDWithRand(now time.Time, entropy io.Reader) (string, error) {
	if entropy == nil {
		return "", fmt.Errorf("random reader is nil")
	}
	suffix := make([]byte, runIDSuffixBytes)
	if _, err := io.ReadFull(entropy, suffix); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return fmt.Sprintf("%s-%s", now.UTC().Format(runIDTimeLayout), hex.EncodeToString(suffix)), nil
}
