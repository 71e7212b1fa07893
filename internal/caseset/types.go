package caseset

// Case categories. The category drives evidence-type inference when a case
// does not name an expected type explicitly.
const (
	CategoryText       = "text"
	CategoryTable      = "table"
	CategoryDynamic    = "dynamic"
	CategoryDynamicPDF = "dynamic+pdf"
	CategoryVideo      = "video"
)

// Set defines the case set schema loaded from JSON or YAML.
type Set struct {
	Version int        `json:"version" yaml:"version"`
	Cases   []TestCase `json:"cases" yaml:"cases"`
}

// TestCase is one benchmark case: a question about a live web source with a
// known expected answer. Immutable once loaded.
type TestCase struct {
	ID           string `json:"id" yaml:"id"`
	Category     string `json:"category" yaml:"category"`
	URL          string `json:"url" yaml:"url"`
	Question     string `json:"question" yaml:"question"`
	Expected     string `json:"expected_answer" yaml:"expected_answer"`
	EvidenceType string `json:"evidence_type,omitempty" yaml:"evidence_type,omitempty"`
}
