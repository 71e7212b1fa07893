package config

// Protocols supported by provider adapters.
const (
	ProtocolChat      = "chat"
	ProtocolResponses = "responses"
)

// Config is the benchmark configuration schema loaded from .verifbench.yml.
type Config struct {
	Version  int            `yaml:"version"`
	Models   []ModelConfig  `yaml:"models"`
	Evidence EvidenceConfig `yaml:"evidence"`
	Defaults Defaults       `yaml:"defaults"`
	Output   OutputConfig   `yaml:"output"`
}

// ModelConfig names one model under test and how to reach it. The API key is
// resolved from the named environment variable at run time, never stored.
type ModelConfig struct {
	Name      string `yaml:"name"`
	Protocol  string `yaml:"protocol"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// EvidenceConfig locates the remote evidence service.
type EvidenceConfig struct {
	BaseURL   string   `yaml:"base_url"`
	APIKeyEnv string   `yaml:"api_key_env"`
	Timeout   Duration `yaml:"timeout"`
}

// Defaults apply to every run unless a flag overrides them.
type Defaults struct {
	MaxRounds   int     `yaml:"max_rounds"`
	Temperature float64 `yaml:"temperature"`
	Workers     int     `yaml:"workers"`
}

// OutputConfig controls where run records land.
type OutputConfig struct {
	Dir          string `yaml:"dir"`
	DatabasePath string `yaml:"database_path"`
}
