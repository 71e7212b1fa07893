package cli

import (
	"fmt"
	"os"

	"verifbench/internal/agent"
	"verifbench/internal/config"
	"verifbench/internal/provider"
	"verifbench/internal/tools"
)

// newProviderFactory builds adapters per model config, resolving API keys
// from the environment at call time.
func newProviderFactory() func(model config.ModelConfig) (agent.Provider, error) {
	return func(model config.ModelConfig) (agent.Provider, error) {
		apiKey := os.Getenv(model.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("%s is not set", model.APIKeyEnv)
		}
		switch model.Protocol {
		case config.ProtocolResponses:
			return provider.NewResponsesAdapter(provider.ResponsesConfig{
				BaseURL: model.BaseURL,
				APIKey:  apiKey,
			})
		default:
			return provider.NewChatAdapter(provider.ChatConfig{
				BaseURL: model.BaseURL,
				APIKey:  apiKey,
			})
		}
	}
}

// newEvidenceRegistry wires the evidence-service tools from config.
func newEvidenceRegistry(cfg config.Config) (*tools.Registry, error) {
	client, err := tools.NewEvidenceClient(tools.EvidenceConfig{
		BaseURL: cfg.Evidence.BaseURL,
		APIKey:  os.Getenv(cfg.Evidence.APIKeyEnv),
		Timeout: cfg.Evidence.Timeout.Std(),
	})
	if err != nil {
		return nil, err
	}
	return tools.NewEvidenceRegistry(client, tools.Limits{})
}

// selectModels filters the configured models by name; an empty name keeps all.
func selectModels(models []config.ModelConfig, name string) ([]config.ModelConfig, error) {
	if name == "" {
		return models, nil
	}
	for _, model := range models {
		if model.Name == name {
			return []config.ModelConfig{model}, nil
		}
	}
	return nil, fmt.Errorf("model %q is not configured", name)
}
