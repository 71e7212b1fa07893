package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// defaultEvidenceTimeout bounds a single evidence-service call. Operations are
// backed by a headless browser, so the timeout is deliberately generous.
const defaultEvidenceTimeout = 5 * time.Minute

// HTTPDoer abstracts HTTP clients used by the evidence client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// EvidenceConfig configures the remote evidence-service client.
type EvidenceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  HTTPDoer
}

// EvidenceClient calls the remote evidence service that implements the
// tool contracts (search, fetch, page analysis, action steps, transcripts,
// citation creation).
type EvidenceClient struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewEvidenceClient constructs a client with explicit settings.
func NewEvidenceClient(cfg EvidenceConfig) (*EvidenceClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("evidence base url is required")
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultEvidenceTimeout
		}
		client = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &EvidenceClient{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  client,
	}, nil
}

// Call invokes one named tool on the evidence service and returns the raw
// JSON response body as the tool output text.
func (c *EvidenceClient) Call(ctx context.Context, tool string, args CallArgs) (string, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("marshal tool arguments: %w", err)
	}
	endpoint := c.baseURL + "/v1/tools/" + tool
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", tool, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read response: %w", tool, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s: evidence service returned %d: %s", tool, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return compactJSON(body), nil
}

// compactJSON normalizes a JSON body for transcript recording. Non-JSON
// bodies are passed through untouched.
func compactJSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, bytes.TrimSpace(body)); err != nil {
		return string(body)
	}
	return buf.String()
}
