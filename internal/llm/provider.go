// Package llm talks to hosted language models that write the narrative
// notes of a transformation story.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// sharedHTTPClient is used by all providers. Callers bound each call with a
// context deadline; the client timeout is a backstop.
var sharedHTTPClient = &http.Client{
	Timeout: 5 * time.Minute,
}

// defaultMaxTokens is the fallback when Request.MaxTokens is not set.
const defaultMaxTokens = 2048

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 * 1024 * 1024

// Request holds the parameters for a completion call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	// Model overrides the provider's configured model when non-empty.
	Model string
}

// Response holds the result of a completion call.
type Response struct {
	Content string
	Model   string // "provider:model" actually used
}

// Provider is the interface for completion backends.
type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// NewProvider parses a "provider:model" string and returns the matching
// Provider. The API key is read from the environment at construction time.
// Example: "anthropic:claude-sonnet-4-6" or "openai:gpt-4o".
func NewProvider(providerModel string) (Provider, error) {
	name, model, ok := strings.Cut(providerModel, ":")
	if !ok || name == "" || model == "" {
		return nil, fmt.Errorf("invalid model format %q: expected provider:model (e.g. anthropic:claude-sonnet-4-6)", providerModel)
	}
	var env string
	switch name {
	case "anthropic":
		env = "ANTHROPIC_API_KEY"
	case "openai":
		env = "OPENAI_API_KEY"
	default:
		return nil, fmt.Errorf("unknown provider %q: supported providers are anthropic, openai", name)
	}
	apiKey := os.Getenv(env)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable not set", env)
	}
	if name == "anthropic" {
		return &anthropicProvider{model: model, apiKey: apiKey}, nil
	}
	return &openaiProvider{model: model, apiKey: apiKey}, nil
}

// postJSON sends body to url and decodes the reply into out. The status code
// is returned so callers can prefer a structured error from out over it.
func postJSON(ctx context.Context, url string, headers map[string]string, body, out any) (int, string, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return 0, "", fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return 0, "", fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := sharedHTTPClient.Do(httpReq)
	if err != nil {
		return 0, "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("reading response body: %w", err)
	}
	raw := string(respBytes)
	if err := json.Unmarshal(respBytes, out); err != nil {
		return resp.StatusCode, raw, fmt.Errorf("parsing response JSON (HTTP %d, body: %s): %w", resp.StatusCode, truncate(raw, 200), err)
	}
	return resp.StatusCode, raw, nil
}

// truncate limits a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
