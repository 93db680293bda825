package llm

import (
	"context"
	"fmt"
	"net/http"
)

// openaiAPIURL is a var to allow test overrides via httptest.
var openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// SetOpenAIAPIURL overrides the endpoint and returns a restore function.
// Intended for tests only.
func SetOpenAIAPIURL(u string) func() {
	prev := openaiAPIURL
	openaiAPIURL = u
	return func() { openaiAPIURL = prev }
}

type openaiProvider struct {
	model  string
	apiKey string
}

type openaiRequest struct {
	Model          string          `json:"model"`
	Messages       []openaiMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (p *openaiProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	var messages []openaiMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, openaiMessage{Role: "user", Content: req.UserPrompt})

	body := openaiRequest{Model: p.model, Messages: messages, MaxTokens: req.MaxTokens}
	if req.Model != "" {
		body.Model = req.Model
	}
	if req.Temperature != 0 {
		t := req.Temperature
		body.Temperature = &t
	}
	// Notes are always requested as a JSON object.
	body.ResponseFormat = &struct {
		Type string `json:"type"`
	}{Type: "json_object"}

	var oaiResp openaiResponse
	status, raw, err := postJSON(ctx, openaiAPIURL, map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	}, body, &oaiResp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		if oaiResp.Error != nil {
			return nil, fmt.Errorf("openai: %s: %s", oaiResp.Error.Type, oaiResp.Error.Message)
		}
		return nil, fmt.Errorf("openai: HTTP %d: %s", status, truncate(raw, 200))
	}
	if len(oaiResp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices in response")
	}
	return &Response{Content: oaiResp.Choices[0].Message.Content, Model: "openai:" + oaiResp.Model}, nil
}
