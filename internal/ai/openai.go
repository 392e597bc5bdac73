package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type openAIClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewOpenAIClient creates a client for any OpenAI-compatible
// /chat/completions endpoint.
func NewOpenAIClient(opts OpenAIOptions) Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &openAIClient{
		apiKey:     opts.APIKey,
		endpoint:   baseURL + "/chat/completions",
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatRequestBody struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponseBody struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *openAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	jsonData, err := json.Marshal(chatRequestBody{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", errors.Wrap(err, "create http request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "http request failed")
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("chat API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponseBody
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if chatResp.Error != nil {
		return "", errors.Newf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("no choices returned from chat API")
	}

	return chatResp.Choices[0].Message.Content, nil
}
