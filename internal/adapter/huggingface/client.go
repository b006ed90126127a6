// internal/adapter/huggingface/client.go

package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tweetmood/internal/config"
	"tweetmood/internal/domain/pipeline"
)

// Client calls hosted models on the Hugging Face Inference API
type Client struct {
	baseURL      string
	token        string
	waitForModel bool
	httpClient   *http.Client
}

// Options are inference options shared by every task
type Options struct {
	WaitForModel bool `json:"wait_for_model"`
}

// APIError is a non-200 response from the inference API
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inference API status %d: %s: %s", e.StatusCode, e.Message, strings.TrimSpace(e.Body))
}

// NewClient creates a new inference API client
func NewClient(cfg config.HuggingFaceConfig) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		token:        cfg.Token,
		waitForModel: cfg.WaitForModel,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) options() Options {
	return Options{WaitForModel: c.waitForModel}
}

// infer posts a task payload to a model and decodes the JSON response into out
func (c *Client) infer(ctx context.Context, model string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return handleAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", pipeline.ErrResponseInvalid, err)
	}

	return nil
}

func handleAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		Body:       string(body),
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", pipeline.ErrRateLimited, apiErr)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: %w", pipeline.ErrInvalidInput, apiErr)
	}
	return apiErr
}
