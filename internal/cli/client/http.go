package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/novalxp/novalxp-bot/internal/api"
	"github.com/spf13/cobra"
)

const (
	envAPIKey = "NOVALXP_API_KEY"
	envAPIURL = "NOVALXP_API_URL"

	defaultAPIURL = "http://localhost:8080"
)

type APIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAPIClient creates an APIClient with config cascade: flag → env → default.
// The API key is optional; the server only enforces it when auth is enabled.
func NewAPIClient(cmd *cobra.Command) (*APIClient, error) {
	_ = godotenv.Load()

	var apiKey, baseURL string
	if cmd != nil {
		if flagKey, err := cmd.Flags().GetString("api-key"); err == nil && flagKey != "" {
			apiKey = flagKey
		}
		if flagURL, err := cmd.Flags().GetString("api-url"); err == nil && flagURL != "" {
			baseURL = flagURL
		}
	}

	if apiKey == "" {
		apiKey = os.Getenv(envAPIKey)
	}
	if baseURL == "" {
		baseURL = os.Getenv(envAPIURL)
	}
	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	return &APIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// APIError represents an error envelope returned by the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Retryable  bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

// Get performs a GET request and decodes the response into out.
func (c *APIClient) Get(path string, out interface{}) error {
	return c.do(http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response
// into out.
func (c *APIClient) Post(path string, body, out interface{}) error {
	return c.do(http.MethodPost, path, body, out)
}

func (c *APIClient) do(method, path string, body, out interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope api.ErrorEnvelope
		if err := json.Unmarshal(respBody, &envelope); err != nil || envelope.Error.Code == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
			Retryable:  envelope.Error.Retryable,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
