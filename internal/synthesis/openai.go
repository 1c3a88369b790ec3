// Package synthesis calls the external image generation provider.
package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ImageGenerator produces an image for a prompt and returns a URL to
// it. The URL is hosted by the provider and is only a preview; nothing
// is persisted until the client confirms.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	defaultBaseURL = "https://api.openai.com/v1"
	imageModel     = "dall-e-3"
	imageSize      = "1024x1024"
)

// OpenAIClient generates images through the OpenAI images API.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient creates a client for the OpenAI images API.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewOpenAIClientWithBaseURL creates a client pointed at a custom API
// base URL. Used in tests.
func NewOpenAIClientWithBaseURL(apiKey, baseURL string) *OpenAIClient {
	c := NewOpenAIClient(apiKey)
	c.baseURL = baseURL
	return c
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type generateResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate requests a single image for the prompt and returns the
// provider-hosted URL.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  imageModel,
		Prompt: prompt,
		N:      1,
		Size:   imageSize,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling image generation API: %w", err)
	}
	defer resp.Body.Close()

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decoding image generation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil && decoded.Error.Message != "" {
			return "", fmt.Errorf("image generation API error: %s", decoded.Error.Message)
		}
		return "", fmt.Errorf("image generation API returned status %d", resp.StatusCode)
	}

	if len(decoded.Data) == 0 || decoded.Data[0].URL == "" {
		return "", errors.New("image generation API returned no image")
	}

	return decoded.Data[0].URL, nil
}
