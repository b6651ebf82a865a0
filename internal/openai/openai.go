package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/lehigh-university-libraries/bhl-commons/internal/providers"
	"github.com/lehigh-university-libraries/bhl-commons/internal/restyutil"
)

const DefaultURL = "https://api.openai.com/v1"

// OpenAI generates text with the chat completions API
type OpenAI struct {
	baseURL string
	apiKey  string
	http    *resty.Client
}

// New returns an OpenAI provider. The key is held for the provider's lifetime.
func New(baseURL, apiKey string, opts restyutil.Options) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not set")
	}
	if baseURL == "" {
		baseURL = DefaultURL
	}
	client, err := restyutil.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}
	return &OpenAI{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: client}, nil
}

// GenerateText sends the prompt as a single user message
func (o *OpenAI) GenerateText(ctx context.Context, config providers.Config) (string, error) {
	res, err := o.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(o.apiKey).
		SetBody(map[string]interface{}{
			"model": config.Model,
			"messages": []map[string]interface{}{
				{
					"role":    "user",
					"content": content(config),
				},
			},
			"temperature": config.Temperature,
		}).
		Post(o.baseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if res.StatusCode() != 200 {
		return "", fmt.Errorf("received non-200 status code: %d - %s", res.StatusCode(), res.String())
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(res.Body(), &response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}

// content is the plain prompt, or text and image parts when images are set
func content(config providers.Config) interface{} {
	if len(config.Images) == 0 {
		return config.Prompt
	}
	parts := []map[string]interface{}{
		{"type": "text", "text": config.Prompt},
	}
	for _, img := range config.Images {
		parts = append(parts, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]string{
				"url": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img),
			},
		})
	}
	return parts
}
