package ollama

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

const DefaultURL = "http://localhost:11434"

// Ollama generates text with a local Ollama server
type Ollama struct {
	baseURL string
	http    *resty.Client
}

// New returns an Ollama provider for the server at baseURL
func New(baseURL string, opts restyutil.Options) (*Ollama, error) {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	client, err := restyutil.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}
	return &Ollama{baseURL: strings.TrimRight(baseURL, "/"), http: client}, nil
}

// GenerateText runs a non-streaming /api/generate request
func (o *Ollama) GenerateText(ctx context.Context, config providers.Config) (string, error) {
	body := map[string]interface{}{
		"model":  config.Model,
		"prompt": config.Prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": config.Temperature,
		},
	}
	if len(config.Images) > 0 {
		encoded := make([]string, len(config.Images))
		for i, img := range config.Images {
			encoded[i] = base64.StdEncoding.EncodeToString(img)
		}
		body["images"] = encoded
	}

	res, err := o.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(o.baseURL + "/api/generate")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if res.StatusCode() != 200 {
		return "", fmt.Errorf("received non-200 status code: %d - %s", res.StatusCode(), res.String())
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(res.Body(), &response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
