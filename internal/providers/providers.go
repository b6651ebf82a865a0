package providers

import (
	"context"
)

// Config is one generation request
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	// Images are optional JPEG bytes sent alongside the prompt
	Images [][]byte
}

// Provider generates text from a prompt
type Provider interface {
	GenerateText(ctx context.Context, config Config) (string, error)
}
