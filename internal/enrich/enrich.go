package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/bhl-commons/internal/config"
	"github.com/lehigh-university-libraries/bhl-commons/internal/gemini"
	"github.com/lehigh-university-libraries/bhl-commons/internal/models"
	"github.com/lehigh-university-libraries/bhl-commons/internal/ollama"
	"github.com/lehigh-university-libraries/bhl-commons/internal/openai"
	"github.com/lehigh-university-libraries/bhl-commons/internal/providers"
	"github.com/lehigh-university-libraries/bhl-commons/internal/restyutil"
)

// NewProvider builds the provider named in cfg
func NewProvider(cfg config.DescribeConfig) (providers.Provider, error) {
	httpOpts := restyutil.Options{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
		Retries:   cfg.HTTP.Retries,
	}

	switch cfg.Provider {
	case "ollama":
		return ollama.New(cfg.OllamaURL, httpOpts)
	case "openai":
		return openai.New(cfg.OpenAIURL, cfg.OpenAIAPIKey, httpOpts)
	case "gemini":
		return gemini.New(cfg.GeminiAPIKey)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// DefaultModel is the model used when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "ollama":
		return "mistral-small3.2:24b"
	case "gemini":
		return "gemini-1.5-flash"
	default:
		return ""
	}
}

// Describer fills in missing descriptions
type Describer struct {
	Provider    providers.Provider
	Model       string
	Temperature float64
	// WithImage sends the record's image with the prompt
	WithImage bool
}

// Summary counts what a Describe run did
type Summary struct {
	Described int
	Skipped   int
	Failed    int
}

// Describe generates a description for every record whose description is
// empty. Records that already have one are left alone. A failure on one
// record is logged and the rest continue.
func (d *Describer) Describe(ctx context.Context, records []models.AssetRecord) (*Summary, error) {
	summary := &Summary{}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		record := &records[i]
		if strings.TrimSpace(record.Field(models.FieldDescription)) != "" {
			summary.Skipped++
			continue
		}

		slog.Info("Describing record", "index", i+1, "total", len(records), "target_name", record.TargetName)

		req := providers.Config{
			Model:       d.Model,
			Temperature: d.Temperature,
			Prompt:      Prompt(*record),
		}
		if d.WithImage {
			img, err := os.ReadFile(record.LocalPath)
			if err != nil {
				slog.Warn("Failed to read image", "path", record.LocalPath, "error", err)
				summary.Failed++
				continue
			}
			req.Images = [][]byte{img}
		}

		text, err := d.Provider.GenerateText(ctx, req)
		if err != nil {
			slog.Warn("Failed to generate description", "target_name", record.TargetName, "error", err)
			summary.Failed++
			continue
		}

		description := Clean(text)
		if description == "" {
			slog.Warn("Provider returned an empty description", "target_name", record.TargetName)
			summary.Failed++
			continue
		}

		if record.Fields == nil {
			record.Fields = make(map[string]string)
		}
		record.Fields[models.FieldDescription] = description
		summary.Described++
	}

	return summary, nil
}

// Prompt builds the generation prompt from what the record already knows
func Prompt(r models.AssetRecord) string {
	var b strings.Builder
	b.WriteString("Write a one or two sentence description of this image for its Wikimedia Commons file page. ")
	b.WriteString("Use only the facts below. Reply with the description only, in plain text without wiki markup.\n\n")

	facts := []struct {
		label string
		field string
	}{
		{"Title", models.FieldTitle},
		{"Creator", models.FieldPhotographer},
		{"Date", models.FieldDate},
		{"Page type", models.FieldNotes},
		{"Depicted place", models.FieldDepictedPlace},
		{"Institution", models.FieldInstitution},
		{"Categories", models.FieldCategories},
	}
	for _, f := range facts {
		if v := strings.TrimSpace(r.Field(f.field)); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.label, v)
		}
	}

	return b.String()
}

// Clean trims whitespace and wrapping quotes from model output
func Clean(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}
