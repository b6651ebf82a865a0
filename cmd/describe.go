package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bhl-commons/internal/dataset"
	"github.com/lehigh-university-libraries/bhl-commons/internal/enrich"
)

func newDescribeCmd(root *rootOptions) *cobra.Command {
	var provider string
	var model string
	var withImage bool

	cmd := &cobra.Command{
		Use:   "describe DATASET_DIR",
		Short: "Fill empty descriptions in a dataset with an LLM",
		Long: `Generates a short description for every dataset record whose description is
empty, from the record's title, creator, date and page type. Records that
already have a description are not changed. The dataset is rewritten in place.`,
		Example: `  # Use a local Ollama model
  bhl-commons describe bhl_images --provider ollama --model mistral-small3.2:24b

  # Let a vision model see each image
  bhl-commons describe bhl_images --provider openai --model gpt-4o --with-image`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			dc := cfg.Describe
			if len(args) == 1 {
				dc.DatasetDir = args[0]
			}
			if cmd.Flags().Changed("provider") {
				dc.Provider = provider
			}
			if cmd.Flags().Changed("model") {
				dc.Model = model
			}
			if dc.Model == "" {
				dc.Model = enrich.DefaultModel(dc.Provider)
			}
			if err := dc.Validate(); err != nil {
				return err
			}

			path, err := dataset.Locate(dc.DatasetDir)
			if err != nil {
				return err
			}
			records, err := dataset.Read(path)
			if err != nil {
				return err
			}

			p, err := enrich.NewProvider(dc)
			if err != nil {
				return err
			}
			d := &enrich.Describer{
				Provider:    p,
				Model:       dc.Model,
				Temperature: dc.Temperature,
				WithImage:   withImage,
			}

			slog.Info("Describing dataset", "path", path, "records", len(records), "provider", dc.Provider, "model", dc.Model)
			summary, err := d.Describe(cmd.Context(), records)
			if err != nil {
				return err
			}

			if summary.Described > 0 {
				if err := dataset.Write(path, records); err != nil {
					return err
				}
			}

			fmt.Printf("Described: %d, already described: %d, failed: %d\n", summary.Described, summary.Skipped, summary.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "ollama", "LLM provider (ollama, openai, or gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().BoolVar(&withImage, "with-image", false, "Send each image to the model along with the prompt")

	return cmd
}
