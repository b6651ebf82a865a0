package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bhl-commons/internal/catalog"
	"github.com/lehigh-university-libraries/bhl-commons/internal/harvest"
	"github.com/lehigh-university-libraries/bhl-commons/internal/images"
	"github.com/lehigh-university-libraries/bhl-commons/internal/report"
)

func newHarvestCmd(root *rootOptions) *cobra.Command {
	var apiKey string
	var outputDir string
	var format string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "harvest ITEM_ID",
		Short: "Download the illustration pages of a BHL item and write their dataset",
		Long: `Fetches the item and title metadata of a Biodiversity Heritage Library item,
keeps the pages typed as Illustration, Plate, Figure, Chart, Map or Photograph,
downloads their full size images and writes one dataset row per image.

Images already present in the output directory are not downloaded again.`,
		Example: `  # Harvest item 103761 into ./bhl_images
  bhl-commons harvest 103761

  # Write a parquet dataset, downloading four images at a time
  bhl-commons harvest 103761 --output-dir odontoglossum --format .parquet --concurrency 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			hc := cfg.Harvest
			if cmd.Flags().Changed("api-key") {
				hc.APIKey = apiKey
			}
			if cmd.Flags().Changed("output-dir") {
				hc.OutputDir = outputDir
			}
			if cmd.Flags().Changed("format") {
				hc.Format = format
			}
			if cmd.Flags().Changed("concurrency") {
				hc.Concurrency = concurrency
			}
			if err := hc.Validate(); err != nil {
				return err
			}

			client, err := catalog.NewClient(catalog.Options{
				BaseURL: hc.BaseURL,
				APIKey:  hc.APIKey,
				Timeout: hc.HTTP.Timeout,
				Retries: hc.HTTP.Retries,
			})
			if err != nil {
				return err
			}
			fetcher, err := images.NewFetcher(hc.HTTP.Timeout, hc.HTTP.Retries)
			if err != nil {
				return err
			}

			h := &harvest.Harvester{
				Catalog:     client,
				Downloader:  fetcher,
				OutputDir:   hc.OutputDir,
				Format:      hc.Format,
				Concurrency: hc.Concurrency,
			}
			summary, err := h.Run(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("harvest of item %s failed: %w", args[0], err)
			}

			report.PrintHarvest(os.Stdout, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "BHL api3 key (defaults to BHL_API_KEY)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "bhl_images", "Directory for images and the dataset")
	cmd.Flags().StringVar(&format, "format", ".csv", "Dataset format (.csv, .parquet or .xlsx)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of parallel image downloads")

	return cmd
}
