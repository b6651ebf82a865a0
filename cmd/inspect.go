package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bhl-commons/internal/dataset"
	"github.com/lehigh-university-libraries/bhl-commons/internal/report"
	"github.com/lehigh-university-libraries/bhl-commons/internal/wikitext"
)

func newInspectCmd(root *rootOptions) *cobra.Command {
	var render int
	var templatePath string
	var reportPath string

	cmd := &cobra.Command{
		Use:   "inspect [DATASET_DIR]",
		Short: "Show a dataset, preview a description page, or show a publish report",
		Example: `  # List the records of a dataset and whether each can be published
  bhl-commons inspect bhl_images

  # Preview the description page of the second record
  bhl-commons inspect bhl_images --render 2

  # Show a saved publish report
  bhl-commons inspect --report bhl_images/publish-2026-03-04_05-06-07.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reportPath != "" {
				doc, err := report.Load(reportPath)
				if err != nil {
					return err
				}
				report.PrintResults(os.Stdout, doc)
				report.PrintSummary(os.Stdout, doc)
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("a dataset directory or --report is required")
			}

			path, err := dataset.Locate(args[0])
			if err != nil {
				return err
			}
			records, err := dataset.Read(path)
			if err != nil {
				return err
			}

			if render == 0 {
				fmt.Printf("Dataset: %s\n", path)
				report.PrintRecords(os.Stdout, records)
				return nil
			}

			if render < 1 || render > len(records) {
				return fmt.Errorf("record %d out of range (dataset has %d records)", render, len(records))
			}
			renderer, err := wikitext.NewRenderer(templatePath)
			if err != nil {
				return err
			}
			record := records[render-1]
			text, err := renderer.Render(record.TemplateFields())
			if err != nil {
				return err
			}
			fmt.Printf("File:%s\n\n%s\n", record.TargetName, text)
			return nil
		},
	}

	cmd.Flags().IntVar(&render, "render", 0, "Print the rendered description page of record N (1-based)")
	cmd.Flags().StringVar(&templatePath, "template", "", "Description template file for --render")
	cmd.Flags().StringVar(&reportPath, "report", "", "Show a publish report instead of a dataset")

	return cmd
}
