package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bhl-commons/internal/commons"
	"github.com/lehigh-university-libraries/bhl-commons/internal/dataset"
	"github.com/lehigh-university-libraries/bhl-commons/internal/report"
	"github.com/lehigh-university-libraries/bhl-commons/internal/wikitext"
)

func newPublishCmd(root *rootOptions) *cobra.Command {
	var username string
	var apiURL string
	var templatePath string
	var summary string
	var failOnWarnings bool

	cmd := &cobra.Command{
		Use:   "publish DATASET_DIR",
		Short: "Upload a dataset's images to Commons and write their description pages",
		Long: `Logs in to the MediaWiki API, then for every dataset row uploads the image
under its target name and, only when the upload succeeded, replaces the file
page text with the rendered description template.

The password is read from COMMONS_PASSWORD or the config file. A failed login
stops the run; a failed record does not. A YAML report of every outcome is
written next to the dataset.`,
		Example: `  # Publish a harvested dataset to Wikimedia Commons
  COMMONS_PASSWORD=... bhl-commons publish bhl_images --username MyBot

  # Publish to a test wiki with a custom template
  bhl-commons publish bhl_images --api-url https://test.wikipedia.org/w/api.php --template plate.wiki`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			pc := cfg.Publish
			if len(args) == 1 {
				pc.DatasetDir = args[0]
			}
			if cmd.Flags().Changed("username") {
				pc.Username = username
			}
			if cmd.Flags().Changed("api-url") {
				pc.APIURL = apiURL
			}
			if cmd.Flags().Changed("template") {
				pc.Template = templatePath
			}
			if cmd.Flags().Changed("summary") {
				pc.Summary = summary
			}
			if cmd.Flags().Changed("fail-on-warnings") {
				pc.FailOnWarnings = failOnWarnings
			}
			if err := pc.Validate(); err != nil {
				return err
			}

			path, err := dataset.Locate(pc.DatasetDir)
			if err != nil {
				return err
			}
			records, err := dataset.Read(path)
			if err != nil {
				return err
			}
			slog.Info("Loaded dataset", "path", path, "records", len(records))
			if len(records) == 0 {
				fmt.Println("Dataset has no records, nothing to publish.")
				return nil
			}

			renderer, err := wikitext.NewRenderer(pc.Template)
			if err != nil {
				return err
			}

			session, err := commons.NewSession(commons.Options{
				APIURL:    pc.APIURL,
				UserAgent: pc.HTTP.UserAgent,
				Timeout:   pc.HTTP.Timeout,
				Retries:   pc.HTTP.Retries,
			})
			if err != nil {
				return err
			}
			if err := session.Login(cmd.Context(), pc.Username, pc.Password); err != nil {
				return fmt.Errorf("login to %s failed: %w", pc.APIURL, err)
			}

			publisher := &commons.Publisher{
				Repo:           session,
				Renderer:       renderer,
				Summary:        pc.Summary,
				IgnoreWarnings: pc.IgnoreWarnings(),
			}
			result := publisher.PublishAll(cmd.Context(), records)

			doc := report.New(pc.APIURL, path, pc.Username, result, time.Now())
			report.PrintResults(os.Stdout, doc)
			report.PrintSummary(os.Stdout, doc)

			reportPath, err := report.Save(pc.DatasetDir, doc)
			if err != nil {
				slog.Warn("Failed to save publish report", "error", err)
			} else {
				fmt.Printf("\nReport saved to: %s\n", reportPath)
			}

			if result.Failed() > 0 {
				return fmt.Errorf("%d of %d records failed", result.Failed(), len(records))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Commons username (defaults to COMMONS_USERNAME)")
	cmd.Flags().StringVar(&apiURL, "api-url", commons.DefaultAPIURL, "MediaWiki action API endpoint")
	cmd.Flags().StringVar(&templatePath, "template", "", "Description template file (defaults to the built-in {{Photograph}} template)")
	cmd.Flags().StringVar(&summary, "summary", commons.DefaultSummary, "Edit summary for description edits")
	cmd.Flags().BoolVar(&failOnWarnings, "fail-on-warnings", false, "Do not ask the server to ignore upload warnings")

	return cmd
}
