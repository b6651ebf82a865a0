package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bhl-commons/internal/config"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// loadConfig reads the config file and environment after .env is loaded
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bhl-commons",
		Short: "Harvest Biodiversity Heritage Library illustrations and publish them to Wikimedia Commons",
		Long: `bhl-commons harvests page illustrations and their metadata from the
Biodiversity Heritage Library into a local dataset, then uploads each image to
Wikimedia Commons (or any MediaWiki) and writes its description page.

The two phases only share the dataset directory, so a harvested dataset can be
reviewed and edited before it is published.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Verbose logging")

	cmd.AddCommand(newHarvestCmd(opts))
	cmd.AddCommand(newPublishCmd(opts))
	cmd.AddCommand(newInspectCmd(opts))
	cmd.AddCommand(newOwnCmd(opts))
	cmd.AddCommand(newDescribeCmd(opts))

	return cmd
}
