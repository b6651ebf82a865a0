package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bhl-commons/internal/ownwork"
	"github.com/lehigh-university-libraries/bhl-commons/internal/report"
)

func newOwnCmd(root *rootOptions) *cobra.Command {
	var title string
	var description string
	var userName string
	var categories string

	cmd := &cobra.Command{
		Use:   "own DIRECTORY",
		Short: "Build a publishable dataset from a directory of your own photographs",
		Long: `Walks DIRECTORY for .jpg files and writes metadata.csv next to them. Files are
named "<title> - <n>.jpg", credited to [[User:<user>]], licensed {{cc-by-4.0}}
and dated from their EXIF DateTimeOriginal when present.

The result can be published with "bhl-commons publish DIRECTORY".`,
		Example: `  bhl-commons own ~/photos/hackathon --title "Wikimedia Hackathon Athens 2023" \
    --user Example --categories "Wikimedia Hackathon Athens 2023"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			oc := cfg.OwnWork
			if len(args) == 1 {
				oc.Directory = args[0]
			}
			if cmd.Flags().Changed("title") {
				oc.Title = title
			}
			if cmd.Flags().Changed("description") {
				oc.Description = description
			}
			if cmd.Flags().Changed("user") {
				oc.UserName = userName
			}
			if cmd.Flags().Changed("categories") {
				oc.Categories = categories
			}
			if err := oc.Validate(); err != nil {
				return err
			}

			path, records, err := ownwork.NewBuilder().Generate(ownwork.Options{
				Directory:   oc.Directory,
				Title:       oc.Title,
				Description: oc.Description,
				UserName:    oc.UserName,
				Categories:  oc.Categories,
			})
			if err != nil {
				return err
			}

			report.PrintRecords(os.Stdout, records)
			fmt.Printf("\nDataset saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title used to name the files")
	cmd.Flags().StringVar(&description, "description", "", "Description for every photograph")
	cmd.Flags().StringVar(&userName, "user", "", "Commons user name of the photographer")
	cmd.Flags().StringVar(&categories, "categories", "", "Commons categories, separated by ';'")

	return cmd
}
