package report

import (
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/lehigh-university-libraries/bhl-commons/internal/commons"
	"github.com/lehigh-university-libraries/bhl-commons/internal/harvest"
	"github.com/lehigh-university-libraries/bhl-commons/internal/models"
)

var (
	okColor   = color.New(color.FgHiGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgHiRed, color.Bold)
)

// NewTable returns a rounded table writer that renders to w
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// PrintResults writes one coloured line per asset
func PrintResults(w io.Writer, doc *Document) {
	for _, e := range doc.Results {
		switch e.Outcome {
		case string(commons.OutcomeUploadedAndAnnotated):
			okColor.Fprintf(w, "✓ %s\n", e.TargetName)
		case string(commons.OutcomeAnnotateFailed):
			warnColor.Fprintf(w, "! %s: uploaded, description failed: %s\n", e.TargetName, e.Error)
		default:
			failColor.Fprintf(w, "✗ %s: %s\n", e.TargetName, e.Error)
		}
	}
}

// PrintSummary renders the publish counts as a table
func PrintSummary(w io.Writer, doc *Document) {
	t := NewTable(w)
	t.SetTitle("Publish " + doc.Run.ID)
	t.AppendHeader(table.Row{"Outcome", "Count"})
	t.AppendRows([]table.Row{
		{string(commons.OutcomeUploadedAndAnnotated), doc.Counts.Succeeded},
		{string(commons.OutcomeUploadFailed), doc.Counts.UploadFailed},
		{string(commons.OutcomeAnnotateFailed), doc.Counts.AnnotateFailed},
	})
	if doc.Counts.NotAttempted > 0 {
		t.AppendRow(table.Row{"not_attempted", doc.Counts.NotAttempted})
	}
	t.AppendFooter(table.Row{"Total", doc.Counts.Total})
	t.Render()
}

// PrintHarvest renders a harvest summary as a table
func PrintHarvest(w io.Writer, s *harvest.Summary) {
	t := NewTable(w)
	t.SetTitle("Harvest of item " + s.ItemID)
	t.AppendRows([]table.Row{
		{"Title", s.Title},
		{"Pages", s.Pages},
		{"Illustration pages", s.Candidates},
		{"Downloaded", s.Fetched},
		{"Already present", s.Existing},
		{"Failed downloads", s.Failed},
		{"Duplicate names", s.Duplicates},
		{"Records", s.Records},
		{"Dataset", s.DatasetPath},
	})
	t.Render()

	if s.Empty {
		warnColor.Fprintln(w, "No pages harvested: the dataset contains only its header.")
	}
}

// PrintRecords lists dataset records with their eligibility
func PrintRecords(w io.Writer, records []models.AssetRecord) {
	t := NewTable(w)
	t.AppendHeader(table.Row{"#", "Target name", "Title", "License", "Publishable"})
	for i, r := range records {
		publishable := "yes"
		if err := r.Eligible(); err != nil {
			publishable = err.Error()
		}
		t.AppendRow(table.Row{i + 1, r.TargetName, r.Field(models.FieldTitle), r.Field(models.FieldLicense), publishable})
	}
	t.AppendFooter(table.Row{"", "Total", len(records), "", ""})
	t.Render()
}
