package commons

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/bhl-commons/internal/models"
)

// DefaultSummary is the edit summary used for description edits
const DefaultSummary = "adding description"

// Outcome of publishing one record
type Outcome string

const (
	OutcomeUploadedAndAnnotated Outcome = "uploaded_and_annotated"
	OutcomeUploadFailed         Outcome = "upload_failed"
	OutcomeAnnotateFailed       Outcome = "annotate_failed"
)

// Repository is the write side of a MediaWiki session
type Repository interface {
	Upload(ctx context.Context, localPath, targetName string, ignoreWarnings bool) error
	Edit(ctx context.Context, title, text, summary string) error
}

// Renderer turns a record's fields into page text
type Renderer interface {
	Render(fields map[string]string) (string, error)
}

// Publisher uploads records and then writes their descriptions
type Publisher struct {
	Repo           Repository
	Renderer       Renderer
	Summary        string
	IgnoreWarnings bool
}

// Result is the outcome for one record
type Result struct {
	TargetName string
	LocalPath  string
	Outcome    Outcome
	Err        error
}

// Report summarises a publish run
type Report struct {
	Results        []Result
	Succeeded      int
	UploadFailed   int
	AnnotateFailed int
	// NotAttempted counts records left pending because the run was cancelled
	NotAttempted int
}

// Failed is the number of records that did not end uploaded_and_annotated
func (r *Report) Failed() int {
	return r.UploadFailed + r.AnnotateFailed
}

// PageTitle is the file page a target name is published under
func PageTitle(targetName string) string {
	return "File:" + targetName
}

// Publish uploads one record and, only when the upload succeeded, renders
// and submits its description. record.Status is updated either way.
func (p *Publisher) Publish(ctx context.Context, record *models.AssetRecord) (Outcome, error) {
	if err := record.Eligible(); err != nil {
		record.Status = models.StatusUploadFailed
		return OutcomeUploadFailed, fmt.Errorf("record %q not eligible: %w", record.TargetName, err)
	}

	if err := p.Repo.Upload(ctx, record.LocalPath, record.TargetName, p.IgnoreWarnings); err != nil {
		record.Status = models.StatusUploadFailed
		return OutcomeUploadFailed, err
	}
	record.Status = models.StatusUploaded

	text, err := p.Renderer.Render(record.TemplateFields())
	if err != nil {
		record.Status = models.StatusAnnotateFailed
		return OutcomeAnnotateFailed, &AnnotateError{Title: PageTitle(record.TargetName), Err: err}
	}

	summary := p.Summary
	if summary == "" {
		summary = DefaultSummary
	}
	if err := p.Repo.Edit(ctx, PageTitle(record.TargetName), text, summary); err != nil {
		record.Status = models.StatusAnnotateFailed
		return OutcomeAnnotateFailed, err
	}

	record.Status = models.StatusAnnotated
	return OutcomeUploadedAndAnnotated, nil
}

// PublishAll publishes records one at a time. A failed record never stops
// the batch. A target name seen earlier in the batch is rejected without any
// network call.
func (p *Publisher) PublishAll(ctx context.Context, records []models.AssetRecord) *Report {
	report := &Report{Results: make([]Result, 0, len(records))}
	seen := make(map[string]bool, len(records))

	for i := range records {
		record := &records[i]

		if ctx.Err() != nil {
			report.NotAttempted = len(records) - i
			slog.Warn("Publish cancelled", "remaining", report.NotAttempted, "error", ctx.Err())
			break
		}

		slog.Info("Publishing record", "index", i+1, "total", len(records), "target_name", record.TargetName)

		var outcome Outcome
		var err error
		if seen[record.TargetName] {
			record.Status = models.StatusUploadFailed
			outcome, err = OutcomeUploadFailed, fmt.Errorf("%q: %w", record.TargetName, ErrDuplicateTarget)
		} else {
			seen[record.TargetName] = true
			outcome, err = p.Publish(ctx, record)
		}

		switch outcome {
		case OutcomeUploadedAndAnnotated:
			report.Succeeded++
			slog.Info("Published", "target_name", record.TargetName)
		case OutcomeUploadFailed:
			report.UploadFailed++
			slog.Warn("Upload failed", "target_name", record.TargetName, "error", err)
		case OutcomeAnnotateFailed:
			report.AnnotateFailed++
			slog.Warn("Description edit failed", "target_name", record.TargetName, "error", err)
		}

		report.Results = append(report.Results, Result{
			TargetName: record.TargetName,
			LocalPath:  record.LocalPath,
			Outcome:    outcome,
			Err:        err,
		})
	}

	slog.Info("Publish complete",
		"succeeded", report.Succeeded,
		"upload_failed", report.UploadFailed,
		"annotate_failed", report.AnnotateFailed,
		"not_attempted", report.NotAttempted)

	return report
}
