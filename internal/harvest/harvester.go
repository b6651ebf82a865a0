package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/bhl-commons/internal/catalog"
	"github.com/lehigh-university-libraries/bhl-commons/internal/dataset"
	"github.com/lehigh-university-libraries/bhl-commons/internal/images"
	"github.com/lehigh-university-libraries/bhl-commons/internal/models"
)

// Catalog is the subset of the BHL client a harvest needs
type Catalog interface {
	GetItemMetadata(ctx context.Context, itemID string) (*catalog.Item, error)
	GetTitleMetadata(ctx context.Context, item *catalog.Item) (*catalog.Title, error)
}

// Downloader fetches a page image unless it is already on disk
type Downloader interface {
	EnsureDownloaded(ctx context.Context, url, targetPath string) (images.Outcome, error)
}

// Harvester turns one catalog item into a directory of images plus a dataset
type Harvester struct {
	Catalog     Catalog
	Downloader  Downloader
	OutputDir   string
	Format      string
	Concurrency int
}

// Summary describes a completed harvest
type Summary struct {
	ItemID      string
	Title       string
	Pages       int
	Candidates  int
	Fetched     int
	Existing    int
	Failed      int
	Duplicates  int
	Records     int
	DatasetPath string
	Empty       bool
}

type pageResult struct {
	record  models.AssetRecord
	outcome images.Outcome
	err     error
}

// Run harvests a single item. Metadata failures abort before anything is
// written. A page whose image cannot be downloaded is logged and left out of
// the dataset while the rest of the batch continues.
func (h *Harvester) Run(ctx context.Context, itemID string) (*Summary, error) {
	item, err := h.Catalog.GetItemMetadata(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item metadata: %w", err)
	}
	title, err := h.Catalog.GetTitleMetadata(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch title metadata: %w", err)
	}

	if err := os.MkdirAll(h.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := &Summary{
		ItemID: itemID,
		Title:  title.ShortTitle,
		Pages:  len(item.Pages),
	}

	var candidates []models.AssetRecord
	var urls []string
	seen := make(map[string]bool)
	for _, page := range item.Pages {
		if !catalog.IsIncludable(page) {
			continue
		}
		record := Build(page, item, title, h.OutputDir)
		if seen[record.TargetName] {
			slog.Warn("Skipping page with duplicate target name", "page_id", page.PageID, "target_name", record.TargetName)
			summary.Duplicates++
			continue
		}
		seen[record.TargetName] = true
		candidates = append(candidates, record)
		urls = append(urls, page.FullSizeImageURL)
	}
	summary.Candidates = len(candidates)

	slog.Info("Filtered pages",
		"item_id", itemID,
		"pages", summary.Pages,
		"candidates", summary.Candidates)

	results := h.download(ctx, candidates, urls)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("harvest cancelled: %w", err)
	}

	records := make([]models.AssetRecord, 0, len(results))
	for _, res := range results {
		if res.err != nil {
			var dlErr *images.DownloadError
			if errors.As(res.err, &dlErr) {
				slog.Warn("Skipping page after failed download", "url", dlErr.URL, "status", dlErr.StatusCode, "error", dlErr.Err)
			} else {
				slog.Warn("Skipping page after failed download", "target_name", res.record.TargetName, "error", res.err)
			}
			summary.Failed++
			continue
		}
		switch res.outcome {
		case images.OutcomeFetched:
			summary.Fetched++
		case images.OutcomeSkipped:
			summary.Existing++
		}
		records = append(records, res.record)
	}

	summary.Records = len(records)
	summary.Empty = len(records) == 0
	summary.DatasetPath = dataset.Path(h.OutputDir, h.Format)

	if summary.Empty {
		slog.Warn("No illustration pages retained, writing header-only dataset", "item_id", itemID)
	}
	if err := dataset.Write(summary.DatasetPath, records); err != nil {
		return nil, fmt.Errorf("failed to write dataset: %w", err)
	}

	slog.Info("Harvest complete",
		"item_id", itemID,
		"records", summary.Records,
		"fetched", summary.Fetched,
		"existing", summary.Existing,
		"failed", summary.Failed,
		"dataset", summary.DatasetPath)

	return summary, nil
}

// download fetches every candidate, keeping results in page order
func (h *Harvester) download(ctx context.Context, candidates []models.AssetRecord, urls []string) []pageResult {
	results := make([]pageResult, len(candidates))

	limit := h.Concurrency
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range candidates {
		g.Go(func() error {
			outcome, err := h.Downloader.EnsureDownloaded(ctx, urls[i], candidates[i].LocalPath)
			results[i] = pageResult{record: candidates[i], outcome: outcome, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
