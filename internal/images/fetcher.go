package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lehigh-university-libraries/bhl-commons/internal/restyutil"
)

// Outcome of EnsureDownloaded
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeFetched Outcome = "fetched"
)

// DownloadError is a failed fetch of a single page image
type DownloadError struct {
	URL        string
	Path       string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Fetcher downloads page images to local files
type Fetcher struct {
	http    *resty.Client
	fetched atomic.Int64
}

// NewFetcher creates a new image fetcher
func NewFetcher(timeout time.Duration, retries int) (*Fetcher, error) {
	client, err := restyutil.New(restyutil.Options{
		Timeout: timeout,
		Retries: retries,
	})
	if err != nil {
		return nil, err
	}
	return &Fetcher{http: client}, nil
}

// Fetched is the number of network fetches attempted so far
func (f *Fetcher) Fetched() int64 {
	return f.fetched.Load()
}

// EnsureDownloaded downloads url to targetPath unless targetPath already
// exists, in which case no request is made.
func (f *Fetcher) EnsureDownloaded(ctx context.Context, url, targetPath string) (Outcome, error) {
	if _, err := os.Stat(targetPath); err == nil {
		slog.Info("Skipping download (already exists)", "path", targetPath)
		return OutcomeSkipped, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", &DownloadError{URL: url, Path: targetPath, Err: err}
	}

	slog.Info("Downloading", "url", url, "path", targetPath)
	f.fetched.Add(1)

	if err := f.download(ctx, url, targetPath); err != nil {
		return "", err
	}
	return OutcomeFetched, nil
}

func (f *Fetcher) download(ctx context.Context, url, targetPath string) error {
	res, err := f.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return &DownloadError{URL: url, Path: targetPath, Err: err}
	}
	body := res.RawBody()
	defer body.Close()

	if res.IsError() {
		return &DownloadError{URL: url, Path: targetPath, StatusCode: res.StatusCode()}
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return &DownloadError{URL: url, Path: targetPath, Err: fmt.Errorf("failed to create directory: %w", err)}
	}

	// Write to a temp file first so an interrupted fetch never leaves a file
	// at targetPath that a re-run would skip.
	tempPath := targetPath + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return &DownloadError{URL: url, Path: targetPath, Err: fmt.Errorf("failed to create file: %w", err)}
	}

	n, err := io.Copy(out, body)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return &DownloadError{URL: url, Path: targetPath, Err: fmt.Errorf("failed to save image: %w", err)}
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		os.Remove(tempPath)
		return &DownloadError{URL: url, Path: targetPath, Err: fmt.Errorf("failed to move file: %w", err)}
	}

	slog.Debug("Downloaded image", "path", targetPath, "bytes", n)
	return nil
}
