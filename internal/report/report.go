package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/bhl-commons/internal/commons"
)

const timestampFormat = "2006-01-02_15-04-05"

// RunInfo describes the publish run a report belongs to
type RunInfo struct {
	ID          string `yaml:"id"`
	APIURL      string `yaml:"apiurl"`
	DatasetPath string `yaml:"datasetpath"`
	Username    string `yaml:"username,omitempty"`
	Timestamp   string `yaml:"timestamp"`
}

// Counts are the per-outcome totals
type Counts struct {
	Total          int `yaml:"total"`
	Succeeded      int `yaml:"succeeded"`
	UploadFailed   int `yaml:"uploadfailed"`
	AnnotateFailed int `yaml:"annotatefailed"`
	NotAttempted   int `yaml:"notattempted"`
}

// Entry is the outcome for one asset
type Entry struct {
	TargetName string `yaml:"targetname"`
	LocalPath  string `yaml:"localpath"`
	Outcome    string `yaml:"outcome"`
	Error      string `yaml:"error,omitempty"`
}

// Document is a complete publish report
type Document struct {
	Run     RunInfo `yaml:"run"`
	Counts  Counts  `yaml:"counts"`
	Results []Entry `yaml:"results"`
}

// New builds a report document from a publish run
func New(apiURL, datasetPath, username string, r *commons.Report, now time.Time) *Document {
	doc := &Document{
		Run: RunInfo{
			ID:          uuid.NewString(),
			APIURL:      apiURL,
			DatasetPath: datasetPath,
			Username:    username,
			Timestamp:   now.Format(timestampFormat),
		},
		Counts: Counts{
			Total:          len(r.Results) + r.NotAttempted,
			Succeeded:      r.Succeeded,
			UploadFailed:   r.UploadFailed,
			AnnotateFailed: r.AnnotateFailed,
			NotAttempted:   r.NotAttempted,
		},
		Results: make([]Entry, 0, len(r.Results)),
	}

	for _, res := range r.Results {
		entry := Entry{
			TargetName: res.TargetName,
			LocalPath:  res.LocalPath,
			Outcome:    string(res.Outcome),
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		doc.Results = append(doc.Results, entry)
	}

	return doc
}

// Failed returns the entries that did not end uploaded_and_annotated
func (d *Document) Failed() []Entry {
	var failed []Entry
	for _, e := range d.Results {
		if e.Outcome != string(commons.OutcomeUploadedAndAnnotated) {
			failed = append(failed, e)
		}
	}
	return failed
}

// Save writes the report as publish-<timestamp>.yaml in dir and returns its
// path.
func Save(dir string, doc *Document) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("publish-%s.yaml", doc.Run.Timestamp))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return path, nil
}

// Load reads a report written by Save
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &doc, nil
}
