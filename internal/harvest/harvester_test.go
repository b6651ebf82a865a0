package harvest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/lehigh-university-libraries/bhl-commons/internal/catalog"
	"github.com/lehigh-university-libraries/bhl-commons/internal/dataset"
	"github.com/lehigh-university-libraries/bhl-commons/internal/images"
	"github.com/lehigh-university-libraries/bhl-commons/internal/models"
)

type fakeBHL struct {
	srv         *httptest.Server
	imageHits   atomic.Int64
	failPage    string
	itemStatus  int
	titleStatus string
}

func newFakeBHL(t *testing.T) *fakeBHL {
	t.Helper()
	f := &fakeBHL{titleStatus: "ok"}

	mux := http.NewServeMux()
	mux.HandleFunc("/api3", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("op") {
		case "GetItemMetadata":
			if f.itemStatus != 0 {
				w.WriteHeader(f.itemStatus)
				return
			}
			fmt.Fprintf(w, `{"Status":"ok","Result":[{"ItemID":103761,"TitleID":42,"Volume":"v.1","Year":"1864","Pages":[
				{"PageID":1,"PageUrl":"https://www.biodiversitylibrary.org/page/1","FullSizeImageUrl":"%[1]s/pageimage/1",
				 "PageNumbers":[{"Prefix":"Plate","Number":"1"}],"PageTypes":[{"PageTypeName":"Illustration"}]},
				{"PageID":2,"PageUrl":"https://www.biodiversitylibrary.org/page/2","FullSizeImageUrl":"%[1]s/pageimage/2",
				 "PageNumbers":[{"Prefix":"Page","Number":"2"}],"PageTypes":[{"PageTypeName":"Text"}]},
				{"PageID":3,"PageUrl":"https://www.biodiversitylibrary.org/page/3","FullSizeImageUrl":"%[1]s/pageimage/3",
				 "PageNumbers":[{"Prefix":"Plate","Number":"2"}],"PageTypes":[{"PageTypeName":"Foldout"},{"PageTypeName":" Plate "}]}
			]}]}`, f.srv.URL)
		case "GetTitleMetadata":
			fmt.Fprintf(w, `{"Status":%q,"ErrorMessage":"title lookup failed","Result":[{"TitleID":42,
				"FullTitle":"A monograph of the genus Odontoglossum","ShortTitle":"A Monograph of the Genus Odontoglossum Volume One",
				"Authors":[{"Name":"Bateman, James"}]}]}`, f.titleStatus)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/pageimage/", func(w http.ResponseWriter, r *http.Request) {
		f.imageHits.Add(1)
		if r.URL.Path == "/pageimage/"+f.failPage {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg bytes for " + r.URL.Path))
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeBHL) harvester(t *testing.T, dir string) *Harvester {
	t.Helper()
	client, err := catalog.NewClient(catalog.Options{BaseURL: f.srv.URL + "/api3", APIKey: "secret", Retries: 0})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	fetcher, err := images.NewFetcher(0, 0)
	if err != nil {
		t.Fatalf("NewFetcher failed: %v", err)
	}
	return &Harvester{
		Catalog:     client,
		Downloader:  fetcher,
		OutputDir:   dir,
		Format:      ".csv",
		Concurrency: 2,
	}
}

func TestRunHarvestsIllustrationPages(t *testing.T) {
	bhl := newFakeBHL(t)
	dir := t.TempDir()

	summary, err := bhl.harvester(t, dir).Run(context.Background(), "103761")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Pages != 3 || summary.Candidates != 2 || summary.Records != 2 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if summary.Fetched != 2 || summary.Existing != 0 {
		t.Errorf("Expected 2 fetched, 0 existing, got %+v", summary)
	}
	if bhl.imageHits.Load() != 2 {
		t.Errorf("Expected 2 image requests, got %d", bhl.imageHits.Load())
	}

	records, err := dataset.Read(summary.DatasetPath)
	if err != nil {
		t.Fatalf("Failed to read dataset: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	// Page order is preserved
	if records[0].SourcePageID != "1" || records[1].SourcePageID != "3" {
		t.Errorf("Expected pages 1 and 3 in order, got %s and %s", records[0].SourcePageID, records[1].SourcePageID)
	}
	for _, r := range records {
		if err := r.Eligible(); err != nil {
			t.Errorf("Expected record %s to be eligible: %v", r.TargetName, err)
		}
		if filepath.Dir(r.LocalPath) != dir {
			t.Errorf("Expected image inside %s, got %s", dir, r.LocalPath)
		}
	}
	if records[0].TargetName != "A Monograph of the Genus... (Plate 1) BHL1.jpg" {
		t.Errorf("Unexpected target name %q", records[0].TargetName)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	bhl := newFakeBHL(t)
	dir := t.TempDir()
	h := bhl.harvester(t, dir)

	if _, err := h.Run(context.Background(), "103761"); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	firstHits := bhl.imageHits.Load()

	summary, err := h.Run(context.Background(), "103761")
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if bhl.imageHits.Load() != firstHits {
		t.Errorf("Expected no new image requests, got %d more", bhl.imageHits.Load()-firstHits)
	}
	if summary.Fetched != 0 || summary.Existing != 2 || summary.Records != 2 {
		t.Errorf("Unexpected second summary: %+v", summary)
	}
}

func TestRunSkipsFailedDownload(t *testing.T) {
	bhl := newFakeBHL(t)
	bhl.failPage = "3"
	dir := t.TempDir()

	summary, err := bhl.harvester(t, dir).Run(context.Background(), "103761")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Failed != 1 || summary.Records != 1 {
		t.Errorf("Expected 1 failed and 1 record, got %+v", summary)
	}

	records, err := dataset.Read(summary.DatasetPath)
	if err != nil {
		t.Fatalf("Failed to read dataset: %v", err)
	}
	if len(records) != 1 || records[0].SourcePageID != "1" {
		t.Errorf("Expected only page 1 in dataset, got %+v", records)
	}
}

func TestRunCatalogErrorWritesNothing(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeBHL)
	}{
		{"item request fails", func(f *fakeBHL) { f.itemStatus = http.StatusForbidden }},
		{"title status not ok", func(f *fakeBHL) { f.titleStatus = "error" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bhl := newFakeBHL(t)
			tt.setup(bhl)
			dir := t.TempDir()

			if _, err := bhl.harvester(t, dir).Run(context.Background(), "103761"); err == nil {
				t.Fatal("Expected error, got nil")
			}
			if _, err := os.Stat(dataset.Path(dir, ".csv")); !os.IsNotExist(err) {
				t.Errorf("Expected no dataset file, stat returned %v", err)
			}
			if bhl.imageHits.Load() != 0 {
				t.Errorf("Expected no image requests, got %d", bhl.imageHits.Load())
			}
		})
	}
}

type stubCatalog struct {
	item  *catalog.Item
	title *catalog.Title
}

func (s stubCatalog) GetItemMetadata(ctx context.Context, itemID string) (*catalog.Item, error) {
	return s.item, nil
}

func (s stubCatalog) GetTitleMetadata(ctx context.Context, item *catalog.Item) (*catalog.Title, error) {
	return s.title, nil
}

type countingDownloader struct {
	calls atomic.Int64
}

func (d *countingDownloader) EnsureDownloaded(ctx context.Context, url, targetPath string) (images.Outcome, error) {
	d.calls.Add(1)
	return images.OutcomeFetched, nil
}

func TestRunWithNoIllustrationsWritesHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	downloader := &countingDownloader{}
	h := &Harvester{
		Catalog: stubCatalog{
			item: &catalog.Item{ItemID: 1, TitleID: 2, Pages: []catalog.Page{
				{PageID: 10, FullSizeImageURL: "http://example.org/10", PageTypes: []catalog.PageType{{PageTypeName: "Text"}}},
			}},
			title: &catalog.Title{TitleID: 2, ShortTitle: "Flora Danica"},
		},
		Downloader: downloader,
		OutputDir:  dir,
	}

	summary, err := h.Run(context.Background(), "1")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !summary.Empty || summary.Records != 0 {
		t.Errorf("Expected empty summary, got %+v", summary)
	}
	if downloader.calls.Load() != 0 {
		t.Errorf("Expected no downloads, got %d", downloader.calls.Load())
	}

	records, err := dataset.Read(summary.DatasetPath)
	if err != nil {
		t.Fatalf("Expected header-only dataset, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected 0 records, got %d", len(records))
	}
}

func TestRunDropsDuplicateTargetNames(t *testing.T) {
	dir := t.TempDir()
	page := catalog.Page{
		PageID:           7,
		FullSizeImageURL: "http://example.org/7",
		PageTypes:        []catalog.PageType{{PageTypeName: "Illustration"}},
	}
	h := &Harvester{
		Catalog: stubCatalog{
			item:  &catalog.Item{ItemID: 1, TitleID: 2, Pages: []catalog.Page{page, page}},
			title: &catalog.Title{TitleID: 2, ShortTitle: "Flora Danica"},
		},
		Downloader: &countingDownloader{},
		OutputDir:  dir,
		Format:     ".parquet",
	}

	summary, err := h.Run(context.Background(), "1")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Records != 1 || summary.Duplicates != 1 {
		t.Errorf("Expected 1 record and 1 duplicate, got %+v", summary)
	}
	if filepath.Ext(summary.DatasetPath) != ".parquet" {
		t.Errorf("Expected parquet dataset, got %s", summary.DatasetPath)
	}

	records, err := dataset.Read(summary.DatasetPath)
	if err != nil {
		t.Fatalf("Failed to read dataset: %v", err)
	}
	if len(records) != 1 || records[0].Status != models.StatusPending {
		t.Errorf("Unexpected records: %+v", records)
	}
}
