package ownwork

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/bhl-commons/internal/dataset"
	"github.com/lehigh-university-libraries/bhl-commons/internal/models"
)

type fakeDates map[string]string

func (f fakeDates) DateTimeOriginal(path string) (string, error) {
	if d, ok := f[filepath.Base(path)]; ok {
		return d, nil
	}
	return "", errors.New("no exif")
}

func setupPhotos(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("jpeg"), 0644); err != nil {
			t.Fatalf("Failed to create photo: %v", err)
		}
	}
	return dir
}

func TestBuild(t *testing.T) {
	dir := setupPhotos(t, "b.jpg", "a.jpg", "notes.txt", "sub/c.JPG")
	b := &Builder{Dates: fakeDates{"a.jpg": "2023:05:19 10:12:00"}}

	records, err := b.Build(Options{
		Directory:   dir,
		Title:       "Wikimedia Hackathon Athens 2023",
		Description: "Group photo",
		UserName:    "Example",
		Categories:  "Wikimedia Hackathon Athens 2023; Athens",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.LocalPath != filepath.Join(dir, "a.jpg") {
		t.Errorf("Expected a.jpg first, got %s", first.LocalPath)
	}
	if first.TargetName != "Wikimedia Hackathon Athens 2023 - 1.jpg" {
		t.Errorf("Unexpected target name %q", first.TargetName)
	}

	expected := map[string]string{
		models.FieldPhotographer: "[[User:Example]]",
		models.FieldTitle:        "Wikimedia Hackathon Athens 2023 - 1",
		models.FieldDescription:  "Group photo",
		models.FieldDate:         "2023:05:19 10:12:00",
		models.FieldSource:       "{{own}}",
		models.FieldLicense:      "{{cc-by-4.0}}",
		models.FieldCategories:   "Wikimedia Hackathon Athens 2023; Athens",
	}
	for field, want := range expected {
		if got := first.Field(field); got != want {
			t.Errorf("Field %s: expected %q, got %q", field, want, got)
		}
	}

	if records[1].Field(models.FieldDate) != "" {
		t.Errorf("Expected empty date without exif, got %q", records[1].Field(models.FieldDate))
	}
	if records[2].TargetName != "Wikimedia Hackathon Athens 2023 - 3.jpg" {
		t.Errorf("Expected nested file to be numbered 3, got %q", records[2].TargetName)
	}
}

func TestBuildSanitizesTargetNames(t *testing.T) {
	dir := setupPhotos(t, "a.jpg")
	b := &Builder{Dates: fakeDates{}}

	records, err := b.Build(Options{Directory: dir, Title: "Lab #3 / [draft]", UserName: "Example"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].TargetName != "Lab -3 - (draft) - 1.jpg" {
		t.Errorf("Unexpected target name %q", records[0].TargetName)
	}
	if records[0].Field(models.FieldTitle) != "Lab #3 / [draft] - 1" {
		t.Errorf("Expected title field to keep the original text, got %q", records[0].Field(models.FieldTitle))
	}
}

func TestGenerateWritesDataset(t *testing.T) {
	dir := setupPhotos(t, "a.jpg", "b.jpg")
	b := &Builder{Dates: fakeDates{}}

	path, records, err := b.Generate(Options{Directory: dir, Title: "Trip", UserName: "Example"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if path != filepath.Join(dir, "metadata.csv") {
		t.Errorf("Unexpected dataset path %s", path)
	}

	loaded, err := dataset.Read(path)
	if err != nil {
		t.Fatalf("Failed to read dataset: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(loaded))
	}
	for _, r := range loaded {
		if err := r.Eligible(); err != nil {
			t.Errorf("Expected %s to be publishable: %v", r.TargetName, err)
		}
	}
}

func TestExifDateReaderWithoutExif(t *testing.T) {
	dir := setupPhotos(t, "plain.jpg")
	if _, err := (ExifDateReader{}).DateTimeOriginal(filepath.Join(dir, "plain.jpg")); err == nil {
		t.Error("Expected error for a file without exif data, got nil")
	}
}

func TestBuildMissingDirectory(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Build(Options{Directory: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("Expected error for missing directory, got nil")
	}
}
