package harvest

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/lehigh-university-libraries/bhl-commons/internal/catalog"
	"github.com/lehigh-university-libraries/bhl-commons/internal/models"
)

func plate(id int, number string) catalog.Page {
	return catalog.Page{
		PageID:           id,
		PageURL:          "https://www.biodiversitylibrary.org/page/" + strconv.Itoa(id),
		FullSizeImageURL: "https://www.biodiversitylibrary.org/pageimage/" + strconv.Itoa(id),
		PageNumbers:      []catalog.PageNumber{{Prefix: "Plate", Number: number}},
		PageTypes:        []catalog.PageType{{PageTypeName: "Illustration"}},
	}
}

func TestStubTitle(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantStub      string
		wantTruncated bool
	}{
		{"long title", "A Monograph of the Genus Odontoglossum Volume One", "A Monograph of the Genus", true},
		{"exactly five words", "Birds of the Pacific Coast", "Birds of the Pacific Coast", false},
		{"short title", "Flora Danica", "Flora Danica", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub, truncated := StubTitle(tt.input)
			if stub != tt.wantStub {
				t.Errorf("Expected stub %q, got %q", tt.wantStub, stub)
			}
			if truncated != tt.wantTruncated {
				t.Errorf("Expected truncated=%v, got %v", tt.wantTruncated, truncated)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	title := &catalog.Title{ShortTitle: "A Monograph of the Genus Odontoglossum Volume One"}

	got := Filename(title, plate(12870361, "22"))
	want := "A Monograph of the Genus... (Plate 22) BHL12870361.jpg"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	short := &catalog.Title{ShortTitle: "Flora Danica"}
	if got := Filename(short, plate(5, "1")); got != "Flora Danica (Plate 1) BHL5.jpg" {
		t.Errorf("Expected untruncated name, got %q", got)
	}

	slashed := &catalog.Title{ShortTitle: "Flora/Fauna"}
	if got := Filename(slashed, plate(6, "2")); got != "Flora-Fauna (Plate 2) BHL6.jpg" {
		t.Errorf("Expected path separator to be replaced, got %q", got)
	}
}

func TestFilenameUniqueAcrossPages(t *testing.T) {
	title := &catalog.Title{ShortTitle: "A Monograph of the Genus Odontoglossum Volume One"}

	// Same page numbers on different pages still produce distinct names
	a := Filename(title, plate(100, "1"))
	b := Filename(title, plate(101, "1"))
	if a == b {
		t.Errorf("Expected distinct names, both were %q", a)
	}
	if Filename(title, plate(100, "1")) != a {
		t.Error("Expected filename to be deterministic")
	}
}

func TestBuild(t *testing.T) {
	item := &catalog.Item{ItemID: 103761, TitleID: 42, Volume: "v.1", Year: "1864"}
	title := &catalog.Title{
		TitleID:    42,
		FullTitle:  "A monograph of the genus Odontoglossum",
		ShortTitle: "A Monograph of the Genus Odontoglossum Volume One",
		Authors:    []catalog.Author{{Name: "Bateman, James"}},
	}
	dir := t.TempDir()

	r := Build(plate(12870361, "22"), item, title, dir)

	if r.TargetName != "A Monograph of the Genus... (Plate 22) BHL12870361.jpg" {
		t.Errorf("Unexpected target name %q", r.TargetName)
	}
	if r.LocalPath != filepath.Join(dir, r.TargetName) {
		t.Errorf("Expected local path inside %s, got %s", dir, r.LocalPath)
	}
	if r.Status != models.StatusPending {
		t.Errorf("Expected pending status, got %s", r.Status)
	}
	if r.SourceItemID != "103761" || r.SourceTitleID != "42" || r.SourcePageID != "12870361" {
		t.Errorf("Unexpected provenance: %s %s %s", r.SourceItemID, r.SourceTitleID, r.SourcePageID)
	}

	expected := map[string]string{
		models.FieldTitle:        "A Monograph of the Genus... (Plate 22)",
		models.FieldDescription:  "Illustration from ''A monograph of the genus Odontoglossum'', v.1, Plate 22",
		models.FieldPhotographer: "Bateman, James",
		models.FieldDate:         "1864",
		models.FieldLicense:      License,
		models.FieldCategories:   "Files from the Biodiversity Heritage Library; A Monograph of the Genus Odontoglossum Volume One",
		models.FieldSource:       "https://www.biodiversitylibrary.org/page/12870361",
		models.FieldMedium:       "",
	}
	for field, want := range expected {
		if got := r.Field(field); got != want {
			t.Errorf("Field %s: expected %q, got %q", field, want, got)
		}
	}

	if len(r.Fields) != len(models.FieldNames) {
		t.Errorf("Expected all %d fields present, got %d", len(models.FieldNames), len(r.Fields))
	}
}

func TestBuildDateFallsBackToPublicationDate(t *testing.T) {
	item := &catalog.Item{ItemID: 1, TitleID: 2}
	title := &catalog.Title{ShortTitle: "Flora Danica", PublicationDate: "1761-1883"}

	r := Build(plate(3, "1"), item, title, t.TempDir())
	if r.Field(models.FieldDate) != "1761-1883" {
		t.Errorf("Expected publication date fallback, got %q", r.Field(models.FieldDate))
	}
}
