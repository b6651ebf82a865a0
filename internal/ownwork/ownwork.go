package ownwork

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/lehigh-university-libraries/bhl-commons/internal/dataset"
	"github.com/lehigh-university-libraries/bhl-commons/internal/harvest"
	"github.com/lehigh-university-libraries/bhl-commons/internal/models"
)

const (
	Source  = "{{own}}"
	License = "{{cc-by-4.0}}"
)

// DateReader extracts the capture date of a photograph
type DateReader interface {
	DateTimeOriginal(path string) (string, error)
}

// ExifDateReader reads DateTimeOriginal from EXIF data
type ExifDateReader struct{}

// DateTimeOriginal returns the raw EXIF value, e.g. "2023:05:19 10:12:00"
func (ExifDateReader) DateTimeOriginal(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return "", err
	}
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return "", err
	}
	return tag.StringVal()
}

// Options describes a batch of one's own photographs
type Options struct {
	Directory   string
	Title       string
	Description string
	UserName    string
	Categories  string
}

// Builder turns a directory of photographs into dataset records
type Builder struct {
	Dates DateReader
}

// NewBuilder returns a Builder that reads EXIF dates
func NewBuilder() *Builder {
	return &Builder{Dates: ExifDateReader{}}
}

// Build walks opts.Directory for .jpg files, in lexical order, and numbers
// them "<title> - 1.jpg", "<title> - 2.jpg" and so on. A file with no
// readable capture date gets an empty date.
func (b *Builder) Build(opts Options) ([]models.AssetRecord, error) {
	var paths []string
	err := filepath.WalkDir(opts.Directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".jpg") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", opts.Directory, err)
	}
	sort.Strings(paths)

	records := make([]models.AssetRecord, 0, len(paths))
	for i, path := range paths {
		title := fmt.Sprintf("%s - %d", opts.Title, i+1)
		r := models.NewAssetRecord(path, harvest.SafeFilename(title+".jpg"))

		date := ""
		if b.Dates != nil {
			if d, err := b.Dates.DateTimeOriginal(path); err != nil {
				slog.Debug("No capture date", "path", path, "error", err)
			} else {
				date = d
			}
		}

		r.Fields[models.FieldPhotographer] = fmt.Sprintf("[[User:%s]]", opts.UserName)
		r.Fields[models.FieldTitle] = title
		r.Fields[models.FieldDescription] = opts.Description
		r.Fields[models.FieldDate] = date
		r.Fields[models.FieldSource] = Source
		r.Fields[models.FieldLicense] = License
		r.Fields[models.FieldCategories] = opts.Categories

		records = append(records, r)
	}

	return records, nil
}

// Generate builds the records and writes metadata.csv into the directory
func (b *Builder) Generate(opts Options) (string, []models.AssetRecord, error) {
	records, err := b.Build(opts)
	if err != nil {
		return "", nil, err
	}

	path := dataset.Path(opts.Directory, ".csv")
	if err := dataset.Write(path, records); err != nil {
		return "", nil, fmt.Errorf("failed to write dataset: %w", err)
	}

	slog.Info("Wrote own-work dataset", "path", path, "records", len(records))
	return path, records, nil
}
