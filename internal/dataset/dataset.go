package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/bhl-commons/internal/models"
)

const (
	// BaseName is the dataset file name, without extension, at the root of a
	// harvest output directory.
	BaseName = "metadata"

	ColLocalPath     = "local_path"
	ColTargetName    = "target_name"
	ColSourceItemID  = "source_item_id"
	ColSourceTitleID = "source_title_id"
	ColSourcePageID  = "source_page_id"
)

// Extensions are the supported dataset formats in lookup order.
var Extensions = []string{".csv", ".parquet", ".xlsx"}

// Header is the column header. The fixed prefix (local_path, target_name and
// the descriptive fields) keeps its order; provenance columns trail it.
func Header() []string {
	header := make([]string, 0, len(models.FieldNames)+5)
	header = append(header, ColLocalPath, ColTargetName)
	header = append(header, models.FieldNames...)
	header = append(header, ColSourceItemID, ColSourceTitleID, ColSourcePageID)
	return header
}

// Path returns the dataset file path for a directory and format extension.
func Path(dir, ext string) string {
	if ext == "" {
		ext = ".csv"
	}
	return filepath.Join(dir, BaseName+ext)
}

// Locate finds the dataset file in dir.
func Locate(dir string) (string, error) {
	for _, ext := range Extensions {
		p := Path(dir, ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no %s.{csv,parquet,xlsx} found in %s", BaseName, dir)
}

// Write saves records to path, choosing the format from the extension.
func Write(path string, records []models.AssetRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, toRow(r))
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return writeCSV(path, rows)
	case ".parquet":
		return writeParquet(path, rows)
	case ".xlsx":
		return writeXLSX(path, rows)
	default:
		return fmt.Errorf("unsupported file format: %s (supported: .csv, .parquet, .xlsx)", ext)
	}
}

// Read loads records from path, choosing the format from the extension.
// Every record comes back pending.
func Read(path string) ([]models.AssetRecord, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		header, rows, err = readCSV(path)
	case ".parquet":
		header, rows, err = readParquet(path)
	case ".xlsx":
		header, rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .csv, .parquet, .xlsx)", ext)
	}
	if err != nil {
		return nil, err
	}

	return fromRows(header, rows)
}

func toRow(r models.AssetRecord) []string {
	row := make([]string, 0, len(models.FieldNames)+5)
	row = append(row, r.LocalPath, r.TargetName)
	for _, name := range models.FieldNames {
		row = append(row, r.Field(name))
	}
	row = append(row, r.SourceItemID, r.SourceTitleID, r.SourcePageID)
	return row
}

var errNoColumn = errors.New("missing required column")

func fromRows(header []string, rows [][]string) ([]models.AssetRecord, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	for _, col := range []string{ColLocalPath, ColTargetName} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", errNoColumn, col)
		}
	}

	records := make([]models.AssetRecord, 0, len(rows))
	for _, row := range rows {
		// A row of empty cells is still a record. Only rows with no cells at
		// all (xlsx gaps) are skipped.
		if len(row) == 0 {
			continue
		}
		get := func(col string) string {
			if i, ok := index[col]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}

		r := models.NewAssetRecord(get(ColLocalPath), get(ColTargetName))
		for _, name := range models.FieldNames {
			r.Fields[name] = get(name)
		}
		r.SourceItemID = get(ColSourceItemID)
		r.SourceTitleID = get(ColSourceTitleID)
		r.SourcePageID = get(ColSourcePageID)
		records = append(records, r)
	}

	return records, nil
}
