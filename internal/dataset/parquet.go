package dataset

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/parquet-go/parquet-go"
)

// parquetRow mirrors Header() column for column.
type parquetRow struct {
	LocalPath         string `parquet:"local_path"`
	TargetName        string `parquet:"target_name"`
	Photographer      string `parquet:"photographer"`
	Title             string `parquet:"title"`
	Description       string `parquet:"description"`
	DepictedPeople    string `parquet:"depicted_people"`
	DepictedPlace     string `parquet:"depicted_place"`
	Date              string `parquet:"date"`
	Medium            string `parquet:"medium"`
	Dimensions        string `parquet:"dimensions"`
	Institution       string `parquet:"institution"`
	Department        string `parquet:"department"`
	References        string `parquet:"references"`
	ObjectHistory     string `parquet:"object_history"`
	ExhibitionHistory string `parquet:"exhibition_history"`
	CreditLine        string `parquet:"credit_line"`
	Inscriptions      string `parquet:"inscriptions"`
	Notes             string `parquet:"notes"`
	AccessionNumber   string `parquet:"accession_number"`
	Source            string `parquet:"source"`
	Permission        string `parquet:"permission"`
	OtherVersions     string `parquet:"other_versions"`
	License           string `parquet:"license"`
	Partnership       string `parquet:"partnership"`
	Categories        string `parquet:"categories"`
	SourceItemID      string `parquet:"source_item_id"`
	SourceTitleID     string `parquet:"source_title_id"`
	SourcePageID      string `parquet:"source_page_id"`
}

func (p *parquetRow) columns() []*string {
	return []*string{
		&p.LocalPath, &p.TargetName, &p.Photographer, &p.Title, &p.Description,
		&p.DepictedPeople, &p.DepictedPlace, &p.Date, &p.Medium, &p.Dimensions,
		&p.Institution, &p.Department, &p.References, &p.ObjectHistory,
		&p.ExhibitionHistory, &p.CreditLine, &p.Inscriptions, &p.Notes,
		&p.AccessionNumber, &p.Source, &p.Permission, &p.OtherVersions,
		&p.License, &p.Partnership, &p.Categories,
		&p.SourceItemID, &p.SourceTitleID, &p.SourcePageID,
	}
}

func writeParquet(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	out := make([]parquetRow, len(rows))
	for i, row := range rows {
		for j, col := range out[i].columns() {
			if j < len(row) {
				*col = row[j]
			}
		}
	}

	writer := parquet.NewGenericWriter[parquetRow](file)
	if _, err := writer.Write(out); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}

	return file.Close()
}

func readParquet(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "path", path, "num_rows", pf.NumRows())

	reader := parquet.NewGenericReader[parquetRow](pf)
	defer reader.Close()

	var rows [][]string
	batch := make([]parquetRow, 128)
	for {
		n, err := reader.Read(batch)
		for i := 0; i < n; i++ {
			cols := batch[i].columns()
			row := make([]string, len(cols))
			for j, col := range cols {
				row[j] = *col
			}
			rows = append(rows, row)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return Header(), rows, nil
}
