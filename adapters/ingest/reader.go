// Package ingest reads delimited survey exports (CSV or Excel) into the
// in-memory table the pipeline operates on.
package ingest

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cbctsurvey/domain/core"
	"cbctsurvey/domain/table"
)

// DataReader handles reading Excel and CSV survey files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Read loads the file into a table. The header row names the columns;
// ragged data rows are padded with empty cells.
func (r *DataReader) Read() (*table.Table, error) {
	log.Printf("[DataReader] Reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readCSV() (*table.Table, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // survey exports are often ragged
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, core.ErrEmptyTable
	}

	tbl, err := table.New(records[0], records[1:])
	if err != nil {
		return nil, err
	}

	log.Printf("[DataReader] Loaded %d rows, %d columns", tbl.Len(), len(tbl.Columns()))
	return tbl, nil
}

// DropLeadingTimestamp removes the conventional first response-timestamp
// column when present, matching by name or by position-zero header
// containing "timestamp".
func DropLeadingTimestamp(tbl *table.Table) *table.Table {
	cols := tbl.Columns()
	if len(cols) == 0 {
		return tbl
	}
	first := cols[0]
	if strings.Contains(strings.ToLower(first.String()), "timestamp") {
		out := tbl.Clone()
		if err := out.DropColumn(first); err == nil {
			log.Printf("[DataReader] Dropped leading timestamp column %q", first)
			return out
		}
	}
	return tbl
}
