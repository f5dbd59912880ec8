package ingest

import (
	"fmt"
	"log"

	"cbctsurvey/domain/core"
	"cbctsurvey/domain/table"

	"github.com/xuri/excelize/v2"
)

func (r *DataReader) readExcel() (*table.Table, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("[DataReader] Error closing Excel file: %v", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, core.ErrEmptyTable
	}

	tbl, err := table.New(rows[0], rows[1:])
	if err != nil {
		return nil, err
	}

	log.Printf("[DataReader] Loaded sheet %q: %d rows, %d columns", sheet, tbl.Len(), len(tbl.Columns()))
	return tbl, nil
}
