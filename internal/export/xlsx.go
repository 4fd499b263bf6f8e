package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/business-search/internal/types"
)

const xlsxSheet = "Results"

// ExportXLSX renders the records as a single sheet workbook with the same
// header labels and columns as the CSV download.
func ExportXLSX(records []types.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, label := range strings.Split(CSVHeader, ",") {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(xlsxSheet, cell, label); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, rec := range records {
		r := i + 2
		for c, col := range Columns {
			v, ok := rec[col]
			if !ok || v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			if err := f.SetCellStr(xlsxSheet, cell, CellText(v)); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", r, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	return buf.Bytes(), nil
}
