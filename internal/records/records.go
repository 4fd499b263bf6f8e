// =============================================================================
// Business Search - Result Loading
// =============================================================================
//
// This module loads search results saved from the search API so the CLI can
// query, format and export them offline. Supported inputs:
//   - JSON: an array of business objects, or a single object
//   - CSV:  a header row followed by one business per row
//   - XLSX: the first sheet, laid out like the CSV input
//
// CSV and XLSX headers may use attribute names (businessName) or the labels
// written by the CSV download (Business Name). Cells in reference columns
// (vatRefs, payeRefs) hold comma separated lists.
//
// =============================================================================

package records

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/business-search/internal/export"
	"github.com/ginjaninja78/business-search/internal/types"
)

// ReferenceColumns hold lists of references rather than a single value.
var ReferenceColumns = map[string]bool{
	"vatRefs":  true,
	"payeRefs": true,
}

// =============================================================================
// LOADERS
// =============================================================================

// LoadFile loads results from path, picking the decoder by file extension.
// Only JSON input keeps the raw business objects.
func LoadFile(path string) (types.ResultSet, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".xlsx" {
		recs, err := LoadXLSX(path)
		return types.ResultSet{Records: recs}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	switch ext {
	case ".json":
		return DecodeJSON(file)
	case ".csv":
		recs, err := LoadCSV(file)
		return types.ResultSet{Records: recs}, err
	default:
		return types.ResultSet{}, fmt.Errorf("unsupported input file type: %q", ext)
	}
}

// LoadJSON decodes records from r. Numbers are kept as json.Number so they
// are written back exactly as received.
func LoadJSON(r io.Reader) ([]types.Record, error) {
	rs, err := DecodeJSON(r)
	if err != nil {
		return nil, err
	}
	return rs.Records, nil
}

// DecodeJSON decodes an array of businesses, or a single business, from r
// and keeps every business's raw JSON next to its decoded record.
func DecodeJSON(r io.Reader) (types.ResultSet, error) {
	dec := json.NewDecoder(bufio.NewReader(r))
	dec.UseNumber()

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return types.ResultSet{}, fmt.Errorf("failed to read JSON: %w", err)
	}

	var items []json.RawMessage
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		items = []json.RawMessage{raw}
	} else if err := json.Unmarshal(raw, &items); err != nil {
		return types.ResultSet{}, fmt.Errorf("expected an array of businesses: %w", err)
	}

	rs := types.ResultSet{
		Records: make([]types.Record, 0, len(items)),
		Raw:     make([]json.RawMessage, 0, len(items)),
	}
	for i, item := range items {
		rec, err := decodeRecord(item)
		if err != nil {
			if len(items) == 1 && strings.HasPrefix(trimmed, "{") {
				return types.ResultSet{}, err
			}
			return types.ResultSet{}, fmt.Errorf("business %d: %w", i, err)
		}
		rs.Records = append(rs.Records, rec)
		rs.Raw = append(rs.Raw, item)
	}
	return rs, nil
}

func decodeRecord(raw json.RawMessage) (types.Record, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var rec types.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode business: %w", err)
	}
	if rec == nil {
		rec = types.Record{}
	}
	return rec, nil
}

// LoadCSV reads records from CSV text with a single header row. Files
// produced by the CSV download load back unchanged, trailing comma
// included.
func LoadCSV(r io.Reader) ([]types.Record, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return fromRows(rows)
}

// LoadXLSX reads records from the first sheet of a workbook.
func LoadXLSX(path string) ([]types.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return fromRows(rows)
}

// =============================================================================
// ROW CONVERSION
// =============================================================================

func fromRows(rows [][]string) ([]types.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("input is empty")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = HeaderKey(h)
	}

	records := make([]types.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}

		rec := make(types.Record)
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			key := headers[i]
			if ReferenceColumns[key] {
				rec[key] = splitReferences(cell)
			} else {
				rec[key] = cell
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// HeaderKey maps a header cell to a record attribute. Labels written by the
// CSV download map back to their attribute; anything else is used as is.
func HeaderKey(header string) string {
	header = strings.TrimSpace(header)
	for i, label := range strings.Split(export.CSVHeader, ",") {
		if strings.EqualFold(label, header) {
			return export.Columns[i]
		}
	}
	return header
}

func splitReferences(cell string) []any {
	var refs []any
	for _, part := range strings.Split(cell, ",") {
		if part = strings.TrimSpace(part); part != "" {
			refs = append(refs, part)
		}
	}
	return refs
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
