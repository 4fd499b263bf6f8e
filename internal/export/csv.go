// =============================================================================
// Business Search - CSV Export
// =============================================================================
//
// This module serializes search results into the CSV layout downstream
// consumers already read.
//
// FORMAT:
//   <header>\r\n
//   "<id>","<businessName>",...,"<companyNo>",\r\n
//
//   - Nine fixed columns, see Columns.
//   - Every value is wrapped in double quotes; quotes inside values are not
//     escaped.
//   - A missing value is written as "".
//   - A null value is written as "null".
//   - Every value, including the last one, is followed by a comma.
//
// =============================================================================

package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/business-search/internal/types"
)

// Columns are the record attributes written to CSV, in order.
var Columns = []string{
	"id",
	"businessName",
	"postCode",
	"industryCode",
	"legalStatus",
	"tradingStatus",
	"turnover",
	"employmentBands",
	"companyNo",
}

// CSVHeader is the header line used for downloads.
const CSVHeader = "UBRN,Business Name,PostCode,Industry Code,Legal Status,Trading Status,Turnover,Employment,Company Reference Number"

const lineBreak = "\r\n"

// ExportCSV renders records as CSV text below the given header line.
func ExportCSV(header string, records []types.Record) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(lineBreak)

	for _, rec := range records {
		for _, col := range Columns {
			b.WriteByte('"')
			if v, ok := rec[col]; ok {
				b.WriteString(CellText(v))
			}
			b.WriteString(`",`)
		}
		b.WriteString(lineBreak)
	}

	return b.String()
}

// CellText converts a record value to the text written into a cell. nil is
// written as "null". Arrays are joined with commas and their nil elements
// are left blank.
func CellText(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			if item != nil {
				parts[i] = CellText(item)
			}
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(val, ",")
	default:
		return fmt.Sprintf("%v", val)
	}
}
