package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ginjaninja78/business-search/internal/types"
)

const jsonIndent = "  "

// ExportJSON renders the records as a JSON array indented by two spaces.
// HTML characters are written as is; keys come out in sorted order. A nil
// slice is written as an empty array.
func ExportJSON(records []types.Record) ([]byte, error) {
	if records == nil {
		records = []types.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ExportRawJSON writes businesses exactly as received, keys in their
// original order, as a JSON array indented by two spaces.
func ExportRawJSON(raw []json.RawMessage) ([]byte, error) {
	var src bytes.Buffer
	src.WriteByte('[')
	for i, item := range raw {
		if i > 0 {
			src.WriteByte(',')
		}
		src.Write(item)
	}
	src.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, src.Bytes(), "", jsonIndent); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return out.Bytes(), nil
}

// exportResultSet prefers the raw businesses when they still match.
func exportResultSet(rs types.ResultSet) ([]byte, error) {
	if rs.HasRaw() {
		return ExportRawJSON(rs.Raw)
	}
	return ExportJSON(rs.Records)
}
