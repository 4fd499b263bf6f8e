package export

import (
	"encoding/json"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/business-search/internal/types"
)

func assertText(t *testing.T, expected, actual string) {
	t.Helper()
	if expected != actual {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(expected, actual, false)
		t.Errorf("unexpected output:\n%s", dmp.DiffPrettyText(diffs))
	}
}

func TestExportCSV(t *testing.T) {
	records := []types.Record{
		{
			"id":              "12345",
			"businessName":    "TEST COMPANY",
			"postCode":        "NP10 8XG",
			"industryCode":    "12345",
			"legalStatus":     "1",
			"tradingStatus":   "A",
			"turnover":        json.Number("100"),
			"employmentBands": "B",
			"companyNo":       "AB123456",
		},
		{
			"id":           "67890",
			"businessName": "OTHER LTD",
		},
	}

	expected := "header\r\n" +
		`"12345","TEST COMPANY","NP10 8XG","12345","1","A","100","B","AB123456",` + "\r\n" +
		`"67890","OTHER LTD","","","","","","","",` + "\r\n"

	assertText(t, expected, ExportCSV("header", records))
}

func TestExportCSVNoRecords(t *testing.T) {
	assert.Equal(t, CSVHeader+"\r\n", ExportCSV(CSVHeader, nil))
}

func TestExportCSVDoesNotEscapeQuotes(t *testing.T) {
	records := []types.Record{{"businessName": `SAY "HI" LTD`}}
	expected := "h\r\n" + `"","SAY "HI" LTD","","","","","","","",` + "\r\n"
	assertText(t, expected, ExportCSV("h", records))
}

func TestExportCSVWritesNullValues(t *testing.T) {
	records := []types.Record{{"id": "1", "companyNo": nil}}
	expected := "h\r\n" + `"1","","","","","","","","null",` + "\r\n"
	assertText(t, expected, ExportCSV("h", records))
}

func TestExportCSVIgnoresExtraAttributes(t *testing.T) {
	records := []types.Record{{"id": "1", "vatRefs": []any{"111", "222"}}}
	expected := "h\r\n" + `"1","","","","","","","","",` + "\r\n"
	assertText(t, expected, ExportCSV("h", records))
}

func TestCellText(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, "null"},
		{"string", "abc", "abc"},
		{"json number", json.Number("1.50"), "1.50"},
		{"float", 1234.5, "1234.5"},
		{"whole float", float64(100000), "100000"},
		{"int", 42, "42"},
		{"bool", true, "true"},
		{"array", []any{"A", json.Number("2")}, "A,2"},
		{"string array", []string{"x", "y"}, "x,y"},
		{"array with nil", []any{nil, "a", nil}, ",a,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CellText(tt.value))
		})
	}
}

func TestExportJSON(t *testing.T) {
	data, err := ExportJSON([]types.Record{{"id": "1", "turnover": json.Number("5")}})
	assert.NoError(t, err)
	assertText(t, "[\n  {\n    \"id\": \"1\",\n    \"turnover\": 5\n  }\n]", string(data))

	data, err = ExportJSON(nil)
	assert.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestExportJSONDoesNotEscapeHTML(t *testing.T) {
	data, err := ExportJSON([]types.Record{{"businessName": "M&S <UK> LTD"}})
	assert.NoError(t, err)
	assertText(t, "[\n  {\n    \"businessName\": \"M&S <UK> LTD\"\n  }\n]", string(data))
}

func TestExportRawJSON(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{"id":"1","businessName":"M&S <UK> LTD","vatRefs":["a","b"]}`),
		json.RawMessage(`{ "id" : "2" }`),
	}

	data, err := ExportRawJSON(raw)
	assert.NoError(t, err)

	expected := `[
  {
    "id": "1",
    "businessName": "M&S <UK> LTD",
    "vatRefs": [
      "a",
      "b"
    ]
  },
  {
    "id": "2"
  }
]`
	assertText(t, expected, string(data))

	data, err = ExportRawJSON(nil)
	assert.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
