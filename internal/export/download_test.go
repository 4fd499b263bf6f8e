package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/business-search/internal/log"
	"github.com/ginjaninja78/business-search/internal/types"
)

type memorySaver struct {
	name        string
	contentType string
	data        []byte
}

func (s *memorySaver) Save(name, contentType string, data []byte) error {
	s.name, s.contentType, s.data = name, contentType, data
	return nil
}

type failingSaver struct{}

func (failingSaver) Save(name, contentType string, data []byte) error {
	return errors.New("disk full")
}

var sample = []types.Record{
	{"id": "1", "businessName": "ACME", "vatRefs": []any{"111", "222"}},
}

func TestDownloadCSV(t *testing.T) {
	saver := &memorySaver{}
	d := &Downloader{BaseName: "results", Saver: saver}

	got, err := d.DownloadCSV(sample)
	require.NoError(t, err)

	assert.Equal(t, "results.csv", saver.name)
	assert.Equal(t, ContentTypeCSV, saver.contentType)
	assert.Equal(t, ExportCSV(CSVHeader, sample), string(saver.data))
	assert.Equal(t, Download{FileName: "results.csv", ContentType: ContentTypeCSV, Records: 1, Bytes: len(saver.data)}, got)
}

func TestDownloadFlattened(t *testing.T) {
	saver := &memorySaver{}
	d := &Downloader{BaseName: "results", Saver: saver, Options: Options{FlattenReferences: true}}

	got, err := d.DownloadCSV(sample)
	require.NoError(t, err)

	assert.Equal(t, 2, got.Records)
	expected := CSVHeader + "\r\n" +
		`"1","ACME","","","","","","","",` + "\r\n" +
		`"","","","","","","","","",` + "\r\n"
	assertText(t, expected, string(saver.data))
}

func TestDownloadJSON(t *testing.T) {
	saver := &memorySaver{}
	d := &Downloader{BaseName: "results", Saver: saver}

	_, err := d.Download(FormatJSON, types.ResultSet{Records: sample})
	require.NoError(t, err)
	assert.Equal(t, "results.json", saver.name)
	assert.Equal(t, ContentTypeJSON, saver.contentType)
	assert.Contains(t, string(saver.data), `"businessName": "ACME"`)
}

func TestDownloadJSONIgnoresFlattening(t *testing.T) {
	plain, flat := &memorySaver{}, &memorySaver{}
	results := types.ResultSet{Records: sample}

	_, err := (&Downloader{BaseName: "results", Saver: plain}).DownloadJSON(results)
	require.NoError(t, err)

	got, err := (&Downloader{BaseName: "results", Saver: flat, Options: Options{FlattenReferences: true}}).DownloadJSON(results)
	require.NoError(t, err)

	assert.Equal(t, 1, got.Records)
	assertText(t, string(plain.data), string(flat.data))
	assert.Contains(t, string(flat.data), `"111",`)
}

func TestDownloadJSONWritesRawBusinesses(t *testing.T) {
	saver := &memorySaver{}
	d := &Downloader{BaseName: "results", Saver: saver}

	results := types.ResultSet{
		Records: []types.Record{{"id": "1", "businessName": "M&S <UK> LTD"}},
		Raw:     []json.RawMessage{json.RawMessage(`{"id":"1","businessName":"M&S <UK> LTD"}`)},
	}
	_, err := d.Download(FormatJSON, results)
	require.NoError(t, err)

	assertText(t, "[\n  {\n    \"id\": \"1\",\n    \"businessName\": \"M&S <UK> LTD\"\n  }\n]", string(saver.data))
}

func TestDownloadSaveFailure(t *testing.T) {
	d := &Downloader{BaseName: "results", Saver: failingSaver{}}
	_, err := d.DownloadCSV(sample)
	assert.True(t, errors.Is(err, ErrSaveFailed))

	d.Saver = nil
	_, err = d.DownloadCSV(sample)
	assert.False(t, errors.Is(err, ErrSaveFailed))
}

func TestDownloadXLSX(t *testing.T) {
	saver := &memorySaver{}
	d := &Downloader{BaseName: "results", Saver: saver}

	_, err := d.Download(FormatXLSX, types.ResultSet{Records: sample})
	require.NoError(t, err)
	assert.Equal(t, "results.xlsx", saver.name)

	f, err := excelize.OpenReader(bytes.NewReader(saver.data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(xlsxSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "UBRN", header)

	name, err := f.GetCellValue(xlsxSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "ACME", name)
}

func TestDownloadUnknownFormat(t *testing.T) {
	d := &Downloader{BaseName: "results", Saver: &memorySaver{}}
	_, err := d.Download("pdf", types.ResultSet{Records: sample})
	assert.Error(t, err)
}

func TestDownloadWithoutSaver(t *testing.T) {
	d := &Downloader{BaseName: "results"}
	_, err := d.DownloadCSV(sample)
	assert.Error(t, err)
}

func TestFileSaver(t *testing.T) {
	dir := t.TempDir()
	saver := NewFileSaver(filepath.Join(dir, "out"), log.NewNopLogger())
	d := &Downloader{BaseName: "results", Saver: saver}

	_, err := d.DownloadCSV(sample)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "out", "results.csv"), saver.LastPath)
	data, err := os.ReadFile(saver.LastPath)
	require.NoError(t, err)
	assert.Equal(t, ExportCSV(CSVHeader, sample), string(data))
}

func TestResponseSaver(t *testing.T) {
	rec := httptest.NewRecorder()
	d := &Downloader{BaseName: "results", Saver: ResponseSaver{W: rec}}

	_, err := d.DownloadCSV(sample)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentTypeCSV, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="results.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, ExportCSV(CSVHeader, sample), rec.Body.String())
}
