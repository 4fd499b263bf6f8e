// =============================================================================
// Business Search - Downloads
// =============================================================================
//
// A Downloader renders a result set and hands the bytes to a Saver together
// with the file name and content type. The CLI saves into the output
// directory; the HTTP server streams the file back as an attachment.
//
// =============================================================================

package export

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ginjaninja78/business-search/internal/flatten"
	"github.com/ginjaninja78/business-search/internal/log"
	"github.com/ginjaninja78/business-search/internal/types"
	"github.com/ginjaninja78/business-search/pkg/utils"
)

// Content types of the produced files.
const (
	ContentTypeCSV  = "text/csv;charset=utf-8"
	ContentTypeJSON = "text/json;charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrSaveFailed marks errors returned by a Saver. The saver may already
// have written part of the file.
var ErrSaveFailed = errors.New("save failed")

// Format names accepted by Downloader.Download.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// =============================================================================
// SAVERS
// =============================================================================

// Saver receives a finished download.
type Saver interface {
	Save(name, contentType string, data []byte) error
}

// FileSaver writes downloads into a directory.
type FileSaver struct {
	Files  *utils.FileManager
	Logger log.Logger

	// LastPath is the full path of the most recent file written.
	LastPath string
}

// NewFileSaver creates a FileSaver writing into outputDir.
func NewFileSaver(outputDir string, logger log.Logger) *FileSaver {
	return &FileSaver{Files: utils.NewFileManager(outputDir), Logger: logger}
}

// Save implements Saver.
func (s *FileSaver) Save(name, contentType string, data []byte) error {
	path, err := s.Files.WriteOutputFile(name, data)
	if err != nil {
		return err
	}
	s.LastPath = path
	if s.Logger != nil {
		s.Logger.Info("download saved", "path", path, "contentType", contentType, "bytes", len(data))
	}
	return nil
}

// ResponseSaver writes downloads to an HTTP response as an attachment.
type ResponseSaver struct {
	W http.ResponseWriter
}

// Save implements Saver.
func (s ResponseSaver) Save(name, contentType string, data []byte) error {
	h := s.W.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	s.W.WriteHeader(http.StatusOK)
	if _, err := s.W.Write(data); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// =============================================================================
// DOWNLOADER
// =============================================================================

// Options controls how results are shaped before rendering.
type Options struct {
	// FlattenReferences expands repeating reference attributes into one row
	// per reference in CSV and XLSX downloads. JSON downloads always hold the
	// businesses as received.
	FlattenReferences bool
}

// Downloader renders results and passes them to a Saver.
type Downloader struct {
	// BaseName is the file name without extension. Placeholders understood
	// by utils.GenerateOutputFileName are expanded.
	BaseName string
	Saver    Saver
	Options  Options
}

// Download describes a completed download.
type Download struct {
	FileName    string
	ContentType string
	Records     int
	Bytes       int
}

// Download renders results in the named format.
func (d *Downloader) Download(format string, results types.ResultSet) (Download, error) {
	switch format {
	case FormatCSV:
		return d.DownloadCSV(results.Records)
	case FormatJSON:
		return d.DownloadJSON(results)
	case FormatXLSX:
		return d.DownloadXLSX(results.Records)
	default:
		return Download{}, fmt.Errorf("unsupported export format: %q", format)
	}
}

// DownloadCSV saves results as <BaseName>.csv.
func (d *Downloader) DownloadCSV(results []types.Record) (Download, error) {
	results = d.shape(results)
	data := []byte(ExportCSV(CSVHeader, results))
	return d.save(".csv", ContentTypeCSV, data, len(results))
}

// DownloadJSON saves results as <BaseName>.json. The raw businesses are
// written when results carries them.
func (d *Downloader) DownloadJSON(results types.ResultSet) (Download, error) {
	data, err := exportResultSet(results)
	if err != nil {
		return Download{}, err
	}
	return d.save(".json", ContentTypeJSON, data, len(results.Records))
}

// DownloadXLSX saves results as <BaseName>.xlsx.
func (d *Downloader) DownloadXLSX(results []types.Record) (Download, error) {
	results = d.shape(results)
	data, err := ExportXLSX(results)
	if err != nil {
		return Download{}, err
	}
	return d.save(".xlsx", ContentTypeXLSX, data, len(results))
}

func (d *Downloader) shape(results []types.Record) []types.Record {
	if !d.Options.FlattenReferences {
		return results
	}
	rows := flatten.Rows(results)
	out := make([]types.Record, len(rows))
	for i, row := range rows {
		out[i] = types.Record(row)
	}
	return out
}

func (d *Downloader) save(ext, contentType string, data []byte, n int) (Download, error) {
	if d.Saver == nil {
		return Download{}, fmt.Errorf("no saver configured")
	}
	name := utils.GenerateOutputFileName(d.BaseName, nil) + ext
	if err := d.Saver.Save(name, contentType, data); err != nil {
		return Download{}, fmt.Errorf("%w: %s: %w", ErrSaveFailed, name, err)
	}
	return Download{FileName: name, ContentType: contentType, Records: n, Bytes: len(data)}, nil
}
