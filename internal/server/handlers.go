package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/ginjaninja78/business-search/internal/export"
	"github.com/ginjaninja78/business-search/internal/flatten"
	"github.com/ginjaninja78/business-search/internal/numfmt"
	"github.com/ginjaninja78/business-search/internal/query"
	"github.com/ginjaninja78/business-search/internal/records"
	"github.com/ginjaninja78/business-search/internal/types"
	"github.com/ginjaninja78/business-search/internal/validation"
)

// maxBodyBytes bounds request bodies; result sets are capped upstream well
// below this.
const maxBodyBytes = 32 << 20

// FormChangeRequest is one edit of the search form.
type FormChangeRequest struct {
	Query query.Query `json:"query"`
	Field string      `json:"field" validate:"required"`
	Value interface{} `json:"value"`
}

// FormChangeResponse carries the query after the edit.
type FormChangeResponse struct {
	Query         query.Query `json:"query"`
	Searchable    bool        `json:"searchable"`
	PartialRanges []string    `json:"partialRanges,omitempty"`
}

// NumberRequest is the query string of GET /format/number.
type NumberRequest struct {
	Value string `validate:"required"`
}

func (s *Server) formChange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req FormChangeRequest
	if err := decodeBody(r, &req); err != nil {
		RespondWithError(w, err, http.StatusBadRequest)
		return
	}
	if err := validation.Struct(req); err != nil {
		RespondWithError(w, err, http.StatusBadRequest)
		return
	}

	value, err := query.ParseValue(req.Value)
	if err != nil {
		RespondWithError(w, fmt.Errorf("field %s: %w", req.Field, err), http.StatusBadRequest)
		return
	}

	next := query.HandleFormChange(req.Query, req.Field, value)
	s.formChanges.Inc()
	s.logger.Debug("form change", "field", req.Field, "kind", value.Kind().String(), "fields", len(next))

	RespondJSONObjectWithCode(w, http.StatusOK, FormChangeResponse{
		Query:         next,
		Searchable:    !query.IsBlankForm(next.Form()),
		PartialRanges: next.PartialRanges(),
	})
}

func (s *Server) bandNames(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	RespondJSONObjectWithCode(w, http.StatusOK, map[string][]string{"bands": s.registry.Names()})
}

func (s *Server) bandOptions(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	options, err := s.registry.Options(ps.ByName("name"))
	if err != nil {
		RespondWithError(w, err, http.StatusNotFound)
		return
	}
	RespondJSONObjectWithCode(w, http.StatusOK, options)
}

func (s *Server) formatNumber(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := NumberRequest{Value: r.URL.Query().Get("value")}
	if err := validation.Struct(req); err != nil {
		RespondWithError(w, err, http.StatusBadRequest)
		return
	}
	RespondJSONObjectWithCode(w, http.StatusOK, map[string]string{"value": numfmt.NumberWithCommas(req.Value)})
}

// flatten expands one business into display rows. A posted array yields
// one group of rows per business.
func (s *Server) flatten(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		RespondWithError(w, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		businesses, err := records.LoadJSON(bytes.NewReader(body))
		if err != nil {
			RespondWithError(w, err, http.StatusBadRequest)
			return
		}
		RespondJSONObjectWithCode(w, http.StatusOK, flatten.FlattenAll(businesses))
		return
	}

	var rec types.Record
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&rec); err != nil {
		RespondWithError(w, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	if rec == nil {
		RespondWithError(w, errors.New("business is a required body"), http.StatusBadRequest)
		return
	}
	RespondJSONObjectWithCode(w, http.StatusOK, flatten.Flatten(rec))
}

// export downloads the posted results. Query parameters:
//   flatten=true|false  overrides export.flatten_references
//   labels=true         replaces band codes with their descriptions
func (s *Server) export(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	format := ps.ByName("format")
	counter, ok := s.downloads[format]
	if !ok {
		RespondWithError(w, fmt.Errorf("unsupported export format: %q", format), http.StatusNotFound)
		return
	}

	results, err := records.DecodeJSON(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		RespondWithError(w, err, http.StatusBadRequest)
		return
	}

	opts := export.Options{FlattenReferences: s.cfg.Export.FlattenReferences}
	if raw := r.URL.Query().Get("flatten"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			RespondWithError(w, fmt.Errorf("flatten must be true or false"), http.StatusBadRequest)
			return
		}
		opts.FlattenReferences = v
	}
	if labels, _ := strconv.ParseBool(r.URL.Query().Get("labels")); labels {
		for i, rec := range results.Records {
			results.Records[i] = s.registry.ConvertBands(rec)
		}
		results.Raw = nil
	}

	d := &export.Downloader{
		BaseName: s.cfg.FileName,
		Saver:    export.ResponseSaver{W: w},
		Options:  opts,
	}
	dl, err := d.Download(format, results)
	if err != nil {
		s.logger.Error("download failed", "format", format, "error", err)
		// the attachment headers are already out
		if !errors.Is(err, export.ErrSaveFailed) {
			RespondWithError(w, errors.New("unable to build download"), http.StatusInternalServerError)
		}
		return
	}

	counter.Inc()
	s.logger.Info("download", "file", dl.FileName, "records", dl.Records, "bytes", dl.Bytes)
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	RespondJSONObjectWithCode(w, http.StatusOK, s.Stats())
}

func decodeBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
