package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/ginjaninja78/business-search/internal/config"
	"github.com/ginjaninja78/business-search/internal/export"
	"github.com/ginjaninja78/business-search/internal/log"
)

const results = `[
  {"id":"1","businessName":"ACME","legalStatus":"1","employmentBands":"B","vatRefs":["111","222"]},
  {"id":"2","businessName":"OTHER LTD","turnover":100}
]`

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	header http.Header
	codes  []int
}

func (b *brokenWriter) Header() http.Header       { return b.header }
func (b *brokenWriter) WriteHeader(code int)      { b.codes = append(b.codes, code) }
func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func execute(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func decode(w *httptest.ResponseRecorder, v interface{}) {
	decoder := json.NewDecoder(bytes.NewReader(w.Body.Bytes()))
	decoder.UseNumber()
	Expect(decoder.Decode(v)).To(Succeed())
}

var _ = Describe("Server", func() {
	var (
		cfg     *config.Config
		srv     *Server
		handler http.Handler
	)

	BeforeEach(func() {
		cfg = config.Default()
		cfg.FileName = "results"
		srv = New(cfg, log.NewNopLogger())
		handler = srv.Handler()
	})

	Describe("POST /query", func() {
		It("Should uppercase fixed fields", func() {
			w := execute(handler, http.MethodPost, "/query",
				`{"query":{"IndustryCode":"12345"},"field":"PostCode","value":"np10 8xg"}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string]interface{}
			decode(w, &resp)
			Expect(resp["query"]).To(Equal(map[string]interface{}{
				"IndustryCode": "12345",
				"PostCode":     "NP10 8XG",
			}))
		})

		It("Should remove a field set to an empty value", func() {
			w := execute(handler, http.MethodPost, "/query",
				`{"query":{"BusinessName":"ACME","PostCode":"NP10"},"field":"BusinessName","value":""}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string]interface{}
			decode(w, &resp)
			Expect(resp["query"]).To(Equal(map[string]interface{}{"PostCode": "NP10"}))
			Expect(resp["searchable"]).To(BeTrue())
		})

		It("Should flag a query with nothing left to search", func() {
			w := execute(handler, http.MethodPost, "/query",
				`{"query":{"PostCode":"NP10"},"field":"PostCode","value":""}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp FormChangeResponse
			decode(w, &resp)
			Expect(resp.Query).To(BeEmpty())
			Expect(resp.Searchable).To(BeFalse())
		})

		It("Should report partial ranges", func() {
			w := execute(handler, http.MethodPost, "/query",
				`{"query":{},"field":"Turnover","value":{"min":"10","max":"","single":""}}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp FormChangeResponse
			decode(w, &resp)
			Expect(resp.PartialRanges).To(Equal([]string{"Turnover"}))
			Expect(srv.Stats().FormChanges).To(Equal(int64(1)))
		})

		It("Should reject a request without a field", func() {
			w := execute(handler, http.MethodPost, "/query", `{"query":{},"value":"x"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))

			var resp ModelError
			decode(w, &resp)
			Expect(resp.Description).To(Equal("Field is a required field"))
		})

		It("Should reject malformed JSON", func() {
			w := execute(handler, http.MethodPost, "/query", `{`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /bands", func() {
		It("Should list the band tables", func() {
			w := execute(handler, http.MethodGet, "/bands", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string][]string
			decode(w, &resp)
			Expect(resp["bands"]).To(ContainElement("employment"))
		})

		It("Should build dropdown options", func() {
			w := execute(handler, http.MethodGet, "/bands/legal_status", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			var options []map[string]string
			decode(w, &options)
			Expect(options).To(HaveLen(8))
			Expect(options[0]["value"]).To(Equal("1"))
			Expect(options[0]["label"]).To(Equal("1 [Company]"))
		})

		It("Should return 404 for an unknown table", func() {
			w := execute(handler, http.MethodGet, "/bands/colour", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /format/number", func() {
		It("Should add thousands separators", func() {
			w := execute(handler, http.MethodGet, "/format/number?value=100000000", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string]string
			decode(w, &resp)
			Expect(resp["value"]).To(Equal("100,000,000"))
		})

		It("Should require a value", func() {
			w := execute(handler, http.MethodGet, "/format/number", "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /flatten", func() {
		It("Should expand repeating references", func() {
			w := execute(handler, http.MethodPost, "/flatten",
				`{"id":"1","vatRefs":["111","222"]}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var rows []map[string]interface{}
			decode(w, &rows)
			Expect(rows).To(Equal([]map[string]interface{}{
				{"id": "1", "vatRefs": "111"},
				{"id": "", "vatRefs": "222"},
			}))
		})

		It("Should group rows per business for an array", func() {
			w := execute(handler, http.MethodPost, "/flatten",
				`[{"id":"1","vatRefs":["111","222"]},{"id":"2","vatRefs":[]}]`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var groups [][]map[string]interface{}
			decode(w, &groups)
			Expect(groups).To(Equal([][]map[string]interface{}{
				{{"id": "1", "vatRefs": "111"}, {"id": "", "vatRefs": "222"}},
				{{"id": "2", "vatRefs": ""}},
			}))
		})

		It("Should reject a null body", func() {
			w := execute(handler, http.MethodPost, "/flatten", `null`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /export/:format", func() {
		It("Should download CSV as an attachment", func() {
			w := execute(handler, http.MethodPost, "/export/csv", results)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal(export.ContentTypeCSV))
			Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="results.csv"`))
			Expect(w.Body.String()).To(Equal(export.CSVHeader + "\r\n" +
				`"1","ACME","","","1","","","B","",` + "\r\n" +
				`"2","OTHER LTD","","","","","100","","",` + "\r\n"))
		})

		It("Should flatten and translate bands on request", func() {
			w := execute(handler, http.MethodPost, "/export/csv?flatten=true&labels=true", results)
			Expect(w.Code).To(Equal(http.StatusOK))

			lines := strings.Split(strings.TrimSuffix(w.Body.String(), "\r\n"), "\r\n")
			Expect(lines).To(HaveLen(4))
			Expect(lines[1]).To(HavePrefix(`"1","ACME","","","Company",`))
		})

		It("Should download JSON", func() {
			w := execute(handler, http.MethodPost, "/export/json", results)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal(export.ContentTypeJSON))
			Expect(w.Body.String()).To(ContainSubstring(`"turnover": 100`))
		})

		It("Should return the businesses as posted in JSON downloads", func() {
			body := `[{"id":"1","businessName":"M&S <UK> LTD","vatRefs":["a","b"]}]`
			expected := "[\n  {\n    \"id\": \"1\",\n    \"businessName\": \"M&S <UK> LTD\",\n" +
				"    \"vatRefs\": [\n      \"a\",\n      \"b\"\n    ]\n  }\n]"

			w := execute(handler, http.MethodPost, "/export/json", body)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal(expected))

			w = execute(handler, http.MethodPost, "/export/json?flatten=true", body)
			Expect(w.Body.String()).To(Equal(expected))
		})

		It("Should not append an error to a download that failed mid-write", func() {
			bw := &brokenWriter{header: http.Header{}}
			r := httptest.NewRequest(http.MethodPost, "/export/csv", strings.NewReader(results))
			handler.ServeHTTP(bw, r)

			Expect(bw.codes).To(Equal([]int{http.StatusOK}))
			Expect(bw.header.Get("Content-Type")).To(Equal(export.ContentTypeCSV))
			Expect(srv.Stats().Downloads).To(Equal(int64(0)))
		})

		It("Should download XLSX", func() {
			w := execute(handler, http.MethodPost, "/export/xlsx", results)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal(export.ContentTypeXLSX))
			Expect(w.Body.Len()).To(BeNumerically(">", 0))
		})

		It("Should count downloads per format", func() {
			execute(handler, http.MethodPost, "/export/csv", results)
			execute(handler, http.MethodPost, "/export/csv", results)
			execute(handler, http.MethodPost, "/export/json", results)

			w := execute(handler, http.MethodGet, "/stats", "")
			var st Stats
			decode(w, &st)
			Expect(st.Downloads).To(Equal(int64(3)))
			Expect(st.ByFormat["csv"]).To(Equal(int64(2)))
		})

		It("Should reject unknown formats and bad input", func() {
			Expect(execute(handler, http.MethodPost, "/export/pdf", results).Code).To(Equal(http.StatusNotFound))
			Expect(execute(handler, http.MethodPost, "/export/csv", `nope`).Code).To(Equal(http.StatusBadRequest))
			Expect(execute(handler, http.MethodPost, "/export/csv?flatten=maybe", results).Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("CORS", func() {
		It("Should answer preflight requests when an origin is configured", func() {
			cfg.Server.AllowOrigin = "*"
			handler = New(cfg, log.NewNopLogger()).Handler()

			w := execute(handler, http.MethodOptions, "/export/csv", "")
			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})
})
