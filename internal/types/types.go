// =============================================================================
// Business Search - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - flatten
//   - export
//   - records
//   - query (result filtering)
//   - bands
//
// =============================================================================

package types

import "encoding/json"

// =============================================================================
// RECORD TYPES
// =============================================================================

// Record is a single business returned by the search API.
//
// Keys are the API attribute names (id, businessName, postCode, industryCode,
// legalStatus, tradingStatus, turnover, employmentBands, companyNo, vatRefs,
// payeRefs, ...). A key that is absent is "undefined"; repeating references
// are held as []any.
type Record map[string]any

// Row is one display row produced by flattening a Record.
type Row map[string]any

// ResultSet is a decoded list of businesses.
//
// Raw holds each business exactly as it was received, in the same order as
// Records, so JSON downloads can write it back with its original key order
// and escaping. Raw is nil when the input was not JSON or when Records were
// changed after decoding.
type ResultSet struct {
	Records []Record
	Raw     []json.RawMessage
}

// HasRaw reports whether Raw still describes Records.
func (rs ResultSet) HasRaw() bool {
	return rs.Raw != nil && len(rs.Raw) == len(rs.Records)
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// =============================================================================
// DROPDOWN TYPES
// =============================================================================

// Option is a single dropdown entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
