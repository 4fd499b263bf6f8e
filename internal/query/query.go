// =============================================================================
// Business Search - Query Builder
// =============================================================================
//
// This module turns search form edits into the query object sent to the
// business index API.
//
// RULES:
//   1. The current query is never modified; every edit returns a new query.
//   2. An empty value removes the field instead of storing an empty value.
//   3. Fields in UppercaseFields are upper-cased before they are stored.
//   4. Any other field name is stored verbatim.
//
// =============================================================================

package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/business-search/pkg/utils"
)

// UppercaseFields are the form fields the API expects in upper case.
var UppercaseFields = map[string]struct{}{
	"BusinessName": {},
	"PostCode":     {},
	"CompanyNo":    {},
	"Id":           {},
	"VatRefs":      {},
	"PayeRefs":     {},
}

// IsUppercaseField reports whether field is normalized to upper case.
func IsUppercaseField(field string) bool {
	_, ok := UppercaseFields[field]
	return ok
}

// Query maps form field ids to their values.
type Query map[string]Value

// =============================================================================
// FORM CHANGES
// =============================================================================

// HandleFormChange applies one form edit and returns the updated query.
//
// PARAMETERS:
//   - current: The query before the edit. It is not modified.
//   - field:   The id of the edited form field, e.g. "PostCode".
//   - value:   The new value. nil counts as empty.
//
// RETURNS:
//   - A new query with field removed (empty value) or set.
func HandleFormChange(current Query, field string, value Value) Query {
	next := current.Clone()

	if value == nil || value.IsEmpty() {
		delete(next, field)
		return next
	}

	if IsUppercaseField(field) {
		value = value.Upper()
	}
	next[field] = value
	return next
}

// Clone returns a copy of the query. Values are immutable so a shallow copy
// is enough, except for arrays which are copied.
func (q Query) Clone() Query {
	next := make(Query, len(q))
	for k, v := range q {
		if arr, ok := v.(ArrayValue); ok {
			v = append(ArrayValue(nil), arr...)
		}
		next[k] = v
	}
	return next
}

// Fields returns the field ids in sorted order.
func (q Query) Fields() []string {
	fields := make([]string, 0, len(q))
	for k := range q {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// PartialRanges lists range fields that have only one bound.
func (q Query) PartialRanges() []string {
	var partial []string
	for _, field := range q.Fields() {
		if rv, ok := q[field].(RangeValue); ok && rv.IsPartial() {
			partial = append(partial, field)
		}
	}
	return partial
}

// IsBlankForm reports whether every raw form value is the empty string, in
// which case there is nothing to search for.
func IsBlankForm(form map[string]any) bool {
	return utils.EveryKeyMatches(form, "")
}

// =============================================================================
// JSON
// =============================================================================

// Form returns the query as raw form values.
func (q Query) Form() map[string]any {
	out := make(map[string]any, len(q))
	for k, v := range q {
		out[k] = v.Interface()
	}
	return out
}

func (q Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Form())
}

func (q *Query) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}

	next := make(Query, len(raw))
	for field, rawValue := range raw {
		value, err := ParseValue(rawValue)
		if err != nil {
			return fmt.Errorf("field %s: %w", field, err)
		}
		if value.IsEmpty() {
			continue
		}
		next[field] = value
	}

	*q = next
	return nil
}

func decodeObject(data []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode query: %w", err)
	}
	return raw, nil
}

// =============================================================================
// COMMAND LINE ASSIGNMENTS
// =============================================================================

// ParseAssignment parses "Field=value". A value containing commas becomes an
// array; "Field=" is an empty edit.
func ParseAssignment(s string) (string, Value, error) {
	field, raw, ok := strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return "", nil, fmt.Errorf("expected Field=value, got %q", s)
	}

	if strings.Contains(raw, ",") {
		var arr ArrayValue
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				arr = append(arr, part)
			}
		}
		return field, arr, nil
	}
	return field, StringValue(raw), nil
}

// ParseRangeAssignment parses "Field=min:max" or "Field=min:max:single".
func ParseRangeAssignment(s string) (string, Value, error) {
	field, raw, ok := strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return "", nil, fmt.Errorf("expected Field=min:max[:single], got %q", s)
	}

	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", nil, fmt.Errorf("expected min:max[:single] for %s, got %q", field, raw)
	}

	rv := RangeValue{Min: strings.TrimSpace(parts[0]), Max: strings.TrimSpace(parts[1])}
	if len(parts) == 3 {
		rv.Single = strings.TrimSpace(parts[2])
	}
	return field, rv, nil
}
