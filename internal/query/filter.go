package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/business-search/internal/types"
)

// AttributeFor maps a form field id to the record attribute it filters,
// e.g. "PostCode" -> "postCode".
func AttributeFor(field string) string {
	return strcase.ToLowerCamel(field)
}

// Matches reports whether a record satisfies every field of the query. It
// backs the "Filter Results" option of the results page, which narrows an
// already fetched result set without another API call.
func (q Query) Matches(rec types.Record) bool {
	for field, value := range q {
		attr, ok := rec[AttributeFor(field)]
		if !ok || attr == nil {
			return false
		}
		if !matchValue(value, attr) {
			return false
		}
	}
	return true
}

// Filter returns the records matching the query, in order.
func Filter(records []types.Record, q Query) []types.Record {
	out := make([]types.Record, 0, len(records))
	for _, rec := range records {
		if q.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func matchValue(value Value, attr any) bool {
	candidates := flattenAttr(attr)

	switch v := value.(type) {
	case StringValue:
		needle := strings.ToUpper(string(v))
		for _, c := range candidates {
			if strings.Contains(strings.ToUpper(c), needle) {
				return true
			}
		}
	case NumberValue:
		for _, c := range candidates {
			if numericEqual(string(v), c) {
				return true
			}
		}
	case ArrayValue:
		for _, want := range v {
			for _, c := range candidates {
				if strings.EqualFold(want, c) {
					return true
				}
			}
		}
	case RangeValue:
		for _, c := range candidates {
			if inRange(v, c) {
				return true
			}
		}
	}
	return false
}

func flattenAttr(attr any) []string {
	switch a := attr.(type) {
	case []any:
		out := make([]string, 0, len(a))
		for _, item := range a {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case []string:
		return a
	case json.Number:
		return []string{a.String()}
	default:
		return []string{fmt.Sprintf("%v", a)}
	}
}

func numericEqual(a, b string) bool {
	da, errA := decimal.NewFromString(strings.TrimSpace(a))
	db, errB := decimal.NewFromString(strings.TrimSpace(b))
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	return da.Equal(db)
}

func inRange(rv RangeValue, candidate string) bool {
	if rv.Single != "" {
		return numericEqual(rv.Single, candidate)
	}

	x, err := decimal.NewFromString(strings.TrimSpace(candidate))
	if err != nil {
		return false
	}
	if rv.Min != "" {
		lo, err := decimal.NewFromString(rv.Min)
		if err != nil || x.LessThan(lo) {
			return false
		}
	}
	if rv.Max != "" {
		hi, err := decimal.NewFromString(rv.Max)
		if err != nil || x.GreaterThan(hi) {
			return false
		}
	}
	return true
}
