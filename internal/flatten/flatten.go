// Package flatten expands records with repeating reference attributes into
// display rows for the results table.
//
// A business with two VAT references and one PAYE reference becomes two rows:
// the first carries every attribute, the second only the second VAT
// reference. Both rows form one visual group in the table.
package flatten

import (
	"github.com/ginjaninja78/business-search/internal/types"
	"github.com/ginjaninja78/business-search/pkg/utils"
)

// Flatten expands one record. The number of rows is the length of the
// longest array attribute, at least one. Row i holds element i of every
// array attribute ("" when that array is shorter) and the plain attributes
// on row 0 only ("" afterwards).
func Flatten(rec types.Record) []types.Row {
	arrays := make(map[string][]any)
	for key, value := range rec {
		if arr, ok := asArray(value); ok {
			arrays[key] = arr
		}
	}

	lists := make([][]any, 0, len(arrays))
	for _, arr := range arrays {
		lists = append(lists, arr)
	}
	n := utils.MaxSize(lists...)
	if n == 0 {
		n = 1
	}

	rows := make([]types.Row, n)
	for i := range rows {
		row := make(types.Row, len(rec))
		for key, value := range rec {
			if arr, ok := arrays[key]; ok {
				if i < len(arr) {
					row[key] = arr[i]
				} else {
					row[key] = ""
				}
				continue
			}
			if i == 0 {
				row[key] = value
			} else {
				row[key] = ""
			}
		}
		rows[i] = row
	}
	return rows
}

// FlattenAll flattens every record, one group of rows per record.
func FlattenAll(records []types.Record) [][]types.Row {
	groups := make([][]types.Row, len(records))
	for i, rec := range records {
		groups[i] = Flatten(rec)
	}
	return groups
}

// Rows flattens every record into a single list of rows.
func Rows(records []types.Record) []types.Row {
	var rows []types.Row
	for _, rec := range records {
		rows = append(rows, Flatten(rec)...)
	}
	return rows
}

func asArray(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
