package utils

import "reflect"

// MaxSize returns the length of the longest slice, 0 when called without
// arguments.
func MaxSize(arrays ...[]any) int {
	longest := 0
	for _, a := range arrays {
		if len(a) > longest {
			longest = len(a)
		}
	}
	return longest
}

// EveryKeyMatches reports whether every value in m is strictly equal to
// value. Dynamic types must match as well, so "1" never equals 1. Values of
// non-comparable types (slices, maps) never match.
func EveryKeyMatches(m map[string]any, value any) bool {
	if !isComparable(value) {
		return len(m) == 0
	}
	for _, v := range m {
		if !isComparable(v) || v != value {
			return false
		}
	}
	return true
}

// AnyKeyEmpty reports whether at least one value in m is the empty string.
func AnyKeyEmpty(m map[string]any) bool {
	for _, v := range m {
		if s, ok := v.(string); ok && s == "" {
			return true
		}
	}
	return false
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}
