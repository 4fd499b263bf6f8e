// =============================================================================
// Business Search - Query Values
// =============================================================================
//
// A search form field holds one of four shapes of value:
//   - StringValue : free text (business name, postcode, ...)
//   - NumberValue : a plain number
//   - ArrayValue  : several values (e.g. a list of VAT references)
//   - RangeValue  : {min, max, single} for range inputs (industry code, ...)
//
// Each shape decides for itself when it is empty. Empty values never reach
// the serialized query.
//
// =============================================================================

package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/ginjaninja78/business-search/pkg/utils"
)

// Kind identifies the shape of a Value.
type Kind int

const (
	// KindString is free text, see StringValue.
	KindString Kind = iota
	// KindNumber is a plain number, see NumberValue.
	KindNumber
	// KindArray is a list of strings, see ArrayValue.
	KindArray
	// KindRange is a min/max/single triple, see RangeValue.
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindArray:
		return "array"
	case KindRange:
		return "range"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single form field value.
type Value interface {
	Kind() Kind
	IsEmpty() bool
	// Upper returns the value with every text part upper-cased.
	Upper() Value
	// Interface returns the JSON shaped form of the value.
	Interface() any
}

// =============================================================================
// STRING
// =============================================================================

// StringValue is a text field. It is empty when it is "".
type StringValue string

func (v StringValue) Kind() Kind     { return KindString }
func (v StringValue) IsEmpty() bool  { return v == "" }
func (v StringValue) Upper() Value   { return StringValue(strings.ToUpper(string(v))) }
func (v StringValue) Interface() any { return string(v) }

// =============================================================================
// NUMBER
// =============================================================================

// NumberValue is a numeric field. It keeps the number's original text and is
// never empty.
type NumberValue json.Number

func (v NumberValue) Kind() Kind     { return KindNumber }
func (v NumberValue) IsEmpty() bool  { return false }
func (v NumberValue) Upper() Value   { return v }
func (v NumberValue) Interface() any { return json.Number(v) }

// =============================================================================
// ARRAY
// =============================================================================

// ArrayValue is a multi-valued field such as a list of VAT references. It is
// empty when it has no elements.
type ArrayValue []string

func (v ArrayValue) Kind() Kind    { return KindArray }
func (v ArrayValue) IsEmpty() bool { return len(v) == 0 }

func (v ArrayValue) Upper() Value {
	out := make(ArrayValue, len(v))
	for i, s := range v {
		out[i] = strings.ToUpper(s)
	}
	return out
}

func (v ArrayValue) Interface() any {
	out := make([]any, len(v))
	for i, s := range v {
		out[i] = s
	}
	return out
}

// =============================================================================
// RANGE
// =============================================================================

// RangeValue is a range input. Single wins over Min/Max when set.
type RangeValue struct {
	Min    string `mapstructure:"min" json:"min"`
	Max    string `mapstructure:"max" json:"max"`
	Single string `mapstructure:"single" json:"single"`
}

func (v RangeValue) Kind() Kind { return KindRange }

// Fields returns the sub-fields keyed by their JSON names.
func (v RangeValue) Fields() map[string]any {
	return map[string]any{"min": v.Min, "max": v.Max, "single": v.Single}
}

// IsEmpty reports whether min, max and single are all empty.
func (v RangeValue) IsEmpty() bool {
	return utils.EveryKeyMatches(v.Fields(), "")
}

// IsPartial reports a range with only one bound filled in.
func (v RangeValue) IsPartial() bool {
	if v.IsEmpty() || v.Single != "" {
		return false
	}
	return utils.AnyKeyEmpty(map[string]any{"min": v.Min, "max": v.Max})
}

func (v RangeValue) Upper() Value {
	return RangeValue{
		Min:    strings.ToUpper(v.Min),
		Max:    strings.ToUpper(v.Max),
		Single: strings.ToUpper(v.Single),
	}
}

func (v RangeValue) Interface() any {
	return v.Fields()
}

// =============================================================================
// DECODING
// =============================================================================

// ParseValue converts a JSON shaped value (as produced by encoding/json with
// UseNumber) into a Value. nil is treated as an empty string.
func ParseValue(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return StringValue(""), nil
	case Value:
		return v, nil
	case string:
		return StringValue(v), nil
	case json.Number:
		return NumberValue(v), nil
	case float64:
		return NumberValue(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case int:
		return NumberValue(strconv.Itoa(v)), nil
	case int64:
		return NumberValue(strconv.FormatInt(v, 10)), nil
	case []string:
		return ArrayValue(append([]string(nil), v...)), nil
	case []any:
		out := make(ArrayValue, 0, len(v))
		for i, item := range v {
			switch item.(type) {
			case string, json.Number, float64, int, int64:
				out = append(out, fmt.Sprintf("%v", item))
			default:
				return nil, fmt.Errorf("array element %d: unsupported type %T", i, item)
			}
		}
		return out, nil
	case map[string]any:
		return decodeRange(v)
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}

func decodeRange(raw map[string]any) (RangeValue, error) {
	var rv RangeValue
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &rv,
	})
	if err != nil {
		return RangeValue{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return RangeValue{}, fmt.Errorf("invalid range value: %w", err)
	}
	return rv, nil
}
