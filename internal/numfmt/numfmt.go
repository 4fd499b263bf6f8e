// Package numfmt renders numbers for display in the results table.
package numfmt

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// NumberWithCommas formats a numeric value with a comma between every group of
// three integer digits. Fractional digits are kept as they are. Input that is
// not a number is returned unchanged; nil renders as "".
func NumberWithCommas(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return v
		}
		return group(d.String())
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return v.String()
		}
		return group(d.String())
	case decimal.Decimal:
		return group(v.String())
	case int:
		return printer.Sprintf("%d", v)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return group(fmt.Sprintf("%d", v))
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return group(decimal.NewFromFloat(f).String())
}

// group inserts separators into the integer part of a plain decimal string.
// Values that fit in an int64 go through the locale printer; longer digit
// runs are grouped by hand.
func group(s string) string {
	whole, frac, hasFrac := strings.Cut(s, ".")

	negative := strings.HasPrefix(whole, "-")
	digits := strings.TrimPrefix(whole, "-")
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return s
	}

	var out string
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		out = printer.Sprintf("%d", n)
	} else {
		out = groupDigits(digits)
	}

	if negative {
		out = "-" + out
	}
	if hasFrac {
		out += "." + frac
	}
	return out
}

func groupDigits(digits string) string {
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
