package fields

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cast"
)

// Placeholder is rendered for nil values regardless of the requested format.
const Placeholder = "—"

// FormatKind selects how [Format] renders a value.
type FormatKind string

const (
	// FormatNone renders the literal string form of the value.
	FormatNone FormatKind = ""

	// FormatCurrency renders US dollars with two fraction digits: "$1,234.50".
	FormatCurrency FormatKind = "currency"

	// FormatPercentage renders two fraction digits with an explicit sign: "+3.20%".
	FormatPercentage FormatKind = "percentage"

	// FormatNumber renders grouped digits with at most two fraction digits: "1,234.5".
	FormatNumber FormatKind = "number"

	// FormatDate renders a calendar date: "1/15/2024".
	FormatDate FormatKind = "date"
)

// Valid reports whether k is a known format kind (including [FormatNone]).
func (k FormatKind) Valid() bool {
	switch k {
	case FormatNone, FormatCurrency, FormatPercentage, FormatNumber, FormatDate:
		return true
	default:
		return false
	}
}

// dateLayout renders dates in US month/day/year order.
const dateLayout = "1/2/2006"

// Format renders value for display. It never fails: nil renders as
// [Placeholder], and values that cannot be interpreted as the requested kind
// (e.g. "n/a" as currency, "soon" as a date) render as their literal string
// form.
//
// Numeric kinds accept numbers and strings with a leading number, so
// decorated provider values such as "1.25%" format as 1.25.
func Format(value any, kind FormatKind) string {
	if value == nil {
		return Placeholder
	}

	switch kind {
	case FormatCurrency:
		f, ok := parseFloat(value)
		if !ok || math.IsInf(f, 0) {
			return Stringify(value)
		}
		s := "$" + currencyDigits(math.Abs(f))
		if f < 0 {
			s = "-" + s
		}
		return s

	case FormatPercentage:
		f, ok := parseFloat(value)
		if !ok {
			return Stringify(value)
		}
		if f == 0 {
			f = 0 // drop negative zero
		}
		sign := ""
		if f >= 0 {
			sign = "+"
		}
		return sign + strconv.FormatFloat(f, 'f', 2, 64) + "%"

	case FormatNumber:
		f, ok := parseFloat(value)
		if !ok {
			return Stringify(value)
		}
		return humanize.Commaf(math.Round(f*100) / 100)

	case FormatDate:
		t, ok := parseDate(value)
		if !ok {
			return Stringify(value)
		}
		return t.Format(dateLayout)

	default:
		return Stringify(value)
	}
}

// currencyDigits groups a non-negative amount with two decimals.
// humanize.FormatFloat goes through int64, so amounts beyond its range
// take the float path; they carry no fraction anyway.
func currencyDigits(f float64) string {
	if f >= math.MaxInt64 {
		return humanize.Commaf(math.Round(f)) + ".00"
	}
	return humanize.FormatFloat("#,###.##", f)
}

// leadingNumber matches the numeric prefix of a string, mirroring how
// browsers parse "12.5%" or "  -3e2 units".
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseFloat converts a decoded JSON value to a float. Strings are parsed by
// their leading numeric prefix.
func parseFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, !math.IsNaN(v)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(v)
		m := leadingNumber.FindString(s)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// parseDate interprets numbers as Unix milliseconds and strings through the
// layouts understood by cast.
func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		t, err := cast.ToTimeE(strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case bool:
		return time.Time{}, false
	default:
		f, ok := parseFloat(v)
		if !ok || math.IsInf(f, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(f)).UTC(), true
	}
}
