package table

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Coercion is total by design: malformed values are excluded, never raised.
// The engine's documented minimum-count thresholds apply after this filtering.

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	usDatePattern  = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	euDatePattern  = regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`)
)

// dateLayouts are tried in order for generic date parsing. Fixed list, no
// locale inference.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
	time.RFC1123,
	"Jan 2, 2006",
}

// IsMissing reports whether a cell value counts as null: nil, empty string,
// or whitespace-only string.
func IsMissing(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// String renders a cell value in its canonical string form.
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

// Number coerces a cell value to a finite float64.
func Number(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, !math.IsNaN(val) && !math.IsInf(val, 0)
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Bool coerces a cell value to a boolean. Accepted string forms mirror the
// boolean type-inference vocabulary.
func Bool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
		return false, false
	case float64:
		if val == 1 {
			return true, true
		}
		if val == 0 {
			return false, true
		}
		return false, false
	case int:
		if val == 1 {
			return true, true
		}
		if val == 0 {
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

// Time coerces a cell value to a timestamp via the fixed layout list.
func Time(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// LooksLikeDate reports whether a string form matches one of the recognized
// date shapes (ISO prefix, MM/DD/YYYY, DD-MM-YYYY) or parses generically.
func LooksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if isoDatePattern.MatchString(s) || usDatePattern.MatchString(s) || euDatePattern.MatchString(s) {
		return true
	}
	_, ok := Time(s)
	return ok
}

// NumericColumn extracts the values of a column that coerce to numbers,
// silently excluding the rest.
func NumericColumn(d Dataset, name string) []float64 {
	series := make([]float64, 0, len(d))
	for _, row := range d {
		if IsMissing(row[name]) {
			continue
		}
		if f, ok := Number(row[name]); ok {
			series = append(series, f)
		}
	}
	return series
}

// NumericColumnIndexed extracts numeric values alongside their source row
// indices, for analyzers that report row positions.
func NumericColumnIndexed(d Dataset, name string) ([]float64, []int) {
	series := make([]float64, 0, len(d))
	indices := make([]int, 0, len(d))
	for i, row := range d {
		if IsMissing(row[name]) {
			continue
		}
		if f, ok := Number(row[name]); ok {
			series = append(series, f)
			indices = append(indices, i)
		}
	}
	return series, indices
}

// StringColumn extracts the non-null values of a column in string form.
func StringColumn(d Dataset, name string) []string {
	values := make([]string, 0, len(d))
	for _, row := range d {
		if IsMissing(row[name]) {
			continue
		}
		values = append(values, String(row[name]))
	}
	return values
}
