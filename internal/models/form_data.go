package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FormData is the open field mapping of a submission. Keys are field names,
// values are numbers, strings or date strings depending on the form schema.
// It round-trips a JSONB column unchanged, so values decoded from the
// database may arrive as float64, json.Number or string.
type FormData map[string]any

// Number returns the numeric value of a field. Numeric strings are accepted
// because upstream form capture is not strict about types.
func (f FormData) Number(field string) (float64, bool) {
	v, ok := f[field]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// Str returns the string value of a field.
func (f FormData) Str(field string) (string, bool) {
	v, ok := f[field]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// NumericFields returns every field holding a numeric value, under the same
// lenient reading as Number: a field the rule engine treats as a number also
// counts in statistics and totals, whatever its wire type.
func (f FormData) NumericFields() map[string]float64 {
	out := make(map[string]float64, len(f))
	for field := range f {
		if n, ok := f.Number(field); ok {
			out[field] = n
		}
	}
	return out
}

// TotalIncome sums all numeric income_* fields.
func (f FormData) TotalIncome() float64 {
	return f.sumPrefix(incomePrefix)
}

// TotalExpenses sums all numeric expense_* fields.
func (f FormData) TotalExpenses() float64 {
	return f.sumPrefix(expensePrefix)
}

func (f FormData) sumPrefix(prefix string) float64 {
	var total float64
	for field, value := range f.NumericFields() {
		if strings.HasPrefix(field, prefix) {
			total += value
		}
	}
	return total
}

// Clone returns a shallow copy. Enough for the engine's use: values are
// scalars, never nested structures.
func (f FormData) Clone() FormData {
	out := make(FormData, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Field-name conventions shared by the rule engine, the auto-fix engine and
// the anomaly detector.
const (
	incomePrefix  = "income_"
	expensePrefix = "expense_"
)

var lossMarkers = []string{"loss", "deficit", "verlust"}

var dateMarkers = []string{"date", "datum"}

// IsIncomeField reports whether a field name denotes an income amount.
func IsIncomeField(field string) bool {
	return strings.HasPrefix(field, incomePrefix)
}

// IsExpenseField reports whether a field name denotes an expense amount.
func IsExpenseField(field string) bool {
	return strings.HasPrefix(field, expensePrefix)
}

// IsLossField reports whether a field name semantically denotes a loss or
// deficit, i.e. a field where a negative value is legitimate.
func IsLossField(field string) bool {
	lower := strings.ToLower(field)
	for _, marker := range lossMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// IsDateField reports whether a field name denotes a date.
func IsDateField(field string) bool {
	lower := strings.ToLower(field)
	for _, marker := range dateMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
