package profile

import (
	"strings"
	"time"

	"tablens/domain/table"
)

// typeSampleSize caps how many non-empty values inform type inference.
const typeSampleSize = 100

var booleanForms = map[string]bool{
	"true": true, "false": true,
	"1": true, "0": true,
	"yes": true, "no": true,
}

// InferType classifies a column's semantic type from its raw values.
// Priority order: boolean beats numeric beats datetime beats categorical
// beats text. Every column gets a type; inference never fails.
func InferType(values []any) table.ColumnType {
	sample := make([]any, 0, typeSampleSize)
	for _, v := range values {
		if table.IsMissing(v) {
			continue
		}
		sample = append(sample, v)
		if len(sample) == typeSampleSize {
			break
		}
	}
	if len(sample) == 0 {
		return table.TypeText
	}

	if allBoolean(sample) {
		return table.TypeBoolean
	}

	numericCount := 0
	datetimeCount := 0
	uniqueForms := map[string]bool{}
	for _, v := range sample {
		if _, ok := table.Number(v); ok {
			numericCount++
		}
		if _, isTime := v.(time.Time); isTime || table.LooksLikeDate(table.String(v)) {
			datetimeCount++
		}
		uniqueForms[table.String(v)] = true
	}

	size := float64(len(sample))
	if float64(numericCount)/size >= 0.9 {
		return table.TypeNumeric
	}
	if float64(datetimeCount)/size >= 0.8 {
		return table.TypeDatetime
	}

	uniqueRatio := float64(len(uniqueForms)) / size
	if uniqueRatio < 0.5 || fullUniqueCount(values) <= 20 {
		return table.TypeCategorical
	}
	return table.TypeText
}

func allBoolean(sample []any) bool {
	for _, v := range sample {
		if !booleanForms[strings.ToLower(table.String(v))] {
			return false
		}
	}
	return true
}

// fullUniqueCount counts distinct string forms over all non-null values,
// not just the inference sample.
func fullUniqueCount(values []any) int {
	unique := map[string]bool{}
	for _, v := range values {
		if table.IsMissing(v) {
			continue
		}
		unique[table.String(v)] = true
	}
	return len(unique)
}
