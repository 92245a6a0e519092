// Package correlate scores pairwise associations: Pearson correlation for
// numeric columns, Cramér's V for categorical ones, and a combined ranked
// view across both.
package correlate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"tablens/domain/table"
	"tablens/internal/numkit"
	"tablens/internal/profile"
)

// Strength bands for association coefficients.
const (
	StrengthStrong   = "strong"
	StrengthModerate = "moderate"
	StrengthWeak     = "weak"
	StrengthNone     = "none"
)

// Pair kinds.
const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
)

const (
	strongBound         = 0.7
	moderateBound       = 0.4
	weakBound           = 0.2
	categoricalFloor    = 0.1
	multicollinearBound = 0.9
	maxCombinedPairs    = 15
)

// Pair is an association between two columns.
type Pair struct {
	ColumnA     string  `json:"column_a"`
	ColumnB     string  `json:"column_b"`
	Coefficient float64 `json:"coefficient"`
	Kind        string  `json:"kind"`
	Strength    string  `json:"strength"`
	PValue      float64 `json:"p_value,omitempty"`
}

// Matrix is a symmetric Pearson correlation matrix over the numeric
// columns, diagonal fixed at 1.
type Matrix struct {
	Columns []string                      `json:"columns"`
	Values  map[string]map[string]float64 `json:"values"`
}

// Result is the full correlation analysis of a dataset.
type Result struct {
	Matrix      Matrix `json:"matrix"`
	Pairs       []Pair `json:"pairs"`
	Explanation string `json:"explanation"`
}

// Strength bands a coefficient's absolute value.
func Strength(coefficient float64) string {
	abs := math.Abs(coefficient)
	switch {
	case abs >= strongBound:
		return StrengthStrong
	case abs >= moderateBound:
		return StrengthModerate
	case abs >= weakBound:
		return StrengthWeak
	default:
		return StrengthNone
	}
}

// Analyze computes the numeric matrix, the categorical pairs, and the
// combined ranked view with its explanation.
func Analyze(ds table.Dataset) Result {
	prof := profile.Dataset(ds)
	numericCols := columnNames(prof.ColumnsByType(table.TypeNumeric))
	categoricalCols := columnNames(prof.ColumnsByType(table.TypeCategorical))
	categoricalCols = append(categoricalCols, columnNames(prof.ColumnsByType(table.TypeBoolean))...)
	sort.Strings(categoricalCols)

	matrix, numericPairs := numericMatrix(ds, numericCols)
	pairs := append(numericPairs, categoricalPairs(ds, categoricalCols)...)

	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Coefficient) > math.Abs(pairs[j].Coefficient)
	})
	if len(pairs) > maxCombinedPairs {
		pairs = pairs[:maxCombinedPairs]
	}

	return Result{
		Matrix:      matrix,
		Pairs:       pairs,
		Explanation: explain(pairs),
	}
}

// numericMatrix computes each off-diagonal coefficient once and mirrors it.
func numericMatrix(ds table.Dataset, columns []string) (Matrix, []Pair) {
	matrix := Matrix{Columns: columns, Values: map[string]map[string]float64{}}
	for _, name := range columns {
		matrix.Values[name] = map[string]float64{name: 1}
	}

	series := make(map[string][]float64, len(columns))
	for _, name := range columns {
		series[name] = table.NumericColumn(ds, name)
	}

	var pairs []Pair
	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			a, b := columns[i], columns[j]
			r := numkit.PearsonCorrelation(series[a], series[b])
			matrix.Values[a][b] = r
			matrix.Values[b][a] = r

			n := len(series[a])
			if len(series[b]) < n {
				n = len(series[b])
			}
			pairs = append(pairs, Pair{
				ColumnA:     a,
				ColumnB:     b,
				Coefficient: r,
				Kind:        KindNumeric,
				Strength:    Strength(r),
				PValue:      numkit.CorrelationPValue(r, n),
			})
		}
	}
	return matrix, pairs
}

// categoricalPairs keeps Cramér's V associations above the floor.
func categoricalPairs(ds table.Dataset, columns []string) []Pair {
	var pairs []Pair
	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			a := table.StringColumn(ds, columns[i])
			b := table.StringColumn(ds, columns[j])
			v := numkit.CramersV(a, b)
			if v <= categoricalFloor {
				continue
			}
			pairs = append(pairs, Pair{
				ColumnA:     columns[i],
				ColumnB:     columns[j],
				Coefficient: v,
				Kind:        KindCategorical,
				Strength:    Strength(v),
			})
		}
	}
	return pairs
}

// FeatureCorrelations ranks every other column by its association with the
// target: Pearson when the target is numeric, Cramér's V otherwise. Pairs
// banded "none" are dropped and the list is capped at limit.
func FeatureCorrelations(ds table.Dataset, target string, limit int) []Pair {
	if len(ds) == 0 || !ds.HasColumn(target) {
		return []Pair{}
	}
	targetSeries := table.NumericColumn(ds, target)
	numericTarget := len(targetSeries) > 0

	pairs := []Pair{}
	for _, name := range ds.Columns() {
		if name == target {
			continue
		}
		var pair Pair
		if numericTarget {
			other := table.NumericColumn(ds, name)
			r := numkit.PearsonCorrelation(targetSeries, other)
			n := len(targetSeries)
			if len(other) < n {
				n = len(other)
			}
			pair = Pair{ColumnA: target, ColumnB: name, Coefficient: r, Kind: KindNumeric, Strength: Strength(r), PValue: numkit.CorrelationPValue(r, n)}
		} else {
			v := numkit.CramersV(table.StringColumn(ds, target), table.StringColumn(ds, name))
			pair = Pair{ColumnA: target, ColumnB: name, Coefficient: v, Kind: KindCategorical, Strength: Strength(v)}
		}
		if pair.Strength == StrengthNone {
			continue
		}
		pairs = append(pairs, pair)
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Coefficient) > math.Abs(pairs[j].Coefficient)
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

// explain counts strong pairs by kind, names the strongest relationship,
// and warns when coefficients approach collinearity.
func explain(pairs []Pair) string {
	if len(pairs) == 0 {
		return "no notable associations were found between columns"
	}

	strongNumeric, strongCategorical := 0, 0
	for _, p := range pairs {
		if p.Strength != StrengthStrong {
			continue
		}
		if p.Kind == KindNumeric {
			strongNumeric++
		} else {
			strongCategorical++
		}
	}

	parts := []string{fmt.Sprintf("%d strong numeric and %d strong categorical association(s)",
		strongNumeric, strongCategorical)}

	strongest := pairs[0]
	parts = append(parts, fmt.Sprintf("strongest relationship: %q and %q (%.2f)",
		strongest.ColumnA, strongest.ColumnB, strongest.Coefficient))

	for _, p := range pairs {
		if p.Kind == KindNumeric && math.Abs(p.Coefficient) > multicollinearBound {
			parts = append(parts, fmt.Sprintf("warning: %q and %q are nearly collinear (|r| > %.1f), consider dropping one",
				p.ColumnA, p.ColumnB, multicollinearBound))
			break
		}
	}
	return strings.Join(parts, "; ")
}

func columnNames(cols []profile.ColumnProfile) []string {
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names
}
