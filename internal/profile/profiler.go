// Package profile builds structural profiles of datasets: per-column type,
// null and cardinality counts, and type-conditional summary statistics.
// Profiles are computed fresh on every call and never mutated afterwards.
package profile

import (
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"tablens/domain/table"
	"tablens/internal/numkit"
)

// DefaultNullThreshold is the null-ratio cutoff for flagging a column as
// quality-suspect.
const DefaultNullThreshold = 0.1

// topValueCount fixes the size of the per-column frequency list.
const topValueCount = 5

// ValueCount is a value's frequency within a column.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NumericStats holds the summary fields of a numeric column.
type NumericStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Mode   float64 `json:"mode"`
	StdDev float64 `json:"std_dev"`
}

// DatetimeStats holds the range of a datetime column.
type DatetimeStats struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// ColumnProfile is the structural profile of a single column.
type ColumnProfile struct {
	Name        string           `json:"name"`
	Type        table.ColumnType `json:"type"`
	NullCount   int              `json:"null_count"`
	TotalCount  int              `json:"total_count"`
	UniqueCount int              `json:"unique_count"`
	Numeric     *NumericStats    `json:"numeric,omitempty"`
	Datetime    *DatetimeStats   `json:"datetime,omitempty"`
	Mode        string           `json:"mode,omitempty"`
	TopValues   []ValueCount     `json:"top_values"`
}

// NullRatio returns the fraction of null cells in the column.
func (c ColumnProfile) NullRatio() float64 {
	if c.TotalCount == 0 {
		return 0
	}
	return float64(c.NullCount) / float64(c.TotalCount)
}

// UniqueRatio returns the fraction of distinct values among all cells.
func (c ColumnProfile) UniqueRatio() float64 {
	if c.TotalCount == 0 {
		return 0
	}
	return float64(c.UniqueCount) / float64(c.TotalCount)
}

// DatasetProfile is the structural profile of a whole dataset.
type DatasetProfile struct {
	RowCount     int             `json:"row_count"`
	ColumnCount  int             `json:"column_count"`
	Columns      []ColumnProfile `json:"columns"`
	MemoryBytes  int             `json:"memory_bytes"`
	Completeness float64         `json:"completeness"`
}

// Column builds the profile of a single named column. Unknown columns
// profile as fully null text columns rather than failing.
func Column(ds table.Dataset, name string) ColumnProfile {
	values := ds.Column(name)
	prof := ColumnProfile{
		Name:       name,
		TotalCount: len(values),
		TopValues:  []ValueCount{},
	}

	nonNull := make([]any, 0, len(values))
	for _, v := range values {
		if table.IsMissing(v) {
			prof.NullCount++
			continue
		}
		nonNull = append(nonNull, v)
	}

	prof.Type = InferType(values)
	prof.UniqueCount = fullUniqueCount(values)
	prof.TopValues = topValues(nonNull)

	switch prof.Type {
	case table.TypeNumeric:
		series := table.NumericColumn(ds, name)
		if len(series) > 0 {
			mode, _ := numkit.Mode(series)
			prof.Numeric = &NumericStats{
				Min:    numkit.Min(series),
				Max:    numkit.Max(series),
				Mean:   numkit.Mean(series),
				Median: numkit.Median(series),
				Mode:   mode,
				StdDev: numkit.StdDev(series),
			}
		}
	case table.TypeDatetime:
		times := make([]time.Time, 0, len(nonNull))
		for _, v := range nonNull {
			if ts, ok := table.Time(v); ok {
				times = append(times, ts)
			}
		}
		if len(times) > 0 {
			sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
			prof.Datetime = &DatetimeStats{Min: times[0], Max: times[len(times)-1]}
		}
	case table.TypeCategorical, table.TypeText, table.TypeBoolean:
		if len(prof.TopValues) > 0 {
			prof.Mode = prof.TopValues[0].Value
		}
	}
	return prof
}

// Dataset profiles every column found in the first row. Columns are
// profiled concurrently into indexed slots, so output order and content
// stay deterministic. An empty dataset yields a zeroed profile.
func Dataset(ds table.Dataset) DatasetProfile {
	columns := ds.Columns()
	prof := DatasetProfile{
		RowCount:    len(ds),
		ColumnCount: len(columns),
		Columns:     make([]ColumnProfile, len(columns)),
		MemoryBytes: ds.ByteSize(),
	}
	if len(ds) == 0 || len(columns) == 0 {
		prof.Columns = []ColumnProfile{}
		return prof
	}

	var group errgroup.Group
	for i, name := range columns {
		group.Go(func() error {
			prof.Columns[i] = Column(ds, name)
			return nil
		})
	}
	_ = group.Wait()

	nullCells := 0
	for _, col := range prof.Columns {
		nullCells += col.NullCount
	}
	totalCells := len(ds) * len(columns)
	prof.Completeness = round2(float64(totalCells-nullCells) / float64(totalCells) * 100)
	return prof
}

// ColumnsByType filters the profiled columns by inferred type.
func (p DatasetProfile) ColumnsByType(t table.ColumnType) []ColumnProfile {
	var out []ColumnProfile
	for _, col := range p.Columns {
		if col.Type == t {
			out = append(out, col)
		}
	}
	return out
}

// NullHeavyColumns returns columns whose null ratio exceeds the threshold.
func (p DatasetProfile) NullHeavyColumns(threshold float64) []ColumnProfile {
	var out []ColumnProfile
	for _, col := range p.Columns {
		if col.NullRatio() > threshold {
			out = append(out, col)
		}
	}
	return out
}

// IdentifierCandidates returns columns that look like identifiers:
// uniqueness above 95% over more than 10 rows.
func (p DatasetProfile) IdentifierCandidates() []ColumnProfile {
	var out []ColumnProfile
	for _, col := range p.Columns {
		if col.TotalCount > 10 && col.UniqueRatio() > 0.95 {
			out = append(out, col)
		}
	}
	return out
}

// topValues counts string forms in encounter order and keeps the five most
// frequent; ties resolve to the value seen first.
func topValues(nonNull []any) []ValueCount {
	counts := map[string]int{}
	order := make([]string, 0, len(nonNull))
	for _, v := range nonNull {
		form := table.String(v)
		if _, seen := counts[form]; !seen {
			order = append(order, form)
		}
		counts[form]++
	}
	out := make([]ValueCount, 0, len(order))
	for _, form := range order {
		out = append(out, ValueCount{Value: form, Count: counts[form]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > topValueCount {
		out = out[:topValueCount]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
