package table

import (
	"encoding/json"
	"sort"
)

// ColumnType is the inferred semantic type of a column.
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeDatetime    ColumnType = "datetime"
	TypeBoolean     ColumnType = "boolean"
	TypeText        ColumnType = "text"
)

// Row maps a column name to a loosely-typed scalar: number, string,
// boolean, date-like string, or nil when the cell is absent.
type Row map[string]any

// Dataset is an ordered sequence of rows. The column set is defined by the
// keys of the first row; later rows missing a key are read as null and keys
// not present in the first row are ignored.
type Dataset []Row

// Columns returns the column names of the dataset, taken from the first row
// and sorted for deterministic iteration order.
func (d Dataset) Columns() []string {
	if len(d) == 0 {
		return nil
	}
	names := make([]string, 0, len(d[0]))
	for name := range d[0] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Column extracts the raw values of a single column, one entry per row.
// Rows without the key yield nil.
func (d Dataset) Column(name string) []any {
	values := make([]any, len(d))
	for i, row := range d {
		values[i] = row[name]
	}
	return values
}

// HasColumn reports whether name is part of the dataset's column set.
func (d Dataset) HasColumn(name string) bool {
	if len(d) == 0 {
		return false
	}
	_, ok := d[0][name]
	return ok
}

// ByteSize estimates the in-memory footprint of the dataset as the byte
// length of its JSON encoding.
func (d Dataset) ByteSize() int {
	if len(d) == 0 {
		return 0
	}
	encoded, err := json.Marshal(d)
	if err != nil {
		return 0
	}
	return len(encoded)
}
