// Package ingest reads tabular files into datasets. CSV and XLSX are
// supported; the first row is the header and every cell arrives as a
// trimmed string, with empty cells read as null.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"tablens/domain/core"
	"tablens/domain/table"
	"tablens/internal/logging"
)

// Reader loads a tabular file into a dataset.
type Reader struct {
	maxRows int
	log     *logging.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxRows caps the number of data rows read; zero means no cap.
func WithMaxRows(n int) Option {
	return func(r *Reader) { r.maxRows = n }
}

// NewReader creates a file reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{log: logging.NewFromEnv("ingest")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFile loads the file at path, dispatching on its extension.
func (r *Reader) ReadFile(path string) (table.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return r.Read(filepath.Base(path), file)
}

// Read loads tabular data from src, dispatching on name's extension.
func (r *Reader) Read(name string, src io.Reader) (table.Dataset, error) {
	start := time.Now()

	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		rows, err = readCSV(src)
	case ".xlsx":
		rows, err = readXLSX(src)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, err
	}

	ds, err := r.assemble(rows)
	if err != nil {
		return nil, err
	}
	r.log.Info("read %s in %.2fms (%d rows, %d columns)",
		name, float64(time.Since(start).Nanoseconds())/1e6, len(ds), len(ds.Columns()))
	return ds, nil
}

func readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(src io.Reader) ([][]string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// assemble converts raw string rows into a dataset. The header row defines
// the column set; short rows read as null in the missing trailing columns
// and extra cells are dropped.
func (r *Reader) assemble(rows [][]string) (table.Dataset, error) {
	if len(rows) < 2 {
		return nil, core.ErrEmptyFile
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	limit := len(rows) - 1
	if r.maxRows > 0 && limit > r.maxRows {
		r.log.Warn("row cap reached, keeping first %d of %d rows", r.maxRows, limit)
		limit = r.maxRows
	}

	ds := make(table.Dataset, 0, limit)
	for _, raw := range rows[1 : limit+1] {
		row := make(table.Row, len(headers))
		for i, header := range headers {
			if i < len(raw) {
				if cell := strings.TrimSpace(raw[i]); cell != "" {
					row[header] = cell
					continue
				}
			}
			row[header] = nil
		}
		ds = append(ds, row)
	}
	return ds, nil
}
