// Package dataset turns extracted records into the raw tabular artifact and
// reads it back. The assembler is a pure shape transform: no validation
// happens here, so the raw CSV stays a faithful capture of what was scraped.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"robovac/internal/model"
)

// FixedColumns lead every raw artifact, before the union of attribute labels.
var FixedColumns = []string{
	"source_id",
	"source_url",
	"product_name",
	"price_raw",
	"rating",
	"rating_count",
	"fetch_status",
}

// Table is a rectangular dataset: ordered columns, one row per record,
// empty string for absent cells.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// Assemble builds the raw table from extracted records. The column set is
// the fixed columns plus the union of attribute labels across all records,
// in first-seen record order. Map keys within a single record are added in
// sorted order so assembly is deterministic.
func Assemble(records []model.RawProduct) *Table {
	columns := append([]string(nil), FixedColumns...)
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}

	for _, rec := range records {
		keys := make([]string, 0, len(rec.Attributes))
		for k := range rec.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}

	t := &Table{Columns: columns}
	t.buildIndex()

	for _, rec := range records {
		row := make([]string, len(columns))
		row[t.index["source_id"]] = rec.SourceID
		row[t.index["source_url"]] = rec.SourceURL
		row[t.index["product_name"]] = rec.Name
		row[t.index["price_raw"]] = rec.PriceRaw
		if rec.Rating != nil {
			row[t.index["rating"]] = strconv.FormatFloat(*rec.Rating, 'f', -1, 64)
		}
		if rec.RatingCount != nil {
			row[t.index["rating_count"]] = strconv.Itoa(*rec.RatingCount)
		}
		row[t.index["fetch_status"]] = string(rec.Status)
		for k, v := range rec.Attributes {
			row[t.index[k]] = v
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c] = i
	}
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	if t.index == nil {
		t.buildIndex()
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Cell returns the value at (row, column name), or "" when the column does
// not exist.
func (t *Table) Cell(row int, column string) string {
	i := t.ColumnIndex(column)
	if i < 0 {
		return ""
	}
	return t.Rows[row][i]
}

func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty dataset: no header row")
	}
	t := &Table{Columns: rows[0], Rows: rows[1:]}
	t.buildIndex()
	return t, nil
}

func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}
