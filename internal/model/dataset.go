// Package model defines core data structures for catqa.
package model

// Cell is a single value in a dataset. Null marks a value that was absent
// in the source (empty CSV field, missing XLSX cell, SQL NULL). An empty
// string that was explicitly present is kept as Raw == "" with Null == false.
type Cell struct {
	Raw  string
	Null bool
}

// NullCell is the canonical absent value.
var NullCell = Cell{Null: true}

// StringCell wraps a present string value.
func StringCell(s string) Cell {
	return Cell{Raw: s}
}

// Dataset is an immutable, ordered collection of rows over named columns.
// Loaders build it once; analyzers only read it.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// NewDataset creates a dataset with the given column order. Rows are appended
// with AddRow before the dataset is handed to analyzers.
func NewDataset(columns []string) *Dataset {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &Dataset{
		columns: columns,
		index:   index,
	}
}

// AddRow appends a row. Short rows are padded with null cells and long rows
// truncated so every stored row matches the column count.
func (d *Dataset) AddRow(cells []Cell) {
	row := make([]Cell, len(d.columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = NullCell
		}
	}
	d.rows = append(d.rows, row)
}

// Columns returns the column names in declaration order.
func (d *Dataset) Columns() []string {
	return d.columns
}

// NumRows returns the row count.
func (d *Dataset) NumRows() int {
	return len(d.rows)
}

// NumColumns returns the column count.
func (d *Dataset) NumColumns() int {
	return len(d.columns)
}

// HasColumn reports whether a column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (d *Dataset) ColumnIndex(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

// Cell returns the value at (row, column index).
func (d *Dataset) Cell(row, col int) Cell {
	return d.rows[row][col]
}

// Column returns all cells of a named column in row order.
// The column must exist; callers validate names up front.
func (d *Dataset) Column(name string) []Cell {
	idx := d.index[name]
	cells := make([]Cell, len(d.rows))
	for i, row := range d.rows {
		cells[i] = row[idx]
	}
	return cells
}
