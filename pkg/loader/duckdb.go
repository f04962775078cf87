package loader

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/catqa/catqa/internal/model"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// DuckDBLoader reads Parquet files and DuckDB database tables through an
// embedded DuckDB engine.
type DuckDBLoader struct {
	opts Options
}

// Load queries the source into a dataset. Parquet files are scanned with
// read_parquet against an in-memory database; .duckdb/.db files require
// Options.Table to name the table to read.
func (l *DuckDBLoader) Load(ctx context.Context, path string) (*model.Dataset, error) {
	var dsn, query string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		dsn = ""
		query = fmt.Sprintf("SELECT * FROM read_parquet('%s')", strings.ReplaceAll(path, "'", "''"))
	default:
		if l.opts.Table == "" {
			return nil, qaerrors.Configuration("a table name is required to read a DuckDB database").
				WithContext("path", path)
		}
		dsn = path
		query = fmt.Sprintf("SELECT * FROM %q", l.opts.Table)
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, qaerrors.Wrap(err, qaerrors.CodeInvalidFormat, "failed to open duckdb").
			WithContext("path", path)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, qaerrors.Wrap(err, qaerrors.CodeInvalidFormat, "failed to query source").
			WithContext("path", path)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, qaerrors.Wrap(err, qaerrors.CodeParseFailed, "failed to read result columns").
			WithContext("path", path)
	}

	ds := model.NewDataset(columns)
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, qaerrors.Wrap(err, qaerrors.CodeParseFailed, "failed to scan row").
				WithContext("path", path)
		}
		cells := make([]model.Cell, len(columns))
		for i, v := range values {
			cells[i] = sqlCell(v)
		}
		ds.AddRow(cells)
	}
	if err := rows.Err(); err != nil {
		return nil, qaerrors.Wrap(err, qaerrors.CodeParseFailed, "row iteration failed").
			WithContext("path", path)
	}

	return ds, nil
}

// sqlCell converts a scanned database value to a cell. SQL NULL maps to a
// null cell, everything else is rendered as text.
func sqlCell(v any) model.Cell {
	switch x := v.(type) {
	case nil:
		return model.NullCell
	case string:
		return model.StringCell(x)
	case []byte:
		return model.StringCell(string(x))
	case float64:
		return model.StringCell(formatFloat(x))
	case float32:
		return model.StringCell(formatFloat(float64(x)))
	default:
		return model.StringCell(fmt.Sprint(x))
	}
}

// formatFloat renders integral floats without a fractional part so code
// columns stored as numbers keep their catalog spelling.
func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
