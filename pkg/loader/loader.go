// Package loader reads catalog files into datasets. Supported formats are
// CSV (with delimiter detection), XLSX, and Parquet or DuckDB databases
// read through an embedded DuckDB engine.
package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/catqa/catqa/internal/model"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// Loader reads one tabular source into a dataset.
type Loader interface {
	Load(ctx context.Context, path string) (*model.Dataset, error)
}

// Options tune how a source is read. The zero value is usable.
type Options struct {
	// Delimiter forces a CSV field separator. Zero means detect from the
	// header line (comma, semicolon, tab or pipe).
	Delimiter rune

	// Sheet selects an XLSX worksheet by name. Empty means the first sheet.
	Sheet string

	// Table names the table to read from a DuckDB database file. Ignored
	// for Parquet files, which are read directly.
	Table string

	// ShowProgress renders a byte progress bar while reading CSV input.
	ShowProgress bool
}

// nullLiterals are raw values loaders map to a null cell, mirroring how
// catalog exports mark absent values.
var nullLiterals = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
}

func toCell(raw string) model.Cell {
	if nullLiterals[raw] {
		return model.NullCell
	}
	return model.StringCell(raw)
}

// ForFile picks a loader from the file extension.
func ForFile(path string, opts Options) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return &CSVLoader{opts: opts}, nil
	case ".xlsx", ".xlsm":
		return &XLSXLoader{opts: opts}, nil
	case ".parquet", ".duckdb", ".db":
		return &DuckDBLoader{opts: opts}, nil
	default:
		return nil, qaerrors.New(qaerrors.CodeInvalidFormat, "unsupported file format").
			WithContext("path", path).
			WithContext("supported", "csv, tsv, xlsx, parquet, duckdb")
	}
}

// Load detects the format and reads the file in one call.
func Load(ctx context.Context, path string, opts Options) (*model.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, qaerrors.FileNotFound(path)
	}
	l, err := ForFile(path, opts)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, path)
}
