// Package export renders analysis results as JSON, CSV and XLSX files.
package export

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/catqa/catqa/pkg/analyze"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// Format identifies an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", qaerrors.New(qaerrors.CodeExportFailed, "unknown export format").
			WithContext("format", s)
	}
}

// FormatForPath infers the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatJSON
	}
}

// Write encodes the result to w in the given format.
func Write(w io.Writer, result *analyze.Result, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, result)
	case FormatCSV:
		return WriteCSV(w, result)
	case FormatXLSX:
		return WriteXLSX(w, result)
	default:
		return qaerrors.New(qaerrors.CodeExportFailed, "unknown export format").
			WithContext("format", string(format))
	}
}

// WriteFile encodes the result to a file, inferring the format from the
// extension.
func WriteFile(path string, result *analyze.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to create output file").
			WithContext("path", path)
	}
	defer f.Close()

	if err := Write(f, result, FormatForPath(path)); err != nil {
		return err
	}
	return f.Close()
}
