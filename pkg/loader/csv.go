package loader

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/catqa/catqa/internal/model"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// candidate delimiters tried during detection, in preference order.
var csvDelimiters = []rune{',', ';', '\t', '|'}

// CSVLoader reads delimiter-separated text files.
type CSVLoader struct {
	opts Options
}

// Load reads the file into a dataset. The first record is the header.
// Empty fields and common NA markers become null cells.
func (l *CSVLoader) Load(ctx context.Context, path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, qaerrors.FileNotFound(path)
	}
	defer f.Close()

	var src io.Reader = f
	var bar *progressbar.ProgressBar
	if l.opts.ShowProgress {
		if info, err := f.Stat(); err == nil {
			bar = progressbar.DefaultBytes(info.Size(), "reading "+path)
			src = io.TeeReader(f, bar)
		}
	}

	delim := l.opts.Delimiter
	if delim == 0 {
		delim, err = detectDelimiter(f)
		if err != nil {
			return nil, err
		}
	}

	r := csv.NewReader(src)
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, qaerrors.Wrap(err, qaerrors.CodeInvalidFormat, "failed to read CSV header").
			WithContext("path", path)
	}

	ds := model.NewDataset(header)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, qaerrors.Wrap(err, qaerrors.CodeParseFailed, "failed to parse CSV record").
				WithContext("path", path)
		}

		cells := make([]model.Cell, len(record))
		for i, field := range record {
			cells[i] = toCell(field)
		}
		ds.AddRow(cells)
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return ds, nil
}

// detectDelimiter samples the first line and picks the candidate with the
// most occurrences outside quoted regions. The file offset is restored.
func detectDelimiter(f *os.File) (rune, error) {
	buf := make([]byte, 8192)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return 0, qaerrors.Wrap(err, qaerrors.CodeInvalidFormat, "failed to sample file for delimiter detection")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, qaerrors.Wrap(err, qaerrors.CodeInvalidFormat, "failed to rewind after delimiter detection")
	}

	line := buf[:n]
	for i, b := range line {
		if b == '\n' {
			line = line[:i]
			break
		}
	}

	counts := make(map[rune]int, len(csvDelimiters))
	inQuotes := false
	for _, b := range line {
		if b == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		for _, d := range csvDelimiters {
			if rune(b) == d {
				counts[d]++
			}
		}
	}

	best := ','
	bestCount := 0
	for _, d := range csvDelimiters {
		if counts[d] > bestCount {
			best = d
			bestCount = counts[d]
		}
	}
	return best, nil
}
