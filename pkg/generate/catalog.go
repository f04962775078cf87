// Package generate produces synthetic product catalogs with controllable
// quality defects, for demos and tests.
package generate

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/catqa/catqa/internal/model"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

var (
	categories = []string{"Electronics", "Automotive", "Industrial", "Consumer", "Medical", "Aerospace"}
	materials  = []string{"Steel", "Aluminum", "Plastic", "Composite", "Titanium", "Copper"}
	statuses   = []string{"Active", "Active", "Active", "Discontinued", "Pending"}
	adjectives = []string{"Heavy-Duty", "Precision", "Standard", "Premium", "Industrial", "Commercial"}
	nouns      = []string{"Widget", "Component", "Assembly", "Module", "Part", "Unit", "Device"}
)

// Options control the shape and defect profile of a generated catalog.
type Options struct {
	Rows        int
	Seed        int64
	CodeColumns int

	// MissingRate is the per-cell null probability for optional fields.
	MissingRate float64
	// ShortRate is the fraction of descriptions truncated below a useful length.
	ShortRate float64
	// DuplicateRate is the fraction of rows that copy an earlier description.
	DuplicateRate float64
}

// DefaultOptions mirrors the defect profile of a typical raw catalog export.
func DefaultOptions() Options {
	return Options{
		Rows:          1000,
		Seed:          42,
		CodeColumns:   3,
		MissingRate:   0.15,
		ShortRate:     0.05,
		DuplicateRate: 0.05,
	}
}

// Catalog generates a deterministic synthetic catalog. The same options
// always produce the same dataset.
func Catalog(opts Options) (*model.Dataset, error) {
	if opts.Rows < 1 {
		return nil, qaerrors.Configuration("row count must be positive")
	}
	if opts.CodeColumns < 1 {
		return nil, qaerrors.Configuration("at least one code column is required")
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	faker := gofakeit.New(opts.Seed)

	columns := []string{
		"product_id", "description", "category", "brand", "material",
		"color", "manufacturer", "status", "country_of_origin",
		"weight_kg", "price_usd", "stock_quantity",
	}
	for i := 1; i <= opts.CodeColumns; i++ {
		columns = append(columns, fmt.Sprintf("code_%d", i))
	}

	ds := model.NewDataset(columns)
	descriptions := make([]string, 0, opts.Rows)

	for i := 0; i < opts.Rows; i++ {
		category := pick(rng, categories)
		material := pick(rng, materials)
		brand := faker.Company()
		name := fmt.Sprintf("%s %s %s %04d", category, pick(rng, adjectives), pick(rng, nouns), i)

		desc := describe(rng, name, category, brand, material)
		switch {
		case rng.Float64() < opts.ShortRate:
			desc = truncate(name, 15)
		case rng.Float64() < opts.DuplicateRate && len(descriptions) > 0:
			desc = descriptions[rng.Intn(len(descriptions))]
		}
		descriptions = append(descriptions, desc)

		row := []model.Cell{
			model.StringCell(fmt.Sprintf("P%06d", i)),
			model.StringCell(desc),
			model.StringCell(category),
			model.StringCell(brand),
			optional(rng, opts.MissingRate, material),
			optional(rng, opts.MissingRate, faker.Color()),
			optional(rng, opts.MissingRate, faker.Company()),
			model.StringCell(pick(rng, statuses)),
			optional(rng, opts.MissingRate, faker.Country()),
			optional(rng, opts.MissingRate, fmt.Sprintf("%.2f", 0.1+rng.Float64()*99.9)),
			optional(rng, opts.MissingRate, fmt.Sprintf("%.2f", 10+rng.Float64()*4990)),
			optional(rng, opts.MissingRate, fmt.Sprintf("%d", rng.Intn(1000))),
		}
		for c := 1; c <= opts.CodeColumns; c++ {
			row = append(row, model.StringCell(code(rng, category, c)))
		}
		ds.AddRow(row)
	}

	return ds, nil
}

// WriteCSV serializes a dataset to CSV, rendering null cells as empty fields.
func WriteCSV(w io.Writer, ds *model.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns()); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to write CSV header")
	}
	record := make([]string, ds.NumColumns())
	for r := 0; r < ds.NumRows(); r++ {
		for c := range record {
			cell := ds.Cell(r, c)
			if cell.Null {
				record[c] = ""
			} else {
				record[c] = cell.Raw
			}
		}
		if err := cw.Write(record); err != nil {
			return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to write CSV record")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return qaerrors.Wrap(err, qaerrors.CodeExportFailed, "failed to flush CSV")
	}
	return nil
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func optional(rng *rand.Rand, missingRate float64, value string) model.Cell {
	if rng.Float64() < missingRate {
		return model.NullCell
	}
	return model.StringCell(value)
}

func describe(rng *rand.Rand, name, category, brand, material string) string {
	templates := []string{
		"%[1]s manufactured by %[3]s, made from high-quality %[4]s. Suitable for %[2]s applications.",
		"Professional-grade %[1]s featuring %[4]s construction. %[3]s quality guaranteed.",
		"%[2]s product: %[1]s. Constructed from durable %[4]s. %[3]s certified.",
		"High-performance %[1]s designed for demanding %[2]s environments. %[4]s composition.",
	}
	t := pick(rng, templates)
	return fmt.Sprintf(t, name, strings.ToLower(category), brand, strings.ToLower(material))
}

// code builds a classification code keyed to the category so code columns
// correlate with the rest of the row.
func code(rng *rand.Rand, category string, column int) string {
	prefix := strings.ToUpper(category[:2])
	switch column {
	case 1:
		return fmt.Sprintf("%s%d", prefix, 100+rng.Intn(900))
	case 2:
		return fmt.Sprintf("%c%d", prefix[0], 10+rng.Intn(90))
	default:
		return fmt.Sprintf("M%d", 1+rng.Intn(20))
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
