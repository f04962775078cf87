package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	qaerrors "github.com/catqa/catqa/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "catalog.csv",
		"product_id,description,category\n"+
			"P001,Steel bolt M8,FAST\n"+
			"P002,,TOOL\n"+
			"P003,NaN,\n")

	ds, err := Load(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := ds.Columns(); len(got) != 3 || got[0] != "product_id" {
		t.Errorf("columns = %v", got)
	}
	if ds.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", ds.NumRows())
	}
	if c := ds.Cell(0, 1); c.Null || c.Raw != "Steel bolt M8" {
		t.Errorf("cell(0,1) = %+v", c)
	}
	// Empty fields and NA markers become null cells.
	if c := ds.Cell(1, 1); !c.Null {
		t.Errorf("empty field should be null, got %+v", c)
	}
	if c := ds.Cell(2, 1); !c.Null {
		t.Errorf("NaN marker should be null, got %+v", c)
	}
	if c := ds.Cell(2, 2); !c.Null {
		t.Errorf("trailing empty field should be null, got %+v", c)
	}
}

func TestLoadCSVDetectsSemicolon(t *testing.T) {
	path := writeFile(t, "catalog.csv",
		"product_id;description\nP001;Kugellager 6204\n")

	ds, err := Load(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ds.NumColumns() != 2 {
		t.Fatalf("columns = %v, want 2 after delimiter detection", ds.Columns())
	}
	if c := ds.Cell(0, 1); c.Raw != "Kugellager 6204" {
		t.Errorf("cell(0,1) = %+v", c)
	}
}

func TestLoadCSVQuotedFields(t *testing.T) {
	path := writeFile(t, "catalog.csv",
		"product_id,description\n"+
			"P001,\"Bolt, hex head, \"\"heavy\"\" grade\"\n")

	ds, err := Load(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := `Bolt, hex head, "heavy" grade`
	if c := ds.Cell(0, 1); c.Raw != want {
		t.Errorf("cell(0,1) = %q, want %q", c.Raw, want)
	}
}

func TestLoadTSV(t *testing.T) {
	path := writeFile(t, "catalog.tsv",
		"product_id\tdescription\nP001\tWrench 12mm\n")

	ds, err := Load(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ds.NumColumns() != 2 || ds.Cell(0, 1).Raw != "Wrench 12mm" {
		t.Errorf("unexpected dataset: columns=%v", ds.Columns())
	}
}

func TestLoadShortRowsPadded(t *testing.T) {
	path := writeFile(t, "catalog.csv",
		"a,b,c\n1,2,3\n4,5\n")

	ds, err := Load(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ds.Cell(1, 2).Null {
		t.Errorf("missing trailing field should be null, got %+v", ds.Cell(1, 2))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/catalog.csv", Options{})
	if !qaerrors.IsCode(err, qaerrors.CodeFileNotFound) {
		t.Errorf("expected CodeFileNotFound, got %v", err)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "catalog.json", "{}")
	_, err := Load(context.Background(), path, Options{})
	if !qaerrors.IsCode(err, qaerrors.CodeInvalidFormat) {
		t.Errorf("expected CodeInvalidFormat, got %v", err)
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"product_id", "description", "category"},
		{"P001", "Steel bolt M8", "FAST"},
		{"P002", nil, "TOOL"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	ds, err := Load(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ds.NumRows() != 2 || ds.NumColumns() != 3 {
		t.Fatalf("got %dx%d, want 2x3", ds.NumRows(), ds.NumColumns())
	}
	if c := ds.Cell(0, 1); c.Raw != "Steel bolt M8" {
		t.Errorf("cell(0,1) = %+v", c)
	}
	if c := ds.Cell(1, 1); !c.Null {
		t.Errorf("empty xlsx cell should be null, got %+v", c)
	}
}

func TestDuckDBRequiresTable(t *testing.T) {
	path := writeFile(t, "catalog.db", "")
	_, err := Load(context.Background(), path, Options{})
	if !qaerrors.IsCode(err, qaerrors.CodeConfiguration) {
		t.Errorf("expected CodeConfiguration, got %v", err)
	}
}

func TestForFilePicksLoaderByExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"data.csv", "*loader.CSVLoader"},
		{"data.XLSX", "*loader.XLSXLoader"},
		{"data.parquet", "*loader.DuckDBLoader"},
	}
	for _, tt := range tests {
		l, err := ForFile(tt.path, Options{})
		if err != nil {
			t.Errorf("ForFile(%q) failed: %v", tt.path, err)
			continue
		}
		if got := fmt.Sprintf("%T", l); got != tt.want {
			t.Errorf("ForFile(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}
