package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/catqa/catqa/pkg/analyze"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

func sampleResult() *analyze.Result {
	return &analyze.Result{
		DatasetInfo: analyze.DatasetInfo{
			TotalRows:         100,
			TotalColumns:      4,
			ProductIDColumn:   "product_id",
			DescriptionColumn: "description",
			CodeColumns:       []string{"category"},
		},
		Completeness: &analyze.CompletenessReport{
			TotalRows: 100,
			ColumnCompleteness: []analyze.ColumnCompleteness{
				{Column: "product_id", NonNullCount: 100, NonEmptyCount: 100, CompletenessPct: 100, MissingCount: 0},
				{Column: "description", NonNullCount: 90, NonEmptyCount: 88, CompletenessPct: 88, MissingCount: 12},
			},
			RowCompleteness: analyze.RowCompleteness{AllCodesPresent: 95, NoCodesPresent: 5, AvgCodesPerRow: 0.95},
			OverallScore:    94,
		},
		DescriptionQuality: &analyze.DescriptionReport{
			ValidDescriptions: 90,
			LengthStats:       analyze.LengthStats{Mean: 42.5, Median: 40, Min: 5, Max: 120, Std: 12.3},
			Vocabulary:        analyze.VocabularyStats{UniqueWords: 300, TotalWords: 900, VocabularyRichness: 0.3333},
			QualityFlags:      analyze.QualityFlags{TooShort: 9, TooShortPct: 10},
			Duplicates: analyze.DuplicateReport{
				DuplicateCount:     1,
				TotalDuplicateRows: 2,
				TopDuplicates:      []analyze.TextCount{{Text: "widget", Count: 3}},
			},
			OverallScore: 88,
		},
		CodeDistribution: &analyze.DistributionReport{
			CodeColumns: []analyze.CodeColumnDistribution{
				{Column: "category", UniqueCodes: 6, DistributionEntropy: 2.4, TopCodeConcentration: 30, MostCommon: []analyze.CodeCount{{Code: "EL", Count: 30}}},
			},
			OverallScore: 48,
		},
		ClassifierReadiness: &analyze.ReadinessReport{
			PerCodeColumn: []analyze.ColumnReadiness{
				{Column: "category", Status: "ok", UniqueClasses: 6, ClassesWithSufficientData: 5, ReadyForTraining: true, RecommendedTrainTestSplit: "80/20 split (recommended)"},
			},
			TrainingViability: analyze.TrainingViability{ColumnsReady: 1, ReadinessPct: 100},
			OverallScore:      100,
		},
		Overall: analyze.OverallScore{
			Score:        82.4,
			QualityLevel: "good",
			ComponentScores: map[string]float64{
				analyze.ComponentCompleteness:        94,
				analyze.ComponentDescriptionQuality:  88,
				analyze.ComponentCodeDistribution:    48,
				analyze.ComponentClassifierReadiness: 100,
			},
		},
		CriticalIssues: []string{"10.0% of descriptions are too short"},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, key := range []string{
		"dataset_info", "completeness", "description_quality",
		"code_distribution", "classifier_readiness", "overall", "critical_issues",
	} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("JSON output should be indented")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if got := records[0]; got[0] != "section" || got[1] != "metric" || got[2] != "value" {
		t.Errorf("header = %v", got)
	}

	find := func(section, metric string) string {
		for _, rec := range records[1:] {
			if rec[0] == section && rec[1] == metric {
				return rec[2]
			}
		}
		t.Fatalf("no record for %s/%s", section, metric)
		return ""
	}

	if v := find("overall", "overall_score"); v != "82.4" {
		t.Errorf("overall score = %q", v)
	}
	if v := find("completeness", "description.completeness_pct"); v != "88" {
		t.Errorf("per-column completeness = %q", v)
	}
	if v := find("classifier_readiness", "category.ready_for_training"); v != "true" {
		t.Errorf("readiness flag = %q", v)
	}
	if v := find("overall", "critical_issue"); !strings.Contains(v, "too short") {
		t.Errorf("critical issue = %q", v)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("output is not a valid workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{sheetOverview, sheetCompleteness, sheetDescriptions, sheetDistribution, sheetReadiness}
	for _, name := range want {
		found := false
		for _, s := range sheets {
			if s == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing sheet %q in %v", name, sheets)
		}
	}

	v, err := f.GetCellValue(sheetOverview, "B2")
	if err != nil {
		t.Fatal(err)
	}
	if v != "82.4" {
		t.Errorf("overview B2 = %q, want overall score", v)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{"excel", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if !qaerrors.IsCode(err, qaerrors.CodeExportFailed) {
				t.Errorf("ParseFormat(%q): expected CodeExportFailed, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	if got := FormatForPath("report.csv"); got != FormatCSV {
		t.Errorf("csv path = %v", got)
	}
	if got := FormatForPath("report.xlsx"); got != FormatXLSX {
		t.Errorf("xlsx path = %v", got)
	}
	if got := FormatForPath("report.json"); got != FormatJSON {
		t.Errorf("json path = %v", got)
	}
	if got := FormatForPath("report"); got != FormatJSON {
		t.Errorf("bare path = %v, want JSON default", got)
	}
}
