package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/catqa/catqa/internal/model"
	qaerrors "github.com/catqa/catqa/pkg/errors"
)

// null marks an absent cell in test fixtures.
const null = "\x00"

func makeDataset(columns []string, rows [][]string) *model.Dataset {
	ds := model.NewDataset(columns)
	for _, row := range rows {
		cells := make([]model.Cell, len(row))
		for i, v := range row {
			if v == null {
				cells[i] = model.NullCell
			} else {
				cells[i] = model.StringCell(v)
			}
		}
		ds.AddRow(cells)
	}
	return ds
}

func testRoles() model.Roles {
	return model.Roles{
		ID:          "product_id",
		Description: "description",
		Codes:       []string{"code_1", "code_2"},
	}
}

// sampleCatalog builds a small but fully populated catalog fixture.
func sampleCatalog() *model.Dataset {
	columns := []string{"product_id", "description", "code_1", "code_2"}
	var rows [][]string
	for i := 0; i < 60; i++ {
		code := "A"
		if i%3 == 0 {
			code = "B"
		}
		rows = append(rows, []string{
			fmt.Sprintf("P%03d", i),
			fmt.Sprintf("industrial grade component number %03d with coating", i),
			code,
			"X",
		})
	}
	return makeDataset(columns, rows)
}

func TestAnalyzeEmptyDataset(t *testing.T) {
	ds := model.NewDataset([]string{"product_id", "description", "code_1"})

	_, err := New(DefaultParams()).Analyze(context.Background(), ds, model.Roles{
		ID: "product_id", Description: "description", Codes: []string{"code_1"},
	})
	if err == nil {
		t.Fatal("expected error for empty dataset")
	}
	if !qaerrors.IsCode(err, qaerrors.CodeEmptyDataset) {
		t.Errorf("expected CodeEmptyDataset, got %v", qaerrors.GetCode(err))
	}
}

func TestAnalyzeMissingColumn(t *testing.T) {
	ds := sampleCatalog()

	roles := testRoles()
	roles.Codes = []string{"code_1", "code_9"}

	result, err := New(DefaultParams()).Analyze(context.Background(), ds, roles)
	if err == nil {
		t.Fatal("expected error for missing column")
	}
	if !qaerrors.IsCode(err, qaerrors.CodeMissingColumn) {
		t.Errorf("expected CodeMissingColumn, got %v", qaerrors.GetCode(err))
	}
	if result != nil {
		t.Error("expected no partial result on fatal failure")
	}
}

func TestAnalyzeInvalidWeights(t *testing.T) {
	params := DefaultParams()
	params.Weights[ComponentCompleteness] = 0.5 // sum now 1.2

	_, err := New(params).Analyze(context.Background(), sampleCatalog(), testRoles())
	if !qaerrors.IsCode(err, qaerrors.CodeConfiguration) {
		t.Errorf("expected CodeConfiguration, got %v", err)
	}
}

func TestAnalyzeFullRun(t *testing.T) {
	result, err := New(DefaultParams()).Analyze(context.Background(), sampleCatalog(), testRoles())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Completeness == nil || result.DescriptionQuality == nil ||
		result.CodeDistribution == nil || result.ClassifierReadiness == nil {
		t.Fatal("expected all four analyzer reports to be present")
	}

	if result.DatasetInfo.TotalRows != 60 {
		t.Errorf("TotalRows = %d, want 60", result.DatasetInfo.TotalRows)
	}
	if result.DatasetInfo.TotalColumns != 4 {
		t.Errorf("TotalColumns = %d, want 4", result.DatasetInfo.TotalColumns)
	}

	// The weighted sum must recompute from the retained component scores.
	weights := DefaultParams().Weights
	want := 0.0
	for name, score := range result.Overall.ComponentScores {
		want += score * weights[name]
	}
	want = round2(want)
	if result.Overall.Score != want {
		t.Errorf("Overall.Score = %v, want weighted sum %v", result.Overall.Score, want)
	}
	if result.Overall.QualityLevel != QualityLevel(result.Overall.Score) {
		t.Errorf("QualityLevel inconsistent with score")
	}
}

func TestAnalyzeScoresWithinBounds(t *testing.T) {
	result, err := New(DefaultParams()).Analyze(context.Background(), sampleCatalog(), testRoles())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	scores := map[string]float64{
		"completeness":         result.Completeness.OverallScore,
		"description_quality":  result.DescriptionQuality.OverallScore,
		"code_distribution":    result.CodeDistribution.OverallScore,
		"classifier_readiness": result.ClassifierReadiness.OverallScore,
		"overall":              result.Overall.Score,
	}
	for name, score := range scores {
		if score < 0 || score > 100 {
			t.Errorf("%s score %v out of [0,100]", name, score)
		}
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	ds := sampleCatalog()
	roles := testRoles()
	analyzer := New(DefaultParams())

	first, err := analyzer.Analyze(context.Background(), ds, roles)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := analyzer.Analyze(context.Background(), ds, roles)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over the same dataset produced different results")
	}
}

func TestResultSerializable(t *testing.T) {
	result, err := New(DefaultParams()).Analyze(context.Background(), sampleCatalog(), testRoles())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("result not JSON-serializable: %v", err)
	}

	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		t.Fatalf("serialized result is not a plain tree: %v", err)
	}
	for _, key := range []string{"dataset_info", "completeness", "description_quality",
		"code_distribution", "classifier_readiness", "overall", "critical_issues"} {
		if _, ok := tree[key]; !ok {
			t.Errorf("serialized result missing key %q", key)
		}
	}
}
