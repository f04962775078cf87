package analyze

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/catqa/catqa/internal/model"
)

// DescriptionReport holds text-quality statistics over the description
// column. Rows with a null description are dropped before analysis.
type DescriptionReport struct {
	ValidDescriptions int             `json:"valid_descriptions"`
	LengthStats       LengthStats     `json:"length_stats"`
	Vocabulary        VocabularyStats `json:"vocabulary"`
	QualityFlags      QualityFlags    `json:"quality_flags"`
	Duplicates        DuplicateReport `json:"duplicates"`
	OverallScore      float64         `json:"overall_score"`
}

// LengthStats are character-count statistics across valid descriptions.
type LengthStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Std    float64 `json:"std"`
}

// VocabularyStats describe the token vocabulary of all descriptions
// combined (lower-cased, whitespace-tokenized).
type VocabularyStats struct {
	UniqueWords        int     `json:"unique_words"`
	TotalWords         int     `json:"total_words"`
	VocabularyRichness float64 `json:"vocabulary_richness"`
}

// QualityFlags count descriptions tripping per-description heuristics.
type QualityFlags struct {
	TooShort         int     `json:"too_short"`
	TooShortPct      float64 `json:"too_short_pct"`
	MostlyNumeric    int     `json:"mostly_numeric"`
	HighSpecialChars int     `json:"high_special_chars"`
}

// DuplicateReport describes exact-text duplicate groups.
// TotalDuplicateRows is the excess beyond one row per group.
type DuplicateReport struct {
	DuplicateCount     int         `json:"duplicate_count"`
	TotalDuplicateRows int         `json:"total_duplicate_rows"`
	TopDuplicates      []TextCount `json:"top_duplicates"`
}

// TextCount pairs a description text with its occurrence count.
type TextCount struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// AnalyzeDescriptionQuality computes length, vocabulary, flag and
// duplicate statistics for the description column. The score starts at
// 100 and takes three independent, individually capped penalties: too-short
// share (cap 30), duplicate-group share (cap 20) and mostly-numeric share
// (cap 20), clamped at 0.
func AnalyzeDescriptionQuality(ds *model.Dataset, descriptionColumn string, minLength int) *DescriptionReport {
	idx := ds.ColumnIndex(descriptionColumn)

	var texts []string
	for row := 0; row < ds.NumRows(); row++ {
		cell := ds.Cell(row, idx)
		if !cell.Null {
			texts = append(texts, cell.Raw)
		}
	}

	report := &DescriptionReport{ValidDescriptions: len(texts)}
	if len(texts) == 0 {
		return report
	}

	lengths := make([]int, len(texts))
	counts := make(map[string]int, len(texts))
	uniqueTokens := make(map[string]struct{})
	totalTokens := 0

	for i, text := range texts {
		length := utf8.RuneCountInString(text)
		lengths[i] = length
		counts[text]++

		for _, tok := range strings.Fields(strings.ToLower(text)) {
			uniqueTokens[tok] = struct{}{}
			totalTokens++
		}

		if length < minLength {
			report.QualityFlags.TooShort++
		}
		if length > 0 {
			numeric, special := charRatios(text, length)
			if numeric > 0.5 {
				report.QualityFlags.MostlyNumeric++
			}
			if special > 0.3 {
				report.QualityFlags.HighSpecialChars++
			}
		}
	}

	minLen, maxLen := minMaxInt(lengths)
	report.LengthStats = LengthStats{
		Mean:   round2(meanInt(lengths)),
		Median: round2(medianFloat(lengths)),
		Min:    minLen,
		Max:    maxLen,
		Std:    round2(sampleStd(lengths)),
	}

	richness := 0.0
	if totalTokens > 0 {
		richness = round4(float64(len(uniqueTokens)) / float64(totalTokens))
	}
	report.Vocabulary = VocabularyStats{
		UniqueWords:        len(uniqueTokens),
		TotalWords:         totalTokens,
		VocabularyRichness: richness,
	}

	valid := float64(len(texts))
	report.QualityFlags.TooShortPct = round2(float64(report.QualityFlags.TooShort) / valid * 100)
	report.Duplicates = duplicateReport(counts)

	score := 100.0
	score -= minF(float64(report.QualityFlags.TooShort)/valid*100, 30)
	score -= minF(float64(report.Duplicates.DuplicateCount)/valid*100, 20)
	score -= minF(float64(report.QualityFlags.MostlyNumeric)/valid*100, 20)
	report.OverallScore = round2(maxF(score, 0))

	return report
}

// charRatios returns the numeric-character and special-character shares of
// a description. Letters are ASCII, matching the original flag semantics.
func charRatios(text string, length int) (numeric, special float64) {
	numericCount := 0
	specialCount := 0
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			numericCount++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case unicode.IsSpace(r):
		default:
			specialCount++
		}
	}
	return float64(numericCount) / float64(length), float64(specialCount) / float64(length)
}

// duplicateReport extracts groups of identical texts occurring more than
// once, ranked by frequency with text as the deterministic tie-break.
func duplicateReport(counts map[string]int) DuplicateReport {
	var groups []TextCount
	totalRows := 0
	for text, count := range counts {
		if count > 1 {
			groups = append(groups, TextCount{Text: text, Count: count})
			totalRows += count
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Text < groups[j].Text
	})

	report := DuplicateReport{
		DuplicateCount:     len(groups),
		TotalDuplicateRows: totalRows - len(groups),
	}
	if len(groups) > 10 {
		groups = groups[:10]
	}
	report.TopDuplicates = groups
	return report
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
