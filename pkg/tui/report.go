// Package tui renders analysis reports in the terminal. Clean streaming
// output with color-coded scores, no interactive widgets.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/catqa/catqa/pkg/analyze"
)

// Quality palette, one color per quality band.
var (
	excellentColor = lipgloss.Color("#28a745")
	goodColor      = lipgloss.Color("#7cb342")
	fairColor      = lipgloss.Color("#ffc107")
	poorColor      = lipgloss.Color("#ff9800")
	criticalColor  = lipgloss.Color("#dc3545")

	muted = lipgloss.Color("#666666")
	white = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(white)
	mutedStyle = lipgloss.NewStyle().Foreground(muted)
	ruleStyle  = lipgloss.NewStyle().Foreground(muted)
)

// levelStyle returns the style for a quality level.
func levelStyle(level string) lipgloss.Style {
	var c lipgloss.Color
	switch level {
	case analyze.LevelExcellent:
		c = excellentColor
	case analyze.LevelGood:
		c = goodColor
	case analyze.LevelFair:
		c = fairColor
	case analyze.LevelPoor:
		c = poorColor
	default:
		c = criticalColor
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// scoreStyle colors a raw score by the band it falls into.
func scoreStyle(score float64) lipgloss.Style {
	return levelStyle(analyze.QualityLevel(score))
}

// Renderer writes a formatted report to an output stream.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Header prints the tool banner.
func (r *Renderer) Header(version string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, titleStyle.Render("  CATQA")+mutedStyle.Render(" v"+version))
	fmt.Fprintln(r.out, mutedStyle.Render("  Catalog data quality analyzer"))
	fmt.Fprintln(r.out)
}

// FileInfo prints the source file summary before analysis starts.
func (r *Renderer) FileInfo(path string, sizeBytes int64, rows, columns int) {
	r.rule()
	fmt.Fprintf(r.out, "  %s %s\n", mutedStyle.Render("File:"), titleStyle.Render(path))
	fmt.Fprintf(r.out, "  %s %s\n", mutedStyle.Render("Size:"), titleStyle.Render(humanize.Bytes(uint64(sizeBytes))))
	fmt.Fprintf(r.out, "  %s %s rows × %d columns\n",
		mutedStyle.Render("Shape:"), titleStyle.Render(humanize.Comma(int64(rows))), columns)
	r.rule()
}

// Result prints the full analysis report.
func (r *Renderer) Result(res *analyze.Result) {
	fmt.Fprintln(r.out)
	lvl := levelStyle(res.Overall.QualityLevel)
	fmt.Fprintf(r.out, "  %s %s %s\n",
		titleStyle.Render("OVERALL"),
		lvl.Render(fmt.Sprintf("%.1f", res.Overall.Score)),
		lvl.Render(strings.ToUpper(res.Overall.QualityLevel)))
	fmt.Fprintln(r.out)

	for _, name := range analyze.ComponentNames() {
		score := res.Overall.ComponentScores[name]
		fmt.Fprintf(r.out, "  %s %s %s\n",
			scoreStyle(score).Render(fmt.Sprintf("%6.1f", score)),
			bar(score),
			mutedStyle.Render(strings.ReplaceAll(name, "_", " ")))
	}

	r.completeness(res.Completeness)
	r.descriptions(res.DescriptionQuality)
	r.distribution(res.CodeDistribution)
	r.readiness(res.ClassifierReadiness)

	if len(res.CriticalIssues) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, levelStyle(analyze.LevelCritical).Render("  ▸ CRITICAL ISSUES"))
		for _, issue := range res.CriticalIssues {
			fmt.Fprintf(r.out, "    %s %s\n", levelStyle(analyze.LevelCritical).Render("✗"), issue)
		}
	}
	fmt.Fprintln(r.out)
}

func (r *Renderer) completeness(c *analyze.CompletenessReport) {
	if c == nil {
		return
	}
	r.section("COMPLETENESS", c.OverallScore)
	for _, col := range c.ColumnCompleteness {
		fmt.Fprintf(r.out, "    %s %s missing %s\n",
			scoreStyle(col.CompletenessPct).Render(fmt.Sprintf("%5.1f%%", col.CompletenessPct)),
			titleStyle.Render(col.Column),
			mutedStyle.Render(humanize.Comma(int64(col.MissingCount))))
	}
	fmt.Fprintf(r.out, "    %s all=%d none=%d partial=%d avg=%.2f\n",
		mutedStyle.Render("code presence:"),
		c.RowCompleteness.AllCodesPresent,
		c.RowCompleteness.NoCodesPresent,
		c.RowCompleteness.PartialCodes,
		c.RowCompleteness.AvgCodesPerRow)
}

func (r *Renderer) descriptions(d *analyze.DescriptionReport) {
	if d == nil {
		return
	}
	r.section("DESCRIPTIONS", d.OverallScore)
	fmt.Fprintf(r.out, "    %s valid, length %.1f±%.1f (min %d, max %d)\n",
		humanize.Comma(int64(d.ValidDescriptions)),
		d.LengthStats.Mean, d.LengthStats.Std, d.LengthStats.Min, d.LengthStats.Max)
	fmt.Fprintf(r.out, "    vocabulary %s/%s (richness %.4f)\n",
		humanize.Comma(int64(d.Vocabulary.UniqueWords)),
		humanize.Comma(int64(d.Vocabulary.TotalWords)),
		d.Vocabulary.VocabularyRichness)
	fmt.Fprintf(r.out, "    too short %d (%.1f%%), numeric %d, special chars %d\n",
		d.QualityFlags.TooShort, d.QualityFlags.TooShortPct,
		d.QualityFlags.MostlyNumeric, d.QualityFlags.HighSpecialChars)
	if d.Duplicates.DuplicateCount > 0 {
		fmt.Fprintf(r.out, "    duplicates: %d groups, %d excess rows\n",
			d.Duplicates.DuplicateCount, d.Duplicates.TotalDuplicateRows)
	}
}

func (r *Renderer) distribution(d *analyze.DistributionReport) {
	if d == nil {
		return
	}
	r.section("CODE DISTRIBUTION", d.OverallScore)
	for _, col := range d.CodeColumns {
		fmt.Fprintf(r.out, "    %s %s codes, entropy %.4f, top %.1f%%, rare %d\n",
			titleStyle.Render(col.Column),
			humanize.Comma(int64(col.UniqueCodes)),
			col.DistributionEntropy, col.TopCodeConcentration, col.RareCodesCount)
	}
}

func (r *Renderer) readiness(rep *analyze.ReadinessReport) {
	if rep == nil {
		return
	}
	r.section("CLASSIFIER READINESS", rep.OverallScore)
	for _, col := range rep.PerCodeColumn {
		mark := levelStyle(analyze.LevelCritical).Render("✗")
		if col.ReadyForTraining {
			mark = levelStyle(analyze.LevelExcellent).Render("✓")
		}
		fmt.Fprintf(r.out, "    %s %s %s\n",
			mark, titleStyle.Render(col.Column),
			mutedStyle.Render(col.RecommendedTrainTestSplit))
	}
	for _, issue := range rep.DataQualityIssues {
		fmt.Fprintf(r.out, "    %s %s\n", levelStyle(analyze.LevelPoor).Render("!"), issue)
	}
}

func (r *Renderer) section(name string, score float64) {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  %s %s\n",
		scoreStyle(score).Render("▸"),
		titleStyle.Render(name)+mutedStyle.Render(fmt.Sprintf(" %.1f", score)))
}

func (r *Renderer) rule() {
	fmt.Fprintln(r.out, ruleStyle.Render("  ─────────────────────────────────────"))
}

// bar renders a 20-cell score bar.
func bar(score float64) string {
	filled := int(score / 5)
	if filled < 0 {
		filled = 0
	}
	if filled > 20 {
		filled = 20
	}
	return scoreStyle(score).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", 20-filled))
}

// Progress creates a row progress bar for long analyses.
func Progress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
