package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/flarexio/devguide/analysis"
)

const (
	TextFilename = "analysis_report.txt"
	HTMLFilename = "analysis_report.html"

	// SnippetLimit caps the characters of code embedded in a report.
	SnippetLimit = 2000
)

//go:embed report.html.tmpl
var templates embed.FS

var htmlTemplate = template.Must(template.ParseFS(templates, "report.html.tmpl"))

type Report struct {
	Filename string `json:"filename"`
	Content  string `json:"content,omitempty"`
	HTML     string `json:"html,omitempty"`
}

func timestamp(a *analysis.Analysis) string {
	return a.AnalyzedAt.UTC().Format(time.RFC3339Nano)
}

func formatIssue(i analysis.Issue) string {
	return fmt.Sprintf("Line %d [%s] %s: %s -> Suggestion: %s",
		i.Line, i.Severity, i.Type, i.Message, i.Suggestion)
}

// Text renders the plain text report.
func Text(a *analysis.Analysis) *Report {
	lines := []string{
		"Code Quality Report",
		"Timestamp (UTC): " + timestamp(a),
		"Language: " + a.Language,
		fmt.Sprintf("Code length: %d chars, %d lines", analysis.Length(a.Code), len(analysis.SplitLines(a.Code))),
		"",
		fmt.Sprintf("Overall Score: %d/100", a.CodeQualityScore),
		fmt.Sprintf("Cyclomatic Complexity: %d", a.Metrics.CyclomaticComplexity),
		fmt.Sprintf("Readability Score: %d%%", a.Metrics.ReadabilityScore),
		fmt.Sprintf("Style Adherence: %d%%", a.Metrics.StyleAdherence),
		"",
		"Errors:",
	}

	errs := a.Errors()
	if len(errs) == 0 {
		lines = append(lines, "  - None 🎉")
	}
	for _, i := range errs {
		lines = append(lines, "  - "+formatIssue(i))
	}

	lines = append(lines, "", "Warnings & Suggestions:")

	others := a.Others()
	if len(others) == 0 {
		lines = append(lines, "  - None")
	}
	for _, i := range others {
		lines = append(lines, "  - "+formatIssue(i))
	}

	lines = append(lines,
		"",
		"Code Snippet:",
		"----------------------------------------",
		analysis.Truncate(a.Code, SnippetLimit),
		"----------------------------------------",
	)

	return &Report{
		Filename: TextFilename,
		Content:  strings.Join(lines, "\n"),
	}
}

type htmlData struct {
	Timestamp string
	Language  string
	Score     int
	Metrics   analysis.Metrics
	Errors    []analysis.Issue
	Others    []analysis.Issue
	Code      string
}

// HTML renders a standalone HTML page. Every value is escaped by the
// template engine.
func HTML(a *analysis.Analysis) (*Report, error) {
	data := htmlData{
		Timestamp: timestamp(a),
		Language:  a.Language,
		Score:     a.CodeQualityScore,
		Metrics:   a.Metrics,
		Errors:    a.Errors(),
		Others:    a.Others(),
		Code:      analysis.Truncate(a.Code, SnippetLimit),
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}

	return &Report{
		Filename: HTMLFilename,
		HTML:     buf.String(),
	}, nil
}
