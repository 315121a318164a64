package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarexio/devguide/analysis"
)

func newAnalysis(code string, issues ...analysis.Issue) *analysis.Analysis {
	return &analysis.Analysis{
		ID:               analysis.MakeID(),
		CodeQualityScore: 42,
		Issues:           issues,
		Metrics: analysis.Metrics{
			CyclomaticComplexity: 3,
			ReadabilityScore:     80,
			StyleAdherence:       90,
		},
		Language:   analysis.JavaScript,
		AnalyzedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Code:       code,
	}
}

func TestText(t *testing.T) {
	a := newAnalysis("let x = 1\nlet y = 2",
		analysis.Issue{Line: 1, Type: analysis.Error, Severity: analysis.Critical, Message: "Missing semicolon", Suggestion: "Add ';'"},
		analysis.Issue{Line: 2, Type: analysis.Warning, Severity: analysis.Minor, Message: "Long line", Suggestion: "Split it"},
	)

	r := Text(a)

	assert.Equal(t, TextFilename, r.Filename)
	assert.Empty(t, r.HTML)

	want := strings.Join([]string{
		"Code Quality Report",
		"Timestamp (UTC): 2024-05-01T12:00:00Z",
		"Language: javascript",
		"Code length: 19 chars, 2 lines",
		"",
		"Overall Score: 42/100",
		"Cyclomatic Complexity: 3",
		"Readability Score: 80%",
		"Style Adherence: 90%",
		"",
		"Errors:",
		"  - Line 1 [Critical] Error: Missing semicolon -> Suggestion: Add ';'",
		"",
		"Warnings & Suggestions:",
		"  - Line 2 [Minor] Warning: Long line -> Suggestion: Split it",
		"",
		"Code Snippet:",
		"----------------------------------------",
		"let x = 1\nlet y = 2",
		"----------------------------------------",
	}, "\n")

	assert.Equal(t, want, r.Content)
}

func TestTextWithoutIssues(t *testing.T) {
	r := Text(newAnalysis("x"))

	assert.Contains(t, r.Content, "Errors:\n  - None 🎉\n")
	assert.Contains(t, r.Content, "Warnings & Suggestions:\n  - None\n")
}

func TestTextTruncatesCode(t *testing.T) {
	code := strings.Repeat("a", SnippetLimit+500)

	r := Text(newAnalysis(code))

	assert.Contains(t, r.Content, "Code length: 2500 chars, 1 lines")
	assert.Contains(t, r.Content, "\n"+strings.Repeat("a", SnippetLimit)+"\n")
	assert.NotContains(t, r.Content, strings.Repeat("a", SnippetLimit+1))
}

func TestHTML(t *testing.T) {
	a := newAnalysis("if (a < b) { alert('<b>') }",
		analysis.Issue{Line: 1, Type: analysis.Error, Severity: analysis.Critical, Message: "<script>", Suggestion: "fix"},
	)

	r, err := HTML(a)
	require.NoError(t, err)

	assert.Equal(t, HTMLFilename, r.Filename)
	assert.Empty(t, r.Content)

	assert.Contains(t, r.HTML, "<title>Code Quality Report</title>")
	assert.Contains(t, r.HTML, "Score: 42/100")
	assert.Contains(t, r.HTML, `class="issue sev-Critical"`)
	assert.Contains(t, r.HTML, "&lt;script&gt;")
	assert.NotContains(t, r.HTML, "<script>")
	assert.Contains(t, r.HTML, "if (a &lt; b)")
}
