package analysis

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		code string
		hint string
		want string
	}{
		{"empty", "", "auto", JavaScript},
		{"explicit hint", "x", "Python", "Python"},
		{"blank hint", "def f():\n    return 1", "", Python},
		{"python", "def f():\n    return 1", "auto", Python},
		{"java", `System.out.println("hi");`, "AUTO", Java},
		{"cpp", "#include <iostream>\nint main() { std::cout << 1; }", "auto", CPP},
		{"c", "#include <stdio.h>\nint main() { printf(\"hi\"); return 0; }", "auto", C},
		{"typescript", "let n: number = 5;", "auto", TypeScript},
		{"javascript", "const x = () => 1;", "auto", JavaScript},
		{"braces fallback", "{ }", "auto", JavaScript},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.code, tt.hint))
		})
	}
}

func TestCyclomaticComplexity(t *testing.T) {
	assert.Equal(t, 1, CyclomaticComplexity(""))
	assert.Equal(t, 4, CyclomaticComplexity("if (a) { } else if (b) { }"))
	assert.Equal(t, 30, CyclomaticComplexity(strings.Repeat(" if x ", 40)))
}

func TestReadabilityScore(t *testing.T) {
	assert.Equal(t, 100, ReadabilityScore(""))
	assert.Equal(t, 50, ReadabilityScore(strings.Repeat("a", 50)))
	assert.Equal(t, 38, ReadabilityScore(strings.Repeat("a", 130)))
}

func TestStyleAdherence(t *testing.T) {
	assert.Equal(t, 95, StyleAdherence("let x = 1;", JavaScript))
	assert.Equal(t, 85, StyleAdherence("var x = 1;", JavaScript))
	assert.Equal(t, 95, StyleAdherence("var x = 1", Python))
	assert.Equal(t, 85, StyleAdherence("my_var = 1", Python))
	assert.Equal(t, 90, StyleAdherence("# TODO fix", Python))
	assert.Equal(t, 70, StyleAdherence("var my_var = 1; // TODO", JavaScript))
}

func TestScore(t *testing.T) {
	metrics := Metrics{ReadabilityScore: 100, StyleAdherence: 95}

	assert.Equal(t, 100, Score(nil, metrics))
	assert.Equal(t, 100, Score([]Issue{newSuggestion(1, "m", "s")}, metrics))

	one := []Issue{newError(1, "m", "s")}
	assert.Equal(t, 34, Score(one, metrics))

	many := make([]Issue, 7)
	for i := range many {
		many[i] = newError(i+1, "m", "s")
	}
	assert.Equal(t, 5, Score(many, metrics))
}

func TestFindIssuesJavaScript(t *testing.T) {
	code := "var a = 1\nif (a == 1) {\n  console.log(a)\n}"

	issues := FindIssues(code, JavaScript)
	require.Len(t, issues, 3)

	assert.Equal(t, Issue{1, Error, Critical, "Missing semicolon", "Add semicolon at end of statement"}, issues[0])
	assert.Equal(t, "Avoid var", issues[1].Message)
	assert.Equal(t, Suggestion, issues[1].Type)
	assert.Equal(t, 1, issues[1].Line)
	assert.Equal(t, "Use strict equality (===)", issues[2].Message)
	assert.Equal(t, 2, issues[2].Line)
}

func TestFindIssuesUnbalancedBrackets(t *testing.T) {
	issues := FindIssues("function f() {", JavaScript)
	require.Len(t, issues, 1)
	assert.Equal(t, "Unbalanced brackets/parens", issues[0].Message)
	assert.Equal(t, Critical, issues[0].Severity)
}

func TestFindIssuesPython(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		code := "import logging\n\ndef add(a, b):\n    return a + b\n"
		assert.Empty(t, FindIssues(code, Python))
	})

	t.Run("missing colon", func(t *testing.T) {
		issues := FindIssues("def add(a, b)\n    return a + b", Python)
		require.Len(t, issues, 2)
		assert.Equal(t, "SyntaxError: expected ':'", issues[0].Message)
		assert.Equal(t, 1, issues[0].Line)
		assert.Equal(t, Issue{2, Error, Critical, "Potential syntax error", "Check line syntax"}, issues[1])
	})

	t.Run("every failing line", func(t *testing.T) {
		issues := FindIssues("x = = 1\nif x:\n    y = 1\nz = 2", Python)
		require.Len(t, issues, 3)
		assert.Equal(t, "SyntaxError: invalid syntax", issues[0].Message)
		assert.Equal(t, 2, issues[1].Line)
		assert.Equal(t, 3, issues[2].Line)
	})

	t.Run("print", func(t *testing.T) {
		issues := FindIssues("print('hi')", Python)
		require.Len(t, issues, 1)
		assert.Equal(t, Warning, issues[0].Type)
		assert.Equal(t, "print used for logging", issues[0].Message)
	})

	t.Run("python 2 print", func(t *testing.T) {
		issues := FindIssues("print 'hi'", Python)
		require.NotEmpty(t, issues)
		assert.Contains(t, issues[0].Message, "Missing parentheses in call to 'print'")
	})

	t.Run("manual index loop", func(t *testing.T) {
		issues := FindIssues("for i in range(10):\n    print(i)", Python)
		require.Len(t, issues, 2)
		assert.Equal(t, "print used for logging", issues[0].Message)
		assert.Equal(t, "Manual index loop", issues[1].Message)
		assert.Equal(t, Major, issues[1].Severity)
	})

	t.Run("trailing semicolon", func(t *testing.T) {
		issues := FindIssues("x = 1;", Python)
		require.Len(t, issues, 1)
		assert.Equal(t, "Unnecessary semicolon", issues[0].Message)
	})
}

func TestFindIssuesC(t *testing.T) {
	code := "int main() {\n  int x = 5\n  return x;\n}"

	issues := FindIssues(code, C)
	require.Len(t, issues, 1)
	assert.Equal(t, "Missing semicolon", issues[0].Message)
	assert.Equal(t, 2, issues[0].Line)
}

func TestFindIssuesJava(t *testing.T) {
	code := "String s = \"a\"\nif (s == \"a\") {}"

	issues := FindIssues(code, Java)
	require.Len(t, issues, 2)
	assert.Equal(t, Error, issues[0].Type)
	assert.Equal(t, 1, issues[0].Line)
	assert.Equal(t, "Use .equals() for string comparison", issues[1].Message)
	assert.Equal(t, 2, issues[1].Line)
}

func TestFindIssuesLimits(t *testing.T) {
	js := strings.Repeat("let x = 1\n", 150)
	assert.Len(t, FindIssues(js, JavaScript), MaxIssues)

	py := strings.Repeat("x = 1\n", 201)
	issues := FindIssues(py, Python)
	require.Len(t, issues, 1)
	assert.Equal(t, "Very large file", issues[0].Message)
}

func TestAnalyze(t *testing.T) {
	a := Analyze("def add(a, b)\n    return a + b", Python)

	assert.Equal(t, Python, a.Language)
	assert.Equal(t, 14, a.CodeQualityScore)
	assert.Equal(t, 2, a.Count(Error))
	assert.Len(t, a.Errors(), 2)
	assert.Empty(t, a.Others())
	assert.Equal(t, Metrics{CyclomaticComplexity: 1, ReadabilityScore: 86, StyleAdherence: 95}, a.Metrics)
	assert.Equal(t, a.ID.Time().UTC(), a.AnalyzedAt)
}

func TestIssueJSON(t *testing.T) {
	issue := newWarning(3, Major, "msg", "fix")

	bs, err := json.Marshal(issue)
	require.NoError(t, err)
	assert.JSONEq(t, `{"line":3,"type":"Warning","severity":"Major","message":"msg","suggestion":"fix"}`, string(bs))

	var decoded Issue
	require.NoError(t, json.Unmarshal(bs, &decoded))
	assert.Equal(t, issue, decoded)
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitLines("a\r\nb\rc\n"))
	assert.Empty(t, SplitLines(""))
	assert.Equal(t, []string{"", "a"}, SplitLines("\na"))
}
