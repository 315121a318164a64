package analysis

import (
	"regexp"
	"strings"
)

var (
	varRegex         = regexp.MustCompile(`\bvar\b`)
	snakeCaseRegex   = regexp.MustCompile(`\b[a-z]+_[a-z0-9]+\b`)
	todoCommentRegex = regexp.MustCompile(`(?i)//\s*TODO|#\s*TODO`)
	jsLoopRegex      = regexp.MustCompile(`for\s*\(.*;.*;.*\)`)
	pyLoopRegex      = regexp.MustCompile(`(?m)^\s*for\s+.*:\s*$`)
)

var branchKeywords = []string{" if ", " for ", " while ", " case ", " catch ", " elif ", " else if "}

// CyclomaticComplexity estimates 1 + the number of branch keywords, within [1, 30].
func CyclomaticComplexity(code string) int {
	low := " " + strings.ToLower(code) + " "

	count := 1
	for _, k := range branchKeywords {
		count += strings.Count(low, k)
	}

	return max(1, min(count, 30))
}

func ReadabilityScore(code string) int {
	var lines []string
	for _, l := range SplitLines(code) {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	total, tooLong := 0, 0
	for _, l := range lines {
		n := Length(l)
		total += n
		if n > 120 {
			tooLong++
		}
	}

	avg := float64(total) / float64(max(1, len(lines)))
	score := 100 - min(60, int(avg)) - min(20, tooLong*2)
	return max(10, min(score, 100))
}

func StyleAdherence(code string, language string) int {
	penalty := 0
	if IsJSFamily(language) && varRegex.MatchString(code) {
		penalty += 10
	}
	if snakeCaseRegex.MatchString(code) {
		penalty += 10
	}
	if todoCommentRegex.MatchString(code) {
		penalty += 5
	}

	return max(10, 95-penalty)
}

// HasVar reports whether code declares anything with var.
func HasVar(code string) bool {
	return varRegex.MatchString(code)
}

// ReplaceVar rewrites every var keyword to let.
func ReplaceVar(code string) string {
	return varRegex.ReplaceAllString(code, "let")
}
