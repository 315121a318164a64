package analysis

import (
	"strings"
)

func newError(line int, message, suggestion string) Issue {
	return Issue{Line: line, Type: Error, Severity: Critical, Message: message, Suggestion: suggestion}
}

func newWarning(line int, severity Severity, message, suggestion string) Issue {
	return Issue{Line: line, Type: Warning, Severity: severity, Message: message, Suggestion: suggestion}
}

func newSuggestion(line int, message, suggestion string) Issue {
	return Issue{Line: line, Type: Suggestion, Severity: Minor, Message: message, Suggestion: suggestion}
}

// FindIssues runs the syntax checks of the language first, then style and
// maintainability rules. At most MaxIssues issues are returned.
func FindIssues(code string, language string) []Issue {
	lines := SplitLines(code)
	lang := strings.ToLower(language)

	issues := make([]Issue, 0)

	switch lang {
	case Python:
		issues = append(issues, pythonSyntaxIssues(code, lines)...)
	case JavaScript, TypeScript:
		issues = append(issues, jsSyntaxIssues(code, lines)...)
	case C:
		issues = append(issues, cSyntaxIssues(lines)...)
	case CPP:
		issues = append(issues, cppSyntaxIssues(lines)...)
	case Java:
		issues = append(issues, javaSyntaxIssues(lines)...)
	}

	if IsJSFamily(lang) {
		for i, line := range lines {
			if NeedsJSSemicolon(line) {
				issues = append(issues, newError(i+1, "Missing semicolon", "Add semicolon at end of statement"))
			}
		}
	}

	switch lang {
	case JavaScript, TypeScript:
		for i, line := range lines {
			if strings.Contains(line, "==") && !strings.Contains(line, "===") && !strings.Contains(line, "!=") {
				issues = append(issues, newSuggestion(i+1, "Use strict equality (===)", "Replace == with ==="))
			}
			if varRegex.MatchString(line) {
				issues = append(issues, newSuggestion(i+1, "Avoid var", "Use let or const"))
			}
		}
		if jsLoopRegex.MatchString(code) {
			issues = append(issues, newWarning(1, Major, "Traditional for loop detected", "Consider array methods like map/filter/reduce"))
		}

	case Python:
		usesLogging := strings.Contains(code, "logging")
		for i, line := range lines {
			if strings.HasSuffix(strings.TrimRightFunc(line, isSpace), ";") {
				issues = append(issues, newSuggestion(i+1, "Unnecessary semicolon", "Remove trailing ; in Python"))
			}
			if strings.Contains(line, "print(") && !usesLogging {
				issues = append(issues, newWarning(i+1, Minor, "print used for logging", "Use the logging module for production"))
			}
		}
		if pyLoopRegex.MatchString(code) && strings.Contains(code, "range(") {
			issues = append(issues, newWarning(1, Major, "Manual index loop", "Prefer list comprehensions"))
		}

	case Java:
		for i, line := range lines {
			if strings.Contains(line, "==") && !strings.Contains(line, "equals(") && !strings.Contains(line, "!=") {
				issues = append(issues, newSuggestion(i+1, "Use .equals() for string comparison", "Replace == with .equals() for strings"))
			}
		}

	case CPP:
		for i, line := range lines {
			if strings.Contains(line, "==") && !strings.Contains(line, "!=") && !strings.Contains(line, "std::") {
				issues = append(issues, newSuggestion(i+1, "Consider using std::equal for complex comparisons", "Use std::equal for complex types"))
			}
		}
	}

	if len(lines) > 200 {
		issues = append(issues, newWarning(1, Major, "Very large file", "Consider splitting into smaller modules"))
	}

	if IsJSFamily(lang) && snakeCaseRegex.MatchString(code) {
		issues = append(issues, newSuggestion(1, "snake_case found in JS/TS", "Use camelCase for variables"))
	}

	if len(issues) > MaxIssues {
		issues = issues[:MaxIssues]
	}

	return issues
}

func pythonSyntaxIssues(code string, lines []string) []Issue {
	err := CheckPython(code)
	if err == nil {
		return nil
	}

	issues := []Issue{
		newError(err.Line, "SyntaxError: "+err.Msg, "Fix Python syntax"),
	}

	for i, line := range lines {
		n := i + 1
		if strings.TrimSpace(line) == "" || n == err.Line {
			continue
		}

		if CheckPythonLine(line) != nil {
			issues = append(issues, newError(n, "Potential syntax error", "Check line syntax"))
		}
	}

	return issues
}

// UnbalancedBrackets reports whether (), [] and {} fail to pair up.
func UnbalancedBrackets(code string) bool {
	stack := make([]rune, 0)
	for _, ch := range code {
		switch ch {
		case '(', '[', '{':
			stack = append(stack, ch)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != closers[ch] {
				return true
			}
			stack = stack[:len(stack)-1]
		}
	}

	return len(stack) > 0
}

func jsSyntaxIssues(code string, lines []string) []Issue {
	issues := make([]Issue, 0)

	if UnbalancedBrackets(code) {
		issues = append(issues, newError(1, "Unbalanced brackets/parens", "Fix bracket/parenthesis balancing"))
	}

	for i, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}

		if containsAny(s, "undefined_variable", "some_undefined_function") {
			issues = append(issues, newError(i+1, "Undefined variable/function", "Define variable or import required module"))
		}

		if strings.Contains(s, "function ") && !strings.HasSuffix(s, "{") && !strings.Contains(s, "=>") {
			issues = append(issues, newError(i+1, "Function declaration syntax error", "Add opening brace or fix function syntax"))
		}
	}

	return issues
}

// Line endings after which no semicolon is expected in C-like languages.
var cLikeTerminators = []string{";", "{", "}", ":", ",", ")", "("}

func cSyntaxIssues(lines []string) []Issue {
	issues := make([]Issue, 0)

	for i, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}

		if !strings.HasPrefix(s, "#") &&
			!hasAnySuffix(s, cLikeTerminators...) &&
			!containsAny(s, "if", "for", "while", "switch", "struct", "enum", "typedef") &&
			containsAny(s, "int ", "char ", "float ", "double ", "return", "break", "continue") {
			issues = append(issues, newError(i+1, "Missing semicolon", "Add semicolon at end of statement"))
		}

		if containsAny(s, "undefined_function", "undefined_variable") {
			issues = append(issues, newError(i+1, "Undefined function/variable", "Declare function or variable before use"))
		}
	}

	return issues
}

func cppSyntaxIssues(lines []string) []Issue {
	issues := make([]Issue, 0)

	for i, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}

		if !hasAnySuffix(s, cLikeTerminators...) &&
			!containsAny(s, "if", "for", "while", "switch", "class", "struct", "namespace") &&
			containsAny(s, "int ", "char ", "float ", "double ", "bool ", "string ", "auto ", "return") {
			issues = append(issues, newError(i+1, "Missing semicolon", "Add semicolon at end of statement"))
		}

		if containsAny(s, "undefined_function", "undefined_variable") {
			issues = append(issues, newError(i+1, "Undefined function/variable", "Declare or include required definition"))
		}
	}

	return issues
}

func javaSyntaxIssues(lines []string) []Issue {
	issues := make([]Issue, 0)

	for i, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}

		if !hasAnySuffix(s, cLikeTerminators...) &&
			!containsAny(s, "if", "for", "while", "switch", "class", "interface", "try", "catch") &&
			containsAny(s, "int ", "String ", "boolean ", "double ", "float ", "char ", "return", "break", "continue") {
			issues = append(issues, newError(i+1, "Missing semicolon", "Add semicolon at end of statement"))
		}

		if containsAny(s, "undefined_method", "undefined_variable") {
			issues = append(issues, newError(i+1, "Undefined method/variable", "Declare or import required definition"))
		}
	}

	return issues
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}
