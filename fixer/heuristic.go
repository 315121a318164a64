package fixer

import (
	"regexp"
	"strings"

	"github.com/flarexio/devguide/analysis"
)

const (
	ChangeNoChanges       = "No changes"
	ChangeVarToLet        = "Replaced var with let"
	ChangeStrictEquality  = "Replaced == with ==="
	ChangeClosingBracket  = "Added missing closing bracket/paren"
	ChangeSemicolon       = "Added missing semicolon"
	ChangeRemoveSemicolon = "Removed trailing semicolon"
	ChangeColons          = "Added missing colons"
	ChangeIndentation     = "Fixed indentation"
	ChangeEquals          = "Replaced == with .equals() for strings"
	ChangeAIFix           = "AI fix applied"
)

var javaStringCompare = regexp.MustCompile(`(\w+)\s*==\s*"([^"]*)"`)

// Heuristic applies the deterministic rewrites for language and returns
// the rewritten code with one change entry per rewrite.
func Heuristic(code string, language string) (string, []string) {
	fixed := code
	changes := make([]string, 0)

	switch strings.ToLower(language) {
	case analysis.JavaScript, analysis.TypeScript:
		fixed, changes = fixJS(fixed, changes)
	case analysis.Python:
		fixed, changes = fixPython(fixed, changes)
	case analysis.Java:
		fixed, changes = fixJava(fixed, changes)
	case analysis.CPP:
		fixed, changes = fixCPP(fixed, changes)
	case analysis.C:
		fixed, changes = fixC(fixed, changes)
	}

	lines := strings.Split(fixed, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r\f\v")
	}

	return strings.Join(lines, "\n"), changes
}

func fixJS(code string, changes []string) (string, []string) {
	if analysis.HasVar(code) {
		code = analysis.ReplaceVar(code)
		changes = append(changes, ChangeVarToLet)
	}

	if strict := StrictEquality(code); strict != code {
		code = strict
		changes = append(changes, ChangeStrictEquality)
	}

	for _, closer := range MissingClosers(code) {
		code += string(closer)
		changes = append(changes, ChangeClosingBracket)
	}

	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if analysis.NeedsJSSemicolon(line) {
			lines[i] = strings.TrimRight(line, " \t") + ";"
			changes = append(changes, ChangeSemicolon)
		}
	}

	return strings.Join(lines, "\n"), changes
}

// StrictEquality turns every loose == into ===, leaving !=, <=, >=, ===
// and !== alone.
func StrictEquality(code string) string {
	var sb strings.Builder
	sb.Grow(len(code))

	for i := 0; i < len(code); i++ {
		if i+1 < len(code) && code[i] == '=' && code[i+1] == '=' {
			prevOK := i == 0 || !strings.ContainsRune("!<>=", rune(code[i-1]))
			nextOK := i+2 >= len(code) || code[i+2] != '='
			if prevOK && nextOK {
				sb.WriteString("===")
				i++
				continue
			}
		}
		sb.WriteByte(code[i])
	}

	return sb.String()
}

// MissingClosers returns the closers of the brackets still open at the end
// of code, innermost first. Stray closers are ignored.
func MissingClosers(code string) []rune {
	pairs := map[rune]rune{'(': ')', '[': ']', '{': '}'}

	stack := make([]rune, 0)
	for _, ch := range code {
		switch ch {
		case '(', '[', '{':
			stack = append(stack, ch)
		case ')', ']', '}':
			if len(stack) > 0 && pairs[stack[len(stack)-1]] == ch {
				stack = stack[:len(stack)-1]
			}
		}
	}

	closers := make([]rune, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		closers = append(closers, pairs[stack[i]])
	}
	return closers
}

var pythonHeaders = []string{"if", "elif", "else", "for", "while", "def", "class", "try", "except", "finally", "with"}

func fixPython(code string, changes []string) (string, []string) {
	lines := analysis.SplitLines(code)

	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasSuffix(trimmed, ";") {
			lines[i] = strings.TrimRight(trimmed, ";")
			changes = append(changes, ChangeRemoveSemicolon)
		}
	}

	colons := false
	for i, line := range lines {
		if needsColon(line) {
			lines[i] = strings.TrimRight(line, " \t") + ":"
			colons = true
		}
	}
	if colons {
		changes = append(changes, ChangeColons)
	}

	prev := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if prev >= 0 && strings.HasSuffix(strings.TrimSpace(lines[prev]), ":") {
			header := indentWidth(lines[prev])
			if indentWidth(line) <= header {
				lines[i] = strings.Repeat(" ", header+4) + strings.TrimLeft(line, " \t")
				changes = append(changes, ChangeIndentation)
			}
		}
		prev = i
	}

	return strings.Join(lines, "\n"), changes
}

// needsColon reports whether line is a block header missing its colon.
func needsColon(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") || strings.HasSuffix(s, ":") {
		return false
	}

	for _, kw := range pythonHeaders {
		if s == kw || strings.HasPrefix(s, kw+" ") || strings.HasPrefix(s, kw+"(") {
			return !strings.Contains(s, ":")
		}
	}

	return false
}

func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func fixJava(code string, changes []string) (string, []string) {
	if replaced := javaStringCompare.ReplaceAllString(code, `${1}.equals("${2}")`); replaced != code {
		code = replaced
		changes = append(changes, ChangeEquals)
	}

	return addSemicolons(code, changes,
		[]string{"//", "/*", "*", "public", "private", "protected", "class", "interface", "enum"},
		[]string{"return ", "System.out", "break", "continue", "throw"},
	)
}

func fixCPP(code string, changes []string) (string, []string) {
	code, changes = addSemicolons(code, changes,
		[]string{"#", "//", "/*", "*", "class", "struct", "namespace", "public:", "private:", "protected:"},
		[]string{"return ", "cout", "cin", "break", "continue", "throw"},
	)

	switch {
	case strings.Contains(code, "cout") && !strings.Contains(code, "#include <iostream>"):
		code = "#include <iostream>\n" + code
		changes = append(changes, "Added missing #include <iostream>")
	case strings.Contains(code, "printf") && !strings.Contains(code, "#include <cstdio>"):
		code = "#include <cstdio>\n" + code
		changes = append(changes, "Added missing #include <cstdio>")
	}

	return code, changes
}

var cStringFunctions = []string{"strlen(", "strcpy(", "strncpy(", "strcmp(", "strncmp(", "strcat(", "memcpy(", "memset("}

func fixC(code string, changes []string) (string, []string) {
	code, changes = addSemicolons(code, changes,
		[]string{"#", "//", "/*", "*"},
		[]string{"return ", "break", "continue", "int ", "char ", "float ", "double "},
	)

	includes := []struct {
		header string
		used   bool
	}{
		{"stdio.h", strings.Contains(code, "printf")},
		{"stdlib.h", strings.Contains(code, "malloc")},
		{"string.h", containsAny(code, cStringFunctions)},
	}

	for _, inc := range includes {
		directive := "#include <" + inc.header + ">"
		if inc.used && !strings.Contains(code, directive) {
			code = directive + "\n" + code
			changes = append(changes, "Added missing "+directive)
		}
	}

	return code, changes
}

var statementTerminators = []string{";", "{", "}", ":", ","}

func addSemicolons(code string, changes []string, skipPrefixes []string, keywords []string) (string, []string) {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" || hasAnyPrefix(s, skipPrefixes) || hasAnySuffix(s, statementTerminators) {
			continue
		}

		if containsAny(s, keywords) {
			lines[i] = strings.TrimRight(line, " \t") + ";"
			changes = append(changes, ChangeSemicolon)
		}
	}

	return strings.Join(lines, "\n"), changes
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, p := range suffixes {
		if strings.HasSuffix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
