package analysis

import (
	"strings"
	"unicode"
)

type pyTokenKind int

const (
	pyName pyTokenKind = iota
	pyKeyword
	pyNumber
	pyString
	pyOp
)

type pyToken struct {
	kind pyTokenKind
	text string
}

func (t pyToken) is(kind pyTokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t pyToken) operand() bool {
	switch t.kind {
	case pyName, pyNumber, pyString:
		return true
	case pyKeyword:
		return t.text == "True" || t.text == "False" || t.text == "None"
	case pyOp:
		return t.text == "..."
	}
	return false
}

func (t pyToken) closer() bool {
	return t.kind == pyOp && (t.text == ")" || t.text == "]" || t.text == "}")
}

func (t pyToken) binary() bool {
	return t.kind == pyOp && pythonBinaryOps[t.text]
}

var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true,
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

// keywords that may only open a statement
var pythonStatementKeywords = map[string]bool{
	"return": true, "def": true, "class": true, "pass": true,
	"break": true, "continue": true, "global": true, "nonlocal": true,
	"del": true, "assert": true, "raise": true, "while": true, "try": true,
	"with": true, "elif": true, "except": true, "finally": true,
	"import": true, "from": true,
}

var pythonCompoundKeywords = map[string]bool{
	"if": true, "elif": true, "else": true, "for": true, "while": true,
	"def": true, "class": true, "try": true, "except": true, "finally": true,
	"with": true,
}

var pythonSoftKeywords = map[string]bool{"match": true, "case": true, "type": true}

var pythonBinaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "//": true, "%": true,
	"**": true, "@": true, "<<": true, ">>": true, "&": true, "|": true,
	"^": true, "<": true, ">": true, "<=": true, ">=": true, "==": true,
	"!=": true, "=": true, "+=": true, "-=": true, "*=": true, "/=": true,
	"//=": true, "%=": true, "**=": true, "@=": true, "&=": true, "|=": true,
	"^=": true, ">>=": true, "<<=": true, ":=": true, "->": true,
}

var pythonUnaryOps = map[string]bool{"+": true, "-": true, "~": true, "*": true, "**": true}

var pythonDanglingKeywords = map[string]bool{"and": true, "or": true, "not": true, "in": true, "is": true}

var pythonStringPrefixes = map[string]bool{
	"r": true, "u": true, "b": true, "f": true,
	"br": true, "rb": true, "fr": true, "rf": true,
}

// operators ordered longest first
var pythonOps = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"->", ":=", "**", "//", "==", "!=", "<=", ">=", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// pythonTokens splits a logical line whose string literals were already
// replaced by "" placeholders.
func pythonTokens(text string) []pyToken {
	toks := make([]pyToken, 0)

	runes := []rune(text)
	for i := 0; i < len(runes); {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			toks = append(toks, pyToken{pyString, `""`})
			i = j + 1

		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(runes) && isNameRune(runes[j]) {
				j++
			}
			word := string(runes[i:j])

			if j < len(runes) && runes[j] == '"' && pythonStringPrefixes[strings.ToLower(word)] {
				i = j
				continue
			}

			kind := pyName
			if pythonKeywords[word] {
				kind = pyKeyword
			}
			toks = append(toks, pyToken{kind, word})
			i = j

		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			j := i + 1
			for j < len(runes) {
				c := runes[j]
				if isNameRune(c) || c == '.' {
					j++
					continue
				}

				prev := unicode.ToLower(runes[j-1])
				hex := strings.HasPrefix(strings.ToLower(string(runes[i:j])), "0x")
				if (c == '+' || c == '-') && prev == 'e' && !hex {
					j++
					continue
				}
				break
			}
			toks = append(toks, pyToken{pyNumber, string(runes[i:j])})
			i = j

		default:
			op := string(r)
			rest := string(runes[i:])
			for _, candidate := range pythonOps {
				if strings.HasPrefix(rest, candidate) {
					op = candidate
					break
				}
			}
			toks = append(toks, pyToken{pyOp, op})
			i += len([]rune(op))
		}
	}

	return toks
}

// topLevel returns the index of the first token outside brackets that
// matches, or -1.
func topLevel(toks []pyToken, kind pyTokenKind, text string) int {
	depth := 0
	for i, t := range toks {
		if t.kind == pyOp {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			}
		}

		if depth == 0 && t.is(kind, text) {
			return i
		}
	}
	return -1
}

func splitTopLevel(toks []pyToken, sep string) [][]pyToken {
	parts := make([][]pyToken, 0)
	for {
		k := topLevel(toks, pyOp, sep)
		if k < 0 {
			return append(parts, toks)
		}
		parts = append(parts, toks[:k])
		toks = toks[k+1:]
	}
}

// invalidStatement reports statements a Python parser rejects as
// "invalid syntax": dangling or doubled operators, adjacent operands,
// misplaced statement keywords and incomplete import, def, class or for
// clauses.
func invalidStatement(toks []pyToken) bool {
	for _, stmt := range splitTopLevel(toks, ";") {
		if invalidCompound(stmt) {
			return true
		}
	}
	return false
}

func invalidCompound(toks []pyToken) bool {
	if len(toks) == 0 {
		return false
	}

	if k := headerColon(toks); k >= 0 {
		return invalidClause(toks[:k]) || invalidStatement(toks[k+1:])
	}

	return invalidClause(toks)
}

func headerColon(toks []pyToken) int {
	first := toks[0]
	if first.is(pyKeyword, "async") && len(toks) > 1 {
		first = toks[1]
	}

	compound := first.kind == pyKeyword && pythonCompoundKeywords[first.text]
	soft := first.kind == pyName && pythonSoftKeywords[first.text]
	if !compound && !soft {
		return -1
	}

	return topLevel(toks, pyOp, ":")
}

func invalidClause(toks []pyToken) bool {
	if len(toks) == 0 {
		return false
	}

	start := 0
	if toks[0].is(pyKeyword, "async") && len(toks) > 1 {
		start = 1
	}

	kw := ""
	if toks[start].kind == pyKeyword {
		kw = toks[start].text
	}

	var next *pyToken
	if start+1 < len(toks) {
		next = &toks[start+1]
	}

	switch kw {
	case "def", "class":
		if next == nil || next.kind != pyName {
			return true
		}

	case "import", "if", "elif", "while", "with":
		if next == nil {
			return true
		}

	case "from":
		k := topLevel(toks, pyKeyword, "import")
		if k < start+2 || k == len(toks)-1 {
			return true
		}

	case "for":
		if next == nil {
			return true
		}
		target := next.kind == pyName || next.is(pyOp, "(") || next.is(pyOp, "[") || next.is(pyOp, "*")
		if !target || topLevel(toks, pyKeyword, "in") < 0 {
			return true
		}
	}

	for i := start + 1; i < len(toks); i++ {
		t, prev := toks[i], toks[i-1]

		if t.kind == pyKeyword && pythonStatementKeywords[t.text] {
			switch {
			case t.text == "import" && kw == "from":
			case t.text == "from" && (prev.is(pyKeyword, "yield") || kw == "raise"):
			default:
				return true
			}
		}

		if (prev.operand() || prev.closer()) && t.operand() {
			concat := prev.kind == pyString && t.kind == pyString
			soft := i-1 == start && prev.kind == pyName && pythonSoftKeywords[prev.text]
			if !concat && !soft {
				return true
			}
		}

		if prev.binary() && t.binary() && !pythonUnaryOps[t.text] {
			return true
		}
	}

	last := toks[len(toks)-1]
	if last.binary() || last.is(pyOp, ".") {
		starImport := last.text == "*" && len(toks) > 1 && toks[len(toks)-2].is(pyKeyword, "import")
		if !starImport {
			return true
		}
	}

	if last.kind == pyKeyword && pythonDanglingKeywords[last.text] {
		return true
	}

	return false
}
