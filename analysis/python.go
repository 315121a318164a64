package analysis

import (
	"fmt"
	"strings"
	"unicode"
)

// SyntaxError is the first problem found by CheckPython.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

var pythonBlockKeywords = map[string]bool{
	"if": true, "elif": true, "else": true,
	"for": true, "while": true,
	"def": true, "class": true,
	"try": true, "except": true, "finally": true,
	"with": true,
}

var closers = map[rune]rune{')': '(', ']': '[', '}': '{'}

type bracket struct {
	ch   rune
	line int
}

type pythonScanner struct {
	lines []string

	brackets []bracket
	indents  []int

	// open triple-quoted string
	tripleDelim string
	tripleLine  int

	// logical line being accumulated
	logical     strings.Builder
	logicalLine int
	topColon    bool
	continued   bool

	expectIndent bool
	headerLine   int
	headerKw     string
}

// CheckPython looks for the syntax errors a Python parser would reject
// first: unbalanced brackets, unterminated strings, block headers without
// a colon, indentation mistakes, malformed statements and Python 2 print
// statements. It returns nil when none is found.
func CheckPython(code string) *SyntaxError {
	s := &pythonScanner{
		lines:   SplitLines(code),
		indents: []int{0},
	}
	return s.scan()
}

// CheckPythonLine parses a single physical line as a module of its own,
// indentation included. An indented line or a header without its body
// fails.
func CheckPythonLine(line string) *SyntaxError {
	return CheckPython(line)
}

func (s *pythonScanner) scan() *SyntaxError {
	for i, line := range s.lines {
		n := i + 1
		rest := line

		if s.tripleDelim != "" {
			idx := strings.Index(rest, s.tripleDelim)
			if idx < 0 {
				continue
			}
			rest = rest[idx+len(s.tripleDelim):]
			s.tripleDelim = ""
		} else if len(s.brackets) == 0 && !s.continued {
			stripped := strings.TrimSpace(line)
			if stripped == "" || strings.HasPrefix(stripped, "#") {
				continue
			}

			if err := s.indent(line, n); err != nil {
				return err
			}

			s.logical.Reset()
			s.logicalLine = n
			s.topColon = false
		}

		if err := s.tokens(rest, n); err != nil {
			return err
		}

		if s.tripleDelim != "" || len(s.brackets) > 0 || s.continued {
			continue
		}

		if err := s.endLogical(); err != nil {
			return err
		}
	}

	last := max(1, len(s.lines))

	if s.tripleDelim != "" {
		return &SyntaxError{s.tripleLine, fmt.Sprintf("unterminated triple-quoted string literal (detected at line %d)", last)}
	}

	if len(s.brackets) > 0 {
		b := s.brackets[len(s.brackets)-1]
		return &SyntaxError{b.line, fmt.Sprintf("'%c' was never closed", b.ch)}
	}

	if s.expectIndent {
		return &SyntaxError{min(s.headerLine+1, last), fmt.Sprintf("expected an indented block after %s on line %d", blockName(s.headerKw), s.headerLine)}
	}

	return nil
}

func (s *pythonScanner) indent(line string, n int) *SyntaxError {
	width := 0
	for _, r := range line {
		if r == ' ' {
			width++
		} else if r == '\t' {
			width += 8 - width%8
		} else {
			break
		}
	}

	top := s.indents[len(s.indents)-1]

	if s.expectIndent {
		if width <= top {
			return &SyntaxError{n, fmt.Sprintf("expected an indented block after %s on line %d", blockName(s.headerKw), s.headerLine)}
		}

		s.indents = append(s.indents, width)
		s.expectIndent = false
		return nil
	}

	if width > top {
		return &SyntaxError{n, "unexpected indent"}
	}

	for width < s.indents[len(s.indents)-1] {
		s.indents = s.indents[:len(s.indents)-1]
	}

	if width != s.indents[len(s.indents)-1] {
		return &SyntaxError{n, "unindent does not match any outer indentation level"}
	}

	return nil
}

// tokens walks one physical line, tracking strings, comments and brackets.
// Code outside strings and comments is appended to the logical line.
func (s *pythonScanner) tokens(line string, n int) *SyntaxError {
	s.continued = false
	s.logical.WriteByte(' ')

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case r == '#':
			return nil

		case r == '\\' && i == len(runes)-1:
			s.continued = true
			return nil

		case r == '"' || r == '\'':
			q := string(r)
			if i+2 < len(runes) && runes[i+1] == r && runes[i+2] == r {
				delim := strings.Repeat(q, 3)
				tail := string(runes[i+3:])
				idx := strings.Index(tail, delim)
				if idx < 0 {
					s.tripleDelim = delim
					s.tripleLine = n
					s.logical.WriteString(`""`)
					return nil
				}
				i += 3 + len([]rune(tail[:idx])) + 2
				s.logical.WriteString(`""`)
				continue
			}

			j := i + 1
			for ; j < len(runes); j++ {
				if runes[j] == '\\' {
					j++
					continue
				}
				if runes[j] == r {
					break
				}
			}
			if j >= len(runes) {
				return &SyntaxError{n, fmt.Sprintf("unterminated string literal (detected at line %d)", n)}
			}
			i = j
			s.logical.WriteString(`""`)

		case r == '(' || r == '[' || r == '{':
			s.brackets = append(s.brackets, bracket{r, n})
			s.logical.WriteRune(r)

		case r == ')' || r == ']' || r == '}':
			if len(s.brackets) == 0 {
				return &SyntaxError{n, fmt.Sprintf("unmatched '%c'", r)}
			}
			top := s.brackets[len(s.brackets)-1]
			if top.ch != closers[r] {
				return &SyntaxError{n, fmt.Sprintf("closing parenthesis '%c' does not match opening parenthesis '%c'", r, top.ch)}
			}
			s.brackets = s.brackets[:len(s.brackets)-1]
			s.logical.WriteRune(r)

		case r == ':' && len(s.brackets) == 0:
			s.topColon = true
			s.logical.WriteRune(r)

		default:
			s.logical.WriteRune(r)
		}
	}

	return nil
}

func (s *pythonScanner) endLogical() *SyntaxError {
	text := strings.TrimSpace(s.logical.String())
	if text == "" {
		return nil
	}

	kw := firstWord(text)
	if kw == "async" {
		kw = firstWord(strings.TrimSpace(strings.TrimPrefix(text, "async")))
	}

	if kw == "print" {
		after := strings.TrimPrefix(text, "print")
		if strings.HasPrefix(after, " ") {
			next := strings.TrimSpace(after)
			if next != "" && !strings.HasPrefix(next, "(") && !strings.HasPrefix(next, "=") {
				return &SyntaxError{s.logicalLine, "Missing parentheses in call to 'print'. Did you mean print(...)?"}
			}
		}
	}

	if pythonBlockKeywords[kw] && !s.topColon {
		return &SyntaxError{s.logicalLine, "expected ':'"}
	}

	if invalidStatement(pythonTokens(text)) {
		return &SyntaxError{s.logicalLine, "invalid syntax"}
	}

	if strings.HasSuffix(text, ":") {
		s.expectIndent = true
		s.headerLine = s.logicalLine
		s.headerKw = kw
	}

	return nil
}

func blockName(kw string) string {
	switch kw {
	case "def":
		return "function definition"
	case "class":
		return "class definition"
	}
	return fmt.Sprintf("'%s' statement", kw)
}

func firstWord(text string) string {
	end := strings.IndexFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	if end < 0 {
		return text
	}
	return text[:end]
}
