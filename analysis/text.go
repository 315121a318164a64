package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// Fingerprint identifies a snippet for caching.
func Fingerprint(language string, code string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(language)))
	h.Write([]byte{0})
	h.Write([]byte(code))
	return hex.EncodeToString(h.Sum(nil))
}

// SplitLines splits on \n, \r\n and \r. A trailing line break does not
// produce an empty last line, and empty text has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")

	return strings.Split(text, "\n")
}

// Length counts characters, not bytes.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate keeps the first n characters of text.
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}

	runes := []rune(text)
	return string(runes[:n])
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, p := range suffixes {
		if strings.HasSuffix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Statement terminators shared by the semicolon rules and fixes.
var (
	jsSkipPrefixes   = []string{"//", "/*", "*", "function", "if", "for", "while", "switch", "try", "catch", "else"}
	jsTerminators    = []string{";", "{", "}", ":", ",", ")"}
	jsStatementWords = []string{"const ", "let ", "var ", "return ", "break", "continue", "throw"}
)

// NeedsJSSemicolon reports whether a JavaScript or TypeScript line is a
// statement that should end with a semicolon but does not.
func NeedsJSSemicolon(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" || hasAnyPrefix(s, jsSkipPrefixes...) {
		return false
	}

	if hasAnySuffix(s, jsTerminators...) {
		return false
	}

	return containsAny(s, jsStatementWords...)
}
