package analysis

import "strings"

const (
	Auto       = "auto"
	Python     = "python"
	JavaScript = "javascript"
	TypeScript = "typescript"
	Java       = "java"
	C          = "c"
	CPP        = "cpp"
)

// Indicator lists are probed in order; the first language with a match wins.
var languageIndicators = []struct {
	language   string
	indicators []string
}{
	{Python, []string{
		"def ", "import ", "from ", "print(", "if __name__", "lambda ", "yield ",
		"try:", "except:", "finally:", "with ", "as ", "elif ", "else:", "class ",
		"@", "__init__", "self.", "None", "True", "False",
	}},
	{Java, []string{
		"public class", "public static void main", "System.out.println",
		"import java.", "private ", "protected ", "public ", "extends ", "implements ",
		"@Override", "class ", "interface ", "package ", "throws ", "throw new",
	}},
	{CPP, []string{
		"#include <iostream>", "#include <vector>", "#include <string>", "using namespace std",
		"std::", "cout <<", "cin >>", "::", "class ", "public:", "private:", "protected:",
		"template<", "typename ", "nullptr", "auto ", "constexpr ", "override ", "final ",
	}},
	{C, []string{
		"#include <stdio.h>", "#include <stdlib.h>", "#include <string.h>", "#include <math.h>",
		"printf(", "scanf(", "malloc(", "calloc(", "free(", "struct ", "typedef ", "enum ",
		"#define ", "#ifdef ", "#ifndef ", "#endif", "#pragma ", "->", "sizeof(", "strlen(",
	}},
	{TypeScript, []string{
		"interface ", "type ", "enum ", "as ", "public ", "private ", "protected ",
		"readonly ", "abstract ", "implements ", "extends ", ": string", ": number",
		": boolean", ": any", ": void", "Array<", "Promise<", "Map<", "Set<", "<>",
		"@", "namespace ", "module ", "declare ", "keyof ", "typeof ", "is ",
	}},
	{JavaScript, []string{
		"function ", "=>", "console.log", "const ", "let ", "var ", "return ",
		"if (", "for (", "while (", "switch (", "case ", "break;", "continue;",
		"document.", "window.", "setTimeout", "setInterval", "addEventListener",
		"async ", "await ", "Promise", "async function", "new Promise",
	}},
}

// DetectLanguage returns hint unless it is empty or "auto", in which case
// the language is guessed from indicator substrings.
func DetectLanguage(code string, hint string) string {
	hint = strings.TrimSpace(hint)
	if hint != "" && !strings.EqualFold(hint, Auto) {
		return hint
	}

	text := strings.TrimSpace(code)
	if text == "" {
		return JavaScript
	}

	for _, l := range languageIndicators {
		if containsAny(text, l.indicators...) {
			return l.language
		}
	}

	switch {
	case strings.Contains(text, "{") && strings.Contains(text, "}"):
		return JavaScript
	case strings.Contains(text, "def ") || strings.Contains(text, "class "):
		return Python
	case strings.Contains(text, "#include"):
		return C
	}

	return JavaScript
}

func IsJSFamily(language string) bool {
	switch strings.ToLower(language) {
	case JavaScript, TypeScript:
		return true
	default:
		return false
	}
}
