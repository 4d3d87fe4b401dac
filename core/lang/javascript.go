package lang

import (
	"path/filepath"
	"regexp"
	"strings"
)

var javascriptKeywords = keywordSet(
	"break", "case", "catch", "class", "const", "continue", "debugger",
	"default", "delete", "do", "else", "export", "extends", "finally",
	"for", "function", "if", "import", "in", "instanceof", "new", "of",
	"return", "super", "switch", "this", "throw", "try", "typeof", "var",
	"void", "while", "with", "yield", "let", "static", "async", "await",
	"get", "set", "true", "false", "null", "undefined", "require", "from",
)

type javascriptAdapter struct {
	baseAdapter
	declTemplate string
	declNameRe   *regexp.Regexp
	importRe     *regexp.Regexp
}

func newJavaScriptAdapter() *javascriptAdapter {
	return &javascriptAdapter{
		declTemplate: `\bclass\s+(?:%s)\b`,
		declNameRe:   regexp.MustCompile(`\bclass\s+([A-Za-z_]\w*)`),
		importRe: regexp.MustCompile(
			`(?:from\s+|import\s+|require\s*\(\s*)['"](\.[^'"]+)['"]`,
		),
	}
}

func (j *javascriptAdapter) Name() string { return "javascript" }

func (j *javascriptAdapter) Extensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx"}
}

func (j *javascriptAdapter) Identifiers(chunk string) []string {
	return extractIdentifiers(chunk, javascriptKeywords)
}

func (j *javascriptAdapter) DefinesAny(content string, names []string) bool {
	return matchesDeclaration(content, names, j.declTemplate)
}

func (j *javascriptAdapter) DeclaredName(line string) (string, bool) {
	return firstDeclaredName(line, j.declNameRe)
}

// ResolveImport resolves relative import/require specifiers against
// baseDir, defaulting the extension to .js when the specifier omits
// one. Bare module specifiers report absence.
func (j *javascriptAdapter) ResolveImport(line, baseDir string) (string, bool) {
	m := j.importRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}

	spec := m[1]
	if !strings.Contains(filepath.Base(spec), ".") {
		spec += ".js"
	}
	return filepath.Join(baseDir, spec), true
}
