package lang

import (
	"path/filepath"
	"regexp"
	"strings"
)

var typescriptKeywords = keywordSet(
	"break", "case", "catch", "class", "const", "continue", "debugger",
	"default", "delete", "do", "else", "enum", "export", "extends",
	"finally", "for", "function", "if", "implements", "import", "in",
	"instanceof", "interface", "let", "namespace", "new", "of", "private",
	"protected", "public", "readonly", "return", "static", "super",
	"switch", "this", "throw", "try", "type", "typeof", "var", "void",
	"while", "yield", "async", "await", "declare", "abstract", "keyof",
	"infer", "is", "as", "satisfies", "true", "false", "null",
	"undefined", "never", "unknown", "any", "string", "number", "boolean",
	"from", "require",
)

type typescriptAdapter struct {
	baseAdapter
	declTemplate string
	declNameRe   *regexp.Regexp
	importRe     *regexp.Regexp
}

func newTypeScriptAdapter() *typescriptAdapter {
	return &typescriptAdapter{
		declTemplate: `\b(?:class|interface|enum|type|namespace)\s+(?:%s)\b`,
		declNameRe: regexp.MustCompile(
			`\b(?:class|interface|enum|type|namespace)\s+([A-Za-z_]\w*)`,
		),
		importRe: regexp.MustCompile(
			`(?:from\s+|import\s+|require\s*\(\s*)['"](\.[^'"]+)['"]`,
		),
	}
}

func (t *typescriptAdapter) Name() string { return "typescript" }

func (t *typescriptAdapter) Extensions() []string {
	return []string{".ts", ".tsx", ".mts"}
}

func (t *typescriptAdapter) Identifiers(chunk string) []string {
	return extractIdentifiers(chunk, typescriptKeywords)
}

func (t *typescriptAdapter) DefinesAny(content string, names []string) bool {
	return matchesDeclaration(content, names, t.declTemplate)
}

func (t *typescriptAdapter) DeclaredName(line string) (string, bool) {
	return firstDeclaredName(line, t.declNameRe)
}

func (t *typescriptAdapter) ResolveImport(line, baseDir string) (string, bool) {
	m := t.importRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}

	spec := m[1]
	if !strings.Contains(filepath.Base(spec), ".") {
		spec += ".ts"
	}
	return filepath.Join(baseDir, spec), true
}
