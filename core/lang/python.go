package lang

import (
	"path/filepath"
	"regexp"
	"strings"
)

var pythonKeywords = keywordSet(
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield", "self", "cls", "match",
)

type pythonAdapter struct {
	baseAdapter
	declTemplate string
	declNameRe   *regexp.Regexp
	importRe     *regexp.Regexp
}

func newPythonAdapter() *pythonAdapter {
	return &pythonAdapter{
		declTemplate: `\bclass\s+(?:%s)\b`,
		declNameRe:   regexp.MustCompile(`\bclass\s+([A-Za-z_]\w*)`),
		importRe:     regexp.MustCompile(`^\s*(?:from|import)\s+(\.+[\w.]*|[\w.]+)`),
	}
}

func (p *pythonAdapter) Name() string { return "python" }

func (p *pythonAdapter) Extensions() []string { return []string{".py"} }

func (p *pythonAdapter) Identifiers(chunk string) []string {
	return extractIdentifiers(chunk, pythonKeywords)
}

func (p *pythonAdapter) DefinesAny(content string, names []string) bool {
	return matchesDeclaration(content, names, p.declTemplate)
}

func (p *pythonAdapter) DeclaredName(line string) (string, bool) {
	return firstDeclaredName(line, p.declNameRe)
}

// ResolveImport resolves explicit relative imports (leading dots)
// against baseDir; absolute imports depend on sys.path and report
// absence.
func (p *pythonAdapter) ResolveImport(line, baseDir string) (string, bool) {
	m := p.importRe.FindStringSubmatch(line)
	if m == nil || !strings.HasPrefix(m[1], ".") {
		return "", false
	}

	module := m[1]
	dir := baseDir
	for strings.HasPrefix(module, ".") {
		module = module[1:]
		if strings.HasPrefix(module, ".") {
			dir = filepath.Dir(dir)
		}
	}
	if module == "" {
		return "", false
	}
	return filepath.Join(dir, strings.ReplaceAll(module, ".", string(filepath.Separator))+".py"), true
}
