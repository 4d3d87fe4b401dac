package lang

import "regexp"

var goKeywords = keywordSet(
	"break", "case", "chan", "const", "continue", "default", "defer",
	"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
	"interface", "map", "package", "range", "return", "select", "struct",
	"switch", "type", "var", "nil", "true", "false", "iota", "append",
	"cap", "close", "copy", "delete", "len", "make", "new", "panic",
	"print", "println", "recover", "error", "string", "int", "bool",
	"byte", "rune",
)

type goAdapter struct {
	baseAdapter
	declTemplate string
	declNameRe   *regexp.Regexp
}

func newGoAdapter() *goAdapter {
	return &goAdapter{
		declTemplate: `\btype\s+(?:%s)\b`,
		declNameRe:   regexp.MustCompile(`\btype\s+([A-Za-z_]\w*)`),
	}
}

func (g *goAdapter) Name() string { return "go" }

func (g *goAdapter) Extensions() []string { return []string{".go"} }

func (g *goAdapter) Identifiers(chunk string) []string {
	return extractIdentifiers(chunk, goKeywords)
}

func (g *goAdapter) DefinesAny(content string, names []string) bool {
	return matchesDeclaration(content, names, g.declTemplate)
}

func (g *goAdapter) DeclaredName(line string) (string, bool) {
	return firstDeclaredName(line, g.declNameRe)
}

// ResolveImport always reports absence: Go import paths are resolved
// by the build system, not relative to the importing file.
func (g *goAdapter) ResolveImport(line, baseDir string) (string, bool) {
	return "", false
}
