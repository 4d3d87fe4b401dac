package lang

import (
	"path/filepath"
	"regexp"
)

var objcKeywords = keywordSet(
	"interface", "implementation", "protocol", "property", "synthesize",
	"dynamic", "selector", "encode", "end", "class", "import", "include",
	"define", "if", "else", "switch", "case", "default", "for", "while",
	"do", "break", "continue", "return", "goto", "typedef", "struct",
	"enum", "union", "const", "static", "extern", "inline", "void", "id",
	"self", "super", "nil", "Nil", "YES", "NO", "BOOL", "instancetype",
	"nonatomic", "atomic", "strong", "weak", "copy", "assign", "readonly",
	"readwrite", "nullable", "nonnull",
)

// objcAdapter handles Objective-C headers and implementation files.
// Declaration keywords start with '@', a non-word character, so the
// match template anchors only the trailing edge of the type name.
type objcAdapter struct {
	baseAdapter
	declTemplate string
	declNameRe   *regexp.Regexp
	importRe     *regexp.Regexp
}

func newObjCAdapter() *objcAdapter {
	return &objcAdapter{
		declTemplate: `(?:@interface|@implementation|@protocol)\s+(?:%s)\b`,
		declNameRe: regexp.MustCompile(
			`(?:@interface|@implementation|@protocol)\s+([A-Za-z_]\w*)`,
		),
		importRe: regexp.MustCompile(`^\s*#(?:import|include)\s+"([^"]+)"`),
	}
}

func (o *objcAdapter) Name() string { return "objc" }

func (o *objcAdapter) Extensions() []string { return []string{".h", ".m", ".mm"} }

func (o *objcAdapter) Identifiers(chunk string) []string {
	return extractIdentifiers(chunk, objcKeywords)
}

func (o *objcAdapter) DefinesAny(content string, names []string) bool {
	return matchesDeclaration(content, names, o.declTemplate)
}

func (o *objcAdapter) DeclaredName(line string) (string, bool) {
	return firstDeclaredName(line, o.declNameRe)
}

// ResolveImport resolves quoted #import/#include directives against
// baseDir. Angle-bracket includes name system headers and report
// absence.
func (o *objcAdapter) ResolveImport(line, baseDir string) (string, bool) {
	m := o.importRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return filepath.Join(baseDir, m[1]), true
}
