package lang

import (
	"regexp"
)

var swiftKeywords = keywordSet(
	"associatedtype", "class", "deinit", "enum", "extension", "fileprivate",
	"func", "import", "init", "inout", "internal", "let", "open", "operator",
	"private", "protocol", "public", "rethrows", "static", "struct",
	"subscript", "typealias", "var", "actor", "break", "case", "catch",
	"continue", "default", "defer", "do", "else", "fallthrough", "for",
	"guard", "if", "in", "repeat", "return", "switch", "throw", "throws",
	"try", "where", "while", "as", "any", "false", "is", "nil", "self",
	"Self", "super", "true", "async", "await", "some", "weak", "unowned",
	"lazy", "final", "override", "mutating", "nonmutating", "convenience",
	"required", "indirect",
)

// swiftAdapter handles Swift sources. It is the only adapter with a
// dedicated declaration-block locator: Swift files are the primary
// annotation targets, and their method bodies make better prompt
// context than a bare brace block.
type swiftAdapter struct {
	baseAdapter
	declTemplate string
	declNameRe   *regexp.Regexp
	funcRe       *regexp.Regexp
}

func newSwiftAdapter() *swiftAdapter {
	return &swiftAdapter{
		declTemplate: `\b(?:class|struct|enum|protocol|actor|typealias)\s+(?:%s)\b`,
		declNameRe: regexp.MustCompile(
			`\b(?:class|struct|enum|protocol|actor|typealias)\s+([A-Za-z_]\w*)`,
		),
		funcRe: regexp.MustCompile(
			`(?m)^[ \t]*(?:[@\w]+[ \t]+)*(?:func[ \t]+[A-Za-z_]\w*|init[ \t]*\(|deinit\b)`,
		),
	}
}

func (s *swiftAdapter) Name() string { return "swift" }

func (s *swiftAdapter) Extensions() []string { return []string{".swift"} }

func (s *swiftAdapter) Identifiers(chunk string) []string {
	return extractIdentifiers(chunk, swiftKeywords)
}

func (s *swiftAdapter) DefinesAny(content string, names []string) bool {
	return matchesDeclaration(content, names, s.declTemplate)
}

func (s *swiftAdapter) DeclaredName(line string) (string, bool) {
	return firstDeclaredName(line, s.declNameRe)
}

// ResolveImport always reports absence: Swift imports name modules, not
// files, so there is nothing to resolve lexically.
func (s *swiftAdapter) ResolveImport(line, baseDir string) (string, bool) {
	return "", false
}

func (s *swiftAdapter) EnclosingDeclaration(content, token string) (string, bool) {
	return enclosingDeclarationBlock(content, token, s.funcRe)
}
