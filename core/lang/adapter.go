// Package lang provides per-language support adapters: identifier
// extraction, definition matching, import resolution, and optional
// declaration-block location. Adapters are dispatched by normalized
// file extension through a fixed registry built once at startup.
package lang

import (
	"path/filepath"
	"strings"
)

// Adapter is the capability object one language exposes to the
// scanner and the prompt assembler.
type Adapter interface {
	// Name returns the canonical language name (also the grammar name
	// used for structural parsing).
	Name() string

	// Extensions returns the file extensions this adapter claims,
	// lowercase with leading dot.
	Extensions() []string

	// Identifiers extracts candidate identifiers from a source chunk.
	// Heuristic: used only to narrow candidate sets, not required to be
	// exhaustive.
	Identifiers(chunk string) []string

	// DefinesAny reports whether content defines any of the supplied
	// type names via the language's declaration-keyword pattern. The
	// name must match on a word boundary, never as a prefix of a longer
	// identifier.
	DefinesAny(content string, names []string) bool

	// DeclaredName extracts the type name declared on a single line,
	// when the line carries one of the language's declaration keywords.
	DeclaredName(line string) (string, bool)

	// ResolveImport resolves an import/include line to a file path
	// relative to baseDir. Absence means "no resolvable dependency on
	// this line", not an error.
	ResolveImport(line, baseDir string) (string, bool)

	// EnclosingDeclaration locates a language-specific declaration
	// block (function or method) around the first occurrence of token.
	// The base implementation always returns absence; absence is a
	// legitimate final answer.
	EnclosingDeclaration(content, token string) (string, bool)
}

// Registry maps normalized extensions to adapters. Unsupported
// extensions are excluded from scanning entirely.
type Registry struct {
	byExtension map[string]Adapter
	adapters    []Adapter
}

// NewRegistry builds the fixed adapter registry.
func NewRegistry() *Registry {
	r := &Registry{byExtension: make(map[string]Adapter)}
	r.register(newSwiftAdapter())
	r.register(newObjCAdapter())
	r.register(newJavaScriptAdapter())
	r.register(newTypeScriptAdapter())
	r.register(newPythonAdapter())
	r.register(newGoAdapter())
	return r
}

func (r *Registry) register(a Adapter) {
	r.adapters = append(r.adapters, a)
	for _, ext := range a.Extensions() {
		r.byExtension[strings.ToLower(ext)] = a
	}
}

// ForExtension looks up the adapter for an extension, dot-prefixed or
// not, in any case.
func (r *Registry) ForExtension(ext string) (Adapter, bool) {
	normalized := strings.ToLower(ext)
	if normalized != "" && !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}
	a, ok := r.byExtension[normalized]
	return a, ok
}

// ForFile looks up the adapter for a file path by its extension.
func (r *Registry) ForFile(path string) (Adapter, bool) {
	return r.ForExtension(filepath.Ext(path))
}

// Supported reports whether the file's extension has an adapter.
func (r *Registry) Supported(path string) bool {
	_, ok := r.ForFile(path)
	return ok
}

// Extensions returns every registered extension.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	return exts
}

// Adapters returns the registered adapters in registration order.
func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

var defaultRegistry = NewRegistry()

// Default returns the shared registry.
func Default() *Registry {
	return defaultRegistry
}

// baseAdapter supplies the default no-op declaration capability.
type baseAdapter struct{}

func (baseAdapter) EnclosingDeclaration(string, string) (string, bool) {
	return "", false
}
