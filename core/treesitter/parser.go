package treesitter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParseWithLanguage parses source through a parser created for this
// call and discarded afterwards. Parser instances are never reused
// across files; the returned tree is independent of the parser
// lifetime.
func ParseWithLanguage(source []byte, lang *sitter.Language) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, ErrParseFailed
	}

	return &Tree{inner: tree, source: source}, nil
}

// Parse resolves the named grammar through the loader and parses
// source with it.
func (gl *GrammarLoader) Parse(source []byte, grammar string) (*Tree, error) {
	lang, err := gl.Load(grammar)
	if err != nil {
		return nil, err
	}
	return ParseWithLanguage(source, lang)
}

// Parse parses source with the named grammar using the process-wide
// loader.
func Parse(source []byte, grammar string) (*Tree, error) {
	return globalLoader.Parse(source, grammar)
}
