package treesitter

import (
	"path/filepath"
	"sort"
	"strings"
)

// GrammarInfo describes one installable grammar shared library.
// Subdir names the grammar's directory inside repositories hosting
// more than one grammar.
type GrammarInfo struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions,omitempty"`
	Repository string   `json:"repository"`
	Subdir     string   `json:"subdir,omitempty"`
}

// KnownGrammars lists the grammars the scanner can dispatch to. The
// grammar name doubles as the dlopen symbol suffix (tree_sitter_<name>).
var KnownGrammars = map[string]GrammarInfo{
	"swift":      {Name: "swift", Extensions: []string{".swift"}, Repository: "github.com/alex-pinkus/tree-sitter-swift"},
	"objc":       {Name: "objc", Extensions: []string{".h", ".m", ".mm"}, Repository: "github.com/tree-sitter-grammars/tree-sitter-objc"},
	"javascript": {Name: "javascript", Extensions: []string{".js", ".mjs", ".cjs", ".jsx"}, Repository: "github.com/tree-sitter/tree-sitter-javascript"},
	"typescript": {Name: "typescript", Extensions: []string{".ts", ".mts"}, Repository: "github.com/tree-sitter/tree-sitter-typescript", Subdir: "typescript"},
	"tsx":        {Name: "tsx", Extensions: []string{".tsx"}, Repository: "github.com/tree-sitter/tree-sitter-typescript", Subdir: "tsx"},
	"python":     {Name: "python", Extensions: []string{".py"}, Repository: "github.com/tree-sitter/tree-sitter-python"},
	"go":         {Name: "go", Extensions: []string{".go"}, Repository: "github.com/tree-sitter/tree-sitter-go"},
}

// GrammarForFile maps a file path to the grammar claiming its
// extension. Extensions are matched case-insensitively.
func GrammarForFile(filePath string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == "" {
		return "", false
	}

	for name, info := range KnownGrammars {
		for _, candidate := range info.Extensions {
			if candidate == ext {
				return name, true
			}
		}
	}
	return "", false
}

// ListKnownGrammars returns the known grammars sorted by name.
func ListKnownGrammars() []GrammarInfo {
	result := make([]GrammarInfo, 0, len(KnownGrammars))
	for _, info := range KnownGrammars {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// GetGrammarInfo looks up one known grammar by name.
func GetGrammarInfo(name string) (GrammarInfo, bool) {
	info, ok := KnownGrammars[name]
	return info, ok
}
