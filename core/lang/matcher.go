package lang

import (
	"regexp"
	"strings"
)

var identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// ReferencePattern compiles the word-boundary pattern used by the
// lexical fallback search. Structural matching compares identifier-node
// text for exact equality, which yields the same boundary semantics:
// a symbol never matches as a prefix of a longer identifier.
func ReferencePattern(symbol string) (*regexp.Regexp, error) {
	return regexp.Compile(`\b` + regexp.QuoteMeta(symbol) + `\b`)
}

// extractIdentifiers returns the identifiers of a chunk in first-seen
// order, with language keywords removed.
func extractIdentifiers(chunk string, keywords map[string]struct{}) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, id := range identifierRe.FindAllString(chunk, -1) {
		if _, isKeyword := keywords[id]; isKeyword {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// matchesDeclaration reports whether content matches the declaration
// template against any of the names. The template carries one `%s`
// placeholder for the name alternation and must anchor the name with a
// trailing word boundary.
func matchesDeclaration(content string, names []string, template string) bool {
	alternation := nameAlternation(names)
	if alternation == "" {
		return false
	}

	re, err := regexp.Compile(strings.Replace(template, "%s", alternation, 1))
	if err != nil {
		return false
	}
	return re.MatchString(content)
}

func nameAlternation(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	return strings.Join(quoted, "|")
}

// firstDeclaredName applies a declaration regex with one capture group
// for the declared type name.
func firstDeclaredName(line string, re *regexp.Regexp) (string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// keywordSet builds the stopword set for identifier extraction.
func keywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// matchBrace returns the offset of the brace closing the one at open,
// or -1 when the block never closes. Lexical only.
func matchBrace(content string, open int) int {
	depth := 0
	for i := open; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// enclosingDeclarationBlock returns the innermost declaration block
// matched by declRe whose braces span the first occurrence of token.
// Matches are scanned in source order; a later containing match starts
// deeper and wins.
func enclosingDeclarationBlock(content, token string, declRe *regexp.Regexp) (string, bool) {
	tokenAt := strings.Index(content, token)
	if tokenAt < 0 {
		return "", false
	}

	found := false
	start, end := 0, 0

	for _, m := range declRe.FindAllStringIndex(content, -1) {
		if m[0] > tokenAt {
			break
		}

		open := strings.IndexByte(content[m[0]:], '{')
		if open < 0 {
			continue
		}
		open += m[0]

		closing := matchBrace(content, open)
		if closing < 0 || tokenAt > closing {
			continue
		}

		found = true
		start, end = m[0], closing
	}

	if !found {
		return "", false
	}
	return content[start : end+1], true
}
