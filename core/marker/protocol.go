// Package marker defines the inline marker protocol: the TODO
// instruction form, the paired substring markers delimiting snippet
// regions, and the line filter that collapses content to those regions.
package marker

import "strings"

// Canonical marker tokens. Lines are compared after whitespace
// trimming; the TODO token is matched as a substring when counting
// marker lines.
const (
	// TodoToken is the substring identifying any marker-bearing line.
	TodoToken = "// TODO: -"

	// TodoPrefix is the prefix of a well-formed instruction line,
	// `// TODO: - <text>`.
	TodoPrefix = "// TODO: - "

	// SnippetOpen opens a retained snippet region.
	SnippetOpen = "// weft:begin"

	// SnippetClose closes a retained snippet region.
	SnippetClose = "// weft:end"

	// Placeholder is emitted where surrounding content was elided.
	Placeholder = "// ..."
)

// InstructionText extracts the free text of an instruction line.
func InstructionText(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, TodoPrefix) {
		return "", false
	}
	text := strings.TrimSpace(trimmed[len(TodoPrefix):])
	if text == "" {
		return "", false
	}
	return text, true
}

// ContainsTodo reports whether the line contains the TODO marker
// substring anywhere.
func ContainsTodo(line string) bool {
	return strings.Contains(line, TodoToken)
}

// HasOpeningMarker reports whether any line of content is an opening
// substring marker.
func HasOpeningMarker(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == SnippetOpen {
			return true
		}
	}
	return false
}

// Span is a snippet region delimited by marker lines. Start and End are
// line indexes of the opening and closing marker; End is -1 for a span
// left unclosed at end of input.
type Span struct {
	Start int
	End   int
}

// Spans returns the marker spans of content in source order. Spans
// never overlap: a second opening marker inside an open span is
// ordinary content, a closing marker outside one is ignored.
func Spans(content string) []Span {
	var spans []Span
	open := -1

	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case open < 0 && trimmed == SnippetOpen:
			open = i
		case open >= 0 && trimmed == SnippetClose:
			spans = append(spans, Span{Start: open, End: i})
			open = -1
		}
	}

	if open >= 0 {
		spans = append(spans, Span{Start: open, End: -1})
	}
	return spans
}
