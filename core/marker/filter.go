package marker

import "strings"

// filterState is the two-state line machine: PASSTHROUGH drops ordinary
// lines, CAPTURING copies them verbatim.
type filterState int

const (
	statePassthrough filterState = iota
	stateCapturing
)

// Filter collapses content to the regions between substring markers.
// Marker lines themselves are replaced by a single placeholder on each
// transition, except that two placeholders never appear consecutively.
// Content without an opening marker filters to the empty string. The
// operation is pure and deterministic.
func Filter(content string) string {
	state := statePassthrough
	out := make([]string, 0, 16)
	lastWasPlaceholder := false

	emitPlaceholder := func() {
		if !lastWasPlaceholder {
			out = append(out, Placeholder)
			lastWasPlaceholder = true
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		switch state {
		case statePassthrough:
			if trimmed == SnippetOpen {
				state = stateCapturing
				emitPlaceholder()
			}
		case stateCapturing:
			if trimmed == SnippetClose {
				state = statePassthrough
				emitPlaceholder()
				continue
			}
			out = append(out, line)
			lastWasPlaceholder = false
		}
	}

	return strings.Join(out, "\n")
}
