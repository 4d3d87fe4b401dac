package prompt

import (
	"strconv"
	"strings"

	cerrors "github.com/adalundhe/weft/core/errors"
	"github.com/adalundhe/weft/core/marker"
)

// Scrub enforces the two-marker shape when diff mode is off. The first
// line exactly matching the trimmed primary marker and the last line
// merely containing the marker substring survive; every other
// marker-containing line is dropped. Non-marker lines pass through in
// order. A prompt without the primary line is malformed.
func Scrub(text, primary string) (string, error) {
	primary = strings.TrimSpace(primary)
	lines := strings.Split(text, "\n")

	primaryIdx := -1
	lastMarkerIdx := -1
	for i, line := range lines {
		if primaryIdx < 0 && strings.TrimSpace(line) == primary {
			primaryIdx = i
		}
		if marker.ContainsTodo(line) {
			lastMarkerIdx = i
		}
	}

	if primaryIdx < 0 {
		return "", cerrors.From(cerrors.ErrPrimaryMarkerMissing).WithDetail(primary, "absent")
	}

	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if !marker.ContainsTodo(line) || i == primaryIdx || i == lastMarkerIdx {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, "\n"), nil
}

// Validate counts marker-containing lines: exactly 2 with diff mode
// off, 2 or 3 with it on. Any other count is a hard failure carrying
// the offending count.
func Validate(text string, diffMode bool) error {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if marker.ContainsTodo(line) {
			count++
		}
	}

	if diffMode {
		if count == 2 || count == 3 {
			return nil
		}
		return cerrors.From(cerrors.ErrMarkerCountMismatch).
			WithDetail("2 or 3", strconv.Itoa(count))
	}

	if count == 2 {
		return nil
	}
	return cerrors.From(cerrors.ErrMarkerCountMismatch).
		WithDetail("2", strconv.Itoa(count))
}
