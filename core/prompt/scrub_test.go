package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/adalundhe/weft/core/errors"
)

func TestScrubKeepsPrimaryAndTrailingMarker(t *testing.T) {
	text := strings.Join([]string{
		"Line one",
		"// TODO: - Primary Marker",
		"Middle code",
		"// TODO: - Extra Marker",
		"End code",
		"// TODO: - CTA Marker",
	}, "\n")

	out, err := Scrub(text, "// TODO: - Primary Marker")

	require.NoError(t, err)
	want := strings.Join([]string{
		"Line one",
		"// TODO: - Primary Marker",
		"Middle code",
		"End code",
		"// TODO: - CTA Marker",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestScrubMissingPrimary(t *testing.T) {
	text := "code\n// TODO: - something else\nmore code"

	_, err := Scrub(text, "// TODO: - the primary")

	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrPrimaryMarkerMissing))
	assert.Equal(t, cerrors.KindMalformedInput, cerrors.GetKind(err))
}

func TestScrubFirstPrimaryOccurrenceWins(t *testing.T) {
	text := strings.Join([]string{
		"// TODO: - Primary",
		"code",
		"// TODO: - Primary",
		"// TODO: - trailing",
	}, "\n")

	out, err := Scrub(text, "// TODO: - Primary")

	require.NoError(t, err)
	assert.Equal(t, "// TODO: - Primary\ncode\n// TODO: - trailing", out)
}

func TestScrubPrimaryMatchIgnoresIndentation(t *testing.T) {
	text := "    // TODO: - Primary\ncode\n// TODO: - trailing"

	out, err := Scrub(text, "// TODO: - Primary")

	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestScrubPrimaryIsOnlyMarker(t *testing.T) {
	text := "before\n// TODO: - Primary\nafter"

	out, err := Scrub(text, "// TODO: - Primary")

	require.NoError(t, err)
	assert.Equal(t, text, out)
}

// =============================================================================
// Validate
// =============================================================================

func promptWithMarkers(n int) string {
	lines := []string{"plain line"}
	for i := 0; i < n; i++ {
		lines = append(lines, "// TODO: - marker", "code between")
	}
	return strings.Join(lines, "\n")
}

func TestValidateCounts(t *testing.T) {
	tests := []struct {
		name     string
		markers  int
		diffMode bool
		wantErr  bool
	}{
		{"two without diff", 2, false, false},
		{"one without diff", 1, false, true},
		{"three without diff", 3, false, true},
		{"zero without diff", 0, false, true},
		{"two with diff", 2, true, false},
		{"three with diff", 3, true, false},
		{"one with diff", 1, true, true},
		{"four with diff", 4, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(promptWithMarkers(tt.markers), tt.diffMode)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, cerrors.ErrMarkerCountMismatch))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateReportsOffendingCount(t *testing.T) {
	err := Validate(promptWithMarkers(3), false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2, got 3")
}

func TestScrubbedPromptValidates(t *testing.T) {
	instruction := "// TODO: - persist the document"
	assembled := Assemble(AssembleInput{
		InstructionLine: instruction,
		Files: []FileSection{
			{Path: "Editor.swift", Content: "func save() {\n    " + instruction + "\n}"},
		},
	})

	require.Error(t, Validate(assembled, false), "marker copy in the file section must fail pre-scrub")

	scrubbed, err := Scrub(assembled, instruction)
	require.NoError(t, err)
	assert.NoError(t, Validate(scrubbed, false))
}
