package enclosing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInnermostBlock(t *testing.T) {
	content := strings.Join([]string{
		"struct Outer {",
		"    struct Inner {",
		"        let field = Target()",
		"    }",
		"}",
	}, "\n")

	block, ok := Extract(content, "Target")

	require.True(t, ok)
	assert.Contains(t, block.Text, "Target")
	assert.True(t, strings.HasPrefix(block.Text, "{"))
	assert.True(t, strings.HasSuffix(block.Text, "}"))
	assert.NotContains(t, block.Text, "Outer")
	assert.NotContains(t, block.Text, "Inner")
}

func TestExtractSmallestSpanWins(t *testing.T) {
	content := "{ a { b { Target } c } d }"

	block, ok := Extract(content, "Target")

	require.True(t, ok)
	assert.Equal(t, "{ Target }", block.Text)
}

func TestExtractTokenAbsent(t *testing.T) {
	_, ok := Extract("{ nothing here }", "Target")
	assert.False(t, ok)
}

func TestExtractNoEnclosingBlock(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"token outside all blocks", "Target\n{ other }"},
		{"no delimiters at all", "let Target = 1"},
		{"token after unclosed open", "{ Target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Extract(tt.content, "Target")
			assert.False(t, ok)
		})
	}
}

func TestExtractIgnoresUnmatchedClosers(t *testing.T) {
	content := "} } { Target }"

	block, ok := Extract(content, "Target")

	require.True(t, ok)
	assert.Equal(t, "{ Target }", block.Text)
}

func TestExtractUsesFirstTokenOccurrence(t *testing.T) {
	content := "{ Target } { Target wider block }"

	block, ok := Extract(content, "Target")

	require.True(t, ok)
	assert.Equal(t, 0, block.Start)
	assert.Equal(t, "{ Target }", block.Text)
}

func TestExtractLexicalOnly(t *testing.T) {
	// A token inside a string literal is treated identically to code.
	content := `{ let s = "Target" }`

	block, ok := Extract(content, "Target")

	require.True(t, ok)
	assert.Equal(t, content, block.Text)
}

func TestExtractPairGeneralizes(t *testing.T) {
	content := "call(a, inner(Target), b)"

	block, ok := ExtractPair(content, "Target", Parens)

	require.True(t, ok)
	assert.Equal(t, "(Target)", block.Text)

	content = "[outer [Target] rest]"
	block, ok = ExtractPair(content, "Target", Brackets)

	require.True(t, ok)
	assert.Equal(t, "[Target]", block.Text)
}

func TestExtractInclusiveOffsets(t *testing.T) {
	content := "ab{cd}ef"

	block, ok := Extract(content, "cd")

	require.True(t, ok)
	assert.Equal(t, 2, block.Start)
	assert.Equal(t, 5, block.End)
	assert.Equal(t, "{cd}", block.Text)
}
