package pipeline

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/weft/core/clipboard"
	"github.com/adalundhe/weft/core/detect"
	cerrors "github.com/adalundhe/weft/core/errors"
	"github.com/adalundhe/weft/core/git"
	"github.com/adalundhe/weft/core/prompt"
	"github.com/adalundhe/weft/core/scan"
	"github.com/adalundhe/weft/core/treesitter"
)

// =============================================================================
// Test Helpers
// =============================================================================

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// failingGrammars forces the lexical fallback so results do not depend
// on grammars installed on the host.
func failingGrammars() *treesitter.GrammarLoader {
	return treesitter.NewGrammarLoader(treesitter.WithRequireVerification(true))
}

func runOpts(root string, buf *bytes.Buffer) Options {
	return Options{
		BaseDir:  root,
		Sink:     clipboard.WriterSink{Out: buf, Label: "stdout"},
		Grammars: failingGrammars(),
	}
}

func markerLineCount(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "// TODO: -") {
			count++
		}
	}
	return count
}

func editorProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeFile(t, root, "Package.swift", "// swift-tools-version:5.9\n")
	writeFile(t, root, "Sources/Editor.swift",
		"final class Editor {\n"+
			"    func save() {\n"+
			"        // TODO: - persist the document\n"+
			"    }\n"+
			"}\n")
	writeFile(t, root, "Sources/History.swift",
		"struct History {\n    let editor: Editor\n}\n")
	writeFile(t, root, "node_modules/junk.js", "class Editor {}\n")
	return root
}

// =============================================================================
// End-to-End Runs
// =============================================================================

func TestRunEndToEnd(t *testing.T) {
	root := editorProject(t)
	var buf bytes.Buffer

	result, err := Run(runOpts(root, &buf))

	require.NoError(t, err)
	assert.Equal(t, "Editor", result.Symbol)
	assert.Equal(t, root, result.SearchRoot)
	assert.Equal(t, 3, result.Instruction.Line)
	assert.False(t, result.DiffUsed)
	assert.Equal(t, "stdout", result.SinkName)

	require.Len(t, result.Candidates, 2)
	for _, candidate := range result.Candidates {
		assert.NotContains(t, candidate, "node_modules")
	}

	text := buf.String()
	require.NotEmpty(t, text)
	assert.True(t, strings.HasPrefix(text, "// TODO: - persist the document\n"))
	assert.True(t, strings.HasSuffix(text, prompt.CallToAction+"\n"))
	assert.Contains(t, text, "// File: "+filepath.Join("Sources", "Editor.swift"))
	assert.Contains(t, text, "// File: "+filepath.Join("Sources", "History.swift"))
	assert.Equal(t, 2, markerLineCount(text))
	assert.Equal(t, text, result.Prompt)
}

func TestRunTagsFallbackOutcomes(t *testing.T) {
	root := editorProject(t)
	var buf bytes.Buffer

	result, err := Run(runOpts(root, &buf))

	require.NoError(t, err)
	require.NotEmpty(t, result.Outcomes)
	for _, outcome := range result.Outcomes {
		assert.Equal(t, scan.OutcomeFallback, outcome.Outcome)
	}
}

func TestRunNormalizesEscapedNewlines(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Package.swift", "// swift-tools-version:5.9\n")
	writeFile(t, root, "Greeter.swift",
		"struct Greeter {\n"+
			"    // TODO: - localize the template\n"+
			"    let template = \"Hello\\nWorld\"\n"+
			"}\n")
	var buf bytes.Buffer

	_, err := Run(runOpts(root, &buf))

	require.NoError(t, err)
	text := buf.String()
	assert.Contains(t, text, "Hello\nWorld")
	assert.NotContains(t, text, `\n`)
}

func TestRunBoundsToSiblingProject(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "Apps/Editor/Package.swift", "// swift-tools-version:5.9\n")
	writeFile(t, base, "Apps/Editor/Sources/Editor.swift",
		"final class Editor {\n    // TODO: - wire up undo\n}\n")
	writeFile(t, base, "Apps/Other/Package.swift", "// swift-tools-version:5.9\n")
	writeFile(t, base, "Apps/Other/Uses.swift", "let e = Editor()\n")
	var buf bytes.Buffer

	result, err := Run(runOpts(base, &buf))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "Apps", "Editor"), result.SearchRoot)
	assert.NotContains(t, buf.String(), "Uses.swift")
}

// =============================================================================
// Failure Modes
// =============================================================================

func TestRunNoInstruction(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Package.swift", "// swift-tools-version:5.9\n")
	writeFile(t, root, "Empty.swift", "struct Empty {}\n")

	_, err := Run(runOpts(root, &bytes.Buffer{}))

	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrInstructionNotFound))
}

func TestRunMultipleInstructions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Package.swift", "// swift-tools-version:5.9\n")
	writeFile(t, root, "A.swift", "struct A {\n    // TODO: - first\n}\n")
	writeFile(t, root, "B.swift", "struct B {\n    // TODO: - second\n}\n")

	_, err := Run(runOpts(root, &bytes.Buffer{}))

	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrMultipleInstructions))
}

func TestRunNoDeclarationAboveMarker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Package.swift", "// swift-tools-version:5.9\n")
	writeFile(t, root, "Loose.swift", "// TODO: - floating instruction\nlet x = 1\n")

	_, err := Run(runOpts(root, &bytes.Buffer{}))

	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrNoDeclaration))
}

func TestRunMissingBaseDir(t *testing.T) {
	_, err := Run(runOpts(filepath.Join(t.TempDir(), "absent"), &bytes.Buffer{}))

	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrSearchRootUnreadable))
}

// =============================================================================
// Diff Mode
// =============================================================================

func requireGitBinary(t *testing.T) {
	t.Helper()

	if detect.Which("git") == "" {
		t.Skip("git binary not available")
	}
}

func initGitRepo(t *testing.T, dir string) {
	t.Helper()

	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "weft@example.com"},
		{"config", "user.name", "Weft Tests"},
		{"add", "."},
		{"commit", "-m", "initial"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v failed: %s", args, out)
	}
}

func TestRunDiffModeOutsideRepository(t *testing.T) {
	root := editorProject(t)
	opts := runOpts(root, &bytes.Buffer{})
	opts.DiffMode = true

	_, err := Run(opts)

	require.Error(t, err)
	assert.True(t, errors.Is(err, git.ErrNotRepository))
}

func TestRunDiffModeDirtyTree(t *testing.T) {
	requireGitBinary(t)
	root := editorProject(t)
	initGitRepo(t, root)
	writeFile(t, root, "Sources/History.swift",
		"struct History {\n    let editor: Editor\n    let depth = 10\n}\n")
	var buf bytes.Buffer
	opts := runOpts(root, &buf)
	opts.DiffMode = true

	result, err := Run(opts)

	require.NoError(t, err)
	assert.True(t, result.DiffUsed)
	text := buf.String()
	assert.Contains(t, text, "// Diff:")
	assert.Contains(t, text, "+    let depth = 10")
	count := markerLineCount(text)
	assert.True(t, count == 2 || count == 3, "marker count %d", count)
}

func TestRunDiffModeCleanTreeStaysOff(t *testing.T) {
	requireGitBinary(t)
	root := editorProject(t)
	initGitRepo(t, root)
	var buf bytes.Buffer
	opts := runOpts(root, &buf)
	opts.DiffMode = true

	result, err := Run(opts)

	require.NoError(t, err)
	assert.False(t, result.DiffUsed)
	assert.NotContains(t, buf.String(), "// Diff:")
	assert.Equal(t, 2, markerLineCount(buf.String()))
}
