package instruction

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/adalundhe/weft/core/errors"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLocateSingleInstruction(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "Sources/Editor.swift",
		"final class Editor {\n"+
			"    func save() {\n"+
			"        // TODO: - persist the document\n"+
			"    }\n"+
			"}\n")
	writeFile(t, root, "Sources/Other.swift", "struct Other {}\n")

	instr, err := Locate(LocatorConfig{BaseDir: root})

	require.NoError(t, err)
	assert.Equal(t, path, instr.Path)
	assert.Equal(t, 3, instr.Line)
	assert.Equal(t, "persist the document", instr.Text)
	assert.Equal(t, "// TODO: - persist the document", instr.Raw)
}

func TestLocateNoInstruction(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Sources/Editor.swift", "final class Editor {}\n")

	_, err := Locate(LocatorConfig{BaseDir: root})

	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrInstructionNotFound))
	assert.Equal(t, cerrors.KindNotFound, cerrors.GetKind(err))
}

func TestLocateMultipleInstructionsAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.swift", "// TODO: - first thing\n")
	writeFile(t, root, "b.swift", "// TODO: - second thing\n")

	_, err := Locate(LocatorConfig{BaseDir: root})

	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrMultipleInstructions))
	assert.Equal(t, cerrors.KindMalformedInput, cerrors.GetKind(err))
	assert.Contains(t, err.Error(), "2")
}

func TestLocateMultipleInstructionsInOneFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Editor.swift",
		"// TODO: - first\nstruct Editor {}\n// TODO: - second\n")

	_, err := Locate(LocatorConfig{BaseDir: root})

	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrMultipleInstructions))
}

func TestLocateIgnoresExcludedDirs(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "App/Main.swift", "// TODO: - real one\n")
	writeFile(t, root, "node_modules/pkg/index.js", "// TODO: - vendored noise\n")
	writeFile(t, root, ".build/gen.swift", "// TODO: - generated noise\n")

	instr, err := Locate(LocatorConfig{BaseDir: root})

	require.NoError(t, err)
	assert.Equal(t, path, instr.Path)
}

func TestLocateIgnoresUnsupportedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.txt", "// TODO: - not source code\n")

	_, err := Locate(LocatorConfig{BaseDir: root})

	assert.True(t, errors.Is(err, cerrors.ErrInstructionNotFound))
}

func TestLocateBareMarkerIsNotAnInstruction(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Editor.swift", "struct Editor {\n    // TODO: -\n}\n")

	_, err := Locate(LocatorConfig{BaseDir: root})

	assert.True(t, errors.Is(err, cerrors.ErrInstructionNotFound))
}

func TestLocateMissingBaseDir(t *testing.T) {
	_, err := Locate(LocatorConfig{BaseDir: filepath.Join(t.TempDir(), "absent")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrSearchRootUnreadable))
}

func TestLocateOverridePath(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "pinned.swift", "struct Pinned {\n    // TODO: - use me\n}\n")
	writeFile(t, root, "decoy.swift", "// TODO: - never visited\n")

	instr, err := Locate(LocatorConfig{BaseDir: root, OverridePath: path})

	require.NoError(t, err)
	assert.Equal(t, path, instr.Path)
	assert.Equal(t, "use me", instr.Text)
}

func TestLocateOverridePathMissingFile(t *testing.T) {
	_, err := Locate(LocatorConfig{OverridePath: filepath.Join(t.TempDir(), "gone.swift")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrInstructionNotFound))
}

func TestLocateOverridePathWithoutMarker(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "empty.swift", "struct Empty {}\n")

	_, err := Locate(LocatorConfig{OverridePath: path})

	assert.True(t, errors.Is(err, cerrors.ErrInstructionNotFound))
}
