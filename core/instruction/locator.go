// Package instruction locates the single actionable TODO marker in a
// source tree and derives the target symbol from the declaration
// preceding it.
package instruction

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adalundhe/weft/core/detect"
	cerrors "github.com/adalundhe/weft/core/errors"
	"github.com/adalundhe/weft/core/lang"
	"github.com/adalundhe/weft/core/marker"
	"github.com/adalundhe/weft/core/scan"
)

// Instruction is the one actionable marker of an invocation.
type Instruction struct {
	// Path is the file carrying the marker.
	Path string

	// Line is the 1-based line number of the marker.
	Line int

	// Text is the free text after the marker prefix.
	Text string

	// Raw is the whitespace-trimmed marker line.
	Raw string
}

// LocatorConfig describes one instruction search.
type LocatorConfig struct {
	// BaseDir is searched when no override is given.
	BaseDir string

	// OverridePath names the instruction file directly, bypassing the
	// tree search.
	OverridePath string

	// ExcludedDirs prune the search; nil selects the defaults.
	ExcludedDirs []string

	// Registry gates the search to supported source files.
	Registry *lang.Registry

	// Store supplies file contents; nil creates a private store.
	Store *scan.ContentStore

	Logger *slog.Logger
}

// Locate finds exactly one instruction. Zero instructions anywhere is
// NotFound; more than one, whether in one file or spread across the
// tree, is MalformedInput reporting the offending count.
func Locate(cfg LocatorConfig) (*Instruction, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := cfg.Store
	if store == nil {
		store = scan.NewContentStore(scan.DefaultContentCacheSize)
	}

	if cfg.OverridePath != "" {
		return locateInFile(cfg.OverridePath, store)
	}

	registry := cfg.Registry
	if registry == nil {
		registry = lang.Default()
	}

	dirNames := cfg.ExcludedDirs
	if dirNames == nil {
		dirNames = detect.DefaultExcludedDirs()
	}
	excluded := make(map[string]struct{}, len(dirNames))
	for _, name := range dirNames {
		excluded[name] = struct{}{}
	}

	var found []Instruction
	walkErr := filepath.WalkDir(cfg.BaseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == cfg.BaseDir {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path != cfg.BaseDir {
				if _, pruned := excluded[d.Name()]; pruned {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !registry.Supported(path) {
			return nil
		}
		if info, statErr := d.Info(); statErr != nil || info.Size() > scan.DefaultMaxFileSize {
			return nil
		}

		content, readErr := store.Read(path)
		if readErr != nil {
			logger.Debug("skipping file while locating instruction", "path", path, "error", readErr)
			return nil
		}

		found = append(found, instructionsIn(path, string(content))...)
		return nil
	})
	if walkErr != nil {
		return nil, cerrors.From(cerrors.ErrSearchRootUnreadable).WithPath(cfg.BaseDir)
	}

	return exactlyOne(found, cfg.BaseDir)
}

func locateInFile(path string, store *scan.ContentStore) (*Instruction, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, cerrors.From(cerrors.ErrInstructionNotFound).WithPath(path)
	}

	content, err := store.Read(path)
	if err != nil {
		return nil, cerrors.From(cerrors.ErrFileUnreadable).WithPath(path)
	}

	return exactlyOne(instructionsIn(path, string(content)), path)
}

func exactlyOne(found []Instruction, searched string) (*Instruction, error) {
	switch len(found) {
	case 1:
		return &found[0], nil
	case 0:
		return nil, cerrors.From(cerrors.ErrInstructionNotFound).WithPath(searched)
	default:
		paths := make([]string, 0, len(found))
		for _, instr := range found {
			paths = append(paths, fmt.Sprintf("%s:%d", instr.Path, instr.Line))
		}
		return nil, cerrors.From(cerrors.ErrMultipleInstructions).
			WithPath(strings.Join(paths, ", ")).
			WithDetail("1", fmt.Sprintf("%d", len(found)))
	}
}

// instructionsIn collects every well-formed instruction line of one
// file.
func instructionsIn(path, content string) []Instruction {
	var out []Instruction
	for i, line := range strings.Split(content, "\n") {
		text, ok := marker.InstructionText(line)
		if !ok {
			continue
		}
		out = append(out, Instruction{
			Path: path,
			Line: i + 1,
			Text: text,
			Raw:  strings.TrimSpace(line),
		})
	}
	return out
}
