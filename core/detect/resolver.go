package detect

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	cerrors "github.com/adalundhe/weft/core/errors"
)

// DefaultExcludedDirs are directory names pruned from every tree walk:
// VCS metadata, package-manager output, and build products.
func DefaultExcludedDirs() []string {
	return []string{
		".git", ".build", ".swiftpm", "Pods", "DerivedData", "Carthage",
		"node_modules", "vendor", "dist", "build", "out", "__pycache__",
		".venv", "venv", ".idea", ".vscode",
	}
}

// RootConfig describes one search-root resolution.
type RootConfig struct {
	// BaseDir is the directory the scan defaults to, normally the
	// working directory or the repository root.
	BaseDir string

	// InstructionPath is the file carrying the instruction marker.
	InstructionPath string

	// ManifestName is the fixed project-manifest filename whose
	// presence marks a directory as a project boundary.
	ManifestName string

	Logger *slog.Logger
}

// ResolveSearchRoot picks the directory that bounds the reference
// scan. A manifest in the base directory wins outright. Otherwise the
// deepest manifest-bearing ancestor of the instruction file below the
// base wins, which bounds the scan to the smallest enclosing project
// instead of a whole monorepo. With no qualifying project, the base
// directory is the answer.
func ResolveSearchRoot(cfg RootConfig) (string, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ManifestName == "" {
		return "", ErrNoFilesSpecified
	}

	base, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return "", cerrors.From(cerrors.ErrSearchRootUnreadable).WithPath(cfg.BaseDir)
	}
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		return "", cerrors.From(cerrors.ErrSearchRootUnreadable).WithPath(base)
	}

	if FileExists(base, cfg.ManifestName) {
		logger.Debug("search root is the base directory",
			"base", base,
			"manifest", cfg.ManifestName)
		return base, nil
	}

	if cfg.InstructionPath == "" {
		return base, nil
	}
	instruction, err := filepath.Abs(cfg.InstructionPath)
	if err != nil {
		return base, nil
	}

	dir := filepath.Dir(instruction)
	for dir != base && pathHasPrefix(dir, base) {
		if FileExists(dir, cfg.ManifestName) {
			logger.Debug("search root resolved to enclosing project",
				"root", dir,
				"manifest", cfg.ManifestName)
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	logger.Debug("no enclosing project manifest; falling back to base directory",
		"base", base)
	return base, nil
}

// ListProjectDirs enumerates every directory under baseDir bearing the
// manifest file, pruning excluded directory names. The base directory
// itself is included when it qualifies.
func ListProjectDirs(baseDir, manifestName string, excluded []string) ([]string, error) {
	if manifestName == "" {
		return nil, ErrNoFilesSpecified
	}

	base, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, ErrInvalidPath
	}

	skip := make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		skip[name] = struct{}{}
	}

	var dirs []string
	walkErr := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == base {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != base {
			if _, pruned := skip[d.Name()]; pruned {
				return filepath.SkipDir
			}
		}
		if FileExists(path, manifestName) {
			dirs = append(dirs, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, cerrors.From(cerrors.ErrSearchRootUnreadable).WithPath(base)
	}

	return dirs, nil
}

func pathHasPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	p := prefix
	if !strings.HasSuffix(p, string(filepath.Separator)) {
		p += string(filepath.Separator)
	}
	return strings.HasPrefix(path, p)
}
