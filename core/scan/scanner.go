// Package scan walks a search root and decides which files reference
// a target symbol, using structural parsing where a grammar is
// available and a word-boundary lexical search otherwise. It supports
// pattern-based inclusion and exclusion rules on top of the fixed
// language-extension registry.
package scan

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gobwas/glob"

	"github.com/adalundhe/weft/core/detect"
	cerrors "github.com/adalundhe/weft/core/errors"
	"github.com/adalundhe/weft/core/lang"
	"github.com/adalundhe/weft/core/treesitter"
)

// =============================================================================
// Configuration
// =============================================================================

// ScanConfig holds configuration for the reference scanner.
type ScanConfig struct {
	// RootPath is the directory to scan (required).
	RootPath string

	// IncludePatterns are glob patterns for files to include. If empty,
	// all supported files are included (subject to exclusions).
	IncludePatterns []string

	// ExcludePatterns are glob patterns for files to exclude.
	ExcludePatterns []string

	// ExcludedDirs are directory names pruning entire subtrees. Nil
	// selects detect.DefaultExcludedDirs.
	ExcludedDirs []string

	// MaxFileSize is the maximum file size in bytes to examine
	// (default: 10MB).
	MaxFileSize int64

	// Registry dispatches files to language adapters. Nil selects the
	// shared registry.
	Registry *lang.Registry

	// Grammars loads structural grammars. Nil selects the process-wide
	// loader; files whose grammar cannot load silently degrade to the
	// lexical path.
	Grammars *treesitter.GrammarLoader

	// Store caches file contents for the rest of the invocation. Nil
	// creates a private store.
	Store *ContentStore

	Logger *slog.Logger
}

// DefaultMaxFileSize is the default maximum file size (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// =============================================================================
// Outcomes
// =============================================================================

// Outcome tags which decision path examined a file.
type Outcome int

const (
	// OutcomeStructural means a syntax tree decided the match.
	OutcomeStructural Outcome = iota

	// OutcomeFallback means the word-boundary lexical search decided,
	// either because no grammar exists or the structural parse
	// degraded.
	OutcomeFallback

	// OutcomeSkipped means the file could not be examined (unreadable,
	// invalid encoding, oversized) and was silently skipped.
	OutcomeSkipped
)

var outcomeNames = map[Outcome]string{
	OutcomeStructural: "structural",
	OutcomeFallback:   "fallback",
	OutcomeSkipped:    "skipped",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// FileOutcome records the decision for one examined file.
type FileOutcome struct {
	// Path is the file's absolute path.
	Path string

	// Outcome tags the decision path.
	Outcome Outcome

	// RefMatch reports whether the file references the target symbol.
	RefMatch bool

	// DefMatch reports whether the file defines any of the context
	// identifiers supplied to the scan.
	DefMatch bool

	// DefinesTarget reports whether the file defines the target symbol
	// itself.
	DefinesTarget bool
}

// Result is a completed scan: a duplicate-free candidate set plus the
// per-file decisions behind it.
type Result struct {
	// Candidates are the paths deemed relevant, in walk order.
	Candidates []string

	// Outcomes record every examined file.
	Outcomes []FileOutcome

	// Defined reports whether any file defines the target symbol.
	Defined bool
}

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrRootPathEmpty indicates the root path was not specified.
	ErrRootPathEmpty = errors.New("root path cannot be empty")

	// ErrSymbolEmpty indicates no target symbol was supplied.
	ErrSymbolEmpty = errors.New("target symbol cannot be empty")

	// ErrInvalidPattern indicates a glob pattern could not be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// =============================================================================
// Scanner
// =============================================================================

// Scanner walks a directory tree and yields the files relevant to a
// target symbol. One Scanner serves one invocation; it holds no state
// between scans beyond the content store.
type Scanner struct {
	config          ScanConfig
	registry        *lang.Registry
	grammars        *treesitter.GrammarLoader
	store           *ContentStore
	logger          *slog.Logger
	includeMatchers []glob.Glob
	excludeMatchers []glob.Glob
	excludedDirs    map[string]struct{}
	maxFileSize     int64
}

// NewScanner creates a Scanner with the given configuration. Patterns
// are not compiled until Scan is called.
func NewScanner(config ScanConfig) *Scanner {
	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	registry := config.Registry
	if registry == nil {
		registry = lang.Default()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := config.Store
	if store == nil {
		store = NewContentStore(DefaultContentCacheSize)
	}

	dirNames := config.ExcludedDirs
	if dirNames == nil {
		dirNames = detect.DefaultExcludedDirs()
	}
	excluded := make(map[string]struct{}, len(dirNames))
	for _, name := range dirNames {
		excluded[name] = struct{}{}
	}

	return &Scanner{
		config:       config,
		registry:     registry,
		grammars:     config.Grammars,
		store:        store,
		logger:       logger,
		excludedDirs: excluded,
		maxFileSize:  maxSize,
	}
}

// Store exposes the content store so later pipeline stages reuse the
// bytes read during the scan.
func (s *Scanner) Store() *ContentStore {
	return s.store
}

// =============================================================================
// Scan
// =============================================================================

// Scan walks the root synchronously and returns the candidate set for
// symbol. contextIdents are identifiers surrounding the instruction;
// files defining any of them join the candidate set alongside files
// referencing the symbol. Unreadable files are skipped silently; an
// unreadable root is fatal.
func (s *Scanner) Scan(symbol string, contextIdents []string) (*Result, error) {
	if err := s.validateConfig(symbol); err != nil {
		return nil, err
	}
	if err := s.compilePatterns(); err != nil {
		return nil, err
	}

	refPattern, err := lang.ReferencePattern(symbol)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	seen := make(map[string]struct{})

	walkErr := filepath.WalkDir(s.config.RootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.config.RootPath {
				return err
			}
			s.logger.Debug("skipping unreadable entry", "path", path, "error", err)
			return nil
		}

		if d.IsDir() {
			if path != s.config.RootPath && s.shouldSkipDirectory(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.shouldVisit(path, d.Name()) {
			return nil
		}

		outcome := s.examineFile(path, symbol, contextIdents, refPattern)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.DefinesTarget {
			result.Defined = true
		}

		if outcome.RefMatch || outcome.DefMatch {
			if _, dup := seen[path]; !dup {
				seen[path] = struct{}{}
				result.Candidates = append(result.Candidates, path)
			}
		}
		return nil
	})
	if walkErr != nil {
		return nil, cerrors.From(cerrors.ErrSearchRootUnreadable).WithPath(s.config.RootPath)
	}

	s.logger.Debug("scan complete",
		"root", s.config.RootPath,
		"symbol", symbol,
		"examined", len(result.Outcomes),
		"candidates", len(result.Candidates))
	return result, nil
}

// =============================================================================
// Validation
// =============================================================================

func (s *Scanner) validateConfig(symbol string) error {
	if s.config.RootPath == "" {
		return ErrRootPathEmpty
	}
	if symbol == "" {
		return ErrSymbolEmpty
	}

	info, err := os.Stat(s.config.RootPath)
	if err != nil || !info.IsDir() {
		return cerrors.From(cerrors.ErrSearchRootUnreadable).WithPath(s.config.RootPath)
	}
	return nil
}

// =============================================================================
// Pattern Compilation
// =============================================================================

func (s *Scanner) compilePatterns() error {
	var err error

	s.includeMatchers, err = compileGlobs(s.config.IncludePatterns)
	if err != nil {
		return err
	}

	s.excludeMatchers, err = compileGlobs(s.config.ExcludePatterns)
	if err != nil {
		return err
	}

	return nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))

	for _, pattern := range patterns {
		matcher, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Join(ErrInvalidPattern, err)
		}
		matchers = append(matchers, matcher)
	}

	return matchers, nil
}

// =============================================================================
// Walk Filters
// =============================================================================

func (s *Scanner) shouldSkipDirectory(name string) bool {
	_, excluded := s.excludedDirs[name]
	return excluded
}

// shouldVisit applies the extension registry and the glob filters.
// Unsupported extensions are excluded from scanning entirely.
func (s *Scanner) shouldVisit(path, name string) bool {
	if !s.registry.Supported(path) {
		return false
	}

	relPath, err := filepath.Rel(s.config.RootPath, path)
	if err != nil {
		return false
	}

	if s.matchesAny(s.excludeMatchers, relPath, name) {
		return false
	}

	if len(s.includeMatchers) == 0 {
		return true
	}
	return s.matchesAny(s.includeMatchers, relPath, name)
}

func (s *Scanner) matchesAny(matchers []glob.Glob, relPath, name string) bool {
	for _, matcher := range matchers {
		if matcher.Match(relPath) || matcher.Match(name) {
			return true
		}
	}
	return false
}

// =============================================================================
// Per-File Decision
// =============================================================================

// examineFile decides one file. Structural parsing runs when the
// file's grammar loads and produces a clean tree; any degradation
// falls back silently to the word-boundary lexical search. Both paths
// apply identical boundary semantics: a symbol never matches as part
// of a longer identifier.
func (s *Scanner) examineFile(path, symbol string, contextIdents []string, refPattern *regexp.Regexp) FileOutcome {
	content, err := s.readFile(path)
	if err != nil {
		s.logger.Debug("skipping file", "path", path, "error", err)
		return FileOutcome{Path: path, Outcome: OutcomeSkipped}
	}

	outcome := FileOutcome{Path: path}
	text := string(content)

	if adapter, ok := s.registry.ForFile(path); ok {
		outcome.DefinesTarget = adapter.DefinesAny(text, []string{symbol})
		outcome.DefMatch = len(contextIdents) > 0 && adapter.DefinesAny(text, contextIdents)
	}

	if matched, ok := s.structuralMatch(path, content, symbol); ok {
		outcome.Outcome = OutcomeStructural
		outcome.RefMatch = matched
		return outcome
	}

	outcome.Outcome = OutcomeFallback
	outcome.RefMatch = refPattern.Match(content)
	return outcome
}

// structuralMatch reports (matched, decided). A false second return
// means the structural path could not decide and the caller must fall
// back.
func (s *Scanner) structuralMatch(path string, content []byte, symbol string) (bool, bool) {
	grammar, ok := treesitter.GrammarForFile(path)
	if !ok {
		return false, false
	}

	var tree *treesitter.Tree
	var err error
	if s.grammars != nil {
		tree, err = s.grammars.Parse(content, grammar)
	} else {
		tree, err = treesitter.Parse(content, grammar)
	}
	if err != nil {
		s.logger.Debug("structural parse unavailable, using lexical scan",
			"path", path,
			"grammar", grammar,
			"error", err)
		return false, false
	}
	defer tree.Close()

	if tree.HasError() {
		s.logger.Debug("structural parse degraded, using lexical scan",
			"path", path,
			"grammar", grammar)
		return false, false
	}

	for _, hit := range tree.Identifiers() {
		if hit.Text == symbol {
			return true, true
		}
	}
	return false, true
}

func (s *Scanner) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > s.maxFileSize {
		return nil, errors.New("file exceeds size limit")
	}
	return s.store.Read(path)
}
