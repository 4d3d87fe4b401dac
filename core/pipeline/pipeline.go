// Package pipeline runs one invocation end to end: locate the
// instruction, bound the search, derive the target symbol, scan for
// references, reduce candidates, assemble, scrub, validate, deliver.
// Every stage is synchronous; no state outlives the run.
package pipeline

import (
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/adalundhe/weft/core/clipboard"
	"github.com/adalundhe/weft/core/config"
	"github.com/adalundhe/weft/core/detect"
	cerrors "github.com/adalundhe/weft/core/errors"
	"github.com/adalundhe/weft/core/git"
	"github.com/adalundhe/weft/core/instruction"
	"github.com/adalundhe/weft/core/lang"
	"github.com/adalundhe/weft/core/prompt"
	"github.com/adalundhe/weft/core/scan"
	"github.com/adalundhe/weft/core/treesitter"
)

// Options configures one run.
type Options struct {
	// Config is the effective configuration; nil selects the defaults.
	Config *config.Config

	// BaseDir bounds the run (required).
	BaseDir string

	// DiffMode requests the working-tree diff section.
	DiffMode bool

	// Sink receives the prompt; nil selects clipboard-or-stdout from
	// the configuration.
	Sink clipboard.Sink

	// Grammars overrides the structural grammar loader.
	Grammars *treesitter.GrammarLoader

	Logger *slog.Logger
}

// Result reports what one run produced.
type Result struct {
	Prompt      string
	Symbol      string
	Instruction *instruction.Instruction
	SearchRoot  string
	Candidates  []string
	Outcomes    []scan.FileOutcome
	DiffUsed    bool
	SinkName    string
}

// Run executes the pipeline once.
func Run(opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", uuid.NewString())

	store := scan.NewContentStore(scan.DefaultContentCacheSize)
	registry := lang.Default()
	grammars := opts.Grammars
	if grammars == nil {
		grammars = grammarLoader(cfg)
	}

	instr, err := instruction.Locate(instruction.LocatorConfig{
		BaseDir:      opts.BaseDir,
		OverridePath: cfg.InstructionFile,
		ExcludedDirs: cfg.ExcludedDirs,
		Registry:     registry,
		Store:        store,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("instruction located", "path", instr.Path, "line", instr.Line)

	root, err := detect.ResolveSearchRoot(detect.RootConfig{
		BaseDir:         opts.BaseDir,
		InstructionPath: instr.Path,
		ManifestName:    cfg.ManifestName,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("search root resolved", "root", root)

	adapter, ok := registry.ForFile(instr.Path)
	if !ok {
		return nil, cerrors.From(cerrors.ErrNoDeclaration).WithPath(instr.Path)
	}
	instrContent, err := store.Read(instr.Path)
	if err != nil {
		return nil, cerrors.From(cerrors.ErrFileUnreadable).WithPath(instr.Path)
	}

	symbol, err := instruction.DeriveSymbol(string(instrContent), instr, adapter)
	if err != nil {
		return nil, err
	}
	contextIdents := instruction.ContextIdentifiers(string(instrContent), instr, adapter, symbol)
	logger.Debug("target symbol derived", "symbol", symbol, "context_idents", len(contextIdents))

	scanner := scan.NewScanner(scan.ScanConfig{
		RootPath:        root,
		IncludePatterns: cfg.IncludePatterns,
		ExcludePatterns: cfg.ExcludePatterns,
		ExcludedDirs:    cfg.ExcludedDirs,
		MaxFileSize:     cfg.MaxFileBytes,
		Registry:        registry,
		Grammars:        grammars,
		Store:           store,
		Logger:          logger,
	})
	scanResult, err := scanner.Scan(symbol, contextIdents)
	if err != nil {
		return nil, err
	}
	if !scanResult.Defined {
		return nil, cerrors.From(cerrors.ErrSymbolNotDefined).WithPath(root).
			WithDetail(symbol, "no defining file")
	}
	if len(scanResult.Candidates) == 0 {
		return nil, cerrors.From(cerrors.ErrNoReferences).WithPath(root).
			WithDetail(symbol, "no referencing file")
	}

	sections := reduceCandidates(scanResult.Candidates, root, symbol, registry, store, logger)

	diffText, diffUsed, err := diffBranch(opts.DiffMode, root, logger)
	if err != nil {
		return nil, err
	}

	text := prompt.Assemble(prompt.AssembleInput{
		InstructionLine: instr.Raw,
		Files:           sections,
		Diff:            diffText,
		MaxBytes:        cfg.MaxPromptBytes,
		Logger:          logger,
	})

	if !diffUsed {
		text, err = prompt.Scrub(text, instr.Raw)
		if err != nil {
			return nil, err
		}
	}
	if err := prompt.Validate(text, diffUsed); err != nil {
		return nil, err
	}

	sink := opts.Sink
	if sink == nil {
		sink = clipboard.Select(cfg.NoClipboard, logger)
	}
	if err := clipboard.Deliver(sink, text); err != nil {
		return nil, err
	}
	logger.Debug("prompt delivered",
		"sink", sink.Name(),
		"bytes", len(text),
		"files", len(sections),
		"diff", diffUsed,
	)

	return &Result{
		Prompt:      text,
		Symbol:      symbol,
		Instruction: instr,
		SearchRoot:  root,
		Candidates:  scanResult.Candidates,
		Outcomes:    scanResult.Outcomes,
		DiffUsed:    diffUsed,
		SinkName:    sink.Name(),
	}, nil
}

// grammarLoader builds a loader honoring the configured grammar dir.
// Nil lets the scanner use the process-wide loader.
func grammarLoader(cfg *config.Config) *treesitter.GrammarLoader {
	if cfg.GrammarDir == "" {
		return nil
	}
	return treesitter.NewGrammarLoader(treesitter.WithTrustedDir(cfg.GrammarDir))
}

// reduceCandidates shrinks each candidate to its relevant part. A file
// that vanished since the scan is dropped, same as an unreadable file
// during it.
func reduceCandidates(candidates []string, root, symbol string, registry *lang.Registry, store *scan.ContentStore, logger *slog.Logger) []prompt.FileSection {
	sections := make([]prompt.FileSection, 0, len(candidates))
	for _, path := range candidates {
		content, err := store.Read(path)
		if err != nil {
			logger.Debug("candidate unreadable at reduction", "path", path, "error", err)
			continue
		}

		adapter, _ := registry.ForFile(path)
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		sections = append(sections, prompt.FileSection{
			Path:    rel,
			Content: prompt.Reduce(string(content), symbol, adapter),
		})
	}
	return sections
}

// diffBranch fetches the working-tree diff when requested. An empty
// diff leaves diff mode off; a clean tree is not an error.
func diffBranch(requested bool, root string, logger *slog.Logger) (string, bool, error) {
	if !requested {
		return "", false, nil
	}

	client, err := git.NewClient(root)
	if err != nil {
		return "", false, err
	}

	text, err := client.DiffText()
	if err != nil {
		return "", false, err
	}
	if text == "" {
		logger.Debug("working tree clean, diff mode stays off")
		return "", false, nil
	}

	return text, true, nil
}
