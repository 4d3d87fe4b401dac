// Package config loads weft settings: compiled defaults, then the
// nearest .weft.yaml, then WEFT_* environment overrides. The result is
// passed into the pipeline as explicit parameters; nothing here is
// process-global.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adalundhe/weft/core/detect"
	"github.com/adalundhe/weft/core/scan"
)

// Config file names probed upward from the base dir, first hit wins.
const (
	FileName    = ".weft.yaml"
	FileNameAlt = ".weft.yml"
)

// Config carries every tunable of a run.
type Config struct {
	// ManifestName is the project manifest checked by existence during
	// search-root resolution.
	ManifestName string `yaml:"manifest_name"`

	// BaseDir bounds the search; empty selects the repository root or
	// the working directory.
	BaseDir string `yaml:"base_dir"`

	// InstructionFile pins the instruction location, bypassing the
	// tree search.
	InstructionFile string `yaml:"instruction_file"`

	// GrammarDir is an extra trusted directory for grammar libraries.
	GrammarDir string `yaml:"grammar_dir"`

	// MaxPromptBytes bounds the assembled prompt; sections are dropped
	// whole to stay under it.
	MaxPromptBytes int `yaml:"max_prompt_bytes"`

	// MaxFileBytes bounds how large a file the scanner will examine.
	MaxFileBytes int64 `yaml:"max_file_bytes"`

	// NoClipboard routes output to stdout.
	NoClipboard bool `yaml:"no_clipboard"`

	// ExcludedDirs replaces the default pruned directory names.
	ExcludedDirs []string `yaml:"excluded_dirs"`

	// IncludePatterns/ExcludePatterns narrow the scan by glob.
	IncludePatterns []string `yaml:"include_patterns"`
	ExcludePatterns []string `yaml:"exclude_patterns"`

	// WatchDebounce coalesces filesystem events in watch mode, as a
	// duration string like "400ms".
	WatchDebounce string `yaml:"watch_debounce"`
}

// DefaultMaxPromptBytes bounds the assembled prompt at 256 KiB.
const DefaultMaxPromptBytes = 262144

// defaultWatchDebounce applies when watch_debounce is absent or
// unparseable.
const defaultWatchDebounce = 400 * time.Millisecond

func DefaultConfig() *Config {
	return &Config{
		ManifestName:   "Package.swift",
		MaxPromptBytes: DefaultMaxPromptBytes,
		MaxFileBytes:   scan.DefaultMaxFileSize,
		ExcludedDirs:   detect.DefaultExcludedDirs(),
		WatchDebounce:  "400ms",
	}
}

// DebounceInterval parses WatchDebounce, falling back to the default
// on bad input.
func (c *Config) DebounceInterval() time.Duration {
	d, err := time.ParseDuration(c.WatchDebounce)
	if err != nil || d <= 0 {
		return defaultWatchDebounce
	}
	return d
}

// Load builds the effective configuration for a run rooted at baseDir.
// explicitPath, when non-empty, names the config file directly and must
// exist; otherwise the nearest .weft.yaml/.weft.yml above baseDir is
// used, and none at all is fine.
func Load(baseDir, explicitPath string) (*Config, error) {
	cfg := DefaultConfig()

	path, err := configPath(baseDir, explicitPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadYAMLFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	applyEnvironment(cfg)

	return cfg, nil
}

func configPath(baseDir, explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}

	if baseDir == "" {
		return "", nil
	}

	path, _, err := detect.FindUpAny(baseDir, FileName, FileNameAlt)
	if err != nil {
		if errors.Is(err, detect.ErrFileNotFound) {
			return "", nil
		}
		return "", err
	}

	return path, nil
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// applyEnvironment folds WEFT_* variables over the file values.
// Unparseable numbers are ignored rather than failing the run.
func applyEnvironment(cfg *Config) {
	if v := os.Getenv("WEFT_MANIFEST_NAME"); v != "" {
		cfg.ManifestName = v
	}
	if v := os.Getenv("WEFT_BASE_DIR"); v != "" {
		cfg.BaseDir = v
	}
	if v := os.Getenv("WEFT_INSTRUCTION_FILE"); v != "" {
		cfg.InstructionFile = v
	}
	if v := os.Getenv("WEFT_GRAMMAR_DIR"); v != "" {
		cfg.GrammarDir = v
	}
	if v := os.Getenv("WEFT_MAX_PROMPT_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxPromptBytes = n
		}
	}
	if v := os.Getenv("WEFT_NO_CLIPBOARD"); v != "" {
		cfg.NoClipboard = v == "1" || strings.EqualFold(v, "true")
	}
}
