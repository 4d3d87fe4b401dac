// Package cmd provides CLI commands for the weft prompt assembler.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adalundhe/weft/core/config"
	"github.com/adalundhe/weft/core/git"
	"github.com/spf13/cobra"
)

// =============================================================================
// Root Command Flags
// =============================================================================

var (
	rootVerbose    bool
	rootConfigPath string
	rootBaseDir    string
)

// =============================================================================
// Root Command
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "Weft - prompt assembly from inline TODO markers",
	Long: `Weft turns a single inline TODO instruction in a source tree into a
model-ready prompt: it locates the marker, gathers the files that
reference the annotated symbol, and puts the assembled text on the
clipboard or stdout.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(rootVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to a .weft.yaml configuration file")
	rootCmd.PersistentFlags().StringVarP(&rootBaseDir, "base", "b", "", "Base directory bounding the run (default: repository root, then working directory)")
}

// configureLogging installs the process-wide slog handler. Debug level
// surfaces skipped files and fallback decisions.
func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// =============================================================================
// Shared Configuration Resolution
// =============================================================================

// loadConfig loads the effective configuration, honoring --config and
// searching upward from the working directory otherwise.
func loadConfig() (*config.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve working directory: %w", err)
	}

	cfg, err := config.Load(cwd, rootConfigPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, cwd, nil
}

// loadRunConfig additionally resolves the base directory bounding the
// run.
func loadRunConfig() (*config.Config, string, error) {
	cfg, cwd, err := loadConfig()
	if err != nil {
		return nil, "", err
	}

	base, err := resolveBaseDir(cfg, cwd)
	if err != nil {
		return nil, "", err
	}
	return cfg, base, nil
}

// resolveBaseDir picks the directory bounding the run: the --base
// flag, then the configured base, then the enclosing repository's
// worktree root, then the working directory.
func resolveBaseDir(cfg *config.Config, cwd string) (string, error) {
	if rootBaseDir != "" {
		return filepath.Abs(rootBaseDir)
	}
	if cfg.BaseDir != "" {
		return filepath.Abs(cfg.BaseDir)
	}
	if root, ok := repositoryRoot(cwd); ok {
		return root, nil
	}
	return cwd, nil
}

// repositoryRoot reports the worktree root of the repository
// enclosing dir, if any.
func repositoryRoot(dir string) (string, bool) {
	client, err := git.NewClient(dir)
	if err != nil || !client.IsRepo() {
		return "", false
	}

	root, err := client.Root()
	if err != nil {
		return "", false
	}
	return root, true
}
