// Package cmd provides CLI commands for the weft prompt assembler.
// This file implements the grammars commands for listing and
// installing structural grammars.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/adalundhe/weft/core/config"
	"github.com/adalundhe/weft/core/treesitter"
	"github.com/spf13/cobra"
)

// =============================================================================
// Grammars Command Flags
// =============================================================================

var (
	grammarsJSON       bool
	grammarsInstallDir string
)

// =============================================================================
// Grammars Commands
// =============================================================================

// grammarsCmd represents the grammars command.
var grammarsCmd = &cobra.Command{
	Use:   "grammars",
	Short: "List known grammars and their installation state",
	Long: `Grammars lists every language grammar the scanner can load, whether
its shared library is installed in a trusted directory, and where to
obtain it. Files without an installed grammar degrade to the lexical
scan.

Examples:
  weft grammars
  weft grammars --json`,
	Args: cobra.NoArgs,
	RunE: runGrammars,
}

// grammarsInstallCmd represents the grammars install command.
var grammarsInstallCmd = &cobra.Command{
	Use:   "install [grammar...]",
	Short: "Install grammar shared libraries",
	Long: `Install fetches shared libraries for the named grammars into the
grammar directory, preferring prebuilt release artifacts and falling
back to compiling from source (which needs git and a C compiler).
With no arguments every known grammar is installed.

Examples:
  weft grammars install
  weft grammars install swift objc
  weft grammars install typescript --dir /opt/weft/grammars`,
	Args: cobra.ArbitraryArgs,
	RunE: runGrammarsInstall,
}

func init() {
	rootCmd.AddCommand(grammarsCmd)
	grammarsCmd.AddCommand(grammarsInstallCmd)

	grammarsCmd.Flags().BoolVar(&grammarsJSON, "json", false, "Output results as JSON")
	grammarsInstallCmd.Flags().StringVar(&grammarsInstallDir, "dir", "", "Install directory (default: configured grammar directory)")
}

// =============================================================================
// Grammars Execution
// =============================================================================

// runGrammars executes the grammars command.
func runGrammars(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	entries := grammarEntries(grammarStatusLoader(cfg))

	if grammarsJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}
	return outputGrammarTable(cmd.OutOrStdout(), entries)
}

// grammarStatusLoader builds the loader used to probe installation
// state, honoring the configured grammar directory.
func grammarStatusLoader(cfg *config.Config) *treesitter.GrammarLoader {
	if cfg.GrammarDir == "" {
		return treesitter.NewGrammarLoader()
	}
	return treesitter.NewGrammarLoader(treesitter.WithTrustedDir(cfg.GrammarDir))
}

// runGrammarsInstall executes the grammars install command.
func runGrammarsInstall(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted. Stopping install...")
		cancel()
	}()

	installer := treesitter.NewInstaller(installDestDir(cfg))
	names := args
	if len(names) == 0 {
		names = knownGrammarNames()
	}

	return installGrammars(ctx, cmd, installer, names)
}

// installDestDir resolves the install directory from the flag or the
// configuration; empty selects the installer's default.
func installDestDir(cfg *config.Config) string {
	if grammarsInstallDir != "" {
		return grammarsInstallDir
	}
	return cfg.GrammarDir
}

// installGrammars installs each named grammar, reporting per-grammar
// outcomes and failing only after every grammar was attempted.
func installGrammars(ctx context.Context, cmd *cobra.Command, installer *treesitter.Installer, names []string) error {
	failed := 0
	for _, name := range names {
		res, err := installer.Install(ctx, name)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", res.Name, res.Source, res.LibPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d grammars failed to install", failed, len(names))
	}
	return nil
}

// knownGrammarNames lists every registered grammar name.
func knownGrammarNames() []string {
	known := treesitter.ListKnownGrammars()
	names := make([]string, 0, len(known))
	for _, info := range known {
		names = append(names, info.Name)
	}
	return names
}

// =============================================================================
// Output Formatting
// =============================================================================

// grammarEntry pairs a known grammar with its installation state.
type grammarEntry struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
	Installed  bool     `json:"installed"`
	Repository string   `json:"repository"`
}

// grammarEntries probes every known grammar against the loader.
func grammarEntries(loader *treesitter.GrammarLoader) []grammarEntry {
	known := treesitter.ListKnownGrammars()
	entries := make([]grammarEntry, 0, len(known))
	for _, info := range known {
		entries = append(entries, grammarEntry{
			Name:       info.Name,
			Extensions: info.Extensions,
			Installed:  loader.Available(info.Name),
			Repository: info.Repository,
		})
	}
	return entries
}

// outputGrammarTable outputs grammar state as a formatted table.
func outputGrammarTable(w io.Writer, entries []grammarEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GRAMMAR\tEXTENSIONS\tSTATUS\tSOURCE")
	fmt.Fprintln(tw, "-------\t----------\t------\t------")

	for _, entry := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			entry.Name,
			strings.Join(entry.Extensions, " "),
			grammarStatus(entry.Installed),
			entry.Repository)
	}
	return tw.Flush()
}

// grammarStatus renders the installation state.
func grammarStatus(installed bool) string {
	if installed {
		return "installed"
	}
	return "missing"
}
