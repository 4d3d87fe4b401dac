// Package cmd provides CLI commands for the weft prompt assembler.
// This file implements the scan command for inspecting reference scans.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/adalundhe/weft/core/config"
	"github.com/adalundhe/weft/core/scan"
	"github.com/adalundhe/weft/core/treesitter"
	"github.com/spf13/cobra"
)

// =============================================================================
// Scan Command Flags
// =============================================================================

var scanJSON bool

// =============================================================================
// Scan Command
// =============================================================================

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan <symbol> [identifier...]",
	Short: "Scan for files referencing a symbol",
	Long: `Scan walks the base directory and reports which files reference
the given symbol, tagging every examined file with the decision path
taken (structural, fallback, skipped).

Extra identifiers widen the candidate set to files defining any of
them, mirroring the context identifiers of a full assembly.

Examples:
  weft scan save
  weft scan Editor undo redo
  weft scan --json save | jq '.candidates'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output results as JSON")
}

// =============================================================================
// Scan Execution
// =============================================================================

// runScan executes the scan command.
func runScan(cmd *cobra.Command, args []string) error {
	cfg, base, err := loadRunConfig()
	if err != nil {
		return err
	}

	scanner := scan.NewScanner(scan.ScanConfig{
		RootPath:        base,
		IncludePatterns: cfg.IncludePatterns,
		ExcludePatterns: cfg.ExcludePatterns,
		ExcludedDirs:    cfg.ExcludedDirs,
		MaxFileSize:     cfg.MaxFileBytes,
		Grammars:        configuredGrammars(cfg),
	})

	result, err := scanner.Scan(args[0], args[1:])
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanJSON {
		return outputScanJSON(cmd.OutOrStdout(), args[0], base, result)
	}
	return outputScanTable(cmd.OutOrStdout(), args[0], base, result)
}

// configuredGrammars builds a grammar loader honoring the configured
// grammar directory. Nil defers to the process-wide loader.
func configuredGrammars(cfg *config.Config) *treesitter.GrammarLoader {
	if cfg.GrammarDir == "" {
		return nil
	}
	return treesitter.NewGrammarLoader(treesitter.WithTrustedDir(cfg.GrammarDir))
}

// =============================================================================
// Output Formatting
// =============================================================================

// scanOutput is the JSON output structure.
type scanOutput struct {
	Symbol     string           `json:"symbol"`
	Root       string           `json:"root"`
	Defined    bool             `json:"defined"`
	Candidates []string         `json:"candidates"`
	Files      []scanFileOutput `json:"files"`
}

// scanFileOutput is the JSON output for a single examined file.
type scanFileOutput struct {
	Path       string `json:"path"`
	Outcome    string `json:"outcome"`
	References bool   `json:"references"`
	Defines    bool   `json:"defines"`
}

// newScanOutput creates a scanOutput with paths relative to the root.
func newScanOutput(symbol, root string, result *scan.Result) *scanOutput {
	candidates := make([]string, 0, len(result.Candidates))
	for _, path := range result.Candidates {
		candidates = append(candidates, relTo(root, path))
	}

	files := make([]scanFileOutput, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		files = append(files, scanFileOutput{
			Path:       relTo(root, outcome.Path),
			Outcome:    outcome.Outcome.String(),
			References: outcome.RefMatch,
			Defines:    outcome.DefinesTarget,
		})
	}

	return &scanOutput{
		Symbol:     symbol,
		Root:       root,
		Defined:    result.Defined,
		Candidates: candidates,
		Files:      files,
	}
}

// outputScanJSON outputs scan results as JSON.
func outputScanJSON(w io.Writer, symbol, root string, result *scan.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newScanOutput(symbol, root, result))
}

// outputScanTable outputs scan results as a formatted table.
func outputScanTable(w io.Writer, symbol, root string, result *scan.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tOUTCOME\tREFERENCES\tDEFINES")
	fmt.Fprintln(tw, "----\t-------\t----------\t-------")

	for _, outcome := range result.Outcomes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			relTo(root, outcome.Path),
			outcome.Outcome,
			yesMark(outcome.RefMatch),
			yesMark(outcome.DefinesTarget))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if !result.Defined {
		fmt.Fprintf(w, "Symbol %q is not defined under this root.\n", symbol)
	}
	fmt.Fprintf(w, "%d of %d examined files are candidates for %q.\n",
		len(result.Candidates), len(result.Outcomes), symbol)
	return nil
}

// yesMark renders a boolean table cell.
func yesMark(set bool) string {
	if set {
		return "yes"
	}
	return "-"
}

// relTo shortens path relative to base for display.
func relTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
