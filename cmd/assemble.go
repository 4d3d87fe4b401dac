// Package cmd provides CLI commands for the weft prompt assembler.
// This file implements the assemble command, the main operation.
package cmd

import (
	"fmt"
	"os"

	"github.com/adalundhe/weft/core/clipboard"
	"github.com/adalundhe/weft/core/config"
	"github.com/adalundhe/weft/core/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// =============================================================================
// Assemble Command Flags
// =============================================================================

var (
	assembleDiff   bool
	assembleStdout bool
	assembleFile   string
)

// =============================================================================
// Assemble Command
// =============================================================================

// assembleCmd represents the assemble command.
var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble a prompt from the inline TODO instruction",
	Long: `Assemble searches the base directory for the single TODO
instruction marker, scans the enclosing project for files that
reference the annotated symbol, and delivers the assembled prompt to
the clipboard. Piped output switches delivery to stdout.

Examples:
  weft assemble
  weft assemble --diff
  weft assemble --stdout > prompt.txt
  weft assemble --file Sources/Editor.swift`,
	Args: cobra.NoArgs,
	RunE: runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().BoolVarP(&assembleDiff, "diff", "d", false, "Include the working-tree diff and keep instruction markers")
	assembleCmd.Flags().BoolVar(&assembleStdout, "stdout", false, "Write the prompt to stdout instead of the clipboard")
	assembleCmd.Flags().StringVarP(&assembleFile, "file", "f", "", "Read the instruction from this file instead of searching")
}

// =============================================================================
// Assemble Execution
// =============================================================================

// runAssemble executes the assemble command.
func runAssemble(cmd *cobra.Command, args []string) error {
	cfg, base, err := loadRunConfig()
	if err != nil {
		return err
	}
	if assembleFile != "" {
		cfg.InstructionFile = assembleFile
	}

	result, err := runPipeline(cmd, cfg, base, assembleDiff, assembleStdout)
	if err != nil {
		return err
	}

	reportResult(cmd, result)
	return nil
}

// runPipeline executes one assembly with the sink selection shared by
// the assemble and watch commands.
func runPipeline(cmd *cobra.Command, cfg *config.Config, base string, diffMode, forceStdout bool) (*pipeline.Result, error) {
	opts := pipeline.Options{
		Config:   cfg,
		BaseDir:  base,
		DiffMode: diffMode,
	}
	if forceStdout || !stdoutIsTerminal() {
		opts.Sink = clipboard.WriterSink{Out: cmd.OutOrStdout(), Label: "stdout"}
	}
	return pipeline.Run(opts)
}

// reportResult prints the run summary. When the prompt itself went to
// stdout the summary moves to stderr so pipes stay clean.
func reportResult(cmd *cobra.Command, result *pipeline.Result) {
	out := cmd.OutOrStdout()
	if result.SinkName == "stdout" {
		out = cmd.ErrOrStderr()
	}
	fmt.Fprintln(out, summaryLine(result))
}

// summaryLine condenses one run into a single line.
func summaryLine(result *pipeline.Result) string {
	line := fmt.Sprintf("assembled %d bytes for %q from %d files -> %s",
		len(result.Prompt), result.Symbol, len(result.Candidates), result.SinkName)
	if result.DiffUsed {
		line += " (diff included)"
	}
	return line
}

// =============================================================================
// Utility Functions
// =============================================================================

// stdoutIsTerminal reports whether stdout is attached to a terminal.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
