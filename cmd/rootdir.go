// Package cmd provides CLI commands for the weft prompt assembler.
// This file implements the root command for inspecting search-root
// resolution.
package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/adalundhe/weft/core/config"
	"github.com/adalundhe/weft/core/detect"
	"github.com/adalundhe/weft/core/instruction"
	"github.com/spf13/cobra"
)

// =============================================================================
// Root Directory Command Flags
// =============================================================================

var rootDirAll bool

// =============================================================================
// Root Directory Command
// =============================================================================

// rootDirCmd represents the root command.
var rootDirCmd = &cobra.Command{
	Use:   "root [file]",
	Short: "Print the resolved search root",
	Long: `Root resolves the directory that would bound a scan: the deepest
manifest-bearing project containing the instruction file, falling back
to the base directory. Without an argument the instruction marker is
located first.

Examples:
  weft root
  weft root Sources/Editor.swift
  weft root --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRootDir,
}

func init() {
	rootCmd.AddCommand(rootDirCmd)

	rootDirCmd.Flags().BoolVar(&rootDirAll, "all", false, "List every project directory under the base instead")
}

// =============================================================================
// Root Directory Execution
// =============================================================================

// runRootDir executes the root command.
func runRootDir(cmd *cobra.Command, args []string) error {
	cfg, base, err := loadRunConfig()
	if err != nil {
		return err
	}

	if rootDirAll {
		return outputProjectDirs(cmd.OutOrStdout(), cfg, base)
	}

	instrPath, err := instructionPathArg(cfg, base, args)
	if err != nil {
		return err
	}

	root, err := detect.ResolveSearchRoot(detect.RootConfig{
		BaseDir:         base,
		InstructionPath: instrPath,
		ManifestName:    cfg.ManifestName,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), root)
	return nil
}

// instructionPathArg picks the instruction file: the argument when
// given, otherwise the located marker.
func instructionPathArg(cfg *config.Config, base string, args []string) (string, error) {
	if len(args) == 1 {
		return filepath.Abs(args[0])
	}

	instr, err := instruction.Locate(instruction.LocatorConfig{
		BaseDir:      base,
		OverridePath: cfg.InstructionFile,
		ExcludedDirs: cfg.ExcludedDirs,
	})
	if err != nil {
		return "", err
	}
	return instr.Path, nil
}

// outputProjectDirs lists every manifest-bearing directory under the
// base.
func outputProjectDirs(w io.Writer, cfg *config.Config, base string) error {
	dirs, err := detect.ListProjectDirs(base, cfg.ManifestName, cfg.ExcludedDirs)
	if err != nil {
		return err
	}

	if len(dirs) == 0 {
		fmt.Fprintf(w, "No %s projects under %s.\n", cfg.ManifestName, base)
		return nil
	}
	for _, dir := range dirs {
		fmt.Fprintln(w, dir)
	}
	return nil
}
