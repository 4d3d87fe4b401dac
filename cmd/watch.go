// Package cmd provides CLI commands for the weft prompt assembler.
// This file implements the watch command for continuous re-assembly.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adalundhe/weft/core/watch"
	"github.com/spf13/cobra"
)

// =============================================================================
// Watch Command Flags
// =============================================================================

var (
	watchDiff   bool
	watchStdout bool
)

// =============================================================================
// Watch Command
// =============================================================================

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run assembly when files change",
	Long: `Watch runs one assembly, then watches the base directory and
re-runs on every change to a supported source file. Event bursts are
debounced so a flurry of saves produces a single run. Interrupt to
stop.

Examples:
  weft watch
  weft watch --diff
  weft watch --stdout`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVarP(&watchDiff, "diff", "d", false, "Include the working-tree diff on every run")
	watchCmd.Flags().BoolVar(&watchStdout, "stdout", false, "Write prompts to stdout instead of the clipboard")
}

// =============================================================================
// Watch Execution
// =============================================================================

// runWatch executes the watch command.
func runWatch(cmd *cobra.Command, args []string) error {
	cfg, base, err := loadRunConfig()
	if err != nil {
		return err
	}

	rerun := func() {
		stamp := time.Now().Format("15:04:05")
		result, runErr := runPipeline(cmd, cfg, base, watchDiff, watchStdout)
		if runErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %v\n", stamp, runErr)
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", stamp, summaryLine(result))
	}

	// First run before watching. Failure is not fatal: the marker may
	// simply not be written yet.
	rerun()

	watcher, err := watch.New(watch.Config{
		Path:         base,
		ExcludedDirs: cfg.ExcludedDirs,
		Debounce:     cfg.DebounceInterval(),
	})
	if err != nil {
		return err
	}
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted. Stopping watch...")
		cancel()
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (interrupt to stop)\n", base)
	return watcher.Run(ctx, rerun)
}
