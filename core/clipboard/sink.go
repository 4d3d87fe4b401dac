// Package clipboard delivers the assembled prompt to its destination:
// the system clipboard by default, stdout when the clipboard is
// disabled or unavailable.
package clipboard

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	atotto "github.com/atotto/clipboard"
)

// Sink receives the final prompt text.
type Sink interface {
	// Write delivers text to the destination.
	Write(text string) error

	// Name identifies the destination in logs.
	Name() string
}

// Normalize converts escaped-newline sequences (a backslash followed
// by 'n', two characters) into real newlines. Snippets carry them when
// source code was embedded inside string literals.
func Normalize(text string) string {
	return strings.ReplaceAll(text, `\n`, "\n")
}

// Deliver normalizes text and hands it to the sink. The prompt is
// otherwise delivered verbatim.
func Deliver(sink Sink, text string) error {
	return sink.Write(Normalize(text))
}

// =============================================================================
// System Clipboard
// =============================================================================

// SystemSink writes to the OS clipboard.
type SystemSink struct{}

func (SystemSink) Write(text string) error {
	if err := atotto.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	return nil
}

func (SystemSink) Name() string { return "clipboard" }

// Available reports whether this platform offers a usable clipboard.
func Available() bool {
	return !atotto.Unsupported
}

// =============================================================================
// Writer Fallback
// =============================================================================

// WriterSink writes to any io.Writer, stdout in practice.
type WriterSink struct {
	Out   io.Writer
	Label string
}

func (s WriterSink) Write(text string) error {
	if _, err := io.WriteString(s.Out, text); err != nil {
		return fmt.Errorf("%s write failed: %w", s.Label, err)
	}
	return nil
}

func (s WriterSink) Name() string { return s.Label }

// Stdout returns the stdout sink.
func Stdout() WriterSink {
	return WriterSink{Out: os.Stdout, Label: "stdout"}
}

// =============================================================================
// Selection
// =============================================================================

// Select picks the destination. Disabling wins over availability;
// an unavailable clipboard degrades to stdout rather than failing the
// run.
func Select(disabled bool, logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}

	if disabled {
		return Stdout()
	}
	if !Available() {
		logger.Debug("clipboard unsupported on this platform, writing to stdout")
		return Stdout()
	}

	return SystemSink{}
}
