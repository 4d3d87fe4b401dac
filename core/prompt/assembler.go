// Package prompt builds the final text: instruction first, reduced
// per-file sections in scan order, the optional diff, and a trailing
// call-to-action. Scrubbing and validation enforce the marker-count
// contract before the prompt leaves the pipeline.
package prompt

import (
	"log/slog"
	"strings"

	"github.com/adalundhe/weft/core/enclosing"
	"github.com/adalundhe/weft/core/lang"
	"github.com/adalundhe/weft/core/marker"
)

// CallToAction is the last line of every prompt. It carries the TODO
// marker so the receiving model knows where work begins.
const CallToAction = "// TODO: - Implement the instruction above."

// sectionSeparator sits between prompt sections.
const sectionSeparator = "\n\n"

// FileSection is one candidate file's contribution, already reduced.
type FileSection struct {
	// Path is relative to the search root.
	Path string

	Content string
}

// AssembleInput gathers everything one prompt needs.
type AssembleInput struct {
	// InstructionLine is the trimmed marker line, `// TODO: - <text>`.
	InstructionLine string

	// Files appear in scan order.
	Files []FileSection

	// Diff text; empty means diff mode is off and no section is
	// emitted.
	Diff string

	// MaxBytes bounds the whole prompt. Zero or negative means
	// unbounded. Only file sections are dropped to honor it.
	MaxBytes int

	Logger *slog.Logger
}

// Assemble concatenates the sections. The instruction, diff, and
// call-to-action always survive the size bound; file sections that
// would overflow it are dropped whole, later smaller sections may
// still fit.
func Assemble(in AssembleInput) string {
	logger := in.Logger
	if logger == nil {
		logger = slog.Default()
	}

	diffSection := ""
	if in.Diff != "" {
		diffSection = "// Diff:\n" + strings.TrimRight(in.Diff, "\n")
	}

	used := len(in.InstructionLine) + len(sectionSeparator) + len(CallToAction) + 1
	if diffSection != "" {
		used += len(sectionSeparator) + len(diffSection)
	}

	var fileSections []string
	for _, file := range in.Files {
		section := "// File: " + file.Path + "\n" + strings.TrimRight(file.Content, "\n")
		cost := len(sectionSeparator) + len(section)
		if in.MaxBytes > 0 && used+cost > in.MaxBytes {
			logger.Debug("dropping file section over prompt size bound",
				"path", file.Path,
				"section_bytes", len(section),
			)
			continue
		}
		used += cost
		fileSections = append(fileSections, section)
	}

	var b strings.Builder
	b.WriteString(in.InstructionLine)
	for _, section := range fileSections {
		b.WriteString(sectionSeparator)
		b.WriteString(section)
	}
	if diffSection != "" {
		b.WriteString(sectionSeparator)
		b.WriteString(diffSection)
	}
	b.WriteString(sectionSeparator)
	b.WriteString(CallToAction)
	b.WriteString("\n")

	return b.String()
}

// Reduce shrinks one candidate file to the part worth sending. Files
// that opted in with substring markers are filtered to those regions;
// otherwise the block enclosing the symbol's first occurrence is used,
// the language capability first, the generic extractor second. A file
// with neither yields its whole content.
func Reduce(content, symbol string, adapter lang.Adapter) string {
	if marker.HasOpeningMarker(content) {
		return marker.Filter(content)
	}

	if adapter != nil {
		if block, ok := adapter.EnclosingDeclaration(content, symbol); ok {
			return block
		}
	}

	if block, ok := enclosing.Extract(content, symbol); ok {
		return block.Text
	}

	return content
}
