package instruction

import (
	"strings"

	"github.com/adalundhe/weft/core/enclosing"
	cerrors "github.com/adalundhe/weft/core/errors"
	"github.com/adalundhe/weft/core/lang"
	"github.com/adalundhe/weft/core/marker"
)

// maxContextIdentifiers caps how far the surrounding declaration can
// widen the candidate set.
const maxContextIdentifiers = 16

// DeriveSymbol names the type whose declaration is nearest above the
// instruction line. The marker belongs to the declaration it sits
// inside, so the closest preceding declaration line wins.
func DeriveSymbol(content string, instr *Instruction, adapter lang.Adapter) (string, error) {
	lines := strings.Split(content, "\n")

	last := instr.Line - 2
	if last >= len(lines) {
		last = len(lines) - 1
	}
	for i := last; i >= 0; i-- {
		if name, ok := adapter.DeclaredName(lines[i]); ok {
			return name, nil
		}
	}

	return "", cerrors.From(cerrors.ErrNoDeclaration).WithPath(instr.Path)
}

// ContextIdentifiers collects identifiers from the declaration around
// the marker, excluding the target symbol itself. Files defining any of
// them are relevant to the instruction even when they never mention the
// symbol.
func ContextIdentifiers(content string, instr *Instruction, adapter lang.Adapter, symbol string) []string {
	block, ok := adapter.EnclosingDeclaration(content, instr.Raw)
	if !ok {
		b, found := enclosing.Extract(content, instr.Raw)
		if !found {
			return nil
		}
		block = b.Text
	}

	ids := adapter.Identifiers(stripMarkerLines(block))

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == symbol {
			continue
		}
		out = append(out, id)
		if len(out) == maxContextIdentifiers {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// stripMarkerLines drops marker lines so the instruction's own words
// never masquerade as code identifiers.
func stripMarkerLines(block string) string {
	lines := strings.Split(block, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if marker.ContainsTodo(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
