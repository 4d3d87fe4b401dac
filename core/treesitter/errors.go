package treesitter

import "errors"

var (
	ErrParseFailed        = errors.New("parse failed")
	ErrGrammarNotFound    = errors.New("grammar not found")
	ErrGrammarUnavailable = errors.New("grammar unavailable")
	ErrInvalidGrammarName = errors.New("invalid grammar name")
	ErrIncompatibleABI    = errors.New("incompatible grammar ABI version")
	ErrChecksumMismatch   = errors.New("grammar checksum mismatch")

	ErrNoInstallDir        = errors.New("no grammar install directory available")
	ErrPrebuiltUnavailable = errors.New("prebuilt grammar library not available")
	ErrCompilerNotFound    = errors.New("no C compiler found (need cc, clang, or gcc)")
	ErrGitNotFound         = errors.New("git binary not found")
	ErrParserSourceMissing = errors.New("parser.c not found in grammar repository")
)
