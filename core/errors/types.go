// Package errors implements the classified error taxonomy shared by the
// weft pipeline: every failure carries a kind that determines whether it
// is fatal, locally recoverable, or silently absorbed.
package errors

import (
	"errors"
	"fmt"
)

// Kind is the classification of a pipeline error.
type Kind int

const (
	// KindNotFound indicates a missing precondition: instruction file
	// absent, target symbol undefined anywhere, search root gone.
	// Surfaced to the caller, never retried.
	KindNotFound Kind = iota

	// KindMalformedInput indicates text violating the marker contract:
	// marker-count mismatch, missing primary marker, duplicate
	// instructions. Hard failure with expected-vs-actual detail.
	KindMalformedInput

	// KindIOFailure indicates an unreadable file or directory. Fatal for
	// the search root, locally recoverable (skip) for individual files.
	KindIOFailure

	// KindParseDegradation indicates a structural parser failed for one
	// file and the lexical fallback took over. Absorbed silently; only a
	// total absence of matches surfaces, and it surfaces as KindNotFound.
	KindParseDegradation
)

var kindNames = map[Kind]string{
	KindNotFound:         "not_found",
	KindMalformedInput:   "malformed_input",
	KindIOFailure:        "io_failure",
	KindParseDegradation: "parse_degradation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindBehavior defines the handling behavior for an error kind.
type KindBehavior struct {
	// Fatal indicates the error aborts the invocation.
	Fatal bool

	// LocallyRecoverable indicates the failing unit (one file) may be
	// skipped while the invocation continues.
	LocallyRecoverable bool

	// Silent indicates the error is absorbed without user-visible output
	// beyond debug logging.
	Silent bool
}

// DefaultBehaviors returns the handling behavior for each kind.
func DefaultBehaviors() map[Kind]KindBehavior {
	return map[Kind]KindBehavior{
		KindNotFound: {
			Fatal: true,
		},
		KindMalformedInput: {
			Fatal: true,
		},
		KindIOFailure: {
			Fatal:              true,
			LocallyRecoverable: true,
		},
		KindParseDegradation: {
			LocallyRecoverable: true,
			Silent:             true,
		},
	}
}

// ClassifiedError wraps an error with its kind and human-readable
// context: the path involved and, for contract violations, the expected
// versus actual state.
type ClassifiedError struct {
	Kind       Kind
	Message    string
	Path       string
	Expected   string
	Actual     string
	Underlying error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Expected != "" || e.Actual != "" {
		msg += fmt.Sprintf(" (expected %s, got %s)", e.Expected, e.Actual)
	}
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

// Is matches against the target's kind, so errors.Is answers
// kind-level questions regardless of which sentinel produced the error.
func (e *ClassifiedError) Is(target error) bool {
	var ce *ClassifiedError
	if errors.As(target, &ce) {
		return e.Kind == ce.Kind
	}
	return false
}

// New creates a ClassifiedError with the given kind and message.
func New(kind Kind, message string) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Message: message}
}

// WithPath attaches the path involved in the failure.
func (e *ClassifiedError) WithPath(path string) *ClassifiedError {
	e.Path = path
	return e
}

// WithDetail attaches expected-vs-actual context.
func (e *ClassifiedError) WithDetail(expected, actual string) *ClassifiedError {
	e.Expected = expected
	e.Actual = actual
	return e
}

// GetKind extracts the Kind from an error, defaulting to KindIOFailure
// for unclassified errors (the generic OS-failure bucket).
func GetKind(err error) Kind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindIOFailure
}

// GetBehavior returns the behavior for an error's kind.
func GetBehavior(err error) KindBehavior {
	return DefaultBehaviors()[GetKind(err)]
}

// IsFatal reports whether an error aborts the invocation when it
// reaches the pipeline boundary.
func IsFatal(err error) bool {
	return GetBehavior(err).Fatal
}

// IsLocallyRecoverable reports whether the failing unit may be skipped.
func IsLocallyRecoverable(err error) bool {
	return GetBehavior(err).LocallyRecoverable
}

// Sentinel errors for the conditions each kind covers.
var (
	// Not-found conditions.
	ErrInstructionNotFound = New(KindNotFound, "no instruction marker found")
	ErrSymbolNotDefined    = New(KindNotFound, "target symbol is not defined in the search root")
	ErrNoDeclaration       = New(KindNotFound, "no declaration precedes the instruction marker")
	ErrNoReferences        = New(KindNotFound, "no files reference the target symbol")

	// Malformed-input conditions.
	ErrMarkerCountMismatch  = New(KindMalformedInput, "marker line count violates the prompt contract")
	ErrPrimaryMarkerMissing = New(KindMalformedInput, "primary marker line missing from prompt")
	ErrMultipleInstructions = New(KindMalformedInput, "more than one instruction marker found")

	// IO conditions.
	ErrSearchRootUnreadable = New(KindIOFailure, "search root missing or unreadable")
	ErrFileUnreadable       = New(KindIOFailure, "file unreadable")

	// Degradation conditions.
	ErrStructuralParseFailed = New(KindParseDegradation, "structural parse failed")
)

// From derives a mutable copy of a sentinel so WithPath and WithDetail
// never touch the shared value.
func From(sentinel *ClassifiedError) *ClassifiedError {
	clone := *sentinel
	return &clone
}

// Wrap classifies an existing error. A nil error stays nil; an already
// classified error keeps its original kind and detail.
func Wrap(kind Kind, message string, err error) error {
	if err == nil {
		return nil
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return &ClassifiedError{
			Kind:       ce.Kind,
			Message:    message,
			Path:       ce.Path,
			Expected:   ce.Expected,
			Actual:     ce.Actual,
			Underlying: err,
		}
	}

	return &ClassifiedError{Kind: kind, Message: message, Underlying: err}
}
