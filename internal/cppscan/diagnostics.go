package cppscan

import "fmt"

// DiagnosticKind classifies non-fatal findings produced during analysis.
type DiagnosticKind int

const (
	// DiagUnterminatedComment is reported when a block comment is still
	// open at end of file.
	DiagUnterminatedComment DiagnosticKind = iota

	// DiagUnterminatedLiteral is reported when a string or character
	// literal has no closing quote on its line.
	DiagUnterminatedLiteral

	// DiagUnclassifiedSpan is reported for a token sequence at
	// declaration level that could not be classified.
	DiagUnclassifiedSpan

	// DiagAmbiguousOverload is reported when two same-named declarations
	// in the same scope produce identical signature keys.
	DiagAmbiguousOverload

	// DiagMacroHeuristic is reported when a function identity was derived
	// from macro arguments by naming convention. The mapping from macro
	// arguments to function identity is project-specific, so these
	// declarations carry lower confidence.
	DiagMacroHeuristic
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagUnterminatedComment:
		return "unterminated-comment"
	case DiagUnterminatedLiteral:
		return "unterminated-literal"
	case DiagUnclassifiedSpan:
		return "unclassified-span"
	case DiagAmbiguousOverload:
		return "ambiguous-overload"
	case DiagMacroHeuristic:
		return "macro-heuristic"
	default:
		return "unknown"
	}
}

// Diagnostic is a non-fatal finding. Diagnostics accumulate per file and
// are returned alongside results; callers decide whether they are
// build-breaking.
type Diagnostic struct {
	Kind    DiagnosticKind
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
}

// MarkerError is a fatal-for-file error: malformed marker nesting,
// an unmatched marker, or a duplicate open id. It aborts extraction for
// the file it occurred in; other files are unaffected.
type MarkerError struct {
	ID     string
	Line   int
	Reason string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("marker %q at line %d: %s", e.ID, e.Line, e.Reason)
}
