package profz

import "errors"

// Precondition violations. These are programming errors, never data to
// recover from: the explicit API returns them and the package-level
// functions panic with them.
var (
	// ErrEmptySpanName is returned by Begin when the span has no name.
	ErrEmptySpanName = errors.New("profz: empty span name")
	// ErrUnmatchedEnd is returned by End when no span is open.
	ErrUnmatchedEnd = errors.New("profz: end without matching begin")
	// ErrDumpWithOpenSpans is returned by Dump while a thread still has open spans.
	ErrDumpWithOpenSpans = errors.New("profz: dump with open spans")
	// ErrNotInitialized is returned when the process was never initialized.
	ErrNotInitialized = errors.New("profz: process not initialized")
)
