// Package profz provides a minimal, low-overhead span profiler that exports
// Chrome Trace Event documents.
//
// profz records nested, named timing spans on any number of goroutines and
// dumps them once, at the end of the run, as a JSON file that chrome://tracing
// and Perfetto can open. It keeps every span in memory until the dump.
//
// Core Components:
//   - Process: process-wide state, configuration and the thread registry.
//   - Thread: per-goroutine handle holding the active span stack.
//   - Span: one recorded interval.
//   - Trace: the serialized document.
//
// Basic Usage:
//
//	proc := profz.NewProcess("Renderer", 0)
//	th := proc.InitThread("Main Thread", 0)
//
//	th.Begin("frame", "")
//	th.Begin("draw", "pass=opaque")
//	th.End()
//	th.End()
//
//	if err := proc.Dump(); err != nil {
//		log.Fatal(err)
//	}
//
// Scoped spans close on every return path:
//
//	defer th.Scope("load", path)()
//
// Configuration:
//
// Profiling is off unless GP_FILENAME_PREFIX is set. The dump is written to
// <prefix>_<process name in lower snake case>.json. When disabled, InitThread
// returns a nil *Thread and every recorder call on it is a cheap no-op.
//
// Thread Safety:
//
// Process is safe for concurrent use. A Thread is NOT: each goroutine must
// own its handle. Begin and End never lock. Dump must only run after every
// recording goroutine has closed its spans, typically after joining them.
package profz

// Key represents a span name.
type Key = string

// Placeholder names used when the caller supplies none.
const (
	DefaultProcessName = "Worker Process"
	DefaultThreadName  = "Worker Thread"
)

// Trace event phases.
const (
	PhaseComplete = "X"
	PhaseMetadata = "M"
)
