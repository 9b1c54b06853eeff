package profz

import "time"

// Span is one recorded interval on a thread.
// Spans are NOT thread-safe - they belong to the Thread that opened them.
type Span struct {
	Start  time.Time
	End    time.Time
	Name   Key
	Detail string
}

// Duration returns the span length, or zero while the span is open.
func (s Span) Duration() time.Duration {
	if s.End.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Finished reports whether End has been recorded.
func (s Span) Finished() bool {
	return !s.End.IsZero()
}
