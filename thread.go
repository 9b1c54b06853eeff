package profz

import "fmt"

// Thread is the recording state of one goroutine.
// Obtain it once with Process.InitThread and keep it for the goroutine's
// lifetime. Thread is NOT safe for concurrent use: Begin and End take no
// locks.
//
// A nil *Thread is the handle of a disabled process. Its methods are no-ops.
type Thread struct {
	process   *Process
	stack     []Span
	completed []Span
	name      string
	tid       int
	index     int
}

// Begin opens a span on top of the thread's stack.
func (t *Thread) Begin(name Key, detail string) error {
	if name == "" {
		return ErrEmptySpanName
	}
	if t == nil {
		return nil
	}

	t.stack = append(t.stack, Span{
		Name:   name,
		Detail: detail,
		Start:  t.process.clock.Now(),
	})
	return nil
}

// End closes the most recently opened span and records it as completed.
func (t *Thread) End() error {
	if t == nil {
		return nil
	}

	n := len(t.stack)
	if n == 0 {
		return fmt.Errorf("%w on thread %q (tid %d)", ErrUnmatchedEnd, t.name, t.tid)
	}

	span := t.stack[n-1]
	t.stack[n-1] = Span{}
	t.stack = t.stack[:n-1]

	span.End = t.process.clock.Now()
	t.completed = append(t.completed, span)
	return nil
}

// Scope opens a span and returns the function that closes it.
//
//	defer th.Scope("decode", file)()
//
// Scope panics on a violated precondition.
func (t *Thread) Scope(name Key, detail string) func() {
	if err := t.Begin(name, detail); err != nil {
		panic(err)
	}
	return func() {
		if err := t.End(); err != nil {
			panic(err)
		}
	}
}

// Name returns the thread's display name.
func (t *Thread) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// ID returns the thread identifier used in the trace.
func (t *Thread) ID() int {
	if t == nil {
		return 0
	}
	return t.tid
}

// Index returns the thread's sort index.
func (t *Thread) Index() int {
	if t == nil {
		return 0
	}
	return t.index
}

// Depth returns the number of open spans.
func (t *Thread) Depth() int {
	if t == nil {
		return 0
	}
	return len(t.stack)
}

// Spans returns a copy of the completed spans in completion order.
// Nested spans complete, and therefore appear, before their parent.
func (t *Thread) Spans() []Span {
	if t == nil || len(t.completed) == 0 {
		return nil
	}
	result := make([]Span, len(t.completed))
	copy(result, t.completed)
	return result
}
