package profz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// threadKeyType is a private type for context keys to avoid collisions.
type threadKeyType string

const (
	threadKey threadKeyType = "profz"
)

// threadBinding ties a thread handle to the process that owns it.
type threadBinding struct {
	process *Process
	thread  *Thread
}

var (
	global   atomic.Pointer[Process]
	globalMu sync.Mutex
)

// InitProcess creates the process-wide profiler once. Later calls return
// the existing process and ignore their arguments.
func InitProcess(name string, index int, opts ...Option) *Process {
	// Fast path: already initialized.
	if p := global.Load(); p != nil {
		return p
	}

	globalMu.Lock()
	defer globalMu.Unlock()

	if p := global.Load(); p != nil {
		return p
	}
	p := NewProcess(name, index, opts...)
	global.Store(p)
	return p
}

// Default returns the process-wide profiler, initializing it with the
// default name and the environment configuration if needed.
func Default() *Process {
	return InitProcess("", 0)
}

// Current returns the process-wide profiler, or nil before initialization.
func Current() *Process {
	return global.Load()
}

// Reset discards the process-wide profiler. Threads bound to the old process
// are ignored by the package-level functions afterwards. Intended for tests.
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	global.Store(nil)
}

// ContextWithThread returns a context carrying the thread handle.
// The context must not be shared with other goroutines that record spans.
func ContextWithThread(ctx context.Context, t *Thread) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if t == nil {
		return ctx
	}
	return context.WithValue(ctx, threadKey, &threadBinding{process: t.process, thread: t})
}

// ThreadFromContext extracts the thread handle from a context.
// Returns nil if no thread is present.
func ThreadFromContext(ctx context.Context) *Thread {
	if b := bindingFrom(ctx); b != nil {
		return b.thread
	}
	return nil
}

func bindingFrom(ctx context.Context) *threadBinding {
	if ctx == nil {
		return nil
	}
	if b, ok := ctx.Value(threadKey).(*threadBinding); ok {
		return b
	}
	return nil
}

// InitThread binds a new thread of the process-wide profiler to ctx.
// Call it at the top of each goroutine that records spans. If ctx already
// carries a thread of the current process it is returned unchanged, as it is
// when profiling is disabled.
func InitThread(ctx context.Context, name string, index int) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	// Weak check: initialize the process with defaults if needed.
	p := Default()
	if !p.Enabled() {
		return ctx
	}
	if b := bindingFrom(ctx); b != nil && b.process == p {
		return ctx
	}
	return ContextWithThread(ctx, p.InitThread(name, index))
}

// Begin opens a span on the thread bound to ctx, binding a new one if
// needed. Use the returned context for the matching End.
// Panics if name is empty.
func Begin(ctx context.Context, name Key, detail string) context.Context {
	if name == "" {
		panic(ErrEmptySpanName)
	}

	ctx = InitThread(ctx, "", 0)
	must(ThreadFromContext(ctx).Begin(name, detail))
	return ctx
}

// End closes the innermost span on the thread bound to ctx.
// Panics if the process was never initialized or no span is open.
func End(ctx context.Context) {
	p := global.Load()
	if p == nil {
		panic(ErrNotInitialized)
	}
	if !p.Enabled() {
		return
	}

	b := bindingFrom(ctx)
	if b == nil || b.process != p {
		panic(fmt.Errorf("%w: no thread bound to context", ErrUnmatchedEnd))
	}
	must(b.thread.End())
}

// Scope opens a span and returns the context and the function closing it.
//
//	ctx, done := profz.Scope(ctx, "upload", key)
//	defer done()
func Scope(ctx context.Context, name Key, detail string) (context.Context, func()) {
	ctx = Begin(ctx, name, detail)
	return ctx, func() { End(ctx) }
}

// Dump writes the trace of the process-wide profiler.
// Panics if the process was never initialized or a span is still open;
// file system failures are returned.
func Dump() error {
	p := global.Load()
	if p == nil {
		panic(ErrNotInitialized)
	}
	err := p.Dump()
	if errors.Is(err, ErrDumpWithOpenSpans) {
		panic(err)
	}
	return err
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
