package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/zoobzio/profz"
)

// TestConcurrentRecording records nested spans from many goroutines and
// checks every span lands on its own thread.
func TestConcurrentRecording(t *testing.T) {
	proc := NewTestProcess(t, "race-test-process")

	const numGoroutines = 20
	const spansPerGoroutine = 50

	var wg sync.WaitGroup
	handles := make([]*profz.Thread, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			th := proc.InitThread(fmt.Sprintf("worker-%d", i), i)
			handles[i] = th
			for j := 0; j < spansPerGoroutine; j++ {
				check(t, th.Begin("parent", fmt.Sprintf("worker=%d", i)))
				check(t, th.Begin("child", ""))
				check(t, th.End())
				check(t, th.End())
			}
		}(i)
	}
	wg.Wait()

	tr := DumpAndRead(t, proc)

	if got := len(tr.Events(profz.PhaseComplete)); got != numGoroutines*spansPerGoroutine*2 {
		t.Fatalf("Expected %d complete events, got %d", numGoroutines*spansPerGoroutine*2, got)
	}

	for i, th := range handles {
		events := tr.ThreadEvents(th.ID())
		if len(events) != spansPerGoroutine*2 {
			t.Errorf("Thread %d: expected %d events, got %d", th.ID(), spansPerGoroutine*2, len(events))
			continue
		}
		want := fmt.Sprintf("worker=%d", i)
		for k := 0; k < len(events); k += 2 {
			if events[k].Name != "child" || events[k+1].Name != "parent" {
				t.Fatalf("Thread %d: expected child before parent, got %s, %s", th.ID(), events[k].Name, events[k+1].Name)
			}
			if events[k+1].Args != want {
				t.Errorf("Thread %d: span from another thread: %v", th.ID(), events[k+1].Args)
			}
			if events[k].Dur < 0 || events[k+1].Dur < events[k].Dur {
				t.Errorf("Thread %d: child outlasts parent", th.ID())
			}
		}
	}
}

// TestGlobalLifecycle drives the package-level API the way an application
// does: init at startup, one thread per goroutine, dump after joining.
func TestGlobalLifecycle(t *testing.T) {
	profz.Reset()
	t.Cleanup(profz.Reset)

	prefix := filepath.Join(t.TempDir(), "app")
	t.Setenv("GP_FILENAME_PREFIX", prefix)

	proc := profz.InitProcess("Global App", 1)
	if proc.Filename() != prefix+"_global_app.json" {
		t.Fatalf("Unexpected filename %s", proc.Filename())
	}

	root := profz.InitThread(context.Background(), "Main Thread", 0)
	_, done := profz.Scope(root, "main", "")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// A fresh context per goroutine: a bound thread must not be shared.
			wctx := profz.InitThread(context.Background(), fmt.Sprintf("worker-%d", i), i+1)
			for j := 0; j < 10; j++ {
				_, end := profz.Scope(wctx, "job", fmt.Sprint(j))
				end()
			}
		}(i)
	}
	wg.Wait()
	done()

	if err := profz.Dump(); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	tr := DumpAndRead(t, proc)
	if got := len(tr.Events(profz.PhaseComplete)); got != 41 {
		t.Errorf("Expected 41 complete events, got %d", got)
	}
	if got := len(proc.Threads()); got != 5 {
		t.Errorf("Expected 5 threads, got %d", got)
	}
}

// check reports a recorder error; safe to call from any goroutine.
func check(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Error(err)
	}
}
