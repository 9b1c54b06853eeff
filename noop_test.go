package profz

import (
	"context"
	"testing"
)

func BenchmarkBeginEnd(b *testing.B) {
	b.Run("enabled", func(b *testing.B) {
		proc := NewProcess("bench", 0, WithConfig(Config{FilenamePrefix: b.TempDir() + "/bench"}))
		th := proc.InitThread("main", 0)
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			th.Begin("op", "") //nolint:errcheck // name is valid
			th.End()           //nolint:errcheck // span is open
		}
	})

	b.Run("disabled", func(b *testing.B) {
		proc := NewProcess("bench", 0, WithConfig(Config{}))
		th := proc.InitThread("main", 0)
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			th.Begin("op", "") //nolint:errcheck // name is valid
			th.End()           //nolint:errcheck // disabled handle
		}
	})
}

func TestDisabledRecorderDoesNotAllocate(t *testing.T) {
	proc := NewProcess("noop", 0, WithConfig(Config{}))
	th := proc.InitThread("main", 0)

	allocs := testing.AllocsPerRun(100, func() {
		th.Begin("op", "detail") //nolint:errcheck // name is valid
		th.End()                 //nolint:errcheck // disabled handle
	})
	if allocs != 0 {
		t.Errorf("expected zero allocations on a disabled thread, got %v", allocs)
	}
}

func TestDisabledGlobalDoesNotAllocate(t *testing.T) {
	resetGlobal(t)
	disableEnv(t)
	Default()

	ctx := context.Background()
	allocs := testing.AllocsPerRun(100, func() {
		c := Begin(ctx, "op", "")
		End(c)
	})
	if allocs != 0 {
		t.Errorf("expected zero allocations in disabled mode, got %v", allocs)
	}
}
