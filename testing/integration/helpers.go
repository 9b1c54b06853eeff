package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/zoobzio/profz"
)

// NewTestProcess creates an enabled process that dumps into a temp dir.
func NewTestProcess(t *testing.T, name string, opts ...profz.Option) *profz.Process {
	t.Helper()
	cfg := profz.Config{FilenamePrefix: filepath.Join(t.TempDir(), "trace")}
	return profz.NewProcess(name, 0, append([]profz.Option{profz.WithConfig(cfg)}, opts...)...)
}

// DumpAndRead dumps the process and parses the written file back.
func DumpAndRead(t *testing.T, proc *profz.Process) *profz.Trace {
	t.Helper()

	if err := proc.Dump(); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	f, err := os.Open(proc.Filename())
	if err != nil {
		t.Fatalf("Trace file missing: %v", err)
	}
	defer f.Close()

	tr, err := profz.ReadTrace(f)
	if err != nil {
		t.Fatalf("Trace file unreadable: %v", err)
	}
	return tr
}

// SpanTree represents a hierarchical view of one thread's complete events.
type SpanTree struct {
	Children []*SpanTree
	Event    profz.Event
}

// end returns the event end in microseconds.
func end(e profz.Event) float64 {
	return e.TS + e.Dur
}

// contains reports whether inner lies within outer on the timeline.
func contains(outer, inner profz.Event) bool {
	return inner.TS >= outer.TS && end(inner) <= end(outer)
}

// BuildSpanTree reconstructs nesting from the events of one thread.
// Complete events carry no parent link, so nesting is recovered from
// interval containment: a span's parent is the innermost span enclosing it.
func BuildSpanTree(events []profz.Event) []*SpanTree {
	sorted := make([]profz.Event, len(events))
	copy(sorted, events)

	// Parents first: earlier start, then longer duration.
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TS != sorted[j].TS {
			return sorted[i].TS < sorted[j].TS
		}
		return sorted[i].Dur > sorted[j].Dur
	})

	var roots []*SpanTree
	var open []*SpanTree
	for _, e := range sorted {
		node := &SpanTree{Event: e}
		for len(open) > 0 && !contains(open[len(open)-1].Event, e) {
			open = open[:len(open)-1]
		}
		if len(open) == 0 {
			roots = append(roots, node)
		} else {
			parent := open[len(open)-1]
			parent.Children = append(parent.Children, node)
		}
		open = append(open, node)
	}
	return roots
}

// PrintSpanTree formats span tree for debugging.
func PrintSpanTree(trees []*SpanTree) string {
	var sb strings.Builder
	for _, tree := range trees {
		printTreeNode(&sb, tree, 0)
	}
	return sb.String()
}

func printTreeNode(sb *strings.Builder, node *SpanTree, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s (%.3fms)\n", indent, node.Event.Name, node.Event.Dur/1000)
	for _, child := range node.Children {
		printTreeNode(sb, child, depth+1)
	}
}

// Names lists event names in order.
func Names(events []profz.Event) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}
