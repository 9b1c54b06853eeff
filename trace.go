package profz

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Metadata record names understood by trace viewers.
const (
	MetaProcessName      = "process_name"
	MetaProcessSortIndex = "process_sort_index"
	MetaThreadName       = "thread_name"
	MetaThreadSortIndex  = "thread_sort_index"
)

// Trace is a Chrome Trace Event document.
//
// https://docs.google.com/document/d/1CvAClvFfyA5R-PhYUmn5OOQtYMH4h6I0nSsKchNAySU
type Trace struct {
	OtherData   map[string]string `json:"otherData,omitempty"`
	TraceEvents []Event           `json:"traceEvents"`
}

// Event is one trace record: a complete span or a metadata entry.
// TID is zero on process metadata. TS and Dur are in microseconds since the
// process epoch and only meaningful on complete events.
type Event struct {
	Args  any
	Phase string
	Name  string
	PID   int
	TID   int
	TS    float64
	Dur   float64
}

type wireEvent struct {
	Phase string   `json:"ph"`
	Name  string   `json:"name"`
	PID   int      `json:"pid"`
	TID   *int     `json:"tid,omitempty"`
	TS    *float64 `json:"ts,omitempty"`
	Dur   *float64 `json:"dur,omitempty"`
	Args  any      `json:"args,omitempty"`
}

// MarshalJSON omits the fields a record kind does not carry.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{
		Phase: e.Phase,
		Name:  e.Name,
		PID:   e.PID,
		Args:  e.Args,
	}
	if e.TID != 0 {
		tid := e.TID
		w.TID = &tid
	}
	if e.Phase == PhaseComplete {
		ts, dur := e.TS, e.Dur
		w.TS = &ts
		w.Dur = &dur
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a record written by MarshalJSON.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Event{
		Phase: w.Phase,
		Name:  w.Name,
		PID:   w.PID,
		Args:  w.Args,
	}
	if w.TID != nil {
		e.TID = *w.TID
	}
	if w.TS != nil {
		e.TS = *w.TS
	}
	if w.Dur != nil {
		e.Dur = *w.Dur
	}
	return nil
}

// Events returns the records of the given phase, in document order.
func (tr *Trace) Events(phase string) []Event {
	var result []Event
	for _, e := range tr.TraceEvents {
		if e.Phase == phase {
			result = append(result, e)
		}
	}
	return result
}

// ThreadEvents returns the complete events of one thread, in document order.
func (tr *Trace) ThreadEvents(tid int) []Event {
	var result []Event
	for _, e := range tr.TraceEvents {
		if e.Phase == PhaseComplete && e.TID == tid {
			result = append(result, e)
		}
	}
	return result
}

// ReadTrace decodes a trace document.
func ReadTrace(r io.Reader) (*Trace, error) {
	var tr Trace
	if err := json.NewDecoder(r).Decode(&tr); err != nil {
		return nil, fmt.Errorf("profz: decode trace: %w", err)
	}
	return &tr, nil
}

// Trace builds the document from every registered thread.
// Fails with ErrDumpWithOpenSpans while any thread has an open span.
func (p *Process) Trace() (*Trace, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buildLocked()
}

// WriteTo writes the document as indented JSON.
func (p *Process) WriteTo(w io.Writer) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := p.encodeLocked()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("profz: write trace: %w", err)
	}
	return int64(n), nil
}

// Dump writes the trace to Filename. It is a no-op when profiling is
// disabled. Every recording goroutine must have closed its spans.
func (p *Process) Dump() error {
	if !p.enabled {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := p.encodeLocked()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(p.filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("profz: create trace directory: %w", err)
		}
	}
	if err := os.WriteFile(p.filename, data, 0o644); err != nil {
		return fmt.Errorf("profz: write trace file: %w", err)
	}

	p.logger.Info("profiler trace written",
		zap.String("filename", p.filename),
		zap.Int("threads", len(p.threads)),
		zap.Int("bytes", len(data)),
	)
	return nil
}

func (p *Process) encodeLocked() ([]byte, error) {
	tr, err := p.buildLocked()
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(tr, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("profz: encode trace: %w", err)
	}
	return append(data, '\n'), nil
}

// buildLocked must be called with p.mu held.
func (p *Process) buildLocked() (*Trace, error) {
	total := 0
	for _, t := range p.threads {
		if len(t.stack) != 0 {
			return nil, fmt.Errorf("%w: thread %q (tid %d) has %d open, innermost %q",
				ErrDumpWithOpenSpans, t.name, t.tid, len(t.stack), t.stack[len(t.stack)-1].Name)
		}
		total += len(t.completed)
	}

	events := make([]Event, 0, total+2+2*len(p.threads))
	for _, t := range p.threads {
		p.logger.Debug("profiler thread dumped",
			zap.String("name", t.name),
			zap.Int("tid", t.tid),
			zap.Int("spans", len(t.completed)),
		)
		for _, s := range t.completed {
			events = append(events, Event{
				Phase: PhaseComplete,
				Name:  s.Name,
				PID:   p.pid,
				TID:   t.tid,
				TS:    sinceEpoch(p.epoch, s.Start),
				Dur:   toMicros(s.Duration()),
				Args:  s.Detail,
			})
		}
	}

	// Naming and ordering of the process, then of its threads.
	events = append(events,
		Event{
			Phase: PhaseMetadata,
			Name:  MetaProcessName,
			PID:   p.pid,
			Args:  map[string]any{"name": p.name},
		},
		Event{
			Phase: PhaseMetadata,
			Name:  MetaProcessSortIndex,
			PID:   p.pid,
			Args:  map[string]any{"sort_index": p.index},
		},
	)
	for _, t := range p.threads {
		events = append(events,
			Event{
				Phase: PhaseMetadata,
				Name:  MetaThreadName,
				PID:   p.pid,
				TID:   t.tid,
				Args:  map[string]any{"name": t.name},
			},
			Event{
				Phase: PhaseMetadata,
				Name:  MetaThreadSortIndex,
				PID:   p.pid,
				TID:   t.tid,
				Args:  map[string]any{"sort_index": t.index},
			},
		)
	}

	return &Trace{
		TraceEvents: events,
		OtherData: map[string]string{
			"session": p.session,
			"process": p.name,
		},
	}, nil
}
