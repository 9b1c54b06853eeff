package profz

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Process holds the profiler state of one process: its identity, its
// configuration and the registry of every thread that ever registered.
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field order follows the trace document
type Process struct {
	epoch    time.Time
	clock    clockz.Clock
	logger   *zap.Logger
	threads  []*Thread
	name     string
	filename string
	session  string
	pid      int
	index    int
	nextTID  int
	enabled  bool
	mu       sync.Mutex // Protects threads and nextTID.
}

// Option configures a Process at creation.
type Option func(*settings)

type settings struct {
	config *Config
	clock  clockz.Clock
	logger *zap.Logger
	pid    int
}

// WithConfig sets the configuration instead of reading the environment.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.config = &cfg
	}
}

// WithClock sets the time source.
// Enables clock injection for deterministic testing.
func WithClock(clock clockz.Clock) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithLogger sets the logger for lifecycle and dump diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithPID overrides the process identifier written to the trace.
func WithPID(pid int) Option {
	return func(s *settings) {
		s.pid = pid
	}
}

// NewProcess creates the profiler state for a process.
// An empty name resolves to DefaultProcessName. Whether profiling is enabled
// is decided here, once, from the configuration.
func NewProcess(name string, index int, opts ...Option) *Process {
	s := settings{
		clock:  defaultClock,
		logger: zap.NewNop(),
		pid:    os.Getpid(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	var cfg Config
	if s.config != nil {
		cfg = *s.config
	} else {
		cfg = LoadConfig()
	}

	if name == "" {
		name = DefaultProcessName
	}

	p := &Process{
		name:     name,
		pid:      s.pid,
		index:    index,
		filename: cfg.Filename(name),
		enabled:  cfg.Enabled(),
		clock:    s.clock,
		logger:   s.logger,
		session:  uuid.NewString(),
	}
	p.epoch = p.clock.Now()

	p.logger.Debug("profiler process initialized",
		zap.String("name", p.name),
		zap.Int("pid", p.pid),
		zap.Int("index", p.index),
		zap.Bool("enabled", p.enabled),
		zap.String("filename", p.filename),
	)
	return p
}

// InitThread registers a new thread and returns its handle.
// The calling goroutine keeps the handle; registering again creates a
// second, distinct thread. An empty name resolves to DefaultThreadName.
// Returns nil when profiling is disabled.
func (p *Process) InitThread(name string, index int) *Thread {
	if !p.enabled {
		return nil
	}

	if name == "" {
		name = DefaultThreadName
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextTID++
	t := &Thread{
		process: p,
		name:    name,
		tid:     p.nextTID,
		index:   index,
	}
	p.threads = append(p.threads, t)

	p.logger.Debug("profiler thread registered",
		zap.String("name", t.name),
		zap.Int("tid", t.tid),
		zap.Int("index", t.index),
	)
	return t
}

// Name returns the process display name.
func (p *Process) Name() string {
	return p.name
}

// PID returns the process identifier used in the trace.
func (p *Process) PID() int {
	return p.pid
}

// Index returns the process sort index.
func (p *Process) Index() int {
	return p.index
}

// Filename returns the dump destination, empty when disabled.
func (p *Process) Filename() string {
	return p.filename
}

// Enabled reports whether the process records spans.
func (p *Process) Enabled() bool {
	return p.enabled
}

// Session returns the unique identifier of this profiling session.
func (p *Process) Session() string {
	return p.session
}

// Threads returns the registered threads in registration order.
func (p *Process) Threads() []*Thread {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.threads) == 0 {
		return nil
	}
	result := make([]*Thread, len(p.threads))
	copy(result, p.threads)
	return result
}
