// Package trace implements a level-filtered tracer: callers push records
// into a bounded ring, and a background goroutine drains them to a
// pluggable sink, dropping and counting the oldest record on overflow
// rather than blocking the caller.
package trace

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Level filters which records a Tracer forwards to its sink. Setting a
// level implies all higher-priority levels are also printed.
type Level int

const (
	Suppressed Level = iota
	Fatal
	Error
	Warning
	Info
	Debug
)

func (l Level) String() string {
	switch l {
	case Suppressed:
		return "suppressed"
	case Fatal:
		return "fatal"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// Record is one trace line.
type Record struct {
	Level     Level
	Thread    string
	Function  string
	File      string
	Line      int
	Timestamp time.Time
	Message   string
}

// Sink consumes drained records. Embedders redirect tracer output by
// supplying their own Sink.
type Sink interface {
	Write(Record)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Record)

func (f SinkFunc) Write(r Record) { f(r) }

// Diagnostics reports the tracer's current buffer occupancy and the
// lifetime count of records dropped on overflow.
type Diagnostics struct {
	BufferSize          int
	BufferOverflowCount uint64
}

// Tracer owns a bounded ring of pending records and a draining goroutine.
// The ring is guarded by a mutex (structural pushes/pops); the overflow
// counter is a plain atomic, the one piece of this type that is genuinely
// lock-free.
type Tracer struct {
	mu       sync.Mutex
	ring     []Record
	capacity int

	level    atomic.Int32
	overflow atomic.Uint64

	sink   Sink
	notify chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

// New constructs a Tracer with the given ring capacity, initial level, and
// sink, and starts its draining goroutine. capacity <= 0 defaults to 256.
func New(capacity int, level Level, sink Sink) *Tracer {
	if capacity <= 0 {
		capacity = 256
	}
	if sink == nil {
		sink = SinkFunc(func(Record) {})
	}
	t := &Tracer{
		capacity: capacity,
		sink:     sink,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	t.level.Store(int32(level))
	t.wg.Add(1)
	go t.run()
	return t
}

var (
	defaultOnce sync.Once
	defaultTr   *Tracer
)

// Default returns the process-wide tracer, created on first use. Packages
// that cannot reach a caller-supplied *Tracer without an import cycle (e.g.
// object, invokable) log through this instead of going silent.
func Default() *Tracer {
	defaultOnce.Do(func() {
		defaultTr = New(256, Warning, SinkFunc(defaultSink))
	})
	return defaultTr
}

func defaultSink(r Record) {
	fmt.Fprintf(os.Stderr, "[%s] %s:%d %s: %s\n", r.Level, r.File, r.Line, r.Function, r.Message)
}

// StderrSink is Default()'s original sink, exported so callers that
// temporarily redirect Default() (tests, mainly) can restore it afterwards.
func StderrSink(r Record) {
	defaultSink(r)
}

// SetLevel changes the filter level; records below it are dropped at Log
// time without ever entering the ring.
func (t *Tracer) SetLevel(level Level) {
	t.level.Store(int32(level))
}

// SetSink replaces the tracer's sink. Tests use this on Default() to capture
// records without standing up a second tracer.
func (t *Tracer) SetSink(sink Sink) {
	if sink == nil {
		sink = SinkFunc(func(Record) {})
	}
	t.mu.Lock()
	t.sink = sink
	t.mu.Unlock()
}

func (t *Tracer) Level() Level {
	return Level(t.level.Load())
}

// Log records a trace line if level is at or above the tracer's current
// filter level. When the ring is full, the oldest record is dropped and
// the overflow counter increments.
func (t *Tracer) Log(level Level, function, file string, line int, format string, args ...any) {
	current := t.Level()
	if current == Suppressed || level > current || level == Suppressed {
		return
	}
	rec := Record{
		Level:     level,
		Thread:    goroutineLabel(),
		Function:  function,
		File:      file,
		Line:      line,
		Timestamp: time.Now(),
		Message:   fmt.Sprintf(format, args...),
	}

	t.mu.Lock()
	if len(t.ring) >= t.capacity {
		t.ring = t.ring[1:]
		t.overflow.Add(1)
	}
	t.ring = append(t.ring, rec)
	t.mu.Unlock()

	select {
	case t.notify <- struct{}{}:
	default:
	}
}

// Diagnostics reports current occupancy and lifetime overflow count as raw
// numbers; Diagnostics.String formats them with humanize.Comma.
func (t *Tracer) Diagnostics() Diagnostics {
	t.mu.Lock()
	size := len(t.ring)
	t.mu.Unlock()
	return Diagnostics{BufferSize: size, BufferOverflowCount: t.overflow.Load()}
}

// String renders human-readable diagnostics, e.g. for a REPL status line.
func (d Diagnostics) String() string {
	return fmt.Sprintf("%s buffered, %s dropped", humanize.Comma(int64(d.BufferSize)), humanize.Comma(int64(d.BufferOverflowCount)))
}

func (t *Tracer) run() {
	defer t.wg.Done()
	for {
		select {
		case <-t.notify:
			t.drain()
		case <-t.done:
			t.drain()
			return
		}
	}
}

func (t *Tracer) drain() {
	for {
		t.mu.Lock()
		if len(t.ring) == 0 {
			t.mu.Unlock()
			return
		}
		rec := t.ring[0]
		t.ring = t.ring[1:]
		sink := t.sink
		t.mu.Unlock()
		sink.Write(rec)
	}
}

// Stop signals the draining goroutine to flush and exit, then waits for it.
func (t *Tracer) Stop() {
	close(t.done)
	t.wg.Wait()
}

func goroutineLabel() string {
	return "goroutine"
}
