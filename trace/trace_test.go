package trace

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	cases := map[Level]string{
		Suppressed: "suppressed",
		Fatal:      "fatal",
		Error:      "error",
		Warning:    "warning",
		Info:       "info",
		Debug:      "debug",
		Level(99):  "unknown",
	}
	for level, want := range cases {
		assert.Equal(t, want, level.String())
	}
}

// collectingSink records every record it receives, guarded by a mutex since
// the tracer's draining goroutine writes from its own goroutine.
type collectingSink struct {
	mu      sync.Mutex
	records []Record
}

func (s *collectingSink) Write(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

func (s *collectingSink) snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

func TestTracer_LogDeliversToSink(t *testing.T) {
	sink := &collectingSink{}
	tr := New(8, Info, sink)
	defer tr.Stop()

	tr.Log(Info, "TestTracer_LogDeliversToSink", "trace_test.go", 1, "hello %s", "world")

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, time.Millisecond)
	rec := sink.snapshot()[0]
	assert.Equal(t, Info, rec.Level)
	assert.Equal(t, "hello world", rec.Message)
	assert.Equal(t, "trace_test.go", rec.File)
}

func TestTracer_LogFiltersBelowLevel(t *testing.T) {
	sink := &collectingSink{}
	tr := New(8, Warning, sink)
	defer tr.Stop()

	tr.Log(Debug, "f", "file.go", 1, "ignored")
	tr.Log(Info, "f", "file.go", 2, "ignored")
	tr.Log(Error, "f", "file.go", 3, "kept")

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "kept", sink.snapshot()[0].Message)
}

func TestTracer_SuppressedLevelDropsEverything(t *testing.T) {
	sink := &collectingSink{}
	tr := New(8, Suppressed, sink)
	defer tr.Stop()

	tr.Log(Fatal, "f", "file.go", 1, "dropped")

	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, sink.snapshot())
}

func TestTracer_SetLevel(t *testing.T) {
	tr := New(8, Info, nil)
	defer tr.Stop()

	assert.Equal(t, Info, tr.Level())
	tr.SetLevel(Debug)
	assert.Equal(t, Debug, tr.Level())
}

func TestTracer_OverflowDropsOldestAndCounts(t *testing.T) {
	// A sink that blocks until released keeps the draining goroutine from
	// draining the ring, so pushed records accumulate and overflow.
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	sink := SinkFunc(func(Record) {
		once.Do(func() { close(started) })
		<-release
	})

	tr := New(2, Info, sink)
	defer func() {
		close(release)
		tr.Stop()
	}()

	tr.Log(Info, "f", "file.go", 1, "first")
	<-started // the draining goroutine has picked up "first" and is blocked in the sink

	tr.Log(Info, "f", "file.go", 2, "second")
	tr.Log(Info, "f", "file.go", 3, "third")
	tr.Log(Info, "f", "file.go", 4, "fourth")

	diag := tr.Diagnostics()
	assert.Equal(t, 2, diag.BufferSize, "ring capacity is 2, so only the last two queued records remain")
	assert.Equal(t, uint64(1), diag.BufferOverflowCount, "one record was dropped to keep the ring at capacity")
}

func TestDiagnostics_String(t *testing.T) {
	d := Diagnostics{BufferSize: 1000, BufferOverflowCount: 2000}
	assert.Equal(t, "1,000 buffered, 2,000 dropped", d.String())
}

func TestTracer_New_DefaultsCapacityAndSink(t *testing.T) {
	tr := New(0, Info, nil)
	defer tr.Stop()
	assert.NotPanics(t, func() {
		tr.Log(Info, "f", "file.go", 1, "ok")
	})
}

func TestTracer_StopFlushesRemainingRecords(t *testing.T) {
	sink := &collectingSink{}
	tr := New(8, Info, sink)
	tr.Log(Info, "f", "file.go", 1, "flush me")
	tr.Stop()
	assert.Len(t, sink.snapshot(), 1)
}

func TestDefault_ReturnsSameInstance(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestTracer_SetSinkRedirectsFutureRecords(t *testing.T) {
	tr := New(8, Info, nil)
	defer tr.Stop()

	sink := &collectingSink{}
	tr.SetSink(sink)
	tr.Log(Info, "f", "file.go", 1, "redirected")

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "redirected", sink.snapshot()[0].Message)
}

func TestDefault_SetSinkCapturesLoggedRecords(t *testing.T) {
	sink := &collectingSink{}
	Default().SetSink(sink)
	defer Default().SetSink(SinkFunc(defaultSink))

	Default().Log(Error, "TestDefault_SetSinkCapturesLoggedRecords", "trace_test.go", 1, "captured")

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "captured", sink.snapshot()[0].Message)
}
