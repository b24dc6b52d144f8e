// Package library implements the Library singleton: process lifecycle for
// the optional thread pool, the tracer, and the object factory with its
// base metaclasses, torn down in reverse order by Uninitialize. Ambient
// access goes through a handle that must not be used before Initialize.
package library

import (
	"context"
	"fmt"
	"os"
	"sync"

	stewerrors "github.com/wudi/stew/errors"
	"github.com/wudi/stew/factory"
	"github.com/wudi/stew/metaclass"
	"github.com/wudi/stew/object"
	"github.com/wudi/stew/threadpool"
	"github.com/wudi/stew/trace"
)

// ThreadPoolConfig configures the optional process-wide thread pool.
type ThreadPoolConfig struct {
	Create      bool
	ThreadCount int
}

// TracerConfig configures the process-wide tracer.
type TracerConfig struct {
	LogLevel trace.Level
}

// Config is the configuration record Initialize accepts.
type Config struct {
	ThreadPool ThreadPoolConfig
	Tracer     TracerConfig
}

// Library bundles the process-wide collaborators Initialize constructs.
type Library struct {
	pool    *threadpool.Pool
	tracer  *trace.Tracer
	factory *factory.ObjectFactory
}

var (
	mu   sync.Mutex
	inst *Library
)

// Initialize constructs the optional thread pool, the tracer (wired to the
// pool when present), and the ObjectFactory with its base metaclasses
// ("Object", "ObjectExtension") registered. It fails if called twice
// without an intervening Uninitialize. The base metaclasses stay registered
// in metaclass.Default() after Uninitialize, so a later Initialize in the
// same process also fails, with ErrMetaClassExists.
func Initialize(cfg Config) (lib *Library, err error) {
	mu.Lock()
	defer mu.Unlock()
	if inst != nil {
		return nil, stewerrors.New(stewerrors.ErrLibraryAlreadyInitialized, "library.Initialize", "")
	}

	// Precondition violations raised by metaclass/factory registration are
	// fatal: recover here only to log through the tracer before re-raising
	// to the process, the Go rendering of "log then abort".
	defer func() {
		if r := recover(); r != nil {
			if pv, ok := r.(*stewerrors.Precondition); ok && lib != nil && lib.tracer != nil {
				lib.tracer.Log(trace.Fatal, "library.Initialize", "library.go", 0, "%s", pv.Error())
				lib.tracer.Stop()
			}
			panic(r)
		}
	}()

	lib = &Library{}
	if cfg.ThreadPool.Create {
		lib.pool = threadpool.New(cfg.ThreadPool.ThreadCount, 0)
	}
	lib.tracer = trace.New(256, cfg.Tracer.LogLevel, trace.SinkFunc(defaultSink))
	if lib.pool != nil {
		rescheduleTracer(lib.tracer, lib.pool)
	}

	reg := metaclass.Default()
	if err := registerBaseMetaclasses(reg); err != nil {
		lib.tracer.Stop()
		if lib.pool != nil {
			lib.pool.Stop()
		}
		return nil, err
	}
	lib.factory = factory.New(reg)

	inst = lib
	return lib, nil
}

// Current returns the process-wide Library built by Initialize, or
// ErrLibraryNotInitialized if it has not run yet.
func Current() (*Library, error) {
	mu.Lock()
	defer mu.Unlock()
	if inst == nil {
		return nil, stewerrors.New(stewerrors.ErrLibraryNotInitialized, "library.Current", "")
	}
	return inst, nil
}

// Uninitialize tears the Library down in reverse order of construction and
// joins any worker threads.
func (l *Library) Uninitialize() {
	mu.Lock()
	defer mu.Unlock()
	if l.tracer != nil {
		l.tracer.Stop()
	}
	if l.pool != nil {
		l.pool.Stop()
	}
	if inst == l {
		inst = nil
	}
}

// Factory returns the process-wide ObjectFactory.
func (l *Library) Factory() *factory.ObjectFactory { return l.factory }

// Tracer returns the process-wide Tracer.
func (l *Library) Tracer() *trace.Tracer { return l.tracer }

// ThreadPool returns the optional thread pool, or nil if
// Config.ThreadPool.Create was false.
func (l *Library) ThreadPool() *threadpool.Pool { return l.pool }

func registerBaseMetaclasses(reg *metaclass.Registry) error {
	objectMC, err := metaclass.New("Object", metaclass.WithCreator(func(instanceName string) (metaclass.Instance, error) {
		return object.NewObject(instanceName), nil
	}))
	if err != nil {
		return err
	}
	if err := reg.Register(objectMC); err != nil {
		return err
	}

	extensionMC, err := metaclass.New("ObjectExtension", metaclass.WithAbstract(), metaclass.WithExtensionFlag())
	if err != nil {
		return err
	}
	return reg.Register(extensionMC)
}

// defaultSink writes trace records to stderr, the default an embedder
// would get before wiring its own sink via Tracer.SetSink.
func defaultSink(r trace.Record) {
	fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", r.Level, r.Function, r.Message)
}

// rescheduleTracer submits a one-shot diagnostics job to pool: the tracer's
// own goroutine (started by trace.New) still owns draining the ring into
// the sink, but whenever a pool is available this queues a pool-backed poke
// of Diagnostics so the pool's worker accounting (IsBusy) reflects tracer
// activity too.
func rescheduleTracer(t *trace.Tracer, pool *threadpool.Pool) {
	pool.Push(threadpool.JobFunc(func(ctx context.Context) {
		_ = t.Diagnostics()
	}))
}
