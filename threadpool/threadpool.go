// Package threadpool implements a fixed-size worker pool:
// TrySchedule/Push/PushMultiple/Stop/IsBusy/Schedule over jobs with a
// {Deferred, Queued, Running, Completed, Stopped} status machine, built on
// Go's goroutine and channel idioms in place of a condition-variable worker
// loop.
package threadpool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Status is a Job's position in the pipeline. The only legal transitions
// are Deferred->Queued->Running->Completed, Queued->Stopped (a job still
// waiting when the pool stops never runs) and Deferred->Stopped (a job
// pushed after Stop).
type Status int32

const (
	Deferred Status = iota
	Queued
	Running
	Completed
	Stopped
)

func (s Status) String() string {
	switch s {
	case Deferred:
		return "deferred"
	case Queued:
		return "queued"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Job is a unit of work the pool runs on a worker goroutine.
type Job interface {
	Run(ctx context.Context)
}

// JobFunc adapts a plain function to Job.
type JobFunc func(ctx context.Context)

func (f JobFunc) Run(ctx context.Context) { f(ctx) }

// Task wraps a submitted Job with its status, returned by Push so callers
// can observe the Deferred->Queued->Running->Completed/Stopped walk.
type Task struct {
	job    Job
	status atomic.Int32
}

// Status returns the task's current state.
func (t *Task) Status() Status { return Status(t.status.Load()) }

func newTask(job Job) *Task {
	t := &Task{job: job}
	t.status.Store(int32(Deferred))
	return t
}

// Pool is a fixed-size worker pool over a buffered job queue.
type Pool struct {
	queue   chan *Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	busy    atomic.Int64
	workers int
	stopped atomic.Bool
}

// New starts a Pool with workers goroutines draining a queue of the given
// depth. workers <= 0 defaults to runtime.NumCPU() (hardware concurrency).
func New(workers, queueDepth int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueDepth <= 0 {
		queueDepth = workers * 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queue:   make(chan *Task, queueDepth),
		ctx:     ctx,
		cancel:  cancel,
		workers: workers,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		if p.ctx.Err() != nil {
			task.status.Store(int32(Stopped))
			continue
		}
		task.status.Store(int32(Running))
		p.busy.Add(1)
		task.job.Run(p.ctx)
		p.busy.Add(-1)
		task.status.Store(int32(Completed))
	}
}

// TrySchedule enqueues job without blocking, returning false (and leaving
// the job un-run) when the queue is full or the pool is stopped.
func (p *Pool) TrySchedule(job Job) (*Task, bool) {
	if p.stopped.Load() {
		return nil, false
	}
	task := newTask(job)
	task.status.Store(int32(Queued))
	select {
	case p.queue <- task:
		return task, true
	default:
		return nil, false
	}
}

// Push enqueues job, blocking if the queue is full.
func (p *Pool) Push(job Job) *Task {
	task := newTask(job)
	if p.stopped.Load() {
		task.status.Store(int32(Stopped))
		return task
	}
	task.status.Store(int32(Queued))
	p.queue <- task
	return task
}

// PushMultiple enqueues every job in order, blocking as needed.
func (p *Pool) PushMultiple(jobs []Job) []*Task {
	tasks := make([]*Task, len(jobs))
	for i, j := range jobs {
		tasks[i] = p.Push(j)
	}
	return tasks
}

// IsBusy reports whether any worker is currently running a job.
func (p *Pool) IsBusy() bool {
	return p.busy.Load() > 0
}

// Schedule yields the current goroutine, a cooperative "let another job
// run" hint.
func (p *Pool) Schedule() {
	runtime.Gosched()
}

// Stop cancels the pool's context so running jobs observe cancellation,
// closes the queue, drains remaining jobs as Stopped, and waits for every
// worker goroutine to exit.
func (p *Pool) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}
	p.cancel()
	close(p.queue)
	p.wg.Wait()
}
