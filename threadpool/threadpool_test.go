package threadpool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventuallyTimeout = time.Second
	eventuallyTick    = time.Millisecond
)

func TestStatus_String(t *testing.T) {
	cases := map[Status]string{
		Deferred:  "deferred",
		Queued:    "queued",
		Running:   "running",
		Completed: "completed",
		Stopped:   "stopped",
		Status(99): "unknown",
	}
	for status, want := range cases {
		assert.Equal(t, want, status.String())
	}
}

func TestPool_Push_RunsJobToCompletion(t *testing.T) {
	pool := New(2, 4)
	defer pool.Stop()

	done := make(chan struct{})
	task := pool.Push(JobFunc(func(ctx context.Context) { close(done) }))

	<-done
	assert.Eventually(t, func() bool { return task.Status() == Completed }, eventuallyTimeout, eventuallyTick)
}

func TestPool_PushMultiple(t *testing.T) {
	pool := New(2, 8)
	defer pool.Stop()

	const n = 5
	results := make(chan int, n)
	jobs := make([]Job, n)
	for i := 0; i < n; i++ {
		i := i
		jobs[i] = JobFunc(func(ctx context.Context) { results <- i })
	}

	tasks := pool.PushMultiple(jobs)
	require.Len(t, tasks, n)
	for i := 0; i < n; i++ {
		<-results
	}
}

func TestPool_TrySchedule_FullQueueFails(t *testing.T) {
	pool := New(1, 1)
	defer pool.Stop()

	started := make(chan struct{})
	release := make(chan struct{})
	pool.Push(JobFunc(func(ctx context.Context) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
		}
	}))
	<-started

	_, ok := pool.TrySchedule(JobFunc(func(ctx context.Context) {}))
	require.True(t, ok, "the queue's single slot is free once the first job is running")

	_, ok = pool.TrySchedule(JobFunc(func(ctx context.Context) {}))
	assert.False(t, ok, "the queue's single slot is now occupied")

	close(release)
}

func TestPool_IsBusy(t *testing.T) {
	pool := New(1, 1)
	defer pool.Stop()

	started := make(chan struct{})
	release := make(chan struct{})
	pool.Push(JobFunc(func(ctx context.Context) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
		}
	}))

	<-started
	assert.True(t, pool.IsBusy())
	close(release)
	assert.Eventually(t, func() bool { return !pool.IsBusy() }, eventuallyTimeout, eventuallyTick)
}

func TestPool_Stop_DrainsQueuedJobsAsStopped(t *testing.T) {
	pool := New(1, 4)

	started := make(chan struct{})
	release := make(chan struct{})
	pool.Push(JobFunc(func(ctx context.Context) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
		}
	}))
	<-started

	queuedTasks := pool.PushMultiple([]Job{
		JobFunc(func(ctx context.Context) {}),
		JobFunc(func(ctx context.Context) {}),
	})

	pool.Stop()

	for _, task := range queuedTasks {
		assert.Equal(t, Stopped, task.Status())
	}
}

func TestPool_Stop_IsIdempotent(t *testing.T) {
	pool := New(1, 1)
	pool.Stop()
	assert.NotPanics(t, func() { pool.Stop() })
}

func TestPool_New_DefaultsWhenNonPositive(t *testing.T) {
	pool := New(0, 0)
	defer pool.Stop()

	done := make(chan struct{})
	pool.Push(JobFunc(func(ctx context.Context) { close(done) }))
	<-done
}

func TestPool_PushAfterStopIsMarkedStopped(t *testing.T) {
	pool := New(1, 1)
	pool.Stop()

	task := pool.Push(JobFunc(func(ctx context.Context) {}))
	assert.Equal(t, Stopped, task.Status())
}
