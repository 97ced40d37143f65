package pool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidWorkerCount indicates a pool size below one.
	ErrInvalidWorkerCount = errors.New("worker count must be at least 1")

	// ErrClosed indicates Submit was called after Close.
	ErrClosed = errors.New("executor is closed")

	// ErrTaskPanic indicates a task panicked; the panic value is in the
	// wrapped message.
	ErrTaskPanic = errors.New("task panicked")

	// ErrIndexOutOfRange indicates Wait was called with an index outside the batch.
	ErrIndexOutOfRange = errors.New("batch index out of range")
)

// Task is a unit of work producing a value of type T.
type Task[T any] func() (T, error)

// job pairs a task with its slot in the batch it belongs to.
type job[T any] struct {
	index int
	task  Task[T]
	batch *Batch[T]
}

// Executor runs tasks on a fixed number of goroutines.
type Executor[T any] struct {
	workers int
	jobs    chan job[T]

	mu      sync.Mutex
	closed  bool
	feeders sync.WaitGroup
	running sync.WaitGroup
	once    sync.Once

	completed atomic.Int64
	panicked  atomic.Int64
}

// New starts an executor with exactly workers goroutines. The job queue is
// bounded to twice the worker count.
func New[T any](workers int) (*Executor[T], error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, workers)
	}

	e := &Executor[T]{
		workers: workers,
		jobs:    make(chan job[T], workers*2),
	}

	e.running.Add(workers)
	for i := 0; i < workers; i++ {
		go e.worker()
	}

	logrus.WithFields(logrus.Fields{
		"function": "pool.New",
		"workers":  workers,
	}).Debug("Worker pool started")

	return e, nil
}

// Workers returns the pool size.
func (e *Executor[T]) Workers() int {
	return e.workers
}

// Submit queues every task and returns immediately. Tasks are fed to the
// bounded queue in submission order by a background goroutine, so the
// caller can start waiting on index 0 while later tasks are still queued.
func (e *Executor[T]) Submit(tasks []Task[T]) (*Batch[T], error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	e.feeders.Add(1)
	e.mu.Unlock()

	b := newBatch[T](len(tasks))
	go func() {
		defer e.feeders.Done()
		for i, task := range tasks {
			e.jobs <- job[T]{index: i, task: task, batch: b}
		}
	}()

	return b, nil
}

// Close waits for all submitted tasks to finish and stops the workers.
// It is safe to call more than once.
func (e *Executor[T]) Close() {
	e.once.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()

		e.feeders.Wait()
		close(e.jobs)
		e.running.Wait()

		logrus.WithFields(logrus.Fields{
			"function":  "Executor.Close",
			"workers":   e.workers,
			"completed": e.completed.Load(),
			"panicked":  e.panicked.Load(),
		}).Debug("Worker pool stopped")
	})
}

// Stats returns the number of tasks finished so far and how many of them
// panicked.
func (e *Executor[T]) Stats() (completed, panicked int64) {
	return e.completed.Load(), e.panicked.Load()
}

func (e *Executor[T]) worker() {
	defer e.running.Done()
	for j := range e.jobs {
		e.execute(j)
	}
}

func (e *Executor[T]) execute(j job[T]) {
	defer e.completed.Add(1)
	defer close(j.batch.done[j.index])
	defer func() {
		if r := recover(); r != nil {
			e.panicked.Add(1)
			j.batch.errs[j.index] = fmt.Errorf("%w: task %d: %v", ErrTaskPanic, j.index, r)
		}
	}()

	j.batch.results[j.index], j.batch.errs[j.index] = j.task()
}
