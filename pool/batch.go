package pool

import "fmt"

// Batch holds the results of one Submit call, indexed by submission order.
// Each slot is written by exactly one worker before its done channel is
// closed, so readers need no further locking.
type Batch[T any] struct {
	results []T
	errs    []error
	done    []chan struct{}
}

func newBatch[T any](n int) *Batch[T] {
	b := &Batch[T]{
		results: make([]T, n),
		errs:    make([]error, n),
		done:    make([]chan struct{}, n),
	}
	for i := range b.done {
		b.done[i] = make(chan struct{})
	}
	return b
}

// Len returns the number of tasks in the batch.
func (b *Batch[T]) Len() int {
	return len(b.results)
}

// Wait blocks until task i has finished and returns its result. The slot
// is cleared afterwards so the batch stops referencing the value; calling
// Wait twice for the same index returns the zero value the second time.
func (b *Batch[T]) Wait(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(b.results) {
		return zero, fmt.Errorf("%w: %d (batch size %d)", ErrIndexOutOfRange, i, len(b.results))
	}

	<-b.done[i]

	result, err := b.results[i], b.errs[i]
	b.results[i] = zero
	return result, err
}

// Done reports whether task i has finished without blocking.
func (b *Batch[T]) Done(i int) bool {
	if i < 0 || i >= len(b.done) {
		return false
	}
	select {
	case <-b.done[i]:
		return true
	default:
		return false
	}
}
