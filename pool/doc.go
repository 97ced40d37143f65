// Package pool implements a fixed-size worker pool that runs a batch of
// independent tasks and hands their results back by submission index.
//
// Usage:
//
//	exec, err := pool.New[*frame.Buffer](4)
//	if err != nil {
//	    return err
//	}
//	defer exec.Close()
//
//	batch, err := exec.Submit(tasks)
//	for i := 0; i < batch.Len(); i++ {
//	    out, err := batch.Wait(i) // blocks until task i is done
//	    ...
//	}
//
// Tasks run in any interleaving across the workers, but Wait delivers them
// strictly by index: a slow task i holds back an already finished task i+1.
// There is no cancellation; every submitted task runs to completion.
// A panic inside a task is recovered and reported as ErrTaskPanic at that
// task's index. Close waits for every queued task and joins all workers.
package pool
