package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
)

// Task is one independent unit of work for RunTasks.
type Task func(ctx context.Context) error

// RunTasks runs every task on its own goroutine and waits for all of them. A
// failing or panicking task cancels the context seen by the rest. The returned
// error combines every failure in task order; cancellations caused by another
// task's failure are left out. The elapsed wall time is returned as well.
func RunTasks(ctx context.Context, tasks []Task) (time.Duration, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, task := range tasks {
		i, task := i, task
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("task %d panicked: %v", i, r)
					cancel()
				}
			}()
			if err := task(ctx); err != nil {
				errs[i] = err
				cancel()
			}
		}()
	}
	wg.Wait()

	var failed, canceled error
	for _, err := range errs {
		if errors.Is(err, context.Canceled) {
			canceled = multierr.Append(canceled, err)
			continue
		}
		failed = multierr.Append(failed, err)
	}
	if failed == nil {
		return time.Since(start), canceled
	}
	return time.Since(start), failed
}
