package concurrency

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BoundedWorker fans a job out over a batch of args with at most `limit` in
// flight. Job errors are the job's own business - the worker neither
// collects nor propagates them, one slow or failing arg never blocks the
// rest beyond its own slot.
type BoundedWorker[T any] struct {
	limit int
	job   func(ctx context.Context, arg T) error
}

func NewBoundedWorker[T any](limit int, job func(ctx context.Context, arg T) error) BoundedWorker[T] {
	return BoundedWorker[T]{limit: limit, job: job}
}

func (w BoundedWorker[T]) Run(ctx context.Context, args []T) {
	g := &errgroup.Group{}
	g.SetLimit(w.limit)

	for _, arg := range args {
		if ctx.Err() != nil {
			break
		}
		arg := arg
		g.Go(func() error {
			_ = w.job(ctx, arg)
			return nil
		})
	}
	_ = g.Wait()
}
