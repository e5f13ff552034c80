package renderer

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/df07/go-optical-bench/pkg/scene"
)

// TraceAll casts every source of the bench in parallel. numWorkers <= 0 uses the CPU
// count. Traces are returned in source order regardless of completion order.
func TraceAll(ctx context.Context, bench *scene.Bench, numWorkers int) ([]scene.Trace, error) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	traces := make([]scene.Trace, len(bench.Sources))

	eg, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(numWorkers))

	for i, src := range bench.Sources {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Drain running workers so their errors take precedence over the cancellation
			if werr := eg.Wait(); werr != nil {
				return nil, werr
			}
			return nil, fmt.Errorf("while acquiring worker slot: %w", err)
		}

		eg.Go(func() error {
			defer sem.Release(1)
			if err := ctx.Err(); err != nil {
				return err
			}
			tr, err := bench.Scene.Trace(src)
			if err != nil {
				return fmt.Errorf("while tracing source %d: %w", i, err)
			}
			traces[i] = tr
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return traces, nil
}
