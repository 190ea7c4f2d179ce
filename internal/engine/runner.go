package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ChunkSize is the number of consecutive iterations summed before merging.
// Sequential and parallel runs merge the same chunks in the same order, so
// their results are identical.
const ChunkSize = 256

func runChunk(ctx context.Context, c *Combatant, from, to int) (*AggregateResult, error) {
	out := &AggregateResult{}
	for i := from; i < to; i++ {
		it, err := c.RunIteration(ctx, i)
		if err != nil {
			return nil, err
		}
		out.Add(it)
	}
	return out, nil
}

func chunkCount(iterations int) int {
	return (iterations + ChunkSize - 1) / ChunkSize
}

func chunkBounds(chunk, iterations int) (int, int) {
	from := chunk * ChunkSize
	return from, min(from+ChunkSize, iterations)
}

// RunSequential runs iterations 0..n-1 on one combatant.
func RunSequential(ctx context.Context, c *Combatant, iterations int) (*AggregateResult, error) {
	out := &AggregateResult{}
	for chunk := range chunkCount(iterations) {
		from, to := chunkBounds(chunk, iterations)
		part, err := runChunk(ctx, c, from, to)
		if err != nil {
			return nil, err
		}
		out.Merge(part)
	}
	c.labels(out)
	return out, nil
}

// RunParallel spreads chunks over workers, each with its own combatant
// built by newCombatant. The first error cancels the remaining work.
func RunParallel(ctx context.Context, newCombatant func() (*Combatant, error), iterations, workers int) (*AggregateResult, error) {
	chunks := chunkCount(iterations)
	workers = max(1, min(workers, chunks))
	combatants := make([]*Combatant, workers)
	for i := range combatants {
		c, err := newCombatant()
		if err != nil {
			return nil, err
		}
		combatants[i] = c
	}

	results := make([]*AggregateResult, chunks)
	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for chunk := range chunks {
			select {
			case jobs <- chunk:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for _, c := range combatants {
		g.Go(func() error {
			for chunk := range jobs {
				from, to := chunkBounds(chunk, iterations)
				part, err := runChunk(gctx, c, from, to)
				if err != nil {
					return err
				}
				results[chunk] = part
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &AggregateResult{}
	for _, part := range results {
		out.Merge(part)
	}
	combatants[0].labels(out)
	return out, nil
}
