package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Builder creates the simulator for run i. Each run must get its own world.
type Builder func(i int) (*Simulator, error)

// Ensemble runs independent simulations concurrently.
type Ensemble struct {
	build   Builder
	numRuns int
	limit   int
}

func NewEnsemble(build Builder, numRuns int) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, limit: runtime.GOMAXPROCS(0)}
}

// SetLimit caps the number of runs in flight. n <= 0 removes the cap.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run returns results in run order. The first build or run error cancels the
// remaining runs.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	eg, egctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		eg.SetLimit(e.limit)
	}
	for i := 0; i < e.numRuns; i++ {
		eg.Go(func() error {
			s, err := e.build(i)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			res, err := s.Run(egctx)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
