package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/physlab/internal/dynamo"
)

// Factory builds the i-th member of an ensemble. Every call must return an
// independent instance.
type Factory func(i int) (dynamo.Simulation, error)

// Ensemble runs independent instances concurrently, one goroutine each.
type Ensemble struct {
	build Factory
	runs  int
	limit int
}

func NewEnsemble(build Factory, runs int) *Ensemble {
	return &Ensemble{build: build, runs: runs}
}

// SetLimit bounds the number of concurrent runs. n <= 0 means no limit.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run returns results in member order. The first failure cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	if e.runs < 1 {
		return nil, fmt.Errorf("%w: ensemble needs at least one run", dynamo.ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	results := make([]*Result, e.runs)
	for i := 0; i < e.runs; i++ {
		g.Go(func() error {
			s, err := e.build(i)
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			res, err := Run(ctx, s, cfg)
			results[i] = res
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
