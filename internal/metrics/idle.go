package metrics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"traceview/internal/models"
	"traceview/internal/trace"
)

var (
	// ErrDegenerateSpan is returned when the trace span is zero.
	ErrDegenerateSpan = errors.New("trace span is zero")
	// ErrNoResources is returned when an aggregate needs at least one resource.
	ErrNoResources = errors.New("trace has no resources")
	// ErrOverlappingIntervals is returned when the tasks of a view are busy for
	// longer than the trace span, which only overlapping intervals can cause.
	ErrOverlappingIntervals = errors.New("busy time exceeds trace span")
)

const spanTolerance = 1e-9

// IdlePercentage is the share of the trace span during which the records of
// view do not run: 100 × (1 − Σduration / span), rounded to two decimals.
// Callers pass a view restricted to a single resource. Overlapping tasks that
// add up to more than the span fail with ErrOverlappingIntervals.
func IdlePercentage(view *trace.Table) (float64, error) {
	span, err := view.TotalSpan()
	if err != nil {
		return 0, err
	}
	if span == 0 {
		return 0, ErrDegenerateSpan
	}
	busy := 0.0
	view.Each(func(r models.TraceRecord) {
		busy += r.Duration()
	})
	if busy > span*(1+spanTolerance) {
		return 0, fmt.Errorf("%w: busy %g over span %g", ErrOverlappingIntervals, busy, span)
	}
	return round2(100 * (1 - busy/span)), nil
}

// IdleByResource computes IdlePercentage for every resource of table, each on
// its own filtered view. Results follow table.Resources() order.
func IdleByResource(ctx context.Context, table *trace.Table) ([]models.ResourceIdle, error) {
	resources := table.Resources()
	results := make([]models.ResourceIdle, len(resources))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range resources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idle, err := IdlePercentage(table.FilterByResource(id))
			if err != nil {
				return fmt.Errorf("idle for %s: %w", id, err)
			}
			results[i] = models.ResourceIdle{ResourceID: id, Position: i, IdlePercent: idle}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AverageBusyEstimate is a coarse reference threshold: the mean task duration
// times the task count, divided by the number of resources. It is a heuristic
// for a vertical marker, not a statistical estimator.
func AverageBusyEstimate(table *trace.Table) (int, error) {
	resources := len(table.Resources())
	if resources == 0 {
		return 0, ErrNoResources
	}
	count := table.Len()
	if count == 0 {
		return 0, nil
	}
	total := 0.0
	table.Each(func(r models.TraceRecord) {
		total += r.Duration()
	})
	mean := total / float64(count)
	return int(math.Round(mean * float64(count) / float64(resources))), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
