package metrics

import (
	"context"

	"traceview/internal/models"
	"traceview/internal/trace"
)

// Summary gathers the scheduling aggregates of one trace.
type Summary struct {
	Span      float64               `json:"span"`
	Records   int                   `json:"records"`
	Resources int                   `json:"resources"`
	ABE       int                   `json:"abe"`
	Idle      []models.ResourceIdle `json:"idle"`
}

// Summarize computes span, ABE and per-resource idle percentages.
func Summarize(ctx context.Context, table *trace.Table) (Summary, error) {
	span, err := table.TotalSpan()
	if err != nil {
		return Summary{}, err
	}
	abe, err := AverageBusyEstimate(table)
	if err != nil {
		return Summary{}, err
	}
	idle, err := IdleByResource(ctx, table)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Span:      span,
		Records:   table.Len(),
		Resources: len(table.Resources()),
		ABE:       abe,
		Idle:      idle,
	}, nil
}
