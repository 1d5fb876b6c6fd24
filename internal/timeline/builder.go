package timeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"traceview/internal/dag"
	"traceview/internal/metrics"
	"traceview/internal/models"
	"traceview/internal/palette"
	"traceview/internal/trace"
)

const (
	// OpacityFull is used for emphasised bars and when nothing is emphasised.
	OpacityFull = 1.0
	// OpacityDimmed is used for bars outside the emphasised set.
	OpacityDimmed = 0.3
)

// Options tunes a Build call.
type Options struct {
	// OrderKey groups resource rows; rows are sorted by key, then by id.
	// Defaults to ResourceCategory.
	OrderKey func(resourceID string) string
}

// Build converts a trace table into drawable per-resource intervals.
func Build(ctx context.Context, table *trace.Table, state models.VisualState, pal *palette.Palette, opts Options) (models.Timeline, error) {
	orderKey := opts.OrderKey
	if orderKey == nil {
		orderKey = ResourceCategory
	}

	resources := orderResources(table.Resources(), orderKey)
	positions := make(map[string]int, len(resources))
	for i, id := range resources {
		positions[id] = i
	}

	records := table.Records()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Kind < records[j].Kind
	})

	result := models.Timeline{
		Intervals: make([]models.TimelineInterval, 0, len(records)),
		Resources: resources,
		Positions: positions,
		Legend:    make([]string, 0),
	}
	seenKinds := make(map[string]struct{})
	for _, record := range records {
		color, err := pal.ColorFor(record.Kind)
		if err != nil {
			return models.Timeline{}, fmt.Errorf("job %s: %w", record.JobID, err)
		}
		_, seen := seenKinds[record.Kind]
		if !seen {
			seenKinds[record.Kind] = struct{}{}
			result.Legend = append(result.Legend, record.Kind)
		}
		result.Intervals = append(result.Intervals, models.TimelineInterval{
			ResourceID:  record.ResourceID,
			Position:    positions[record.ResourceID],
			Kind:        record.Kind,
			Start:       record.Start,
			Duration:    record.Duration(),
			ColorKey:    color,
			Opacity:     opacityFor(record, state),
			JobID:       record.JobID,
			FirstOfKind: !seen,
		})
	}

	if state.ShowIdleAnnotations {
		idle, err := metrics.IdleByResource(ctx, table)
		if err != nil {
			return models.Timeline{}, fmt.Errorf("idle annotations: %w", err)
		}
		for i := range idle {
			idle[i].Position = positions[idle[i].ResourceID]
		}
		sort.Slice(idle, func(i, j int) bool {
			return idle[i].Position < idle[j].Position
		})
		result.Idle = idle
	}
	if state.ShowABEMarker {
		abe, err := metrics.AverageBusyEstimate(table)
		if err != nil {
			return models.Timeline{}, fmt.Errorf("abe marker: %w", err)
		}
		result.ABE = &abe
	}
	if len(state.HighlightedIDs) > 0 && !state.DisplayOutliers {
		result.Highlighted = dag.SortedIDs(state.HighlightedIDs)
	}
	return result, nil
}

// opacityFor applies the first matching rule: outlier display, then
// highlight, then full opacity.
func opacityFor(record models.TraceRecord, state models.VisualState) float64 {
	switch {
	case state.DisplayOutliers:
		if record.Outlier {
			return OpacityFull
		}
		return OpacityDimmed
	case len(state.HighlightedIDs) > 0:
		if state.IsHighlighted(record.JobID) {
			return OpacityFull
		}
		return OpacityDimmed
	default:
		return OpacityFull
	}
}

func orderResources(ids []string, key func(string) string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	keys := make(map[string]string, len(out))
	for _, id := range out {
		keys[id] = key(id)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := keys[out[i]], keys[out[j]]
		if ki == kj {
			return out[i] < out[j]
		}
		return ki < kj
	})
	return out
}

// ResourceCategory derives a worker's category label from its id, e.g.
// "CPU3" and "CUDA_0" become "CPU" and "CUDA".
func ResourceCategory(resourceID string) string {
	label := strings.TrimRightFunc(resourceID, func(r rune) bool {
		return unicode.IsDigit(r) || r == '_' || r == '-' || r == ' '
	})
	if label == "" {
		return resourceID
	}
	return label
}
