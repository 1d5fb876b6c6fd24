package session

import (
	"context"
	"time"

	"traceview/internal/models"
)

// Panel wraps one view so a failed build is reported in place while the
// other panels still render.
type Panel[T any] struct {
	Data  *T     `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func newPanel[T any](data T, err error) Panel[T] {
	if err != nil {
		return Panel[T]{Error: err.Error()}
	}
	return Panel[T]{Data: &data}
}

// OK reports whether the panel built successfully.
func (p Panel[T]) OK() bool {
	return p.Error == ""
}

// Snapshot is every panel of one dataset after an interaction.
type Snapshot struct {
	Dataset     string                 `json:"dataset"`
	GeneratedAt time.Time              `json:"generated_at"`
	Toggles     Toggles                `json:"toggles"`
	Click       string                 `json:"click,omitempty"`
	MinLifespan float64                `json:"min_lifespan"`
	Application Panel[models.Timeline] `json:"application"`
	Runtime     Panel[models.Timeline] `json:"runtime"`
	Scheduler   Panel[SchedulerView]   `json:"scheduler"`
}

// Render rebuilds all panels for an interaction.
func (s *Session) Render(ctx context.Context, in Interaction) Snapshot {
	minLifespan := s.minLifespan
	if in.MinLifespan != nil {
		minLifespan = *in.MinLifespan
	}
	click := in.Click
	if in.Toggles.Outliers {
		click = ""
	}

	snap := Snapshot{
		Dataset:     in.Dataset,
		GeneratedAt: time.Now().UTC(),
		Toggles:     in.Toggles,
		Click:       click,
		MinLifespan: minLifespan,
	}
	snap.Application = newPanel[models.Timeline](s.Application(ctx, in.Dataset, in.Toggles, click))
	snap.Runtime = newPanel[models.Timeline](s.Runtime(ctx, in.Dataset, minLifespan))
	stride := s.stride
	if in.Stride != nil {
		stride = *in.Stride
	}
	snap.Scheduler = newPanel[SchedulerView](s.Scheduler(ctx, in.Dataset, stride))
	return snap
}
