package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"traceview/internal/config"
	"traceview/internal/dag"
	"traceview/internal/metrics"
	"traceview/internal/models"
	"traceview/internal/palette"
	"traceview/internal/storage"
	"traceview/internal/timeline"
)

// View names, used for panels, logging and metrics labels.
const (
	ViewApplication = "application"
	ViewRuntime     = "runtime"
	ViewScheduler   = "scheduler"
	ViewSummary     = "summary"
)

// Toggles are the user switches shared by all application panels.
type Toggles struct {
	ABE      bool `json:"abe"`
	Outliers bool `json:"outliers"`
	Idle     bool `json:"idle"`
}

// DefaultToggles matches the initial state of the interface.
func DefaultToggles() Toggles {
	return Toggles{ABE: true}
}

// State converts toggles into the visual state of one render.
func (t Toggles) State() models.VisualState {
	return models.VisualState{
		DisplayOutliers:     t.Outliers,
		ShowIdleAnnotations: t.Idle,
		ShowABEMarker:       t.ABE,
	}
}

// Interaction is one user action against a dataset.
type Interaction struct {
	Dataset     string   `json:"dataset"`
	Toggles     Toggles  `json:"toggles"`
	Click       string   `json:"click,omitempty"`
	MinLifespan *float64 `json:"min_lifespan,omitempty"`
	Stride      *int     `json:"stride,omitempty"`
}

// SchedulerView holds both queue panels.
type SchedulerView struct {
	Submitted models.QueueSeries `json:"submitted"`
	Ready     models.QueueSeries `json:"ready"`
}

// Observer is told about every view build.
type Observer func(view string, elapsed time.Duration, err error)

// Session answers view requests against the datasets of a registry. It holds
// no UI state: every call receives its parameters explicitly.
type Session struct {
	registry    *storage.Registry
	appColors   map[string]string
	runtimeCols []string
	stride      int
	minLifespan float64
	observer    Observer

	mu              sync.Mutex
	runtimePalettes map[string]*palette.Palette
}

// New creates a session over registry configured by cfg.
func New(cfg config.Config, registry *storage.Registry) *Session {
	return &Session{
		registry:        registry,
		appColors:       cfg.ApplicationPalette,
		runtimeCols:     cfg.RuntimeColors,
		stride:          cfg.ReadyStride,
		minLifespan:     cfg.DefaultMinLifespan,
		runtimePalettes: make(map[string]*palette.Palette),
	}
}

// SetObserver installs a callback for build timings.
func (s *Session) SetObserver(o Observer) {
	s.observer = o
}

// Registry exposes the underlying dataset registry.
func (s *Session) Registry() *storage.Registry {
	return s.registry
}

// DefaultMinLifespan is the runtime panel threshold used when none is given.
func (s *Session) DefaultMinLifespan() float64 {
	return s.minLifespan
}

// DefaultStride is the ready-queue stride used when none is given.
func (s *Session) DefaultStride() int {
	return s.stride
}

// Application builds the application Gantt panel. A click resolves to the
// clicked task and its dependents unless outliers are being displayed.
func (s *Session) Application(ctx context.Context, name string, toggles Toggles, click string) (models.Timeline, error) {
	var result models.Timeline
	err := s.observe(ViewApplication, func() error {
		ds, err := s.registry.Get(ctx, name)
		if err != nil {
			return err
		}
		state := toggles.State()
		state.HighlightedIDs = dag.HighlightSelection(click, state, ds.Dependencies)
		result, err = timeline.Build(ctx, ds.Application, state, palette.NewFixed(s.appColors), timeline.Options{})
		return err
	})
	return result, err
}

// Runtime builds the raw runtime Gantt panel, hiding tasks whose lifespan is
// not longer than minLifespan.
func (s *Session) Runtime(ctx context.Context, name string, minLifespan float64) (models.Timeline, error) {
	var result models.Timeline
	err := s.observe(ViewRuntime, func() error {
		ds, err := s.registry.Get(ctx, name)
		if err != nil {
			return err
		}
		result, err = timeline.Build(ctx, ds.Runtime.MinDuration(minLifespan), models.VisualState{}, s.runtimePalette(name), timeline.Options{})
		return err
	})
	return result, err
}

// Scheduler returns the submitted queue in full and the ready queue
// downsampled with stride. Strides below one fail with
// scheduler.ErrInvalidStride.
func (s *Session) Scheduler(ctx context.Context, name string, stride int) (SchedulerView, error) {
	var result SchedulerView
	err := s.observe(ViewScheduler, func() error {
		ds, err := s.registry.Get(ctx, name)
		if err != nil {
			return err
		}
		result.Submitted, result.Ready, err = ds.Queues.Views(stride)
		return err
	})
	return result, err
}

// Summary computes the aggregate metrics of the application trace.
func (s *Session) Summary(ctx context.Context, name string) (metrics.Summary, error) {
	var result metrics.Summary
	err := s.observe(ViewSummary, func() error {
		ds, err := s.registry.Get(ctx, name)
		if err != nil {
			return err
		}
		result, err = metrics.Summarize(ctx, ds.Application)
		return err
	})
	return result, err
}

func (s *Session) runtimePalette(name string) *palette.Palette {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.runtimePalettes[name]
	if !ok {
		p = palette.NewDynamic(s.runtimeCols)
		s.runtimePalettes[name] = p
	}
	return p
}

func (s *Session) observe(view string, build func() error) error {
	started := time.Now()
	err := build()
	if err != nil {
		err = fmt.Errorf("%s view: %w", view, err)
	}
	if s.observer != nil {
		s.observer(view, time.Since(started), err)
	}
	return err
}
