package monitor

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"traceview/internal/storage"
)

// Monitor periodically re-reads loaded datasets whose files changed on disk.
type Monitor struct {
	interval time.Duration
	registry *storage.Registry

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a monitor for the registry. Intervals below one second are
// raised to one second.
func New(interval time.Duration, registry *storage.Registry) *Monitor {
	if interval < time.Second {
		interval = time.Second
	}

	return &Monitor{
		interval: interval,
		registry: registry,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the monitoring loop in a goroutine.
func (m *Monitor) Start() {
	go m.run()
}

// Stop requests graceful loop termination and waits until it is done.
func (m *Monitor) Stop() {
	select {
	case <-m.doneCh:
		return
	default:
	}
	close(m.stopCh)
	<-m.doneCh
}

// RunOnce reloads every loaded dataset whose files are newer than the loaded
// copy and returns the names that were reloaded.
func (m *Monitor) RunOnce(ctx context.Context) []string {
	var reloaded []string
	for _, ds := range m.registry.Loaded() {
		logger := log.WithField("dataset", ds.Name)
		mod, err := storage.LatestModTime(ds.Path)
		if err != nil {
			logger.WithError(err).Warn("Cannot stat dataset")
			continue
		}
		if !mod.After(ds.ModTime) {
			continue
		}
		if _, err := m.registry.Reload(ctx, ds.Name); err != nil {
			continue
		}
		logger.Info("Dataset changed on disk, reloaded")
		reloaded = append(reloaded, ds.Name)
	}
	return reloaded
}

func (m *Monitor) run() {
	defer close(m.doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-m.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.RunOnce(ctx)
		case <-m.stopCh:
			return
		}
	}
}
