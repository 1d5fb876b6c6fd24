package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"traceview/internal/config"
)

// ErrUnknownDataset is returned for names that are not configured.
var ErrUnknownDataset = errors.New("unknown dataset")

// DatasetStatus describes the load state of a configured dataset.
type DatasetStatus struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Loaded   bool      `json:"loaded"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Registry keeps at most one loaded dataset per configured name for the
// lifetime of a session. Loaded datasets are replaced wholesale on reload.
type Registry struct {
	mu       sync.RWMutex
	paths    map[string]string
	names    []string
	datasets map[string]*Dataset
	failures map[string]error
}

// NewRegistry prepares a registry for the datasets in cfg without loading them.
func NewRegistry(cfg config.Config) *Registry {
	r := &Registry{
		paths:    make(map[string]string, len(cfg.Datasets)),
		datasets: make(map[string]*Dataset),
		failures: make(map[string]error),
	}
	for _, ds := range cfg.Datasets {
		r.paths[ds.Name] = cfg.DatasetPath(ds)
		r.names = append(r.names, ds.Name)
	}
	return r
}

// Names returns configured dataset names in configuration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Path returns the directory of a configured dataset.
func (r *Registry) Path(name string) (string, bool) {
	path, ok := r.paths[name]
	return path, ok
}

// Get returns the loaded dataset, loading it on first use.
func (r *Registry) Get(ctx context.Context, name string) (*Dataset, error) {
	r.mu.RLock()
	ds, ok := r.datasets[name]
	r.mu.RUnlock()
	if ok {
		return ds, nil
	}
	return r.Reload(ctx, name)
}

// Reload reads the dataset from disk and swaps it in. A failed reload keeps
// the previously loaded copy, if any, and records the failure.
func (r *Registry) Reload(ctx context.Context, name string) (*Dataset, error) {
	path, ok := r.paths[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	ds, err := LoadDataset(ctx, name, path)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failures[name] = err
		log.WithField("dataset", name).WithError(err).Warn("Dataset load failed")
		return nil, err
	}
	delete(r.failures, name)
	r.datasets[name] = ds
	return ds, nil
}

// Loaded returns the currently loaded datasets sorted by name.
func (r *Registry) Loaded() []*Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Dataset, 0, len(r.datasets))
	for _, ds := range r.datasets {
		out = append(out, ds)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Status reports the load state of every configured dataset.
func (r *Registry) Status() []DatasetStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]DatasetStatus, 0, len(r.names))
	for _, name := range r.names {
		status := DatasetStatus{Name: name, Path: r.paths[name]}
		if ds, ok := r.datasets[name]; ok {
			status.Loaded = true
			status.LoadedAt = ds.LoadedAt
		}
		if err, ok := r.failures[name]; ok {
			status.Error = err.Error()
		}
		out = append(out, status)
	}
	return out
}
