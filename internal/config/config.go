package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"traceview/internal/palette"
	"traceview/internal/scheduler"
)

// Config represents configuration data for the trace viewer.
type Config struct {
	DataDirectory         string            `yaml:"data_directory"`
	Datasets              []Dataset         `yaml:"datasets"`
	ReloadIntervalSeconds int               `yaml:"reload_interval_seconds"`
	ReadyStride           int               `yaml:"ready_stride"`
	DefaultMinLifespan    float64           `yaml:"default_min_lifespan"`
	IdleWarningPercent    float64           `yaml:"idle_warning_percent"`
	ApplicationPalette    map[string]string `yaml:"application_palette"`
	RuntimeColors         []string          `yaml:"runtime_colors"`
}

// Dataset names one trace directory.
type Dataset struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// DefaultConfig returns sensible defaults in case no configuration file is provided.
func DefaultConfig() Config {
	return Config{
		DataDirectory: "datasets",
		Datasets: []Dataset{
			{Name: "lws"},
			{Name: "dmda"},
			{Name: "dmdas"},
		},
		ReloadIntervalSeconds: 30,
		ReadyStride:           scheduler.DefaultStride,
		DefaultMinLifespan:    1.0,
		IdleWarningPercent:    50,
		ApplicationPalette:    copyPalette(palette.ApplicationColors),
		RuntimeColors:         append([]string(nil), palette.RuntimeColors...),
	}
}

// Load reads configuration from yaml file. Missing files fall back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return normalise(DefaultConfig())
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return normalise(DefaultConfig())
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	// yaml merges into existing maps, so a configured palette must start empty
	cfg.ApplicationPalette = nil
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return normalise(cfg)
}

// DatasetPath resolves where the files of a dataset live.
func (c Config) DatasetPath(ds Dataset) string {
	if ds.Path == "" {
		return filepath.Join(c.DataDirectory, ds.Name)
	}
	if filepath.IsAbs(ds.Path) {
		return ds.Path
	}
	return filepath.Join(c.DataDirectory, ds.Path)
}

func normalise(cfg Config) (Config, error) {
	defaults := DefaultConfig()
	if cfg.DataDirectory == "" {
		cfg.DataDirectory = defaults.DataDirectory
	}
	if cfg.ReloadIntervalSeconds < 0 {
		cfg.ReloadIntervalSeconds = 0
	}
	if cfg.ReadyStride <= 0 {
		cfg.ReadyStride = defaults.ReadyStride
	}
	if cfg.DefaultMinLifespan < 0 {
		cfg.DefaultMinLifespan = 0
	}
	if cfg.IdleWarningPercent <= 0 || cfg.IdleWarningPercent > 100 {
		cfg.IdleWarningPercent = defaults.IdleWarningPercent
	}
	if len(cfg.ApplicationPalette) == 0 {
		cfg.ApplicationPalette = defaults.ApplicationPalette
	}
	if len(cfg.RuntimeColors) == 0 {
		cfg.RuntimeColors = defaults.RuntimeColors
	}

	if len(cfg.Datasets) == 0 {
		return Config{}, errors.New("configuration must define at least one dataset")
	}
	seen := make(map[string]struct{}, len(cfg.Datasets))
	for i, ds := range cfg.Datasets {
		if ds.Name == "" {
			return Config{}, fmt.Errorf("dataset %d is missing name", i)
		}
		if _, dup := seen[ds.Name]; dup {
			return Config{}, fmt.Errorf("dataset %s is defined twice", ds.Name)
		}
		seen[ds.Name] = struct{}{}
	}
	for kind, color := range cfg.ApplicationPalette {
		if color == "" {
			return Config{}, fmt.Errorf("application_palette entry %s has no color", kind)
		}
	}
	return cfg, nil
}

func copyPalette(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
