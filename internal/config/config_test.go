package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceview/internal/palette"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 6, cfg.ReadyStride)
	assert.Equal(t, palette.ApplicationColors, cfg.ApplicationPalette)
}

func TestLoad_OverridesAndNormalises(t *testing.T) {
	path := writeConfig(t, `
data_directory: /srv/traces
ready_stride: -3
idle_warning_percent: 250
datasets:
  - name: dmdas
  - name: custom
    path: elsewhere/custom
  - name: abs
    path: /tmp/abs
application_palette:
  lapack_dgeqrt: "#000000"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/traces", cfg.DataDirectory)
	assert.Equal(t, 6, cfg.ReadyStride)
	assert.Equal(t, 50.0, cfg.IdleWarningPercent)
	assert.Equal(t, map[string]string{"lapack_dgeqrt": "#000000"}, cfg.ApplicationPalette)
	assert.Equal(t, palette.RuntimeColors, cfg.RuntimeColors)
	require.Len(t, cfg.Datasets, 3)
	assert.Equal(t, filepath.Join("/srv/traces", "dmdas"), cfg.DatasetPath(cfg.Datasets[0]))
	assert.Equal(t, filepath.Join("/srv/traces", "elsewhere/custom"), cfg.DatasetPath(cfg.Datasets[1]))
	assert.Equal(t, "/tmp/abs", cfg.DatasetPath(cfg.Datasets[2]))
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"unnamed dataset":   "datasets:\n  - path: x\n",
		"duplicate dataset": "datasets:\n  - name: a\n  - name: a\n",
		"empty color":       "application_palette:\n  k: \"\"\n",
		"bad yaml":          "datasets: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
