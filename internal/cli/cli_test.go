package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceview/internal/metrics"
	"traceview/internal/models"
	"traceview/internal/testutil"
)

func TestPrintSummary(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printSummary(&buf, "demo", metrics.Summary{
		Span: 20, Records: 3, Resources: 2, ABE: 18,
		Idle: []models.ResourceIdle{{ResourceID: "CPU0", IdlePercent: 25}, {ResourceID: "CPU1"}},
	}, 50)

	out := buf.String()
	assert.Contains(t, out, "demo\n")
	assert.Contains(t, out, "ABE 18")
	assert.Contains(t, out, "CPU0         idle  25.00%")
	assert.Contains(t, out, "CPU1         idle   0.00%")
}

func TestSummaryCommand(t *testing.T) {
	color.NoColor = true
	root := t.TempDir()
	testutil.WriteFullDataset(t, filepath.Join(root, "demo"))
	cfgPath := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("data_directory: "+root+"\ndatasets:\n  - name: demo\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"summary", "--config", cfgPath, "--log-level", "error"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "ABE 18")

	out.Reset()
	rootCmd.SetArgs([]string{"summary", "--config", cfgPath, "--log-level", "error", "missing"})
	assert.Error(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "unknown dataset")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, version+"\n", out.String())
}
