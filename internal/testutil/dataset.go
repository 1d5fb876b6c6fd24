package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ApplicationRows is a small application trace with two workers.
var ApplicationRows = []map[string]any{
	{"JobId": "J1", "ResourceId": "CPU0", "Value": "lapack_dgeqrt", "Start": 0.0, "End": 10.0, "Duration": 10.0, "Outlier": false},
	{"JobId": "J2", "ResourceId": "CPU0", "Value": "lapack_dlarfb", "Start": 10.0, "End": 15.0, "Duration": 5.0, "Outlier": true},
	{"JobId": "J3", "ResourceId": "CPU1", "Value": "lapack_dtpqrt", "Start": 0.0, "End": 20.0, "Duration": 20.0, "Outlier": false},
}

// DependencyRows states that J2 and J3 depend on J1.
var DependencyRows = []map[string]any{
	{"JobId": "J2", "Dependent": "J1"},
	{"JobId": "J3", "Dependent": "J1"},
}

// RuntimeRows is a raw runtime trace without job ids.
var RuntimeRows = []map[string]any{
	{"ResourceId": "CPU0", "Value": "Executing", "Start": 0.0, "End": 4.0, "Duration": 4.0},
	{"ResourceId": "CPU0", "Value": "Sleeping", "Start": 4.0, "End": 4.5, "Duration": 0.5},
	{"ResourceId": "CPU1", "Value": "Callback", "Start": 1.0, "End": 9.0, "Duration": 8.0},
}

// VariableRows holds scheduler queue samples.
var VariableRows = []map[string]any{
	{"Start": -1.0, "Value": 1.0, "Type": "Ready"},
	{"Start": 0.0, "Value": 1.0, "Type": "Ready"},
	{"Start": 1.0, "Value": 2.0, "Type": "Ready"},
	{"Start": 2.0, "Value": 3.0, "Type": "Ready"},
	{"Start": 0.0, "Value": 4.0, "Type": "Submitted"},
}

// WriteDataset writes the given files (name -> rows) as JSON into dir.
func WriteDataset(t *testing.T, dir string, files map[string]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, rows := range files {
		data, err := json.Marshal(rows)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
}

// WriteFullDataset writes every dataset file with the fixtures above.
func WriteFullDataset(t *testing.T, dir string) {
	t.Helper()
	WriteDataset(t, dir, map[string]any{
		"application.json": ApplicationRows,
		"dag.json":         DependencyRows,
		"starpu.json":      RuntimeRows,
		"variable.json":    VariableRows,
	})
}
