package trace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceview/internal/models"
)

func f(v float64) *float64 { return &v }

func row(job, resource, kind string, start, end float64) models.TraceRow {
	return models.TraceRow{JobID: job, ResourceID: resource, Value: kind, Start: f(start), End: f(end)}
}

func sampleTable(t *testing.T) *Table {
	t.Helper()
	table, err := Load([]models.TraceRow{
		row("J1", "R1", "A", 0, 10),
		row("J2", "R1", "A", 10, 15),
		row("J3", "R2", "B", 0, 20),
	})
	require.NoError(t, err)
	return table
}

func TestLoad(t *testing.T) {
	table := sampleTable(t)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"R1", "R2"}, table.Resources())
	span, err := table.TotalSpan()
	require.NoError(t, err)
	assert.Equal(t, 20.0, span)
	assert.Equal(t, 5.0, table.Records()[1].Duration())
}

func TestLoad_ResourcesSorted(t *testing.T) {
	table, err := Load([]models.TraceRow{
		row("J1", "CPU2", "A", 0, 1),
		row("J2", "CPU0", "A", 0, 1),
		row("J3", "CPU1", "A", 0, 1),
		row("J4", "CPU0", "A", 1, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CPU0", "CPU1", "CPU2"}, table.Resources())
}

func TestLoad_Rejects(t *testing.T) {
	outlier := true
	tests := map[string]struct {
		row    models.TraceRow
		reason string
	}{
		"end before start": {
			row:    row("J1", "R1", "A", 10, 5),
			reason: "End before Start",
		},
		"negative start": {
			row:    row("J1", "R1", "A", -1, 5),
			reason: "negative Start",
		},
		"missing fields": {
			row:    models.TraceRow{ResourceID: "R1", Outlier: &outlier},
			reason: "missing Value, JobId, Start, End",
		},
		"inconsistent duration": {
			row: models.TraceRow{
				JobID: "J1", ResourceID: "R1", Value: "A",
				Start: f(0), End: f(10), Duration: f(3),
			},
			reason: "Duration does not match End-Start",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]models.TraceRow{row("J0", "R0", "A", 0, 1), tc.row})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedTrace))

			var malformed *MalformedTraceError
			require.True(t, errors.As(err, &malformed))
			rows := malformed.RowErrors()
			require.Len(t, rows, 1)
			assert.Equal(t, 1, rows[0].Row)
			assert.Equal(t, tc.reason, rows[0].Reason)
		})
	}
}

func TestLoad_ReportsEveryBadRow(t *testing.T) {
	_, err := Load([]models.TraceRow{
		row("J1", "R1", "A", 5, 1),
		row("J2", "R1", "A", 0, 1),
		row("J3", "R1", "A", 9, 2),
	})
	var malformed *MalformedTraceError
	require.True(t, errors.As(err, &malformed))
	rows := malformed.RowErrors()
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Row)
	assert.Equal(t, 2, rows[1].Row)
}

func TestLoad_AcceptsMatchingDuration(t *testing.T) {
	r := row("J1", "R1", "A", 0.1, 0.3)
	r.Duration = f(0.3 - 0.1)
	_, err := Load([]models.TraceRow{r})
	assert.NoError(t, err)
}

func TestTotalSpan_Empty(t *testing.T) {
	table, err := Load(nil)
	require.NoError(t, err)
	_, err = table.TotalSpan()
	assert.ErrorIs(t, err, ErrEmptyTrace)
}

func TestFilterByResource(t *testing.T) {
	table := sampleTable(t)

	view := table.FilterByResource("R1", "missing")
	assert.Equal(t, 2, view.Len())
	assert.Equal(t, []string{"R1"}, view.Resources())
	span, err := view.TotalSpan()
	require.NoError(t, err)
	assert.Equal(t, 20.0, span)

	// the parent is untouched
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"R1", "R2"}, table.Resources())
}

func TestFilterByResource_ViewIsIsolated(t *testing.T) {
	table := sampleTable(t)
	view := table.FilterByResource("R1")

	records := view.Records()
	records[0].JobID = "changed"
	resources := view.Resources()
	resources[0] = "changed"

	assert.Equal(t, "J1", table.Records()[0].JobID)
	assert.Equal(t, "J1", view.Records()[0].JobID)
	assert.Equal(t, []string{"R1"}, view.Resources())
}

func TestMinDuration(t *testing.T) {
	table := sampleTable(t)

	view := table.MinDuration(5)
	var jobs []string
	view.Each(func(r models.TraceRecord) { jobs = append(jobs, r.JobID) })
	assert.Equal(t, []string{"J1", "J3"}, jobs)
	assert.Equal(t, []string{"R1", "R2"}, view.Resources())
}
