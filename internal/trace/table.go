package trace

import (
	"math"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"traceview/internal/models"
)

const durationTolerance = 1e-9

// Table is an immutable, ordered set of trace records. Views returned by the
// filter methods share the backing records read-only and keep the span of the
// table they were derived from.
type Table struct {
	records   []models.TraceRecord
	resources []string
	span      float64
	hasSpan   bool
}

// Load validates loader rows and builds a table. Every invalid row is
// reported; nothing is clamped or dropped silently.
func Load(rows []models.TraceRow) (*Table, error) {
	var problems *multierror.Error
	records := make([]models.TraceRecord, 0, len(rows))
	for i, row := range rows {
		record, reason := validateRow(row)
		if reason != "" {
			problems = multierror.Append(problems, &RowError{Row: i, Reason: reason})
			continue
		}
		records = append(records, record)
	}
	if problems != nil {
		return nil, &MalformedTraceError{Rows: problems}
	}
	return FromRecords(records), nil
}

// FromRecords builds a table from records that are already known to be valid.
func FromRecords(records []models.TraceRecord) *Table {
	t := &Table{records: records}
	for _, r := range records {
		if !t.hasSpan || r.End > t.span {
			t.span = r.End
			t.hasSpan = true
		}
	}
	t.resources = distinctResources(records)
	return t
}

func validateRow(row models.TraceRow) (models.TraceRecord, string) {
	var missing []string
	if strings.TrimSpace(row.ResourceID) == "" {
		missing = append(missing, "ResourceId")
	}
	if strings.TrimSpace(row.Value) == "" {
		missing = append(missing, "Value")
	}
	if strings.TrimSpace(row.JobID) == "" {
		missing = append(missing, "JobId")
	}
	if row.Start == nil {
		missing = append(missing, "Start")
	}
	if row.End == nil {
		missing = append(missing, "End")
	}
	if len(missing) > 0 {
		return models.TraceRecord{}, "missing " + strings.Join(missing, ", ")
	}

	start, end := *row.Start, *row.End
	switch {
	case math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0):
		return models.TraceRecord{}, "non-finite Start or End"
	case start < 0:
		return models.TraceRecord{}, "negative Start"
	case end < start:
		return models.TraceRecord{}, "End before Start"
	}
	if row.Duration != nil {
		want := end - start
		if math.Abs(*row.Duration-want) > durationTolerance*math.Max(1, math.Abs(want)) {
			return models.TraceRecord{}, "Duration does not match End-Start"
		}
	}

	record := models.TraceRecord{
		JobID:      row.JobID,
		ResourceID: row.ResourceID,
		Kind:       row.Value,
		Start:      start,
		End:        end,
	}
	if row.Outlier != nil {
		record.Outlier = *row.Outlier
	}
	return record, ""
}

func distinctResources(records []models.TraceRecord) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.ResourceID]; ok {
			continue
		}
		seen[r.ResourceID] = struct{}{}
		out = append(out, r.ResourceID)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of the records in table order.
func (t *Table) Records() []models.TraceRecord {
	out := make([]models.TraceRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Each calls fn for every record in table order without copying.
func (t *Table) Each(fn func(models.TraceRecord)) {
	for _, r := range t.records {
		fn(r)
	}
}

// Resources returns the distinct resource ids, sorted.
func (t *Table) Resources() []string {
	out := make([]string, len(t.resources))
	copy(out, t.resources)
	return out
}

// TotalSpan is the maximum End over the records the table was loaded with.
func (t *Table) TotalSpan() (float64, error) {
	if !t.hasSpan {
		return 0, ErrEmptyTrace
	}
	return t.span, nil
}

// FilterByResource returns a view restricted to the given resource ids. Ids
// that never appear in the table are ignored.
func (t *Table) FilterByResource(ids ...string) *Table {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	view := t.Filter(func(r models.TraceRecord) bool {
		_, ok := wanted[r.ResourceID]
		return ok
	})
	view.resources = make([]string, 0, len(ids))
	for _, id := range t.resources {
		if _, ok := wanted[id]; ok {
			view.resources = append(view.resources, id)
		}
	}
	return view
}

// Filter returns a view holding the records accepted by keep. The view keeps
// the parent's resource set and span.
func (t *Table) Filter(keep func(models.TraceRecord) bool) *Table {
	records := make([]models.TraceRecord, 0, len(t.records))
	for _, r := range t.records {
		if keep(r) {
			records = append(records, r)
		}
	}
	return &Table{
		records:   records,
		resources: t.resources,
		span:      t.span,
		hasSpan:   t.hasSpan,
	}
}

// MinDuration drops tasks whose lifespan is not longer than threshold.
func (t *Table) MinDuration(threshold float64) *Table {
	return t.Filter(func(r models.TraceRecord) bool {
		return r.Duration() > threshold
	})
}
