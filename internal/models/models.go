package models

// TraceRow is a single row as handed over by a loader, before validation.
// Optional columns are pointers so a missing value can be told apart from zero.
type TraceRow struct {
	ResourceID string   `json:"ResourceId"`
	Value      string   `json:"Value"`
	Start      *float64 `json:"Start"`
	End        *float64 `json:"End"`
	Duration   *float64 `json:"Duration,omitempty"`
	JobID      string   `json:"JobId"`
	Outlier    *bool    `json:"Outlier,omitempty"`
}

// TraceRecord is a validated task execution interval on one resource.
type TraceRecord struct {
	JobID      string  `json:"job_id"`
	ResourceID string  `json:"resource_id"`
	Kind       string  `json:"kind"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Outlier    bool    `json:"outlier"`
}

// Duration is derived from the interval bounds.
func (r TraceRecord) Duration() float64 {
	return r.End - r.Start
}

// DependencyEdge states that JobID depends on (is a child of) Dependent.
type DependencyEdge struct {
	JobID     string `json:"JobId"`
	Dependent string `json:"Dependent"`
}

// QueueRow is a scheduler variable sample as stored on disk.
type QueueRow struct {
	Start float64 `json:"Start"`
	Value float64 `json:"Value"`
	Type  string  `json:"Type"`
}

// QueueSample is one queue depth observation.
type QueueSample struct {
	Timestamp  float64 `json:"timestamp"`
	QueueDepth float64 `json:"queue_depth"`
	Category   string  `json:"category"`
}

// VisualState bundles the per-render toggles and selection.
type VisualState struct {
	HighlightedIDs      map[string]struct{} `json:"-"`
	DisplayOutliers     bool                `json:"display_outliers"`
	ShowIdleAnnotations bool                `json:"show_idle_annotations"`
	ShowABEMarker       bool                `json:"show_abe_marker"`
}

// IsHighlighted reports whether id is part of the highlight set.
func (v VisualState) IsHighlighted(id string) bool {
	_, ok := v.HighlightedIDs[id]
	return ok
}
