package models

// TimelineInterval is one drawable bar of a Gantt timeline.
type TimelineInterval struct {
	ResourceID  string  `json:"resource_id"`
	Position    int     `json:"position"`
	Kind        string  `json:"kind"`
	Start       float64 `json:"start"`
	Duration    float64 `json:"duration"`
	ColorKey    string  `json:"color_key"`
	Opacity     float64 `json:"opacity"`
	JobID       string  `json:"job_id"`
	FirstOfKind bool    `json:"first_of_kind"`
}

// ResourceIdle carries the idle percentage label for one resource row.
type ResourceIdle struct {
	ResourceID  string  `json:"resource_id"`
	Position    int     `json:"position"`
	IdlePercent float64 `json:"idle_percent"`
}

// Timeline aggregates everything a consumer needs to draw one Gantt panel.
type Timeline struct {
	Intervals   []TimelineInterval `json:"intervals"`
	Resources   []string           `json:"resources"`
	Positions   map[string]int     `json:"positions"`
	Legend      []string           `json:"legend"`
	Idle        []ResourceIdle     `json:"idle,omitempty"`
	ABE         *int               `json:"abe,omitempty"`
	Highlighted []string           `json:"highlighted,omitempty"`
}

// QueueSeries is a named step series ready for drawing.
type QueueSeries struct {
	Name        string        `json:"name"`
	Samples     []QueueSample `json:"samples"`
	InputLength int           `json:"input_length"`
}
