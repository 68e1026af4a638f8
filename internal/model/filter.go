package model

// RunFilter holds criteria for querying runs.
type RunFilter struct {
	Workflow   string       `json:"workflow,omitempty"`
	Trigger    []Trigger    `json:"trigger,omitempty"`
	Conclusion []Conclusion `json:"conclusion,omitempty"`
	Ref        string       `json:"ref,omitempty"`
	Sort       string       `json:"sort,omitempty"` // e.g. "-created_at", "workflow"; prefix "-" = descending
	Limit      int          `json:"limit,omitempty"` // 0 = default cap, negative = no cap
	Offset     int          `json:"offset,omitempty"`
}
