package model

import "time"

// Result is the terminal status of a CI job, as reported by the runner.
// The set is closed; anything else is a protocol error.
type Result string

const (
	ResultSuccess   Result = "success"
	ResultFailure   Result = "failure"
	ResultCancelled Result = "cancelled"
	ResultSkipped   Result = "skipped"
)

// String returns the string representation of the result.
func (r Result) String() string {
	return string(r)
}

// IsValid checks whether the result is a known value.
func (r Result) IsValid() bool {
	switch r {
	case ResultSuccess, ResultFailure, ResultCancelled, ResultSkipped:
		return true
	}
	return false
}

// Passing reports whether the result is acceptable for gating purposes.
// Skipped jobs do not block the pipeline; they were conditionally disabled,
// not broken.
func (r Result) Passing() bool {
	return r == ResultSuccess || r == ResultSkipped
}

// JobOutcome is the immutable per-job snapshot the gate consumes: one record
// per upstream job, produced by the runner at job completion.
type JobOutcome struct {
	Name   string `json:"name"`
	Result Result `json:"result"`
}

// Conclusion is the overall verdict recorded for a pipeline run.
type Conclusion string

const (
	ConclusionPending Conclusion = "pending"
	ConclusionSuccess Conclusion = "success"
	ConclusionFailure Conclusion = "failure"
)

// String returns the string representation of the conclusion.
func (c Conclusion) String() string {
	return string(c)
}

// IsValid checks whether the conclusion is a known value.
func (c Conclusion) IsValid() bool {
	switch c {
	case ConclusionPending, ConclusionSuccess, ConclusionFailure:
		return true
	}
	return false
}

// Trigger identifies the event that started a pipeline run.
type Trigger string

const (
	TriggerPullRequest Trigger = "pull_request"
	TriggerMergeGroup  Trigger = "merge_group"
	TriggerPush        Trigger = "push"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}

// IsValid checks whether the trigger is a known value.
func (t Trigger) IsValid() bool {
	switch t {
	case TriggerPullRequest, TriggerMergeGroup, TriggerPush:
		return true
	}
	return false
}

// Run is a single pipeline run record.
type Run struct {
	ID          string     `json:"id"`
	Workflow    string     `json:"workflow"`
	Trigger     Trigger    `json:"trigger"`
	Ref         string     `json:"ref,omitempty"`
	HeadSHA     string     `json:"head_sha,omitempty"`
	Conclusion  Conclusion `json:"conclusion"`
	CreatedAt   time.Time  `json:"created_at"`
	CreatedBy   string     `json:"created_by,omitempty"`
	ConcludedAt *time.Time `json:"concluded_at,omitempty"`

	// Relational data -- populated by queries, not stored in the runs table.
	Outcomes []*JobOutcome `json:"outcomes,omitempty"`
}
