// Package client provides a transport-agnostic interface for the gantry
// service and an HTTP/JSON implementation that talks to the gantry REST API.
package client

import (
	"context"

	"github.com/alfredjeanlab/gantry/internal/gate"
	"github.com/alfredjeanlab/gantry/internal/model"
)

// GantryClient is the interface that all gantry CLI commands use to
// communicate with the gantry server. It is implemented by HTTPClient
// (default) and can be backed by any transport.
type GantryClient interface {
	// Run lifecycle
	CreateRun(ctx context.Context, req *CreateRunRequest) (*model.Run, error)
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, req *ListRunsRequest) (*ListRunsResponse, error)
	DeleteRun(ctx context.Context, id string) error

	// Outcomes
	ReportOutcome(ctx context.Context, runID string, outcome *model.JobOutcome) error
	GetOutcomes(ctx context.Context, runID string) ([]*model.JobOutcome, error)

	// Conclusion
	ConcludeRun(ctx context.Context, runID string, req *ConcludeRunRequest) (*ConcludeRunResponse, error)

	// Events
	GetEvents(ctx context.Context, runID string) ([]*model.RunEvent, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateRunRequest holds parameters for creating a run.
type CreateRunRequest struct {
	Workflow  string              `json:"workflow"`
	Trigger   string              `json:"trigger"`
	Ref       string              `json:"ref,omitempty"`
	HeadSHA   string              `json:"head_sha,omitempty"`
	CreatedBy string              `json:"created_by,omitempty"`
	Outcomes  []*model.JobOutcome `json:"outcomes,omitempty"`
}

// ListRunsRequest holds parameters for listing runs.
type ListRunsRequest struct {
	Workflow   string   `json:"workflow,omitempty"`
	Trigger    []string `json:"trigger,omitempty"`
	Conclusion []string `json:"conclusion,omitempty"`
	Ref        string   `json:"ref,omitempty"`
	Sort       string   `json:"sort,omitempty"`
	Limit      int      `json:"limit,omitempty"`
	Offset     int      `json:"offset,omitempty"`
}

// ListRunsResponse is the response from ListRuns.
type ListRunsResponse struct {
	Runs  []*model.Run `json:"runs"`
	Total int          `json:"total"`
}

// ConcludeRunRequest holds parameters for concluding a run. An empty request
// gates on every reported outcome.
type ConcludeRunRequest struct {
	Required []string `json:"required,omitempty"`
	Optional []string `json:"optional,omitempty"`
	Actor    string   `json:"actor,omitempty"`
}

// ConcludeRunResponse is the response from ConcludeRun.
type ConcludeRunResponse struct {
	Run     *model.Run   `json:"run"`
	Verdict gate.Verdict `json:"verdict"`
}
