package store

import (
	"context"

	"github.com/alfredjeanlab/gantry/internal/model"
)

// Store defines the persistence interface for pipeline runs.
type Store interface {
	// Run lifecycle
	CreateRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, filter model.RunFilter) ([]*model.Run, int, error) // returns runs, total count, error
	ConcludeRun(ctx context.Context, id string, conclusion model.Conclusion) (*model.Run, error)
	DeleteRun(ctx context.Context, id string) error

	// Job outcomes
	PutOutcome(ctx context.Context, runID string, outcome *model.JobOutcome) error
	GetOutcomes(ctx context.Context, runID string) ([]*model.JobOutcome, error)

	// Events
	RecordEvent(ctx context.Context, event *model.RunEvent) error
	GetEvents(ctx context.Context, runID string) ([]*model.RunEvent, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
