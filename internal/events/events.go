package events

import (
	"context"

	"github.com/alfredjeanlab/gantry/internal/model"
)

// Event topic constants
const (
	TopicRunCreated      = "gantry.run.created"
	TopicRunConcluded    = "gantry.run.concluded"
	TopicRunDeleted      = "gantry.run.deleted"
	TopicOutcomeReported = "gantry.outcome.reported"

	// Gate verdicts. Exactly one of these is published per concluded run.
	TopicGatePassed = "gantry.gate.passed"
	TopicGateFailed = "gantry.gate.failed"
)

// Event types

type RunCreated struct {
	Run *model.Run `json:"run"`
}

type RunConcluded struct {
	Run *model.Run `json:"run"`
}

type RunDeleted struct {
	RunID string `json:"run_id"`
}

type OutcomeReported struct {
	RunID   string            `json:"run_id"`
	Outcome *model.JobOutcome `json:"outcome"`
}

type GatePassed struct {
	RunID string `json:"run_id"`
}

type GateFailed struct {
	RunID string `json:"run_id"`
	// Blocking lists the jobs whose result failed the gate.
	Blocking []string `json:"blocking"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
