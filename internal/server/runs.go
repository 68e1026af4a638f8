package server

import (
	"context"
	"fmt"
	"time"

	"github.com/alfredjeanlab/gantry/internal/events"
	"github.com/alfredjeanlab/gantry/internal/gate"
	"github.com/alfredjeanlab/gantry/internal/idgen"
	"github.com/alfredjeanlab/gantry/internal/model"
	"github.com/alfredjeanlab/gantry/internal/store"
)

// createRunInput holds the parameters for creating a pipeline run.
type createRunInput struct {
	Workflow  string             `json:"workflow"`
	Trigger   model.Trigger      `json:"trigger"`
	Ref       string             `json:"ref"`
	HeadSHA   string             `json:"head_sha"`
	CreatedBy string             `json:"created_by"`
	Outcomes  []*model.JobOutcome `json:"outcomes"`
}

// createRun validates input, persists a new run with any initial outcomes, and
// publishes a RunCreated event. Returns inputError for validation failures.
func (s *GantryServer) createRun(ctx context.Context, in createRunInput) (*model.Run, error) {
	if in.Workflow == "" {
		return nil, inputError("workflow is required")
	}
	if !in.Trigger.IsValid() {
		return nil, inputError("unknown trigger " + string(in.Trigger))
	}
	for _, o := range in.Outcomes {
		if o.Name == "" {
			return nil, inputError("outcome name is required")
		}
		if !o.Result.IsValid() {
			return nil, inputError(fmt.Sprintf("job %q reported unknown result %q", o.Name, o.Result))
		}
	}

	id, err := idgen.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	run := &model.Run{
		ID:         id,
		Workflow:   in.Workflow,
		Trigger:    in.Trigger,
		Ref:        in.Ref,
		HeadSHA:    in.HeadSHA,
		Conclusion: model.ConclusionPending,
		CreatedAt:  time.Now().UTC(),
		CreatedBy:  in.CreatedBy,
		Outcomes:   in.Outcomes,
	}

	// Create the run and its initial outcomes atomically.
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateRun(ctx, run); err != nil {
			return fmt.Errorf("failed to create run: %w", err)
		}
		for _, o := range run.Outcomes {
			if err := tx.PutOutcome(ctx, run.ID, o); err != nil {
				return fmt.Errorf("failed to record outcome %q: %w", o.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicRunCreated, run.ID, run.CreatedBy, events.RunCreated{Run: run})

	return run, nil
}

// concludeRunInput holds the parameters for concluding a run.
type concludeRunInput struct {
	// Required names the upstream jobs whose outcomes gate the run. When
	// empty, every reported outcome is treated as required.
	Required []string `json:"required"`

	// Optional names jobs whose outcomes never block the run.
	Optional []string `json:"optional"`

	Actor string `json:"actor"`
}

// concludeRun evaluates the gate over the run's stored outcomes and records
// the resulting conclusion. A missing required outcome is an input error: the
// gate must observe exactly one outcome per required job.
func (s *GantryServer) concludeRun(ctx context.Context, id string, in concludeRunInput) (*model.Run, gate.Verdict, error) {
	stored, err := s.store.GetOutcomes(ctx, id)
	if err != nil {
		return nil, gate.Verdict{}, fmt.Errorf("failed to get outcomes: %w", err)
	}

	outcomes := make(map[string]model.Result, len(stored))
	for _, o := range stored {
		outcomes[o.Name] = o.Result
	}

	policy := gate.Policy{Required: in.Required, Optional: in.Optional}
	if len(policy.Required) == 0 {
		policy.Required = gate.RequiredFromOutcomes(outcomes).Required
	}
	if !s.requireFormat {
		policy.Optional = append(policy.Optional, "format")
	}

	verdict, err := gate.Evaluate(outcomes, policy)
	if err != nil {
		return nil, gate.Verdict{}, inputError(err.Error())
	}

	conclusion := model.ConclusionFailure
	if verdict.Success {
		conclusion = model.ConclusionSuccess
	}

	run, err := s.store.ConcludeRun(ctx, id, conclusion)
	if err != nil {
		return nil, gate.Verdict{}, err
	}

	s.recordAndPublish(ctx, events.TopicRunConcluded, run.ID, in.Actor, events.RunConcluded{Run: run})
	if verdict.Success {
		s.recordAndPublish(ctx, events.TopicGatePassed, run.ID, in.Actor, events.GatePassed{RunID: run.ID})
	} else {
		s.recordAndPublish(ctx, events.TopicGateFailed, run.ID, in.Actor, events.GateFailed{RunID: run.ID, Blocking: verdict.Blocking})
	}

	return run, verdict, nil
}
