// Package gate implements the conclusion gate: the final aggregation step
// that decides overall pipeline success from the terminal results of the
// fan-out jobs. The gate is pure; mapping the runner's injected context into
// an explicit outcome set lives in needs.go so the rule can be tested without
// any runner.
package gate

import (
	"fmt"
	"sort"

	"github.com/alfredjeanlab/gantry/internal/model"
)

// Policy configures gate evaluation for a fixed, statically known set of
// upstream jobs.
type Policy struct {
	// Required lists the upstream jobs whose results gate the pipeline.
	// Exactly one outcome must be observed per required job.
	Required []string

	// Optional lists jobs whose outcomes are reported but never block the
	// pipeline. Whether the format job belongs here is a policy choice, not
	// a technical one; it is required unless demoted via configuration.
	Optional []string
}

// Verdict is the gate's decision for one run.
type Verdict struct {
	// Success is true iff every required job finished success or skipped.
	Success bool `json:"success"`

	// Blocking lists the required jobs whose result blocks the pipeline,
	// sorted by name.
	Blocking []string `json:"blocking,omitempty"`
}

// Evaluate applies the gating rule to the observed outcomes.
//
// It returns an error when the outcome set violates the barrier invariant:
// a required job with no outcome, or an outcome whose result is outside the
// closed result enum. Outcomes for jobs not named by the policy are ignored.
func Evaluate(outcomes map[string]model.Result, p Policy) (Verdict, error) {
	for name, result := range outcomes {
		if !result.IsValid() {
			return Verdict{}, fmt.Errorf("job %q reported unknown result %q", name, result)
		}
	}

	optional := make(map[string]bool, len(p.Optional))
	for _, name := range p.Optional {
		optional[name] = true
	}

	var blocking []string
	for _, name := range p.Required {
		if optional[name] {
			continue
		}
		result, ok := outcomes[name]
		if !ok {
			return Verdict{}, fmt.Errorf("no outcome reported for required job %q", name)
		}
		if !result.Passing() {
			blocking = append(blocking, name)
		}
	}
	sort.Strings(blocking)

	return Verdict{
		Success:  len(blocking) == 0,
		Blocking: blocking,
	}, nil
}

// RequiredFromOutcomes returns a policy that requires every reported job.
// Used when no explicit upstream set is declared, e.g. server-side
// conclusion of a run from its stored outcomes.
func RequiredFromOutcomes(outcomes map[string]model.Result) Policy {
	required := make([]string, 0, len(outcomes))
	for name := range outcomes {
		required = append(required, name)
	}
	sort.Strings(required)
	return Policy{Required: required}
}
