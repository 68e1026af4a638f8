package workflow

import (
	"fmt"
	"sort"
)

// Validate checks the workflow for structural errors: missing jobs or
// triggers, dangling needs references, dependency cycles, and a misconfigured
// conclusion job.
//
// The conclusion job is the pipeline's only join point, so it must need every
// other job and carry `if: always()` -- otherwise a failed upstream would
// skip the gate and the run would never be marked failed.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("workflow name is required")
	}
	if w.On.PullRequest == nil && w.On.MergeGroup == nil && w.On.Push == nil {
		return fmt.Errorf("at least one trigger is required")
	}
	if len(w.Jobs) == 0 {
		return fmt.Errorf("at least one job is required")
	}

	for name, job := range w.Jobs {
		for _, need := range job.Needs {
			if need == name {
				return fmt.Errorf("job %q needs itself", name)
			}
			if _, ok := w.Jobs[need]; !ok {
				return fmt.Errorf("job %q needs unknown job %q", name, need)
			}
		}
	}

	if err := w.checkAcyclic(); err != nil {
		return err
	}

	return w.validateGate()
}

func (w *Workflow) validateGate() error {
	var gates []string
	for name, job := range w.Jobs {
		if job.Gate {
			gates = append(gates, name)
		}
	}
	if len(gates) == 0 {
		return fmt.Errorf("no conclusion job: exactly one job must set gate: true")
	}
	if len(gates) > 1 {
		sort.Strings(gates)
		return fmt.Errorf("multiple conclusion jobs: %v", gates)
	}

	gateName := gates[0]
	gateJob := w.Jobs[gateName]

	if gateJob.If != "always()" {
		return fmt.Errorf("conclusion job %q must have if: always() so it runs even when upstream jobs fail", gateName)
	}

	needs := make(map[string]bool, len(gateJob.Needs))
	for _, need := range gateJob.Needs {
		needs[need] = true
	}
	var missing []string
	for name := range w.Jobs {
		if name == gateName {
			continue
		}
		if !needs[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("conclusion job %q must need every other job; missing: %v", gateName, missing)
	}
	return nil
}

// checkAcyclic runs a depth-first search over the needs edges.
func (w *Workflow) checkAcyclic() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(w.Jobs))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("dependency cycle through job %q", name)
		case done:
			return nil
		}
		state[name] = visiting
		for _, need := range w.Jobs[name].Needs {
			if err := visit(need); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	// Deterministic iteration keeps error messages stable.
	names := make([]string, 0, len(w.Jobs))
	for name := range w.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// TopoOrder returns the job names in a dependency-respecting order:
// every job appears after all jobs it needs. Validate must have passed.
func (w *Workflow) TopoOrder() []string {
	order := make([]string, 0, len(w.Jobs))
	done := make(map[string]bool, len(w.Jobs))

	var visit func(name string)
	visit = func(name string) {
		if done[name] {
			return
		}
		done[name] = true
		needs := append([]string(nil), w.Jobs[name].Needs...)
		sort.Strings(needs)
		for _, need := range needs {
			visit(need)
		}
		order = append(order, name)
	}

	names := make([]string, 0, len(w.Jobs))
	for name := range w.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		visit(name)
	}
	return order
}
