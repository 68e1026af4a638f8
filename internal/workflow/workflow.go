// Package workflow models the CI pipeline definition: triggers, the fan-out
// job graph with its matrix axes, and the conclusion job that gates the run.
// The jobs' steps invoke external scripts; gantry validates the graph and
// trigger rules but never executes the steps itself.
package workflow

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Workflow is a parsed pipeline definition.
type Workflow struct {
	Name string          `yaml:"name"`
	On   Triggers        `yaml:"on"`
	Jobs map[string]*Job `yaml:"jobs"`
}

// Triggers declares which events start the pipeline.
type Triggers struct {
	PullRequest *PullRequestTrigger `yaml:"pull_request"`
	MergeGroup  *MergeGroupTrigger  `yaml:"merge_group"`
	Push        *PushTrigger        `yaml:"push"`
}

// PullRequestTrigger fires on pull-request events, except when every changed
// path matches a paths-ignore pattern.
type PullRequestTrigger struct {
	PathsIgnore []string `yaml:"paths-ignore"`
}

// MergeGroupTrigger fires on merge-queue events. Its presence alone enables
// the trigger; it carries no options.
type MergeGroupTrigger struct{}

// PushTrigger fires on pushes to the listed branches.
type PushTrigger struct {
	Branches []string `yaml:"branches"`
}

// Job is one unit of CI work.
type Job struct {
	Name     string    `yaml:"name"`
	Needs    []string  `yaml:"needs"`
	If       string    `yaml:"if"`
	Strategy *Strategy `yaml:"strategy"`
	Steps    []Step    `yaml:"steps"`

	// Gate marks the conclusion job: the single job that joins on every
	// other job and decides overall pipeline success.
	Gate bool `yaml:"gate"`
}

// Strategy holds the matrix axes a job fans out over.
type Strategy struct {
	Matrix map[string][]string `yaml:"matrix"`
}

// Step is a single instruction inside a job. Run strings invoke the external
// test scripts (all-tests.sh, cross-tests.sh, ...) whose behavior is opaque
// to gantry.
type Step struct {
	Name string `yaml:"name"`
	Run  string `yaml:"run"`
}

// Parse reads a workflow definition from r and validates it.
func Parse(r io.Reader) (*Workflow, error) {
	var w Workflow
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decoding workflow: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// ParseFile reads and validates the workflow definition at path.
func ParseFile(path string) (*Workflow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening workflow %s: %w", path, err)
	}
	defer f.Close()
	w, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", path, err)
	}
	return w, nil
}

// GateJob returns the name of the conclusion job, or "" if none is marked.
func (w *Workflow) GateJob() string {
	for name, job := range w.Jobs {
		if job.Gate {
			return name
		}
	}
	return ""
}

// MatrixCombos expands the job's matrix axes into the full cartesian product,
// one map per combination. A job without a matrix yields a single empty combo.
func (j *Job) MatrixCombos() []map[string]string {
	if j.Strategy == nil || len(j.Strategy.Matrix) == 0 {
		return []map[string]string{{}}
	}

	// Fix axis order for deterministic output.
	axes := make([]string, 0, len(j.Strategy.Matrix))
	for axis := range j.Strategy.Matrix {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	combos := []map[string]string{{}}
	for _, axis := range axes {
		var next []map[string]string
		for _, combo := range combos {
			for _, value := range j.Strategy.Matrix[axis] {
				expanded := make(map[string]string, len(combo)+1)
				for k, v := range combo {
					expanded[k] = v
				}
				expanded[axis] = value
				next = append(next, expanded)
			}
		}
		combos = next
	}
	return combos
}
