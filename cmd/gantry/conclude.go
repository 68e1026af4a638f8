package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantry/internal/client"
	"github.com/alfredjeanlab/gantry/internal/gate"
	"github.com/alfredjeanlab/gantry/internal/model"
	"github.com/alfredjeanlab/gantry/internal/ui"
)

var concludeCmd = &cobra.Command{
	Use:     "conclude",
	Short:   "Evaluate the conclusion gate over upstream job outcomes",
	GroupID: "gate",
	Long: `Reads the runner-injected needs context (a JSON object mapping job name
to {"result": "..."}), dumps every outcome, applies the gating rule, and
exits non-zero when any required job failed or was cancelled. Skipped jobs
do not block.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		needsJSON, _ := cmd.Flags().GetString("needs")
		needsFile, _ := cmd.Flags().GetString("needs-file")
		optional, _ := cmd.Flags().GetStringSlice("optional")
		record, _ := cmd.Flags().GetBool("record")
		workflow, _ := cmd.Flags().GetString("workflow")
		trigger, _ := cmd.Flags().GetString("trigger")

		data, err := readNeeds(needsJSON, needsFile)
		if err != nil {
			return err
		}

		outcomes, err := gate.ParseNeeds(data)
		if err != nil {
			return err
		}

		// Dump every outcome before evaluating so the full upstream picture
		// lands in the log even when the gate fails.
		fmt.Println("upstream outcomes:")
		gate.Dump(os.Stdout, outcomes)

		policy := gate.RequiredFromOutcomes(outcomes)
		policy.Optional = optional

		verdict, err := gate.Evaluate(outcomes, policy)
		if err != nil {
			return err
		}

		if record {
			if err := recordConcludedRun(cmd.Context(), workflow, trigger, outcomes, optional); err != nil {
				// Recording is best-effort; the gate verdict still decides the exit.
				fmt.Fprintf(os.Stderr, "warning: failed to record run: %v\n", err)
			}
		}

		if !verdict.Success {
			fmt.Printf("\n%s blocked by: %v\n", ui.RenderBad("gate failed"), verdict.Blocking)
			// The verdict is already on screen; main turns this into exit 1
			// without cobra reprinting it.
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true
			return errGateFailed
		}

		fmt.Printf("\n%s\n", ui.RenderGood("gate passed"))
		return nil
	},
}

// errGateFailed marks a failed gate verdict, as opposed to an evaluation
// error. Both exit non-zero; only the latter is printed as an error.
var errGateFailed = errors.New("gate failed")

// readNeeds resolves the needs context from --needs, --needs-file, or stdin.
func readNeeds(needsJSON, needsFile string) ([]byte, error) {
	switch {
	case needsJSON != "":
		return []byte(needsJSON), nil
	case needsFile == "-" || needsFile == "":
		return io.ReadAll(os.Stdin)
	default:
		data, err := os.ReadFile(needsFile)
		if err != nil {
			return nil, fmt.Errorf("reading needs file: %w", err)
		}
		return data, nil
	}
}

// recordConcludedRun posts the outcomes to the server as a new run and
// concludes it there, so the run history reflects this gate evaluation.
func recordConcludedRun(ctx context.Context, workflow, trigger string, outcomes map[string]model.Result, optional []string) error {
	names := make([]string, 0, len(outcomes))
	for name := range outcomes {
		names = append(names, name)
	}
	sort.Strings(names)

	jobOutcomes := make([]*model.JobOutcome, 0, len(names))
	for _, name := range names {
		jobOutcomes = append(jobOutcomes, &model.JobOutcome{Name: name, Result: outcomes[name]})
	}

	run, err := gantryClient.CreateRun(ctx, &client.CreateRunRequest{
		Workflow:  workflow,
		Trigger:   trigger,
		CreatedBy: actor,
		Outcomes:  jobOutcomes,
	})
	if err != nil {
		return err
	}

	_, err = gantryClient.ConcludeRun(ctx, run.ID, &client.ConcludeRunRequest{
		Optional: optional,
		Actor:    actor,
	})
	if err != nil {
		return err
	}

	fmt.Printf("recorded run %s\n", run.ID)
	return nil
}

func init() {
	concludeCmd.Flags().String("needs", "", "needs context as a JSON string")
	concludeCmd.Flags().String("needs-file", "", "path to needs context JSON (\"-\" for stdin)")
	concludeCmd.Flags().StringSlice("optional", nil, "jobs whose outcome never blocks the gate")
	concludeCmd.Flags().Bool("record", false, "record the concluded run on the server")
	concludeCmd.Flags().String("workflow", "CI", "workflow name for --record")
	concludeCmd.Flags().String("trigger", "pull_request", "trigger for --record")
}
