package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantry/internal/client"
	"github.com/alfredjeanlab/gantry/internal/model"
)

var reportCmd = &cobra.Command{
	Use:     "report <run-id> <job> <result>",
	Short:   "Report a job outcome to the server",
	GroupID: "gate",
	Long: `Records the terminal result of one upstream job on an open run.
Result must be one of: success, failure, cancelled, skipped. Re-reporting
the same job replaces the earlier outcome; concluded runs reject reports.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, job := args[0], args[1]
		result := model.Result(args[2])
		if !result.IsValid() {
			return fmt.Errorf("invalid result %q: must be success, failure, cancelled, or skipped", args[2])
		}

		err := gantryClient.ReportOutcome(cmd.Context(), runID, &model.JobOutcome{
			Name:   job,
			Result: result,
		})
		if err != nil {
			return err
		}
		fmt.Printf("reported %s: %s\n", job, renderResult(result))
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create a new pending run",
	GroupID: "runs",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		workflow, _ := cmd.Flags().GetString("workflow")
		trigger, _ := cmd.Flags().GetString("trigger")
		ref, _ := cmd.Flags().GetString("ref")
		headSHA, _ := cmd.Flags().GetString("head-sha")

		run, err := gantryClient.CreateRun(cmd.Context(), &client.CreateRunRequest{
			Workflow:  workflow,
			Trigger:   trigger,
			Ref:       ref,
			HeadSHA:   headSHA,
			CreatedBy: actor,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			printRunJSON(run)
			return nil
		}
		fmt.Printf("created run %s\n", run.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().String("workflow", "CI", "workflow name")
	createCmd.Flags().String("trigger", "pull_request", "trigger that started the run")
	createCmd.Flags().String("ref", "", "git ref the run is for")
	createCmd.Flags().String("head-sha", "", "head commit SHA")
}
